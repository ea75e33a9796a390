/*
Package fieldform is a form engine for hierarchical field surveys.

A survey is described by an external metamodel: a tree of entity definitions
(plots, trees, owners) whose attributes have one of a closed set of kinds
(boolean, code, number, range, coordinate, date, time, text, memo). Fieldform
turns that metamodel into screens, keeps what the user typed in a per-session
data tree, and writes typed values into a record as soon as they change.

# Concept

Every screen shows one entity instance and is addressed by a path such as
"1-0.7-2": the form root, then the third instance of definition 7. Attributes
marked multiple hold several instances, traversed with previous/next; the value
shown is always written back before the index moves, so navigation never loses
input. Child entities are listed with a one-line label built from their key
attributes.

The engine is hexagonal. The metamodel (ports.Metamodel), the record being
filled (ports.Record) and the place sessions are persisted (ports.SnapshotStore)
are interfaces with adapters for YAML or loam documents, an in-memory record,
and file, SQLite or Redis stores.

# Usage

	model, err := schema.LoadFile("plot.yaml")
	if err != nil {
		log.Fatal(err)
	}

	mgr := session.NewManager(memory.NewStore(), model)
	s, err := mgr.Start(ctx, "")
	if err != nil {
		log.Fatal(err)
	}

	err = mgr.WithSession(ctx, s.ID, func(ctx context.Context, s *form.Session) error {
		screen, err := s.OpenScreen(ctx, form.OpenRequest{DefinitionID: model.Root().ID})
		if err != nil {
			return err
		}
		area, _ := screen.Field("area")
		return area.Edit(ctx, domain.TupleOf("3.5"))
	})

The fieldform command wraps the same API in an interactive console
("fieldform run"), an HTTP API ("fieldform serve") and an MCP tool server
("fieldform mcp").
*/
package fieldform
