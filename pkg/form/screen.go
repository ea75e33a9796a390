package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/field"
	"github.com/aretw0/fieldform/pkg/tree"
)

// OpenRequest is what a caller supplies to open a screen.
type OpenRequest struct {
	DefinitionID int
	Index        int
	Parent       domain.ScreenPath

	// Carried seeds field values from a previously suspended screen.
	Carried *NavigationResult
}

// NavigationResult carries the in-progress values of multiple attributes from a
// suspended screen to the next screen of the same kind.
type NavigationResult struct {
	Path   string                      `json:"path"`
	Values map[int][]domain.ValueTuple `json:"values"`
}

// Screen is the built view of one entity instance.
type Screen struct {
	Path       domain.ScreenPath
	Definition *domain.NodeDefinition
	Fields     []*Binding
	Entities   []*EntityList

	// Restored is true when the node already existed in the session tree.
	Restored bool

	session *Session
}

// OpenScreen builds the screen for an entity instance. First visits are seeded
// from req.Carried or, failing that, from the record; later visits restore the
// field values cached in the session tree and ignore req.Carried.
func (s *Session) OpenScreen(ctx context.Context, req OpenRequest) (*Screen, error) {
	path := domain.BuildPath(req.Parent, req.DefinitionID, req.Index)
	def, err := s.entityDefinition(path)
	if err != nil {
		return nil, fmt.Errorf("open screen %s: %w", path, err)
	}

	node, existed := s.tree.GetOrCreate(path)
	screen := &Screen{
		Path:       path,
		Definition: def,
		Restored:   existed,
		session:    s,
	}

	for _, child := range def.Children {
		if child.IsEntity() {
			s.hydrateInstances(path, child)
			screen.Entities = append(screen.Entities, &EntityList{
				Definition: child,
				Parent:     path,
				session:    s,
			})
			continue
		}

		adapter, err := field.For(child)
		if err != nil {
			return nil, fmt.Errorf("open screen %s: %w", path, err)
		}
		fv, cached := node.FieldOrCreate(child, adapter.Arity())
		switch carried, ok := req.Carried.valuesFor(child.ID); {
		case ok && !cached:
			s.seed(path, child, fv, carried)
		case !cached:
			s.hydrate(path, child, adapter, fv)
		}
		screen.Fields = append(screen.Fields, newBinding(s, path, child, adapter, fv))
	}

	s.logger.Debug("screen opened", "path", path.String(), "restored", existed)
	s.emitScreenOpen(ctx, path, existed)
	return screen, nil
}

// OpenPath opens the screen addressed by a full path.
func (s *Session) OpenPath(ctx context.Context, path domain.ScreenPath) (*Screen, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("open screen: %w: empty path", domain.ErrMalformedPath)
	}
	last := path.Last()
	return s.OpenScreen(ctx, OpenRequest{
		DefinitionID: last.DefinitionID,
		Index:        last.Index,
		Parent:       path.Parent(),
	})
}

func (r *NavigationResult) valuesFor(definitionID int) ([]domain.ValueTuple, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.Values[definitionID]
	return v, ok
}

// Field finds a binding by definition name.
func (sc *Screen) Field(name string) (*Binding, bool) {
	for _, b := range sc.Fields {
		if b.Definition.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Entity finds a child entity list by definition name.
func (sc *Screen) Entity(name string) (*EntityList, bool) {
	for _, e := range sc.Entities {
		if e.Definition.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Parent reopens the enclosing screen, or returns nil at the root.
func (sc *Screen) Parent(ctx context.Context) (*Screen, error) {
	parent := sc.Path.Parent()
	if parent == nil {
		return nil, nil
	}
	last := parent.Last()
	return sc.session.OpenScreen(ctx, OpenRequest{
		DefinitionID: last.DefinitionID,
		Index:        last.Index,
		Parent:       parent.Parent(),
	})
}

// Suspend writes back what every multiple binding is showing and returns
// snapshots of their field values.
func (sc *Screen) Suspend() NavigationResult {
	res := NavigationResult{Path: sc.Path.String(), Values: make(map[int][]domain.ValueTuple)}
	for _, b := range sc.Fields {
		if !b.Multiple() {
			continue
		}
		if err := b.navigator.writeBack(b.shown); err != nil {
			sc.session.logger.Warn("suspend write-back failed", "path", res.Path, "definition_id", b.Definition.ID, "err", err)
		}
		res.Values[b.Definition.ID] = b.field.Values()
	}
	return res
}

// NewSibling suspends the screen and opens a fresh instance of the same
// entity under the same parent. With carry set, the multiple fields shown
// here seed the new instance.
func (sc *Screen) NewSibling(ctx context.Context, carry bool) (*Screen, error) {
	if sc.Path.Parent() == nil {
		return nil, errors.New("the form root has no siblings")
	}
	carried := sc.Suspend()
	parent, err := sc.Parent(ctx)
	if err != nil {
		return nil, err
	}
	list, ok := parent.Entity(sc.Definition.Name)
	if !ok || !list.CanAdd() {
		return nil, fmt.Errorf("%s accepts a single instance", sc.Definition.Name)
	}
	if !carry {
		return list.Add(ctx)
	}
	next := 0
	if rows := list.Rows(); len(rows) > 0 {
		next = rows[len(rows)-1].Index + 1
	}
	return list.Enter(ctx, next, &carried)
}

// EntityList summarizes the instances of a child entity.
type EntityList struct {
	Definition *domain.NodeDefinition
	Parent     domain.ScreenPath

	session *Session
}

// Row is one summary line.
type Row struct {
	Index int
	Label string
	Path  domain.ScreenPath
}

// Rows lists the instances created so far, labeled by their key attributes.
func (l *EntityList) Rows() []Row {
	nodes := l.session.tree.Children(l.Parent, l.Definition.ID)
	rows := make([]Row, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, Row{Index: n.Index, Label: l.label(n), Path: n.Path})
	}
	return rows
}

// CanAdd reports whether another instance may be created.
func (l *EntityList) CanAdd() bool {
	return l.Definition.Multiple || len(l.Rows()) == 0
}

// Enter opens the screen of an existing or new instance.
func (l *EntityList) Enter(ctx context.Context, index int, carried *NavigationResult) (*Screen, error) {
	return l.session.OpenScreen(ctx, OpenRequest{
		DefinitionID: l.Definition.ID,
		Index:        index,
		Parent:       l.Parent,
		Carried:      carried,
	})
}

// Add opens a screen for a new instance after the last existing one.
func (l *EntityList) Add(ctx context.Context) (*Screen, error) {
	if !l.CanAdd() {
		return nil, fmt.Errorf("%s accepts a single instance", l.Definition.Name)
	}
	next := 0
	if rows := l.Rows(); len(rows) > 0 {
		next = rows[len(rows)-1].Index + 1
	}
	return l.Enter(ctx, next, nil)
}

func (l *EntityList) label(n *tree.Node) string {
	var parts []string
	for _, key := range l.Definition.KeyChildren() {
		fv, ok := n.Field(key.ID)
		if !ok {
			continue
		}
		t, ok := fv.Get(0)
		if !ok || t.IsEmpty() {
			continue
		}
		adapter, err := field.For(key)
		if err != nil {
			continue
		}
		st := adapter.Render(t)
		text := strings.TrimSpace(strings.Join(st.Text, " "))
		if st.Matched && st.Label != "" {
			text = st.Label
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s #%d", l.Definition.DisplayLabel(), n.Index+1)
	}
	return strings.Join(parts, " - ")
}
