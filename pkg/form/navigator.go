package form

import (
	"context"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/field"
	"github.com/aretw0/fieldform/pkg/tree"
)

// Navigator drives previous/next traversal over the instances of a multiple
// attribute. Before the index moves in either direction, the tuple currently
// shown is written back to the field value, so no edit is lost on navigation.
type Navigator struct {
	session *Session
	def     *domain.NodeDefinition
	adapter field.Adapter
	field   *tree.FieldValue
	index   int
}

// newNavigator binds to fv at instance 0, materializing that instance if the
// field has none yet.
func newNavigator(s *Session, def *domain.NodeDefinition, adapter field.Adapter, fv *tree.FieldValue) *Navigator {
	if fv.Size() == 0 {
		_ = fv.Append(domain.NewTuple(adapter.Arity()))
	}
	return &Navigator{session: s, def: def, adapter: adapter, field: fv}
}

// Index is the instance currently viewed.
func (n *Navigator) Index() int { return n.index }

// Size is the number of known instances.
func (n *Navigator) Size() int { return n.field.Size() }

// CanPrevious reports whether Previous would move.
func (n *Navigator) CanPrevious() bool { return n.index > 0 }

// IsLast reports whether Next would create a new instance.
func (n *Navigator) IsLast() bool { return n.index+1 >= n.field.Size() }

// Current returns the stored tuple at the current index.
func (n *Navigator) Current() domain.ValueTuple {
	return n.field.GetOrEmpty(n.index)
}

// Previous writes back shown and moves one instance back. At the first instance
// it is a no-op: nothing is written and shown is returned unchanged.
func (n *Navigator) Previous(ctx context.Context, shown domain.ValueTuple) (domain.ValueTuple, error) {
	if !n.CanPrevious() {
		return shown, nil
	}
	if err := n.writeBack(shown); err != nil {
		return nil, err
	}
	from := n.index
	n.index--
	n.emit(ctx, from, false)
	return n.Current(), nil
}

// Next writes back shown and moves one instance forward, appending a fresh empty
// instance when the end is reached.
func (n *Navigator) Next(ctx context.Context, shown domain.ValueTuple) (domain.ValueTuple, error) {
	if err := n.writeBack(shown); err != nil {
		return nil, err
	}
	from := n.index
	grew := false
	if n.index+1 >= n.field.Size() {
		if err := n.field.Append(domain.NewTuple(n.adapter.Arity())); err != nil {
			return nil, err
		}
		grew = true
	}
	n.index++
	n.emit(ctx, from, grew)
	return n.Current(), nil
}

func (n *Navigator) writeBack(shown domain.ValueTuple) error {
	return n.field.Set(n.index, n.adapter.Normalize(shown))
}

func (n *Navigator) emit(ctx context.Context, from int, grew bool) {
	n.session.logger.Debug("instance navigation",
		"path", n.field.Path.String(), "definition_id", n.def.ID, "from", from, "to", n.index, "grew", grew)
	n.session.emitNavigate(ctx, &domain.NavigateEvent{
		Path:         n.field.Path.String(),
		DefinitionID: n.def.ID,
		From:         from,
		To:           n.index,
		Grew:         grew,
	})
}
