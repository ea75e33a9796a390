package form

import (
	"context"
	"fmt"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/field"
	"github.com/aretw0/fieldform/pkg/tree"
)

// Binding ties one attribute definition on a screen to its adapter and field
// value. It plays the part of the reusable input widget: Edit is the onEdit
// callback and Render is what the presentation layer draws.
type Binding struct {
	Definition *domain.NodeDefinition
	Path       domain.ScreenPath

	session   *Session
	adapter   field.Adapter
	field     *tree.FieldValue
	navigator *Navigator
	shown     domain.ValueTuple
}

func newBinding(s *Session, path domain.ScreenPath, def *domain.NodeDefinition, adapter field.Adapter, fv *tree.FieldValue) *Binding {
	b := &Binding{
		Definition: def,
		Path:       path,
		session:    s,
		adapter:    adapter,
		field:      fv,
	}
	if def.Multiple {
		b.navigator = newNavigator(s, def, adapter, fv)
		b.shown = b.navigator.Current()
	} else {
		b.shown = fv.GetOrEmpty(0)
	}
	return b
}

// Adapter returns the kind adapter in use.
func (b *Binding) Adapter() field.Adapter { return b.adapter }

// Multiple reports whether previous/next controls apply.
func (b *Binding) Multiple() bool { return b.navigator != nil }

// Navigator is nil for single attributes.
func (b *Binding) Navigator() *Navigator { return b.navigator }

// Index is the instance currently shown.
func (b *Binding) Index() int {
	if b.navigator == nil {
		return 0
	}
	return b.navigator.Index()
}

// Size is the number of known instances.
func (b *Binding) Size() int { return b.field.Size() }

// Shown returns a copy of the tuple currently displayed.
func (b *Binding) Shown() domain.ValueTuple { return b.shown.Clone() }

// Render converts the displayed tuple for the presentation layer.
func (b *Binding) Render() field.DisplayState {
	return b.adapter.Render(b.shown)
}

// Edit is invoked whenever the user changes input. The tuple is committed at
// the current instance and the normalized form becomes the displayed tuple.
func (b *Binding) Edit(ctx context.Context, tuple domain.ValueTuple) error {
	b.shown = tuple.Resize(b.adapter.Arity())
	normalized, err := b.session.Commit(ctx, b.Path, b.Definition.ID, b.Index(), b.shown)
	if normalized != nil {
		b.shown = normalized
	}
	return err
}

// Next moves a multiple attribute to its next instance.
func (b *Binding) Next(ctx context.Context) error {
	if b.navigator == nil {
		return fmt.Errorf("%s is not multiple", b.Definition.Name)
	}
	t, err := b.navigator.Next(ctx, b.shown)
	if err != nil {
		return err
	}
	b.shown = t
	return nil
}

// Previous moves a multiple attribute to its previous instance. At the first
// instance it changes nothing.
func (b *Binding) Previous(ctx context.Context) error {
	if b.navigator == nil {
		return fmt.Errorf("%s is not multiple", b.Definition.Name)
	}
	t, err := b.navigator.Previous(ctx, b.shown)
	if err != nil {
		return err
	}
	b.shown = t
	return nil
}
