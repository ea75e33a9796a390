package tree

import (
	"fmt"

	"github.com/aretw0/fieldform/pkg/domain"
)

// FieldValue stores the raw tuples of one attribute across all its instances.
// Growth is sequential: an instance index is only writable once every lower
// index exists.
type FieldValue struct {
	DefinitionID int
	Path         domain.ScreenPath
	Multiple     bool
	Arity        int

	values []domain.ValueTuple
}

// NewFieldValue creates an empty field value owned by the node at path.
func NewFieldValue(path domain.ScreenPath, def *domain.NodeDefinition, arity int) *FieldValue {
	return &FieldValue{
		DefinitionID: def.ID,
		Path:         path,
		Multiple:     def.Multiple,
		Arity:        arity,
	}
}

// Get returns a copy of the tuple at index. Out of range yields (nil, false).
func (f *FieldValue) Get(index int) (domain.ValueTuple, bool) {
	if index < 0 || index >= len(f.values) {
		return nil, false
	}
	return f.values[index].Clone(), true
}

// GetOrEmpty returns the tuple at index, or an empty tuple of the field's arity.
func (f *FieldValue) GetOrEmpty(index int) domain.ValueTuple {
	if t, ok := f.Get(index); ok {
		return t
	}
	return domain.NewTuple(f.Arity)
}

// Set overwrites index in place, or appends when index == Size().
func (f *FieldValue) Set(index int, tuple domain.ValueTuple) error {
	if index < 0 || index > len(f.values) {
		return fmt.Errorf("%w: index %d, size %d", domain.ErrIndexSkipped, index, len(f.values))
	}
	if !f.Multiple && index > 0 {
		return fmt.Errorf("%w: index %d", domain.ErrSingleCardinality, index)
	}
	stored := tuple.Resize(f.Arity)
	if index == len(f.values) {
		f.values = append(f.values, stored)
		return nil
	}
	f.values[index] = stored
	return nil
}

// Append adds a tuple at the next free index.
func (f *FieldValue) Append(tuple domain.ValueTuple) error {
	return f.Set(len(f.values), tuple)
}

// Size is the number of known instances. It never decreases.
func (f *FieldValue) Size() int {
	return len(f.values)
}

// Values returns copies of every stored tuple in index order.
func (f *FieldValue) Values() []domain.ValueTuple {
	out := make([]domain.ValueTuple, len(f.values))
	for i, v := range f.values {
		out[i] = v.Clone()
	}
	return out
}

// Seed replaces the contents with carried tuples. It is only used when a
// screen is populated for the first time.
func (f *FieldValue) Seed(tuples []domain.ValueTuple) error {
	if !f.Multiple && len(tuples) > 1 {
		return fmt.Errorf("%w: %d tuples", domain.ErrSingleCardinality, len(tuples))
	}
	f.values = make([]domain.ValueTuple, 0, len(tuples))
	for _, t := range tuples {
		f.values = append(f.values, t.Resize(f.Arity))
	}
	return nil
}

// Clone returns a deep copy, detached from the tree.
func (f *FieldValue) Clone() *FieldValue {
	out := *f
	out.Path = append(domain.ScreenPath(nil), f.Path...)
	out.values = f.Values()
	return &out
}
