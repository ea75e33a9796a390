package tree

import (
	"testing"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipleText() *domain.NodeDefinition {
	return &domain.NodeDefinition{ID: 5, Name: "notes", Kind: domain.KindText, Multiple: true}
}

func TestFieldValue_SetAppendOverwrite(t *testing.T) {
	fv := NewFieldValue(domain.RootPath(1), multipleText(), 1)

	require.NoError(t, fv.Set(0, domain.TupleOf("a")))
	require.NoError(t, fv.Append(domain.TupleOf("b")))
	require.NoError(t, fv.Set(1, domain.TupleOf("b2")))

	assert.Equal(t, 2, fv.Size())
	got, ok := fv.Get(1)
	require.True(t, ok)
	assert.Equal(t, []string{"b2"}, got.Strings())
}

func TestFieldValue_SetSkipAheadFails(t *testing.T) {
	fv := NewFieldValue(domain.RootPath(1), multipleText(), 1)

	err := fv.Set(1, domain.TupleOf("x"))
	assert.ErrorIs(t, err, domain.ErrIndexSkipped)
	assert.Equal(t, 0, fv.Size())
}

func TestFieldValue_SingleCardinality(t *testing.T) {
	def := &domain.NodeDefinition{ID: 2, Name: "age", Kind: domain.KindNumber}
	fv := NewFieldValue(domain.RootPath(1), def, 1)

	require.NoError(t, fv.Set(0, domain.TupleOf("12")))
	assert.ErrorIs(t, fv.Append(domain.TupleOf("13")), domain.ErrSingleCardinality)
	assert.ErrorIs(t, fv.Seed([]domain.ValueTuple{domain.TupleOf("1"), domain.TupleOf("2")}), domain.ErrSingleCardinality)
	assert.Equal(t, 1, fv.Size())
}

func TestFieldValue_GetOutOfRange(t *testing.T) {
	fv := NewFieldValue(domain.RootPath(1), multipleText(), 2)

	_, ok := fv.Get(3)
	assert.False(t, ok)
	_, ok = fv.Get(-1)
	assert.False(t, ok)
	assert.Len(t, fv.GetOrEmpty(3), 2)
}

func TestFieldValue_StoredTuplesAreIsolated(t *testing.T) {
	fv := NewFieldValue(domain.RootPath(1), multipleText(), 1)
	in := domain.TupleOf("a")
	require.NoError(t, fv.Append(in))

	*in[0] = "mutated"
	out, _ := fv.Get(0)
	*out[0] = "mutated again"

	again, _ := fv.Get(0)
	assert.Equal(t, []string{"a"}, again.Strings())
}

func TestFieldValue_ArityIsEnforced(t *testing.T) {
	def := &domain.NodeDefinition{ID: 3, Name: "flag", Kind: domain.KindBoolean}
	fv := NewFieldValue(domain.RootPath(1), def, 2)

	require.NoError(t, fv.Set(0, domain.TupleOf("true")))
	got, _ := fv.Get(0)
	assert.Len(t, got, 2)
}
