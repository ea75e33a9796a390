package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPath_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		parent ScreenPath
		defID  int
		index  int
		want   string
	}{
		{name: "root", parent: nil, defID: 1, index: 0, want: "1-0"},
		{name: "child entity", parent: RootPath(1), defID: 7, index: 2, want: "1-0.7-2"},
		{name: "deep", parent: ScreenPath{{1, 0}, {7, 2}}, defID: 12, index: 10, want: "1-0.7-2.12-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built := BuildPath(tt.parent, tt.defID, tt.index)
			assert.Equal(t, tt.want, built.String())

			parsed, err := ParseInstancePath(built.String())
			require.NoError(t, err)
			assert.True(t, parsed.Equal(built), "round trip mismatch: %v != %v", parsed, built)
			assert.Equal(t, PathSegment{DefinitionID: tt.defID, Index: tt.index}, parsed.Last())
		})
	}
}

func TestBuildPath_DoesNotAliasParent(t *testing.T) {
	parent := make(ScreenPath, 1, 4)
	parent[0] = PathSegment{DefinitionID: 1}

	a := BuildPath(parent, 2, 0)
	b := BuildPath(parent, 3, 0)

	assert.Equal(t, "1-0.2-0", a.String())
	assert.Equal(t, "1-0.3-0", b.String())
	assert.Len(t, parent, 1)
}

func TestParseInstancePath_Malformed(t *testing.T) {
	for _, in := range []string{"", "1", "a-0", "1-b", "1-0.", "1-0..2-0", "1--1"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseInstancePath(in)
			assert.ErrorIs(t, err, ErrMalformedPath)
		})
	}
}

func TestMustParseInstancePath_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseInstancePath("nope") })
	assert.NotPanics(t, func() { MustParseInstancePath("3-1") })
}

func TestScreenPath_Parent(t *testing.T) {
	p := MustParseInstancePath("1-0.7-2.9-0")

	assert.Equal(t, "1-0.7-2", p.Parent().String())
	assert.Equal(t, "1-0", p.Parent().Parent().String())
	assert.Nil(t, p.Parent().Parent().Parent())
	assert.True(t, p.Parent().Parent().IsRoot())
	assert.Equal(t, 3, p.Depth())
}
