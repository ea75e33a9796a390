package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	segmentSeparator = "."
	indexSeparator   = "-"
)

// PathSegment addresses one instance of a definition below its parent.
type PathSegment struct {
	DefinitionID int `json:"definition_id"`
	Index        int `json:"index"`
}

func (s PathSegment) String() string {
	return strconv.Itoa(s.DefinitionID) + indexSeparator + strconv.Itoa(s.Index)
}

// ScreenPath is the hierarchical address of an entity instance, root first.
// Two equal paths always denote the same node.
type ScreenPath []PathSegment

// BuildPath appends a segment to parent. An empty parent yields the root segment alone.
// The returned path never shares its backing array with parent.
func BuildPath(parent ScreenPath, definitionID, index int) ScreenPath {
	path := make(ScreenPath, len(parent), len(parent)+1)
	copy(path, parent)
	return append(path, PathSegment{DefinitionID: definitionID, Index: index})
}

// RootPath returns the path of the form root entity.
func RootPath(definitionID int) ScreenPath {
	return BuildPath(nil, definitionID, 0)
}

// ParseInstancePath is the inverse of ScreenPath.String.
func ParseInstancePath(s string) (ScreenPath, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	parts := strings.Split(s, segmentSeparator)
	path := make(ScreenPath, 0, len(parts))
	for _, part := range parts {
		def, idx, ok := strings.Cut(part, indexSeparator)
		if !ok {
			return nil, fmt.Errorf("%w: segment %q", ErrMalformedPath, part)
		}
		defID, err := strconv.Atoi(def)
		if err != nil {
			return nil, fmt.Errorf("%w: definition %q", ErrMalformedPath, def)
		}
		index, err := strconv.Atoi(idx)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("%w: index %q", ErrMalformedPath, idx)
		}
		path = append(path, PathSegment{DefinitionID: defID, Index: index})
	}
	return path, nil
}

// MustParseInstancePath panics on malformed input.
// Paths produced by BuildPath always parse.
func MustParseInstancePath(s string) ScreenPath {
	p, err := ParseInstancePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path as its lookup key, e.g. "1-0.7-2".
func (p ScreenPath) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteString(segmentSeparator)
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Depth is the number of segments.
func (p ScreenPath) Depth() int { return len(p) }

// IsRoot reports whether the path addresses the form root.
func (p ScreenPath) IsRoot() bool { return len(p) == 1 }

// Last returns the deepest segment.
func (p ScreenPath) Last() PathSegment {
	if len(p) == 0 {
		return PathSegment{}
	}
	return p[len(p)-1]
}

// Parent returns the enclosing path, or nil for the root.
func (p ScreenPath) Parent() ScreenPath {
	if len(p) <= 1 {
		return nil
	}
	parent := make(ScreenPath, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent
}

// Equal compares segment by segment.
func (p ScreenPath) Equal(other ScreenPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
