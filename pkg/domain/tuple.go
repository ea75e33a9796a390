package domain

import "strings"

// ValueTuple holds the raw, widget-facing components of one field instance.
// A nil component means "no value", which is distinct from an empty string only
// before normalization.
type ValueTuple []*string

// NewTuple returns an all-empty tuple of the given arity.
func NewTuple(arity int) ValueTuple {
	return make(ValueTuple, arity)
}

// TupleOf builds a tuple from literal components. Empty strings become nil.
func TupleOf(components ...string) ValueTuple {
	t := make(ValueTuple, len(components))
	for i, c := range components {
		if c != "" {
			t[i] = Str(c)
		}
	}
	return t
}

// Str returns a pointer to a copy of s.
func Str(s string) *string {
	return &s
}

// Component returns the i-th component and whether it is set.
func (t ValueTuple) Component(i int) (string, bool) {
	if i < 0 || i >= len(t) || t[i] == nil {
		return "", false
	}
	return *t[i], true
}

// IsEmpty reports whether no component carries a non-blank value.
func (t ValueTuple) IsEmpty() bool {
	for _, c := range t {
		if c != nil && strings.TrimSpace(*c) != "" {
			return false
		}
	}
	return true
}

// Clone deep-copies the tuple so callers can't mutate stored components.
func (t ValueTuple) Clone() ValueTuple {
	if t == nil {
		return nil
	}
	out := make(ValueTuple, len(t))
	for i, c := range t {
		if c != nil {
			out[i] = Str(*c)
		}
	}
	return out
}

// Resize returns a copy with exactly arity components, padding with nil.
func (t ValueTuple) Resize(arity int) ValueTuple {
	out := make(ValueTuple, arity)
	for i := 0; i < arity && i < len(t); i++ {
		if t[i] != nil {
			out[i] = Str(*t[i])
		}
	}
	return out
}

// Equal compares component presence and content.
func (t ValueTuple) Equal(other ValueTuple) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		a, aok := t.Component(i)
		b, bok := other.Component(i)
		if aok != bok || a != b {
			return false
		}
	}
	return true
}

// Strings renders components with "" for missing ones.
func (t ValueTuple) Strings() []string {
	out := make([]string, len(t))
	for i := range t {
		out[i], _ = t.Component(i)
	}
	return out
}
