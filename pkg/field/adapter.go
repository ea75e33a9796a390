package field

import (
	"errors"
	"fmt"

	"github.com/aretw0/fieldform/pkg/domain"
)

// ErrNotAttribute is returned when an adapter is requested for an entity definition.
var ErrNotAttribute = errors.New("definition is not an attribute")

// DisplayState is what the presentation layer needs to show one instance.
type DisplayState struct {
	Kind domain.Kind `json:"kind"`

	// Text holds one display string per component, "" when missing.
	Text []string `json:"text"`

	// Unset is true for a boolean with neither component set. Presentation layers
	// must not apply default checking in that case.
	Unset   bool `json:"unset,omitempty"`
	Checked bool `json:"checked,omitempty"`

	// Selection is the code list ordinal, or -1 for non-code kinds.
	Selection int    `json:"selection"`
	Matched   bool   `json:"matched,omitempty"`
	Label     string `json:"label,omitempty"`
}

// Adapter converts one attribute kind.
type Adapter interface {
	Kind() domain.Kind

	// Arity is the fixed number of tuple components.
	Arity() int

	// Render converts raw components to display state. It has no side effects.
	Render(t domain.ValueTuple) DisplayState

	// Normalize masks unparsable components to nil and applies kind rules.
	Normalize(t domain.ValueTuple) domain.ValueTuple

	// Convert returns the typed value of a normalized tuple. The boolean is
	// false when there is nothing to write.
	Convert(t domain.ValueTuple) (domain.Value, bool)

	// Tuple is the inverse of Convert, used to hydrate a session from an
	// existing record. Values of a foreign kind yield an empty tuple.
	Tuple(v domain.Value) domain.ValueTuple
}

// For selects the adapter for an attribute definition.
func For(def *domain.NodeDefinition) (Adapter, error) {
	switch def.Kind {
	case domain.KindBoolean:
		return Boolean{}, nil
	case domain.KindCode:
		return Code{Items: def.CodeItems}, nil
	case domain.KindNumber:
		return Number{Type: numberType(def)}, nil
	case domain.KindRange:
		return Range{Type: numberType(def)}, nil
	case domain.KindCoordinate:
		return Coordinate{SRS: def.SRS}, nil
	case domain.KindDate:
		return Date{}, nil
	case domain.KindTime:
		return Time{}, nil
	case domain.KindText:
		return Text{kind: domain.KindText}, nil
	case domain.KindMemo:
		return Text{kind: domain.KindMemo}, nil
	case domain.KindEntity:
		return nil, fmt.Errorf("%w: %s (%d)", ErrNotAttribute, def.Name, def.ID)
	default:
		return nil, fmt.Errorf("unsupported kind %q for %s (%d)", def.Kind, def.Name, def.ID)
	}
}

func numberType(def *domain.NodeDefinition) domain.NumberType {
	if def.NumberType == domain.NumberInteger {
		return domain.NumberInteger
	}
	return domain.NumberReal
}

func textState(kind domain.Kind, t domain.ValueTuple, arity int) DisplayState {
	return DisplayState{
		Kind:      kind,
		Text:      t.Resize(arity).Strings(),
		Selection: -1,
	}
}

// maskEach keeps components accepted by valid and drops the rest.
func maskEach(t domain.ValueTuple, arity int, valid func(string) bool) domain.ValueTuple {
	out := domain.NewTuple(arity)
	for i := 0; i < arity; i++ {
		s, ok := trimmed(t, i)
		if ok && valid(s) {
			out[i] = domain.Str(s)
		}
	}
	return out
}
