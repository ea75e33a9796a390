package field

import (
	"strings"

	"github.com/aretw0/fieldform/pkg/domain"
)

// Text covers short text and memo attributes. Content is kept verbatim; only
// blank input counts as missing.
type Text struct {
	kind domain.Kind
}

func (t Text) Kind() domain.Kind {
	if t.kind == "" {
		return domain.KindText
	}
	return t.kind
}

func (Text) Arity() int { return 1 }

func (t Text) Render(v domain.ValueTuple) DisplayState {
	return textState(t.Kind(), v, 1)
}

func (Text) Normalize(v domain.ValueTuple) domain.ValueTuple {
	out := domain.NewTuple(1)
	if s, ok := v.Component(0); ok && strings.TrimSpace(s) != "" {
		out[0] = domain.Str(s)
	}
	return out
}

func (Text) Convert(v domain.ValueTuple) (domain.Value, bool) {
	s, ok := v.Component(0)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, false
	}
	return domain.TextValue(s), true
}

func (Text) Tuple(v domain.Value) domain.ValueTuple {
	s, ok := v.(domain.TextValue)
	if !ok {
		return domain.NewTuple(1)
	}
	return domain.TupleOf(string(s))
}
