package field

import (
	"github.com/aretw0/fieldform/pkg/domain"
)

// Number handles integer and real attributes.
type Number struct {
	Type domain.NumberType
}

func (Number) Kind() domain.Kind { return domain.KindNumber }
func (Number) Arity() int        { return 1 }

func (n Number) Render(t domain.ValueTuple) DisplayState {
	return textState(domain.KindNumber, t, 1)
}

func (n Number) Normalize(t domain.ValueTuple) domain.ValueTuple {
	return maskEach(t, 1, func(s string) bool { return parseNumber(n.Type, s) })
}

func (n Number) Convert(t domain.ValueTuple) (domain.Value, bool) {
	s, ok := trimmed(t, 0)
	if !ok {
		return nil, false
	}
	if n.Type == domain.NumberInteger {
		v, ok := parseInteger(s)
		if !ok {
			return nil, false
		}
		return domain.IntegerValue(v), true
	}
	v, ok := parseReal(s)
	if !ok {
		return nil, false
	}
	return domain.RealValue(v), true
}

func (Number) Tuple(v domain.Value) domain.ValueTuple {
	switch n := v.(type) {
	case domain.IntegerValue:
		return domain.TupleOf(n.String())
	case domain.RealValue:
		return domain.TupleOf(n.String())
	}
	return domain.NewTuple(1)
}
