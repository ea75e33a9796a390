package field

import (
	"strconv"

	"github.com/aretw0/fieldform/pkg/domain"
)

// Range holds (from, to). Either bound may be missing, not both.
type Range struct {
	Type domain.NumberType
}

func (Range) Kind() domain.Kind { return domain.KindRange }
func (Range) Arity() int        { return 2 }

func (r Range) Render(t domain.ValueTuple) DisplayState {
	return textState(domain.KindRange, t, 2)
}

func (r Range) Normalize(t domain.ValueTuple) domain.ValueTuple {
	return maskEach(t, 2, func(s string) bool { return parseNumber(r.Type, s) })
}

func (r Range) Convert(t domain.ValueTuple) (domain.Value, bool) {
	from, fromOK := trimmed(t, 0)
	to, toOK := trimmed(t, 1)
	if !fromOK && !toOK {
		return nil, false
	}

	if r.Type == domain.NumberInteger {
		var v domain.IntegerRangeValue
		if fromOK {
			if f, ok := parseInteger(from); ok {
				v.From = &f
			}
		}
		if toOK {
			if x, ok := parseInteger(to); ok {
				v.To = &x
			}
		}
		return v, v.From != nil || v.To != nil
	}

	var v domain.RealRangeValue
	if fromOK {
		if f, ok := parseReal(from); ok {
			v.From = &f
		}
	}
	if toOK {
		if x, ok := parseReal(to); ok {
			v.To = &x
		}
	}
	return v, v.From != nil || v.To != nil
}

func (Range) Tuple(v domain.Value) domain.ValueTuple {
	out := domain.NewTuple(2)
	switch r := v.(type) {
	case domain.IntegerRangeValue:
		if r.From != nil {
			out[0] = domain.Str(strconv.FormatInt(*r.From, 10))
		}
		if r.To != nil {
			out[1] = domain.Str(strconv.FormatInt(*r.To, 10))
		}
	case domain.RealRangeValue:
		if r.From != nil {
			out[0] = domain.Str(strconv.FormatFloat(*r.From, 'f', -1, 64))
		}
		if r.To != nil {
			out[1] = domain.Str(strconv.FormatFloat(*r.To, 'f', -1, 64))
		}
	}
	return out
}
