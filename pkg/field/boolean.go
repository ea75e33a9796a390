package field

import (
	"strconv"

	"github.com/aretw0/fieldform/pkg/domain"
)

// Boolean stores (isTrue, isFalse). Setting one side forces the other to its
// complement; both missing means "unset", which differs from an explicit false.
// An explicit (false, false) pair is kept as given and converts to false.
type Boolean struct{}

func (Boolean) Kind() domain.Kind { return domain.KindBoolean }
func (Boolean) Arity() int        { return 2 }

func (b Boolean) Render(t domain.ValueTuple) DisplayState {
	n := b.Normalize(t)
	st := textState(domain.KindBoolean, n, 2)
	yes, yesOK := boolAt(n, 0)
	_, noOK := boolAt(n, 1)
	st.Unset = !yesOK && !noOK
	st.Checked = yesOK && yes
	return st
}

func (Boolean) Normalize(t domain.ValueTuple) domain.ValueTuple {
	yes, yesOK := boolAt(t, 0)
	no, noOK := boolAt(t, 1)

	switch {
	case yesOK && noOK && yes:
		no = false
	case yesOK && noOK && no:
		yes = false
	case yesOK && !noOK:
		no, noOK = !yes, true
	case noOK && !yesOK:
		yes, yesOK = !no, true
	}

	out := domain.NewTuple(2)
	if yesOK {
		out[0] = domain.Str(strconv.FormatBool(yes))
	}
	if noOK {
		out[1] = domain.Str(strconv.FormatBool(no))
	}
	return out
}

func (Boolean) Convert(t domain.ValueTuple) (domain.Value, bool) {
	if yes, ok := boolAt(t, 0); ok {
		return domain.BooleanValue(yes), true
	}
	if no, ok := boolAt(t, 1); ok {
		return domain.BooleanValue(!no), true
	}
	return nil, false
}

func boolAt(t domain.ValueTuple, i int) (bool, bool) {
	s, ok := trimmed(t, i)
	if !ok {
		return false, false
	}
	return parseBool(s)
}

func (Boolean) Tuple(v domain.Value) domain.ValueTuple {
	b, ok := v.(domain.BooleanValue)
	if !ok {
		return domain.NewTuple(2)
	}
	return domain.TupleOf(strconv.FormatBool(bool(b)), strconv.FormatBool(!bool(b)))
}
