package field

import (
	"github.com/aretw0/fieldform/pkg/domain"
)

// Code resolves raw codes against a code list. Unknown codes render as the first
// item but are persisted verbatim.
type Code struct {
	Items []domain.CodeItem
}

func (Code) Kind() domain.Kind { return domain.KindCode }
func (Code) Arity() int        { return 1 }

func (c Code) Render(t domain.ValueTuple) DisplayState {
	st := textState(domain.KindCode, t, 1)
	st.Selection = 0
	code, ok := trimmed(t, 0)
	if !ok {
		return st
	}
	for i, item := range c.Items {
		if item.Code == code {
			st.Selection = i
			st.Matched = true
			st.Label = item.Label
			return st
		}
	}
	return st
}

func (Code) Normalize(t domain.ValueTuple) domain.ValueTuple {
	return maskEach(t, 1, func(string) bool { return true })
}

func (Code) Convert(t domain.ValueTuple) (domain.Value, bool) {
	code, ok := trimmed(t, 0)
	if !ok {
		return nil, false
	}
	return domain.CodeValue(code), true
}

// Ordinal maps a code list position back to its raw code.
func (c Code) Ordinal(i int) (string, bool) {
	if i < 0 || i >= len(c.Items) {
		return "", false
	}
	return c.Items[i].Code, true
}

func (Code) Tuple(v domain.Value) domain.ValueTuple {
	c, ok := v.(domain.CodeValue)
	if !ok {
		return domain.NewTuple(1)
	}
	return domain.TupleOf(string(c))
}
