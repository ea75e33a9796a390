package field

import (
	"github.com/aretw0/fieldform/pkg/domain"
)

// Date accepts ISO dates plus the compact and day-first forms used by handhelds.
type Date struct{}

func (Date) Kind() domain.Kind { return domain.KindDate }
func (Date) Arity() int        { return 1 }

func (Date) Render(t domain.ValueTuple) DisplayState {
	st := textState(domain.KindDate, t, 1)
	if s, ok := trimmed(t, 0); ok {
		if d, ok := parseDate(s); ok {
			st.Text[0] = d.Format("2006-01-02")
		}
	}
	return st
}

func (Date) Normalize(t domain.ValueTuple) domain.ValueTuple {
	return maskEach(t, 1, func(s string) bool {
		_, ok := parseDate(s)
		return ok
	})
}

func (Date) Convert(t domain.ValueTuple) (domain.Value, bool) {
	s, ok := trimmed(t, 0)
	if !ok {
		return nil, false
	}
	d, ok := parseDate(s)
	if !ok {
		return nil, false
	}
	return domain.DateValue{Year: d.Year(), Month: int(d.Month()), Day: d.Day()}, true
}

func (Date) Tuple(v domain.Value) domain.ValueTuple {
	d, ok := v.(domain.DateValue)
	if !ok {
		return domain.NewTuple(1)
	}
	return domain.TupleOf(d.String())
}

// Time accepts HH:MM with optional seconds, or compact HHMM.
type Time struct{}

func (Time) Kind() domain.Kind { return domain.KindTime }
func (Time) Arity() int        { return 1 }

func (Time) Render(t domain.ValueTuple) DisplayState {
	st := textState(domain.KindTime, t, 1)
	if s, ok := trimmed(t, 0); ok {
		if d, ok := parseTime(s); ok {
			st.Text[0] = d.Format("15:04")
		}
	}
	return st
}

func (Time) Normalize(t domain.ValueTuple) domain.ValueTuple {
	return maskEach(t, 1, func(s string) bool {
		_, ok := parseTime(s)
		return ok
	})
}

func (Time) Convert(t domain.ValueTuple) (domain.Value, bool) {
	s, ok := trimmed(t, 0)
	if !ok {
		return nil, false
	}
	d, ok := parseTime(s)
	if !ok {
		return nil, false
	}
	return domain.TimeValue{Hour: d.Hour(), Minute: d.Minute()}, true
}

func (Time) Tuple(v domain.Value) domain.ValueTuple {
	t, ok := v.(domain.TimeValue)
	if !ok {
		return domain.NewTuple(1)
	}
	return domain.TupleOf(t.String())
}
