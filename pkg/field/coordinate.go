package field

import (
	"strconv"

	"github.com/aretw0/fieldform/pkg/domain"
)

// Coordinate holds (x, y) in the definition's spatial reference system.
// A coordinate is only written once both axes parse.
type Coordinate struct {
	SRS string
}

func (Coordinate) Kind() domain.Kind { return domain.KindCoordinate }
func (Coordinate) Arity() int        { return 2 }

func (c Coordinate) Render(t domain.ValueTuple) DisplayState {
	st := textState(domain.KindCoordinate, t, 2)
	st.Label = c.SRS
	return st
}

func (Coordinate) Normalize(t domain.ValueTuple) domain.ValueTuple {
	return maskEach(t, 2, func(s string) bool {
		_, ok := parseReal(s)
		return ok
	})
}

func (c Coordinate) Convert(t domain.ValueTuple) (domain.Value, bool) {
	xs, xok := trimmed(t, 0)
	ys, yok := trimmed(t, 1)
	if !xok || !yok {
		return nil, false
	}
	x, xok := parseReal(xs)
	y, yok := parseReal(ys)
	if !xok || !yok {
		return nil, false
	}
	return domain.CoordinateValue{X: x, Y: y, SRS: c.SRS}, true
}

func (Coordinate) Tuple(v domain.Value) domain.ValueTuple {
	c, ok := v.(domain.CoordinateValue)
	if !ok {
		return domain.NewTuple(2)
	}
	return domain.TupleOf(strconv.FormatFloat(c.X, 'f', -1, 64), strconv.FormatFloat(c.Y, 'f', -1, 64))
}
