package domain

import (
	"fmt"
	"strconv"
)

// Value is a typed value written into the record model.
// The set of implementations is closed to this package.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

type BooleanValue bool

func (BooleanValue) Kind() Kind       { return KindBoolean }
func (v BooleanValue) String() string { return strconv.FormatBool(bool(v)) }
func (BooleanValue) isValue()         {}

type IntegerValue int64

func (IntegerValue) Kind() Kind       { return KindNumber }
func (v IntegerValue) String() string { return strconv.FormatInt(int64(v), 10) }
func (IntegerValue) isValue()         {}

type RealValue float64

func (RealValue) Kind() Kind       { return KindNumber }
func (v RealValue) String() string { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (RealValue) isValue()         {}

// TextValue is used by both short text and memo attributes.
type TextValue string

func (TextValue) Kind() Kind       { return KindText }
func (v TextValue) String() string { return string(v) }
func (TextValue) isValue()         {}

// CodeValue keeps the raw code even when it is missing from the code list.
type CodeValue string

func (CodeValue) Kind() Kind       { return KindCode }
func (v CodeValue) String() string { return string(v) }
func (CodeValue) isValue()         {}

type CoordinateValue struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	SRS string  `json:"srs,omitempty"`
}

func (CoordinateValue) Kind() Kind { return KindCoordinate }
func (v CoordinateValue) String() string {
	return fmt.Sprintf("SRID=%s;POINT(%s %s)", v.SRS,
		strconv.FormatFloat(v.X, 'f', -1, 64), strconv.FormatFloat(v.Y, 'f', -1, 64))
}
func (CoordinateValue) isValue() {}

// IntegerRangeValue bounds are optional; at least one is set.
type IntegerRangeValue struct {
	From *int64 `json:"from,omitempty"`
	To   *int64 `json:"to,omitempty"`
}

func (IntegerRangeValue) Kind() Kind { return KindRange }
func (v IntegerRangeValue) String() string {
	from, to := "", ""
	if v.From != nil {
		from = strconv.FormatInt(*v.From, 10)
	}
	if v.To != nil {
		to = strconv.FormatInt(*v.To, 10)
	}
	return from + "-" + to
}
func (IntegerRangeValue) isValue() {}

type RealRangeValue struct {
	From *float64 `json:"from,omitempty"`
	To   *float64 `json:"to,omitempty"`
}

func (RealRangeValue) Kind() Kind { return KindRange }
func (v RealRangeValue) String() string {
	from, to := "", ""
	if v.From != nil {
		from = strconv.FormatFloat(*v.From, 'f', -1, 64)
	}
	if v.To != nil {
		to = strconv.FormatFloat(*v.To, 'f', -1, 64)
	}
	return from + "-" + to
}
func (RealRangeValue) isValue() {}

type DateValue struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (DateValue) Kind() Kind       { return KindDate }
func (v DateValue) String() string { return fmt.Sprintf("%04d-%02d-%02d", v.Year, v.Month, v.Day) }
func (DateValue) isValue()         {}

type TimeValue struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (TimeValue) Kind() Kind       { return KindTime }
func (v TimeValue) String() string { return fmt.Sprintf("%02d:%02d", v.Hour, v.Minute) }
func (TimeValue) isValue()         {}
