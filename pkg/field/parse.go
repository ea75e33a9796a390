package field

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/fieldform/pkg/domain"
)

// trimmed returns the i-th component without surrounding blanks, treating blank as missing.
func trimmed(t domain.ValueTuple, i int) (string, bool) {
	s, ok := t.Component(i)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// parseReal is locale invariant. A lone comma is accepted as decimal separator.
func parseReal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseInteger accepts whole reals such as "12.0".
func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, ok := parseReal(s)
	if !ok || f != math.Trunc(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, false
	}
	return int64(f), true
}

func parseNumber(typ domain.NumberType, s string) bool {
	if typ == domain.NumberInteger {
		_, ok := parseInteger(s)
		return ok
	}
	_, ok := parseReal(s)
	return ok
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n":
		return false, true
	}
	return false, false
}

var dateLayouts = []string{"2006-01-02", "20060102", "02/01/2006"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

var timeLayouts = []string{"15:04", "1504", "15:04:05"}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
