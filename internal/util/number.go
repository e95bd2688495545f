package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"mastdash/internal"
)

// floatPattern accepts the numeric shapes a published sheet export writes out; grouped
// thousands ("1,234") and currency stay text.
var floatPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// ParseCell converts a raw exported string into a typed cell. Blank strings become empty
// cells; numeric-looking strings become numbers; everything else stays text.
func ParseCell(raw string) internal.Cell {
	if raw == "" {
		return internal.Cell{}
	}
	if floatPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsInf(f, 0) {
			return internal.NumberCell(f)
		}
	}
	return internal.TextCell(raw)
}

// CellNumber coerces a cell to a finite number. Empty cells and text that does not parse
// yield nil.
func CellNumber(c internal.Cell) *float64 {
	switch c.Kind {
	case internal.CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return nil
		}
		return FloatPtr(c.Number)
	case internal.CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return FloatPtr(f)
	default:
		return nil
	}
}

// RoundHalfUp rounds .5 toward positive infinity, the way spreadsheet scripts round.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// FormatFixed2 renders a value with two decimals; nil renders blank.
func FormatFixed2(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func FormatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
