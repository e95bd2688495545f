package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mastdash/internal"
)

var upper = cases.Upper(language.Und)

// NormalizeLabel uppercases s and collapses every whitespace run to a single space.
// It is the join key between material names and sub-header cells.
func NormalizeLabel(s string) string {
	return upper.String(CollapseSpaces(s))
}

func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TextEquals compares the trimmed string forms of two cells. Empty cells never match.
func TextEquals(a, b internal.Cell) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.Trimmed() == b.Trimmed()
}

// LabelEquals is TextEquals against a literal label.
func LabelEquals(cell internal.Cell, label string) bool {
	if cell.IsEmpty() {
		return false
	}
	return cell.Trimmed() == strings.TrimSpace(label)
}
