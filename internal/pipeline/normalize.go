package pipeline

import (
	"mastdash/internal"
	"mastdash/internal/util"
)

// FindAllInRow scans row once, left to right, and records for every label the column of
// its first matching cell. Labels that never match map to -1.
func FindAllInRow(row internal.Row, labels []string) map[string]int {
	indices := make(map[string]int, len(labels))
	for _, l := range labels {
		indices[l] = -1
	}
	for c, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		for _, l := range labels {
			if indices[l] == -1 && util.LabelEquals(cell, l) {
				indices[l] = c
			}
		}
	}
	return indices
}

// NormalizeMaterial is the key used on both sides of the material/sub-header join.
func NormalizeMaterial(name string) string {
	return util.NormalizeLabel(name)
}
