package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"mastdash/internal"
	"mastdash/internal/util"
)

const (
	LabelValveTorque    = "Valve Torque"
	LabelActuatorTorque = "Actuator Torque"

	// trimLabelColumns bounds the leading band where "Trim N" row labels live.
	trimLabelColumns = 8
)

// BuildTrimMap scans the Dashboard grid for horizontally adjacent (code, trim) number
// pairs. A code packs size*1000 + class; pairs whose class is not an allowed class, or
// whose size is not positive, are ignored. Later pairs overwrite earlier ones.
func BuildTrimMap(grid internal.Grid) internal.TrimMap {
	trims := internal.TrimMap{}
	for _, row := range grid {
		for c := 0; c < len(row)-1; c++ {
			cell, next := row[c], row[c+1]
			if !cell.IsNumber() || !next.IsNumber() {
				continue
			}
			cls, size, ok := decodeCode(cell.Number)
			if !ok {
				continue
			}
			trims.Set(cls, size, next.Number)
		}
	}
	return trims
}

func decodeCode(code float64) (cls, size int, ok bool) {
	c := util.RoundHalfUp(math.Mod(code, 1000))
	s := util.RoundHalfUp((code - c) / 1000)
	if s <= 0 || !isAllowedClass(c) {
		return 0, 0, false
	}
	return int(c), int(s), true
}

func isAllowedClass(c float64) bool {
	for _, allowed := range internal.AllowedClasses {
		if c == float64(allowed) {
			return true
		}
	}
	return false
}

// ReadTorque finds the first cell equal to label (row-major) and returns the first number
// to its right in the same row. Only that first label occurrence is considered: when no
// number follows it the result is nil even if the label appears again further down.
func ReadTorque(grid internal.Grid, label string) *float64 {
	for _, row := range grid {
		for c, cell := range row {
			if !util.LabelEquals(cell, label) {
				continue
			}
			for cc := c + 1; cc < len(row); cc++ {
				if row[cc].IsNumber() {
					return util.FloatPtr(row[cc].Number)
				}
			}
			return nil
		}
	}
	return nil
}

// LocateBlocks derives the column range of each capability section from the MAST header
// row. Blocks come back ordered by start column; each ends where the next begins, the last
// at the header row's final column.
func LocateBlocks(grid internal.Grid) ([]internal.Block, error) {
	row0 := grid.Row(0)
	found := FindAllInRow(row0, internal.BlockNames)

	blocks := make([]internal.Block, 0, len(found))
	for _, name := range internal.BlockNames {
		if idx := found[name]; idx >= 0 {
			blocks = append(blocks, internal.Block{Name: name, Start: idx})
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start < blocks[j].Start })

	for i := range blocks {
		if i < len(blocks)-1 {
			blocks[i].End = blocks[i+1].Start - 1
		} else {
			blocks[i].End = len(row0) - 1
		}
	}

	if len(blocks) < len(internal.BlockNames) {
		return blocks, fmt.Errorf("%w: found %d of %d", ErrBlocksNotFound, len(blocks), len(internal.BlockNames))
	}
	return blocks, nil
}

func FindBlock(blocks []internal.Block, name string) (internal.Block, bool) {
	for _, b := range blocks {
		if b.Name == name {
			return b, true
		}
	}
	return internal.Block{}, false
}

// MaterialColumns maps normalized material labels from the MAST sub-header row to their
// columns inside one block. A repeated label keeps its rightmost column.
func MaterialColumns(grid internal.Grid, block internal.Block) internal.MaterialColumnMap {
	row1 := grid.Row(1)
	cols := internal.MaterialColumnMap{}
	for c := block.Start; c <= block.End; c++ {
		cell := grid.Cell(1, c)
		if c >= len(row1) || !cell.IsText() || cell.Text == "" {
			continue
		}
		cols[NormalizeMaterial(cell.Text)] = c
	}
	return cols
}

// TrimLabel is the row label a trim number is filed under in the MAST sheet.
func TrimLabel(trim float64) string {
	return "Trim " + strconv.FormatInt(int64(util.RoundHalfUp(trim)), 10)
}

// FindTrimRow returns the first row whose leading columns hold the trim's label, or -1.
func FindTrimRow(grid internal.Grid, trim float64) int {
	needle := TrimLabel(trim)
	for r, row := range grid {
		limit := len(row)
		if limit > trimLabelColumns {
			limit = trimLabelColumns
		}
		for c := 0; c < limit; c++ {
			if row[c].IsText() && row[c].Trimmed() == needle {
				return r
			}
		}
	}
	return -1
}
