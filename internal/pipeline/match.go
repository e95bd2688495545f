package pipeline

import (
	"fmt"

	"mastdash/internal"
)

// Resolution is everything a query needs from the MAST sheet before values are read.
type Resolution struct {
	Trim    float64
	TrimRow int
	Blocks  []internal.Block
	Columns BlockColumns
}

// Resolve walks the lookup chain for one (class, size) selection. Checks run in a fixed
// order and the first miss is returned: selection, trim mapping, blocks, trim row.
func Resolve(mast internal.Grid, trims internal.TrimMap, class, size int) (Resolution, error) {
	if class == 0 || size == 0 {
		return Resolution{}, ErrSelectionMissing
	}

	trim, ok := trims.Lookup(class, size)
	if !ok {
		return Resolution{}, fmt.Errorf("%w for class %d size %d", ErrNoTrimMapping, class, size)
	}
	res := Resolution{Trim: trim, TrimRow: -1}

	blocks, err := LocateBlocks(mast)
	if err != nil {
		return res, err
	}
	res.Blocks = blocks

	res.TrimRow = FindTrimRow(mast, trim)
	if res.TrimRow < 0 {
		return res, fmt.Errorf("%w: %s", ErrTrimRowNotFound, TrimLabel(trim))
	}

	ball, _ := FindBlock(blocks, internal.BlockBallToStem)
	seal, _ := FindBlock(blocks, internal.BlockCircular)
	oper, _ := FindBlock(blocks, internal.BlockOperatorSide)
	res.Columns = BlockColumns{
		BallToStem: MaterialColumns(mast, ball),
		Sealing:    MaterialColumns(mast, seal),
		Operator:   MaterialColumns(mast, oper),
	}
	return res, nil
}
