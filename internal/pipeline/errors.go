package pipeline

import (
	"errors"
	"fmt"
)

// Lookup misses. A query reports them through Result.Err and never returns rows alongside.
var (
	ErrNotLoaded        = errors.New("sheets are not loaded")
	ErrSelectionMissing = errors.New("select both a class and a size")
	ErrNoTrimMapping    = errors.New("no trim mapping")
	ErrBlocksNotFound   = errors.New("could not locate required blocks in MAST sheet")
	ErrTrimRowNotFound  = errors.New("trim row not found")
)

// SourceLoadError reports a failed fetch or parse of one of the two sources.
type SourceLoadError struct {
	Name   string // "mast" or "dash"
	Source string
	Err    error
}

func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("load %s sheet (%s): %v", e.Name, e.Source, e.Err)
}

func (e *SourceLoadError) Unwrap() error {
	return e.Err
}
