package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mastdash/internal"
)

// row builds a grid row: strings become text, "" and nil stay empty, numbers become numbers.
func row(values ...any) internal.Row {
	out := make(internal.Row, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case nil:
		case string:
			if t != "" {
				out[i] = internal.TextCell(t)
			}
		case int:
			out[i] = internal.NumberCell(float64(t))
		case float64:
			out[i] = internal.NumberCell(t)
		}
	}
	return out
}

func grid(rows ...internal.Row) internal.Grid {
	return internal.Grid(rows)
}

func f(v float64) *float64 { return &v }

var approx = cmpopts.EquateApprox(0, 1e-9)

func diffRows(want, got []internal.CapabilityRow) string {
	return cmp.Diff(want, got, approx)
}

func doc(source string, g internal.Grid) internal.SourceDocument {
	return internal.SourceDocument{Source: source, Kind: "test", Hash: "h-" + source, Grid: g}
}

// fakeLoader serves documents from memory. Sources listed in block wait for ctx to end.
type fakeLoader struct {
	mu    sync.Mutex
	docs  map[string]internal.SourceDocument
	errs  map[string]error
	block map[string]bool
	calls []string
}

func (l *fakeLoader) LoadGrid(ctx context.Context, source string) (internal.SourceDocument, error) {
	l.mu.Lock()
	l.calls = append(l.calls, source)
	d, ok := l.docs[source]
	err := l.errs[source]
	blocking := l.block[source]
	l.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return internal.SourceDocument{}, ctx.Err()
	}
	if err != nil {
		return internal.SourceDocument{}, err
	}
	if !ok {
		return internal.SourceDocument{}, errors.New("unknown source " + source)
	}
	return d, nil
}

// scenarioMast is the smallest sheet with all three blocks and one trim row.
func scenarioMast() internal.Grid {
	m := internal.Materials[0]
	return grid(
		row("", "Ball to Stem", "Circular", "Operator Side"),
		row("Material", m, m, m),
		row("Trim 12", 100, 90, 95),
	)
}

func scenarioDash() internal.Grid {
	return grid(
		row(2150, 12, "Valve Torque", 500),
	)
}
