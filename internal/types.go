package internal

import (
	"sort"
	"strconv"
	"strings"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one spreadsheet value after type coercion.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }
func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }
func (c Cell) IsText() bool { return c.Kind == CellText }
func (c Cell) IsNumber() bool { return c.Kind == CellNumber }

// String renders the cell the way a published export shows it; numbers use the shortest
// decimal form ("12", "1.5").
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

func (c Cell) Trimmed() string {
	return strings.TrimSpace(c.String())
}

type Row []Cell

type Grid []Row

func (g Grid) Row(r int) Row {
	if r < 0 || r >= len(g) {
		return nil
	}
	return g[r]
}

func (g Grid) Cell(r, c int) Cell {
	row := g.Row(r)
	if c < 0 || c >= len(row) {
		return Cell{}
	}
	return row[c]
}

// TrimMap is Class -> Size -> Trim.
type TrimMap map[int]map[int]float64

func (m TrimMap) Set(class, size int, trim float64) {
	if m[class] == nil {
		m[class] = map[int]float64{}
	}
	m[class][size] = trim
}

func (m TrimMap) Lookup(class, size int) (float64, bool) {
	sizes, ok := m[class]
	if !ok {
		return 0, false
	}
	trim, ok := sizes[size]
	return trim, ok
}

func (m TrimMap) Classes() []int {
	out := make([]int, 0, len(m))
	for cls := range m {
		out = append(out, cls)
	}
	sort.Ints(out)
	return out
}

func (m TrimMap) Sizes() []int {
	seen := map[int]struct{}{}
	for _, sizes := range m {
		for size := range sizes {
			seen[size] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for size := range seen {
		out = append(out, size)
	}
	sort.Ints(out)
	return out
}

func (m TrimMap) Len() int {
	n := 0
	for _, sizes := range m {
		n += len(sizes)
	}
	return n
}

const (
	BlockBallToStem   = "Ball to Stem"
	BlockCircular     = "Circular"
	BlockOperatorSide = "Operator Side"
)

var BlockNames = []string{BlockBallToStem, BlockCircular, BlockOperatorSide}

type Block struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type MaterialColumnMap map[string]int

var AllowedClasses = []int{150, 300, 600}

// Materials is the fixed output order; result rows always follow it.
var Materials = []string{
	"ASTM A479 SS304L / SS316L",
	"ASTM A479 SS304 / SS316",
	"ASTM A479 SS 904L/N08904",
	"Alloy 20",
	"INCOLLOY 825",
	"Hast - C",
	"Monel 400",
	"ASTM A276 XM19",
	"INCONEL 625",
	"ASTM A182 F51",
	"ASTM A479 SS316 SH",
	"ASTM A 182 Gr F53",
	"ASTM A 182 Gr F55",
	"ASTM A479 SS410",
	"ASTM A564 SS630 (17-4 ph) (1150)",
	"INCONEL 718",
}

const (
	ColBallToStem   = "Ball to Stem"
	ColSealing      = "Sealing"
	ColOperator     = "Operator"
	ColMinOfAll     = "Min of all"
	ColVerification = "Verification"
	ColFOSValve     = "FOS to Valve Torque"
	ColFOSActuator  = "FOS to Actuator Torque"
)

var Cols = []string{
	ColBallToStem,
	ColSealing,
	ColOperator,
	ColMinOfAll,
	ColVerification,
	ColFOSValve,
	ColFOSActuator,
}

type CapabilityRow struct {
	Material     string   `json:"material"`
	BallToStem   *float64 `json:"ballToStem"`
	Sealing      *float64 `json:"sealing"`
	Operator     *float64 `json:"operator"`
	MinOfAll     *float64 `json:"minOfAll"`
	Verification bool     `json:"verification"`
	FOSValve     *float64 `json:"fosValve"`
	FOSActuator  *float64 `json:"fosActuator"`
}

// Value returns the numeric value for one of the numeric COLS entries.
func (r CapabilityRow) Value(col string) *float64 {
	switch col {
	case ColBallToStem:
		return r.BallToStem
	case ColSealing:
		return r.Sealing
	case ColOperator:
		return r.Operator
	case ColMinOfAll:
		return r.MinOfAll
	case ColFOSValve:
		return r.FOSValve
	case ColFOSActuator:
		return r.FOSActuator
	default:
		return nil
	}
}

type LoadRecord struct {
	ID             int
	MastSource     string
	DashSource     string
	MastHash       string
	DashHash       string
	MastRows       int
	DashRows       int
	TrimEntries    int
	ValveTorque    *float64
	ActuatorTorque *float64
	CreatedAt      string
}

type RunRecord struct {
	ID             int
	TraceID        string
	LoadID         *int
	Class          int
	Size           int
	Trim           *float64
	TrimRow        int
	ValveTorque    *float64
	ActuatorTorque *float64
	Status         string
	Reason         string
	RowCount       int
	CreatedAt      string
}

// SourceDocument is one loaded grid plus where it came from.
type SourceDocument struct {
	Source string
	Kind   string
	Hash   string
	Grid   Grid
}
