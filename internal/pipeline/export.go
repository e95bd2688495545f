package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"mastdash/internal"
	"mastdash/internal/util"
)

var ErrNoData = errors.New("no data to export")

const (
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
	FormatPDF   = "pdf"
	FormatJSON  = "json"
	FormatTable = "table"
)

// ExportMeta carries the configuration a matrix was computed for, printed in report headers.
type ExportMeta struct {
	Class          int
	Size           int
	ValveTorque    *float64
	ActuatorTorque *float64
	GeneratedAt    time.Time
	FOSValveMin    float64
	FOSActuatorMin float64
}

// MetaFor builds export metadata from a successful result.
func MetaFor(res Result, fosValveMin, fosActuatorMin float64) ExportMeta {
	return ExportMeta{
		Class:          res.Query.Class,
		Size:           res.Query.Size,
		ValveTorque:    res.Torques.Valve,
		ActuatorTorque: res.Torques.Actuator,
		GeneratedAt:    time.Now(),
		FOSValveMin:    fosValveMin,
		FOSActuatorMin: fosActuatorMin,
	}
}

// DefaultFilename is MAST_Dashboard_<YYYYMMDD_HHMMSS>.<ext>.
func DefaultFilename(format string, t time.Time) string {
	return fmt.Sprintf("MAST_Dashboard_%s.%s", t.Format("20060102_150405"), format)
}

func Headers() []string {
	return append([]string{"Material"}, internal.Cols...)
}

// Export writes rows in the given format to outputPath, creating parent directories.
func Export(format string, rows []internal.CapabilityRow, meta ExportMeta, outputPath string) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	switch normalizeFormat(format) {
	case FormatXLSX:
		return ExportRowsToXLSX(rows, meta, outputPath)
	case FormatPDF:
		return ExportRowsToPDF(rows, meta, outputPath)
	case FormatCSV, FormatJSON, FormatTable:
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		if err := WriteRows(normalizeFormat(format), rows, f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteRows renders the stream formats (csv, json, table) to w.
func WriteRows(format string, rows []internal.CapabilityRow, w io.Writer) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	switch normalizeFormat(format) {
	case FormatCSV:
		return ExportRowsToCSV(rows, w)
	case FormatJSON:
		return ExportRowsToJSON(rows, w)
	case FormatTable:
		RenderTable(rows, w)
		return nil
	default:
		return fmt.Errorf("format %s cannot be streamed", format)
	}
}

// ExportRowsToCSV writes numbers with two decimals, booleans as True/False and absent
// values as empty fields.
func ExportRowsToCSV(rows []internal.CapabilityRow, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(rowStrings(row, util.FormatFixed2)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportRowsToJSON(rows []internal.CapabilityRow, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// RenderTable prints the matrix for a terminal; whole numbers drop their decimals.
func RenderTable(rows []internal.CapabilityRow, w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(Headers())
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, row := range rows {
		table.Append(rowStrings(row, formatSmart))
	}
	table.Render()
}

func rowStrings(row internal.CapabilityRow, num func(*float64) string) []string {
	out := make([]string, 0, len(internal.Cols)+1)
	out = append(out, row.Material)
	for _, col := range internal.Cols {
		if col == internal.ColVerification {
			out = append(out, util.FormatBool(row.Verification))
			continue
		}
		out = append(out, num(row.Value(col)))
	}
	return out
}

func formatSmart(v *float64) string {
	if v == nil {
		return ""
	}
	r := math.Round(*v)
	if math.Abs(*v-r) < 1e-9 {
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return util.FormatFixed2(v)
}

type tone int

const (
	toneNone tone = iota
	toneOK
	toneFail
)

// cellTone is the pass/fail colouring of a cell in the rendered reports.
func (m ExportMeta) cellTone(col string, row internal.CapabilityRow) tone {
	var threshold float64
	switch col {
	case internal.ColVerification:
		if row.Verification {
			return toneOK
		}
		return toneFail
	case internal.ColFOSValve:
		threshold = m.FOSValveMin
	case internal.ColFOSActuator:
		threshold = m.FOSActuatorMin
	default:
		return toneNone
	}
	v := row.Value(col)
	if v == nil {
		return toneNone
	}
	if *v < threshold {
		return toneFail
	}
	return toneOK
}

func orNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatSmart(v)
}

func intOrNA(v int) string {
	if v == 0 {
		return "N/A"
	}
	return strconv.Itoa(v)
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
