package pipeline

import (
	"github.com/xuri/excelize/v2"

	"mastdash/internal"
	"mastdash/internal/util"
)

const (
	xlsxSheetName = "Material Capability Matrix"
	numFmtFixed2  = 2 // "0.00"

	colorText     = "24292F"
	colorBorder   = "D0D7DE"
	colorHeader   = "F3F4F6"
	colorMaterial = "F7F7F8"
	colorWhite    = "FFFFFF"
	colorOKText   = "1E7E34"
	colorOKFill   = "E9F7EF"
	colorFailText = "B71C1C"
	colorFailFill = "FDECEA"
)

var xlsxColWidths = []float64{35, 12, 12, 12, 12, 12, 15, 15}

type xlsxStyles struct {
	header   int
	material int
	number   int
	text     int
	toned    map[tone]map[bool]int // tone -> numeric -> style
}

func ExportRowsToXLSX(rows []internal.CapabilityRow, meta ExportMeta, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheetName); err != nil {
		return err
	}
	sheet := xlsxSheetName

	styles, err := newXLSXStyles(f)
	if err != nil {
		return err
	}

	for i, h := range Headers() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, styles.header)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any, style int) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
			_ = f.SetCellStyle(sheet, cell, cell, style)
		}

		set(1, row.Material, styles.material)
		for j, col := range internal.Cols {
			c := j + 2
			t := meta.cellTone(col, row)

			if col == internal.ColVerification {
				set(c, util.FormatBool(row.Verification), styles.toned[t][false])
				continue
			}

			v := row.Value(col)
			switch {
			case v == nil:
				set(c, "", styles.text)
			case t != toneNone:
				set(c, *v, styles.toned[t][true])
			default:
				set(c, *v, styles.number)
			}
		}
	}

	for i, w := range xlsxColWidths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, w)
	}
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	return f.SaveAs(outputPath)
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: colorBorder, Style: 1},
		{Type: "top", Color: colorBorder, Style: 1},
		{Type: "right", Color: colorBorder, Style: 1},
		{Type: "bottom", Color: colorBorder, Style: 1},
	}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	var s xlsxStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorText}, Fill: fill(colorHeader), Border: border, Alignment: center,
	}); err != nil {
		return s, err
	}
	if s.material, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorText}, Fill: fill(colorMaterial), Border: border,
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.number, err = f.NewStyle(&excelize.Style{
		Fill: fill(colorWhite), Border: border, Alignment: center, NumFmt: numFmtFixed2,
	}); err != nil {
		return s, err
	}
	if s.text, err = f.NewStyle(&excelize.Style{Fill: fill(colorWhite), Border: border, Alignment: center}); err != nil {
		return s, err
	}

	palette := map[tone][2]string{
		toneOK:   {colorOKText, colorOKFill},
		toneFail: {colorFailText, colorFailFill},
	}
	s.toned = map[tone]map[bool]int{toneNone: {false: s.text, true: s.number}}
	for t, colors := range palette {
		s.toned[t] = map[bool]int{}
		for _, numeric := range []bool{false, true} {
			style := &excelize.Style{
				Font: &excelize.Font{Bold: true, Color: colors[0]}, Fill: fill(colors[1]), Border: border, Alignment: center,
			}
			if numeric {
				style.NumFmt = numFmtFixed2
			}
			id, err := f.NewStyle(style)
			if err != nil {
				return s, err
			}
			s.toned[t][numeric] = id
		}
	}
	return s, nil
}
