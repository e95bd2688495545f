package pipeline

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"mastdash/internal"
	"mastdash/internal/util"
)

const (
	pdfTitle    = "MASTER TMBV - Material Capability Matrix"
	pdfSubtitle = "(MAST Values in Nm)"
	pdfFooter   = "Generated by MASTER TMBV Dashboard"

	pdfMargin        = 15.0
	pdfTableTop      = 55.0
	pdfRowHeight     = 7.0
	pdfMaterialWidth = 45.0
)

type rgb [3]int

var (
	pdfHeaderFill   = rgb{243, 244, 246}
	pdfHeaderText   = rgb{36, 41, 47}
	pdfMaterialFill = rgb{247, 247, 248}
	pdfBorder       = rgb{208, 215, 222}
	pdfOKFill       = rgb{233, 247, 239}
	pdfOKText       = rgb{30, 126, 52}
	pdfFailFill     = rgb{253, 236, 234}
	pdfFailText     = rgb{183, 28, 28}
)

// ExportRowsToPDF writes a landscape A4 report: title block with the configuration,
// then the matrix as a grid with pass/fail colouring. The header row repeats on each page.
func ExportRowsToPDF(rows []internal.CapabilityRow, meta ExportMeta, outputPath string) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pageW, pageH := pdf.GetPageSize()

	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.Text(pdfMargin, pageH-10, pdfFooter)
	})

	pdf.AddPage()
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(pdfMargin, 20, pdfTitle)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(pdfMargin, 28, pdfSubtitle)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pdfMargin, 36, fmt.Sprintf("Configuration: Size %s, Class %s", intOrNA(meta.Size), intOrNA(meta.Class)))
	pdf.Text(pdfMargin, 42, fmt.Sprintf("Valve Torque: %s Nm, Actuator Torque: %s Nm", orNA(meta.ValveTorque), orNA(meta.ActuatorTorque)))
	pdf.Text(pdfMargin, 48, "Generated: "+meta.GeneratedAt.Format("2006-01-02 15:04:05"))

	headers := Headers()
	widths := make([]float64, len(headers))
	widths[0] = pdfMaterialWidth
	rest := (pageW - 2*pdfMargin - pdfMaterialWidth) / float64(len(headers)-1)
	for i := 1; i < len(widths); i++ {
		widths[i] = rest
	}

	pdf.SetDrawColor(pdfBorder[0], pdfBorder[1], pdfBorder[2])
	pdf.SetLineWidth(0.2)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 7)
		setFill(pdf, pdfHeaderFill)
		setText(pdf, pdfHeaderText)
		for i, h := range headers {
			pdf.CellFormat(widths[i], pdfRowHeight, h, "1", 0, "CM", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetY(pdfTableTop)
	drawHeader()
	for _, row := range rows {
		if pdf.GetY()+pdfRowHeight > pageH-pdfMargin-5 {
			pdf.AddPage()
			pdf.SetY(pdfMargin)
			drawHeader()
		}

		pdf.SetFont("Helvetica", "B", 8)
		setFill(pdf, pdfMaterialFill)
		setText(pdf, pdfHeaderText)
		pdf.CellFormat(widths[0], pdfRowHeight, row.Material, "1", 0, "LM", true, 0, "")

		for j, col := range internal.Cols {
			text := util.FormatFixed2(row.Value(col))
			if col == internal.ColVerification {
				text = util.FormatBool(row.Verification)
			}

			switch meta.cellTone(col, row) {
			case toneOK:
				pdf.SetFont("Helvetica", "B", 8)
				setFill(pdf, pdfOKFill)
				setText(pdf, pdfOKText)
			case toneFail:
				pdf.SetFont("Helvetica", "B", 8)
				setFill(pdf, pdfFailFill)
				setText(pdf, pdfFailText)
			default:
				pdf.SetFont("Helvetica", "", 8)
				setFill(pdf, rgb{255, 255, 255})
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.CellFormat(widths[j+1], pdfRowHeight, text, "1", 0, "CM", true, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.OutputFileAndClose(outputPath)
}

func setFill(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetFillColor(c[0], c[1], c[2])
}

func setText(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c[0], c[1], c[2])
}
