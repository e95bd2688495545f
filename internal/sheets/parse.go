package sheets

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"mastdash/internal"
	"mastdash/internal/util"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV turns a delimited export into a typed grid. Rows whose cells are all blank are
// dropped.
func ParseCSV(content []byte) (internal.Grid, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	grid := internal.Grid{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		grid = append(grid, typedRow(record))
	}
	return grid, nil
}

// ParseXLSX reads one worksheet of a workbook. An empty sheet name selects the first sheet.
func ParseXLSX(content []byte, sheet string) (internal.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, errors.New("xlsx has no sheets")
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	grid := internal.Grid{}
	for _, row := range rows {
		if isBlankRecord(row) {
			continue
		}
		grid = append(grid, typedRow(row))
	}
	return grid, nil
}

// ParseHTML reads the first table of an HTML page, e.g. a sheet published as a web page.
// Google's published tables carry row-number and column-letter headers in <th>; for those
// only <td> cells are kept.
func ParseHTML(content []byte) (internal.Grid, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("html has no table")
	}
	dataOnly := table.HasClass("waffle")

	grid := internal.Grid{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		selector := "th,td"
		if dataOnly || tr.Find("td").Length() > 0 && tr.Find("th").Length() == 1 {
			selector = "td"
		}

		record := []string{}
		tr.Find(selector).Each(func(_ int, cell *goquery.Selection) {
			record = append(record, cell.Text())
			if span, err := strconv.Atoi(cell.AttrOr("colspan", "1")); err == nil {
				for i := 1; i < span; i++ {
					record = append(record, "")
				}
			}
		})
		if isBlankRecord(record) {
			return
		}
		grid = append(grid, typedRow(record))
	})
	return grid, nil
}

func typedRow(record []string) internal.Row {
	row := make(internal.Row, len(record))
	for i, raw := range record {
		row[i] = util.ParseCell(raw)
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
