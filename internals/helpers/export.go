// file: internals/helpers/export.go
package helper

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

/* ===============================
   Tabular export (CSV / XLSX)
=================================*/

// Table is the flat row set a report renders in export mode. The same rows
// back the structured JSON response, so both modes stay in lockstep.
type Table struct {
	Sheet   string // sheet name for workbooks
	Headers []string
	Rows    [][]string
}

// ExportFilename derives "<report>_<part1>_<part2>" from filter values; the
// sender appends the extension for the chosen encoding.
func ExportFilename(report string, parts ...string) string {
	segs := []string{report}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "_")
}

// WriteCSVTo encodes the table onto any writer. Split from the HTTP side so
// equivalence tests can run against a plain buffer.
func WriteCSVTo(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SendCSV streams the table as a CSV attachment.
func SendCSV(c *fiber.Ctx, filename string, t Table) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return WriteCSVTo(c.Response().BodyWriter(), t)
}

// BuildXLSX renders the table as a single-sheet workbook.
func BuildXLSX(t Table) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := t.Sheet
	if sheet == "" {
		sheet = "Report"
	}
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	writeRow := func(rowNum int, cells []string) error {
		for col, v := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, t.Headers); err != nil {
		return nil, err
	}
	for i, row := range t.Rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SendXLSX streams the table as a spreadsheet attachment.
func SendXLSX(c *fiber.Ctx, filename string, t Table) error {
	f, err := BuildXLSX(t)
	if err != nil {
		return JsonError(c, fiber.StatusInternalServerError, "export failed: "+err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return f.Write(c.Response().BodyWriter())
}

// SendTable picks the export encoding from the ?export= query value.
// Supported: csv (default), xlsx.
func SendTable(c *fiber.Ctx, format, baseName string, t Table) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "xlsx":
		return SendXLSX(c, baseName+".xlsx", t)
	case "", "csv":
		return SendCSV(c, baseName+".csv", t)
	default:
		return JsonError(c, fiber.StatusBadRequest, "unsupported export format: "+format)
	}
}
