package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	sheetSummary = "Summary"
	sheetMonths  = "By Month"
	sheetTypes   = "By Type"
	sheetTop     = "Top Companies"
)

// WriteXLSX renders the report as a spreadsheet with one sheet per view.
func WriteXLSX(stats Stats) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so Close only runs on the error paths.

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	summary := [][]any{
		{"Metric", "Value"},
		{"Total companies", stats.TotalCompanies},
		{"Total communications", stats.TotalCommunications},
		{"Average communications per company", stats.AveragePerCompany},
	}

	months := [][]any{{"Month", "Communications"}}
	for _, m := range stats.ByMonth {
		months = append(months, []any{m.Month, m.Count})
	}

	types := [][]any{{"Type", "Communications"}}
	for _, t := range stats.ByType {
		types = append(types, []any{t.Type, t.Count})
	}

	top := [][]any{{"Company", "Communications"}}
	for _, c := range stats.TopCompanies {
		top = append(top, []any{c.Name, c.Count})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{sheetSummary, summary},
		{sheetMonths, months},
		{sheetTypes, types},
		{sheetTop, top},
	}

	for i, sheet := range sheets {
		index, err := f.NewSheet(sheet.name)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		if i == 0 {
			f.DeleteSheet("Sheet1")
			f.SetActiveSheet(index)
		}
		if err := writeRows(f, sheet.name, sheet.rows, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
			}
			if r == 0 {
				if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
					return fmt.Errorf("failed to style header %s!%s: %w", sheet, cell, err)
				}
			}
		}
	}
	return nil
}
