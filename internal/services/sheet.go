package services

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Jovackbud/Research-assisant/internal/table"
)

const (
	sheetName     = "Results"
	maxCellLength = excelize.TotalCellChars
)

type SheetService struct{}

func NewSheetService() *SheetService {
	return &SheetService{}
}

// GenerateWorkbook writes the results table to an .xlsx file at outPath.
func (s *SheetService) GenerateWorkbook(t table.Table, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure workbook directory: %w", err)
	}

	f, err := s.build(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (s *SheetService) build(t table.Table) (*excelize.File, error) {
	if t.Empty() {
		return nil, ErrEmptyTable
	}

	f := excelize.NewFile()
	fail := func(step string, err error) (*excelize.File, error) {
		f.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fail("rename sheet", err)
	}

	headStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "495057"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E9ECEF"}, Pattern: 1},
		Border:    cellBorders(),
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fail("header style", err)
	}

	bodyStyle, err := f.NewStyle(&excelize.Style{
		Border:    cellBorders(),
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return fail("body style", err)
	}

	headers := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fail("write header", err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = clampCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fail("row coordinates", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fail(fmt.Sprintf("write row %d", i+1), err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return fail("column name", err)
	}

	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headStyle); err != nil {
		return fail("style header", err)
	}
	if len(t.Rows) > 0 {
		if err := f.SetCellStyle(sheetName, "A2", fmt.Sprintf("%s%d", lastCol, len(t.Rows)+1), bodyStyle); err != nil {
			return fail("style rows", err)
		}
	}

	for i, key := range t.Keys {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fail("column name", err)
		}
		width, ok := columnWidthHints[key]
		if !ok {
			width = defaultColumnWidth
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fail("column width", err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fail("freeze header", err)
	}

	return f, nil
}

func cellBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "DDDDDD", Style: 1},
		{Type: "top", Color: "DDDDDD", Style: 1},
		{Type: "right", Color: "DDDDDD", Style: 1},
		{Type: "bottom", Color: "DDDDDD", Style: 1},
	}
}

// clampCell keeps a value under the per-cell character limit of the format.
func clampCell(v string) string {
	if utf8.RuneCountInString(v) <= maxCellLength {
		return v
	}
	runes := []rune(v)
	return string(runes[:maxCellLength])
}
