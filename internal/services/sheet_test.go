package services

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Jovackbud/Research-assisant/internal/table"
)

func TestGenerateWorkbook(t *testing.T) {
	tbl := reviewTable(2, "<b>bold</b> & more")

	out := filepath.Join(t.TempDir(), "review_results.xlsx")
	require.NoError(t, NewSheetService().GenerateWorkbook(tbl, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Results"}, f.GetSheetList())

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Title Of Paper", "Author", "Findings"}, rows[0])
	assert.Equal(t, []string{"Paper", "N/A", "<b>bold</b> & more"}, rows[1])
}

func TestSheetClampsLongCells(t *testing.T) {
	tbl := reviewTable(1, strings.Repeat("x", excelize.TotalCellChars+10))

	out := filepath.Join(t.TempDir(), "nested", "review_results.xlsx")
	require.NoError(t, NewSheetService().GenerateWorkbook(tbl, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("Results", "C2")
	require.NoError(t, err)
	assert.Len(t, value, excelize.TotalCellChars)
}

func TestGenerateWorkbookEmptyTable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "review_results.xlsx")

	for _, tbl := range []table.Table{{}, {Rows: [][]string{{}}}} {
		assert.ErrorIs(t, NewSheetService().GenerateWorkbook(tbl, out), ErrEmptyTable)
	}
	assert.NoFileExists(t, out)
}
