package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jovackbud/Research-assisant/internal/domain"
)

func sampleRecords() []domain.Record {
	return []domain.Record{
		domain.NewRecord(domain.Text("title_of_paper", "Deep Learning"), domain.Text("author", "LeCun")),
	}
}

func TestResultsPageSummary(t *testing.T) {
	page := NewResultsPage(domain.UploadResult{
		TotalFilesUploaded:         3,
		FilesProcessedSuccessfully: 1,
		FilesFailedOrSkipped:       2,
		FailedFilesDetails:         []string{"a.txt (Unsupported type)", "b.pdf (No text extracted)"},
		ResultsPreview:             sampleRecords(),
	})

	assert.Equal(t, 3, page.Summary.FilesUploaded)
	assert.Equal(t, 1, page.Summary.Processed)
	assert.Equal(t, 2, page.Summary.Failed)
	assert.Equal(t, "a.txt (Unsupported type), b.pdf (No text extracted)", page.Summary.FailedFilesText())
	assert.False(t, page.APIKeyWarning)
	assert.True(t, page.HasData())
	assert.Contains(t, string(page.TableHTML()), "<th>Title Of Paper</th>")
}

func TestCSVButtonAvailability(t *testing.T) {
	enabled := NewResultsPage(domain.UploadResult{CSVGenerated: true, GeneratedCSVFilename: "x.csv"})
	assert.True(t, enabled.CSVEnabled)
	name, err := enabled.CSVTarget()
	require.NoError(t, err)
	assert.Equal(t, "x.csv", name)

	notGenerated := NewResultsPage(domain.UploadResult{CSVGenerated: false})
	assert.False(t, notGenerated.CSVEnabled)
	_, err = notGenerated.CSVTarget()
	assert.ErrorIs(t, err, ErrNoCSV)

	missingName := NewResultsPage(domain.UploadResult{CSVGenerated: true})
	assert.False(t, missingName.CSVEnabled)
}

func TestEmptyDatasetDisablesLocalExports(t *testing.T) {
	var page *ResultsPage
	require.NotPanics(t, func() {
		page = NewResultsPage(domain.UploadResult{ResultsPreview: []domain.Record{}})
	})

	assert.False(t, page.HasData())
	assert.False(t, page.PDFEnabled)
	assert.False(t, page.XLSXEnabled)
	assert.Equal(t, NoDataMessage, page.Placeholder())

	_, err := page.ExportTable()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFieldlessRecordsDisableLocalExports(t *testing.T) {
	page := NewResultsPage(domain.UploadResult{
		ResultsPreview: []domain.Record{domain.NewRecord(), domain.NewRecord(domain.Text("author", "Grace"))},
	})

	assert.False(t, page.HasData())
	assert.False(t, page.PDFEnabled)
	assert.False(t, page.XLSXEnabled)

	_, err := page.ExportTable()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAPIKeyWarningForcesExportsOff(t *testing.T) {
	page := NewResultsPage(domain.UploadResult{
		TotalFilesUploaded:   1,
		FilesFailedOrSkipped: 1,
		FailedFilesDetails:   []string{"paper.pdf (AI review failed: API key missing or invalid)"},
		CSVGenerated:         true,
		GeneratedCSVFilename: "stale.csv",
		ResultsPreview:       sampleRecords(),
	})

	assert.True(t, page.APIKeyWarning)
	assert.False(t, page.PDFEnabled)
	assert.False(t, page.XLSXEnabled)
	assert.False(t, page.CSVEnabled)
	assert.Equal(t, APIKeyWarningMessage, page.WarningMessage())

	_, err := page.ExportTable()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExportFilenames(t *testing.T) {
	page := NewResultsPage(domain.UploadResult{GeneratedPDFFilename: "batch_7.pdf", ResultsPreview: sampleRecords()})
	assert.Equal(t, "batch_7.pdf", page.PDFFilename)
	assert.Equal(t, "batch_7.xlsx", page.XLSXFilename)

	page = NewResultsPage(domain.UploadResult{ResultsPreview: sampleRecords()})
	assert.Equal(t, "review_results.pdf", page.PDFFilename)
	assert.Equal(t, "review_results.xlsx", page.XLSXFilename)

	tbl, err := page.ExportTable()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Deep Learning", "LeCun"}}, tbl.Rows)
}
