// Package view builds the per-request page state for the results page.
package view

import (
	"errors"
	"html/template"
	"strings"

	"github.com/Jovackbud/Research-assisant/internal/domain"
	"github.com/Jovackbud/Research-assisant/internal/table"
)

const (
	NoDataMessage        = "No structured data returned for display."
	APIKeyWarningMessage = "Processing failed: the AI service API key is missing or invalid. Ask the administrator to configure a valid key, then upload the files again."
)

var (
	ErrNoData = errors.New("no data available to download")
	ErrNoCSV  = errors.New("no CSV file available for download")
)

type Summary struct {
	FilesUploaded int
	Processed     int
	Failed        int
	FailedFiles   []string
}

// FailedFilesText joins the failure details for display.
func (s Summary) FailedFilesText() string {
	return strings.Join(s.FailedFiles, ", ")
}

// ResultsPage holds everything the results page shows for one stored result.
// It is built once per page load and never mutated afterwards.
type ResultsPage struct {
	Summary       Summary
	APIKeyWarning bool

	PDFEnabled  bool
	XLSXEnabled bool
	CSVEnabled  bool

	PDFFilename  string
	XLSXFilename string
	CSVFilename  string

	table table.Table
}

func NewResultsPage(result domain.UploadResult) *ResultsPage {
	p := &ResultsPage{
		Summary: Summary{
			FilesUploaded: result.TotalFilesUploaded,
			Processed:     result.FilesProcessedSuccessfully,
			Failed:        result.FilesFailedOrSkipped,
			FailedFiles:   result.FailedFilesDetails,
		},
		PDFFilename: result.PDFFilename(),
		CSVFilename: result.CSVFilename(),
		table:       table.Build(result.Dataset()),
	}
	p.XLSXFilename = strings.TrimSuffix(p.PDFFilename, ".pdf") + ".xlsx"

	hasData := !p.table.Empty()
	p.PDFEnabled = hasData
	p.XLSXEnabled = hasData
	p.CSVEnabled = p.CSVFilename != ""

	if result.APIKeyFailure() {
		p.APIKeyWarning = true
		p.PDFEnabled = false
		p.XLSXEnabled = false
		p.CSVEnabled = false
	}

	return p
}

func (p *ResultsPage) HasData() bool {
	return !p.table.Empty()
}

func (p *ResultsPage) Table() table.Table {
	return p.table
}

// TableHTML is the escaped results table markup.
func (p *ResultsPage) TableHTML() template.HTML {
	return template.HTML(p.table.HTML())
}

func (p *ResultsPage) Placeholder() string {
	return NoDataMessage
}

func (p *ResultsPage) WarningMessage() string {
	return APIKeyWarningMessage
}

// ExportTable returns the table for local exports, or ErrNoData when the
// exports are disabled.
func (p *ResultsPage) ExportTable() (table.Table, error) {
	if !p.PDFEnabled {
		return table.Table{}, ErrNoData
	}
	return p.table, nil
}

// CSVTarget returns the backend CSV file name, or ErrNoCSV when the CSV
// download is disabled.
func (p *ResultsPage) CSVTarget() (string, error) {
	if !p.CSVEnabled {
		return "", ErrNoCSV
	}
	return p.CSVFilename, nil
}
