package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/Jovackbud/Research-assisant/internal/table"
)

const (
	pdfTitle = "Research Paper Review Results"

	pageMarginSide   = 10.0
	pageMarginTop    = 20.0
	pageMarginBottom = 20.0
	titleBaseline    = 15.0
	tableStartY      = 25.0

	titleFontSize  = 16.0
	headFontSize   = 8.0
	bodyFontSize   = 7.0
	footerFontSize = 10.0

	cellPadding   = 1.5
	headLineWidth = 0.3
	bodyLineWidth = 0.1

	defaultColumnWidth = 22.0
)

var (
	headLineHeight = lineHeight(headFontSize)
	bodyLineHeight = lineHeight(bodyFontSize)
)

// columnWidthHints are relative widths for the known review fields. They are
// scaled so the table always spans the printable width.
var columnWidthHints = map[string]float64{
	"title_of_paper":                32,
	"author":                        24,
	"year_of_publication":           18,
	"country_of_publication":        18,
	"research_objective":            30,
	"independent_variable_or_cause": 22,
	"dependent_variable_or_effect":  22,
	"estimation_techniques":         22,
	"theory":                        20,
	"methods":                       22,
	"findings":                      32,
	"recommendations":               28,
	"research_gap":                  26,
	"references":                    30,
	"remarks":                       20,
}

var ErrEmptyTable = errors.New("no rows to export")

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// GeneratePDF writes the results table to outPath.
func (s *PDFService) GeneratePDF(t table.Table, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure pdf directory: %w", err)
	}

	pdf, err := s.build(t)
	if err != nil {
		return err
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}

// build lays the table out once to count pages, and again with page numbers
// when it spans more than one page.
func (s *PDFService) build(t table.Table) (*gofpdf.Fpdf, error) {
	if t.Empty() {
		return nil, ErrEmptyTable
	}

	pdf := layoutTable(t, false)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}

	if pdf.PageCount() > 1 {
		pdf = layoutTable(t, true)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("layout pdf: %w", err)
		}
	}

	return pdf, nil
}

func layoutTable(t table.Table, pageNumbers bool) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(pdfTitle, true)
	pdf.SetCreator("Research Paper Review", true)
	pdf.SetMargins(pageMarginSide, pageMarginTop, pageMarginSide)
	pdf.SetAutoPageBreak(false, pageMarginBottom)
	pdf.SetCellMargin(cellPadding)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if pageNumbers {
		pdf.SetFooterFunc(func() {
			pageW, pageH := pdf.GetPageSize()
			label := fmt.Sprintf("Page %d", pdf.PageNo())
			pdf.SetFont("Helvetica", "", footerFontSize)
			pdf.SetTextColor(0, 0, 0)
			pdf.Text((pageW-pdf.GetStringWidth(label))/2, pageH-10, label)
		})
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", titleFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(pageMarginSide, titleBaseline, tr(pdfTitle))

	pageW, pageH := pdf.GetPageSize()
	l := &tableLayout{
		pdf:     pdf,
		tr:      tr,
		headers: t.Headers,
		widths:  columnWidths(t.Keys, pageW-2*pageMarginSide),
		left:    pageMarginSide,
		bottom:  pageH - pageMarginBottom,
	}

	pdf.SetY(tableStartY)
	l.drawHeader()
	for i, row := range t.Rows {
		l.drawRow(i, row)
	}

	return pdf
}

type tableLayout struct {
	pdf          *gofpdf.Fpdf
	tr           func(string) string
	headers      []string
	widths       []float64
	left         float64
	bottom       float64
	headerHeight float64
}

func (l *tableLayout) drawHeader() {
	pdf := l.pdf
	pdf.SetFont("Helvetica", "B", headFontSize)
	lines := l.split(l.headers)
	n := maxLines(lines)
	if n == 0 {
		return
	}

	pdf.SetFillColor(233, 236, 239)
	pdf.SetTextColor(73, 80, 87)
	pdf.SetDrawColor(221, 221, 221)
	pdf.SetLineWidth(headLineWidth)
	l.drawCells(lines, 0, n, headLineHeight, true)
	l.headerHeight = float64(n)*headLineHeight + 2*cellPadding
}

// drawRow draws one record. A row that does not fit moves to the next page;
// a row taller than a whole page is split across pages.
func (l *tableLayout) drawRow(index int, cells []string) {
	pdf := l.pdf
	pdf.SetFont("Helvetica", "", bodyFontSize)
	lines := l.split(cells)
	total := maxLines(lines)

	from := 0
	freshPage := false
	for from < total {
		room := int(math.Floor((l.bottom - pdf.GetY() - 2*cellPadding) / bodyLineHeight))
		remaining := total - from
		if room < remaining && !freshPage && (room < 1 || (from == 0 && remaining <= l.pageCapacity())) {
			l.newPage()
			freshPage = true
			continue
		}
		if room < 1 {
			room = 1
		}
		n := remaining
		if room < n {
			n = room
		}

		pdf.SetFont("Helvetica", "", bodyFontSize)
		pdf.SetFillColor(245, 245, 245)
		pdf.SetTextColor(33, 37, 41)
		pdf.SetDrawColor(221, 221, 221)
		pdf.SetLineWidth(bodyLineWidth)
		l.drawCells(lines, from, n, bodyLineHeight, index%2 == 1)

		from += n
		freshPage = false
	}
}

func (l *tableLayout) newPage() {
	l.pdf.AddPage()
	l.pdf.SetY(pageMarginTop)
	l.drawHeader()
}

// pageCapacity is the number of body lines that fit under the header on an
// empty page.
func (l *tableLayout) pageCapacity() int {
	return int(math.Floor((l.bottom - pageMarginTop - l.headerHeight - 2*cellPadding) / bodyLineHeight))
}

// drawCells draws lines [from, from+count) of every cell as one band at the
// current Y position and moves Y below it.
func (l *tableLayout) drawCells(lines [][]string, from, count int, lineH float64, fill bool) {
	pdf := l.pdf
	y := pdf.GetY()
	h := float64(count)*lineH + 2*cellPadding

	style := "D"
	if fill {
		style = "FD"
	}

	x := l.left
	for i, w := range l.widths {
		pdf.Rect(x, y, w, h, style)

		cell := lines[i]
		end := from + count
		if end > len(cell) {
			end = len(cell)
		}
		shown := 0
		if end > from {
			shown = end - from
		}
		offset := (h - 2*cellPadding - float64(shown)*lineH) / 2

		for j := from; j < end; j++ {
			pdf.SetXY(x, y+cellPadding+offset+float64(j-from)*lineH)
			pdf.CellFormat(w, lineH, cell[j], "", 0, "L", false, 0, "")
		}
		x += w
	}

	pdf.SetY(y + h)
}

// split wraps every cell to its column width with the current font.
func (l *tableLayout) split(cells []string) [][]string {
	out := make([][]string, len(l.widths))
	for i, w := range l.widths {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		text = l.tr(strings.ReplaceAll(text, "\r\n", "\n"))

		var lines []string
		for _, line := range l.pdf.SplitLines([]byte(text), w) {
			lines = append(lines, string(line))
		}
		if len(lines) == 0 {
			lines = []string{""}
		}
		out[i] = lines
	}
	return out
}

func maxLines(cells [][]string) int {
	n := 0
	for _, c := range cells {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

func columnWidths(keys []string, available float64) []float64 {
	if len(keys) == 0 {
		return nil
	}

	widths := make([]float64, len(keys))
	total := 0.0
	for i, key := range keys {
		w, ok := columnWidthHints[key]
		if !ok {
			w = defaultColumnWidth
		}
		widths[i] = w
		total += w
	}

	scale := available / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

// lineHeight converts a font size in points to a line height in millimetres.
func lineHeight(fontSize float64) float64 {
	return fontSize * 25.4 / 72 * 1.2
}
