// Package table turns extracted records into display rows. The same rows back
// the HTML results table and the PDF/XLSX exports.
package table

import (
	"strings"

	"github.com/Jovackbud/Research-assisant/internal/domain"
)

const NotAvailable = "N/A"

// Table is the formatted form of a record sequence. Keys keeps the raw field
// names in header order; Rows hold normalized, unescaped cell text.
type Table struct {
	Keys    []string
	Headers []string
	Rows    [][]string
}

// Empty reports whether there is nothing to show or export. A first record
// without fields yields rows with no columns, which counts as empty.
func (t Table) Empty() bool {
	return len(t.Rows) == 0 || len(t.Keys) == 0
}

// Build formats records using the key order of the first record.
func Build(records []domain.Record) Table {
	if len(records) == 0 {
		return Table{}
	}

	keys := records[0].Keys()
	headers := make([]string, len(keys))
	for i, key := range keys {
		headers[i] = FormatHeader(key)
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(keys))
		for i, key := range keys {
			value, _ := record.Value(key)
			row[i] = NormalizeCell(value)
		}
		rows = append(rows, row)
	}

	return Table{Keys: keys, Headers: headers, Rows: rows}
}

// FormatHeader turns a snake_case field name into a display header:
// "title_of_paper" becomes "Title Of Paper".
func FormatHeader(key string) string {
	spaced := []byte(strings.ReplaceAll(key, "_", " "))
	prevWord := false
	for i, c := range spaced {
		word := isWordByte(c)
		if word && !prevWord && c >= 'a' && c <= 'z' {
			spaced[i] = c - ('a' - 'A')
		}
		prevWord = word
	}
	return string(spaced)
}

// isWordByte matches the ASCII word class [A-Za-z0-9_]. Bytes of multi-byte
// runes are never word bytes, so they act as word boundaries.
func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// NormalizeCell maps null, empty and "N/A" values to "N/A".
func NormalizeCell(value *string) string {
	if value == nil || *value == "" || *value == NotAvailable {
		return NotAvailable
	}
	return *value
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// HTML renders the table markup with every header and cell escaped.
func (t Table) HTML() string {
	var b strings.Builder
	b.WriteString(`<table id="result-table">`)

	b.WriteString("<thead><tr>")
	for _, header := range t.Headers {
		b.WriteString("<th>")
		b.WriteString(EscapeHTML(header))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead>")

	b.WriteString("<tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(EscapeHTML(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	return b.String()
}
