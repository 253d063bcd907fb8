package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jovackbud/Research-assisant/internal/domain"
)

func TestFormatHeader(t *testing.T) {
	tests := map[string]string{
		"title_of_paper":                "Title Of Paper",
		"year_of_publication":           "Year Of Publication",
		"recommendations":               "Recommendations",
		"independent_variable_or_cause": "Independent Variable Or Cause",
		"ABC_def":                       "ABC Def",
		"x-ray_results":                 "X-Ray Results",
		"2nd_author":                    "2nd Author",
		"":                              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatHeader(in), "input %q", in)
	}
}

func TestFormatHeaderIdempotent(t *testing.T) {
	once := FormatHeader("title_of_paper")
	assert.Equal(t, once, FormatHeader(once))
}

func TestNormalizeCell(t *testing.T) {
	empty := ""
	na := "N/A"
	value := "Nigeria"

	assert.Equal(t, "N/A", NormalizeCell(nil))
	assert.Equal(t, "N/A", NormalizeCell(&empty))
	assert.Equal(t, "N/A", NormalizeCell(&na))
	assert.Equal(t, "Nigeria", NormalizeCell(&value))
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Tom &amp; &quot;Jerry&quot; &#039;s&lt;/b&gt;", EscapeHTML(`<b>Tom & "Jerry" 's</b>`))
}

func TestBuildOneHeaderPerKeyAndOneRowPerRecord(t *testing.T) {
	records := []domain.Record{
		domain.NewRecord(domain.Text("title_of_paper", "First"), domain.Null("author"), domain.Text("year_of_publication", "2020")),
		domain.NewRecord(domain.Text("title_of_paper", "Second"), domain.Text("author", "Grace")),
		domain.NewRecord(domain.Text("author", "Linus"), domain.Text("title_of_paper", ""), domain.Text("extra", "ignored")),
	}

	tbl := Build(records)

	assert.Equal(t, []string{"title_of_paper", "author", "year_of_publication"}, tbl.Keys)
	assert.Equal(t, []string{"Title Of Paper", "Author", "Year Of Publication"}, tbl.Headers)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{"First", "N/A", "2020"}, tbl.Rows[0])
	assert.Equal(t, []string{"Second", "Grace", "N/A"}, tbl.Rows[1])
	assert.Equal(t, []string{"N/A", "Linus", "N/A"}, tbl.Rows[2])
}

func TestBuildEmpty(t *testing.T) {
	tbl := Build(nil)
	assert.True(t, tbl.Empty())
	assert.Empty(t, tbl.Headers)

	assert.NotPanics(t, func() {
		assert.True(t, Build([]domain.Record{}).Empty())
	})
}

func TestBuildFieldlessFirstRecordIsEmpty(t *testing.T) {
	records := []domain.Record{
		domain.NewRecord(),
		domain.NewRecord(domain.Text("title_of_paper", "Second")),
	}

	tbl := Build(records)

	assert.Len(t, tbl.Rows, 2)
	assert.Empty(t, tbl.Keys)
	assert.True(t, tbl.Empty())
}

func TestHTMLEscapesCells(t *testing.T) {
	records := []domain.Record{
		domain.NewRecord(domain.Text("title_of_paper", `<script>alert("x")</script>`), domain.Text("findings", "R&D isn't cheap")),
	}

	html := Build(records).HTML()

	assert.True(t, strings.HasPrefix(html, `<table id="result-table"><thead><tr><th>Title Of Paper</th><th>Findings</th></tr></thead>`))
	assert.Contains(t, html, "<td>&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;</td>")
	assert.Contains(t, html, "<td>R&amp;D isn&#039;t cheap</td>")
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, `"x"`)
	assert.NotContains(t, html, "isn't")
}

func TestHTMLRowOrder(t *testing.T) {
	records := []domain.Record{
		domain.NewRecord(domain.Text("n", "one")),
		domain.NewRecord(domain.Text("n", "two")),
		domain.NewRecord(domain.Text("n", "three")),
	}

	html := Build(records).HTML()

	assert.Equal(t, 3, strings.Count(html, "<tr><td>"))
	one := strings.Index(html, "one")
	two := strings.Index(html, "two")
	three := strings.Index(html, "three")
	assert.True(t, one < two && two < three)
}
