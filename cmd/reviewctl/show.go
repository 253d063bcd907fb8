package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Jovackbud/Research-assisant/internal/domain"
	"github.com/Jovackbud/Research-assisant/internal/table"
	"github.com/Jovackbud/Research-assisant/internal/view"
)

const maxCellWidth = 40

var showCmd = &cobra.Command{
	Use:   "show RESULT.json",
	Short: "Print a stored analysis result",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringP("format", "f", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	result, err := readResult(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "table":
		return writeTable(w, result)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		return writeYAML(w, result)
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func writeTable(w io.Writer, result domain.UploadResult) error {
	page := view.NewResultsPage(result)
	printSummary(w, page)
	fmt.Fprintln(w)

	if !page.HasData() {
		fmt.Fprintln(w, page.Placeholder())
		return nil
	}

	t := page.Table()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = clip(cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// clip flattens a cell to one line of at most maxCellWidth runes.
func clip(cell string) string {
	cell = strings.Join(strings.Fields(cell), " ")
	if utf8.RuneCountInString(cell) <= maxCellWidth {
		return cell
	}
	runes := []rune(cell)
	return string(runes[:maxCellWidth-3]) + "..."
}

// writeYAML encodes the result keeping each record's field order.
func writeYAML(w io.Writer, result domain.UploadResult) error {
	doc := mapping(
		"total_files_uploaded", intNode(result.TotalFilesUploaded),
		"files_processed_successfully", intNode(result.FilesProcessedSuccessfully),
		"files_failed_or_skipped", intNode(result.FilesFailedOrSkipped),
	)

	failed := &yaml.Node{Kind: yaml.SequenceNode}
	for _, detail := range result.FailedFilesDetails {
		failed.Content = append(failed.Content, strNode(detail))
	}
	appendPair(doc, "failed_files_details", failed)

	records := &yaml.Node{Kind: yaml.SequenceNode}
	for _, record := range result.Dataset() {
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, field := range record.Fields() {
			value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			if field.Value != nil {
				value = strNode(table.NormalizeCell(field.Value))
			}
			appendPair(node, field.Key, value)
		}
		records.Content = append(records.Content, node)
	}
	appendPair(doc, "records", records)

	appendPair(doc, "csv_generated", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(result.CSVGenerated)})
	if name := result.CSVFilename(); name != "" {
		appendPair(doc, "generated_csv_filename", strNode(name))
	}
	if result.ErrorCode != "" {
		appendPair(doc, "error_code", strNode(result.ErrorCode))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func mapping(kv ...any) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		appendPair(node, kv[i].(string), kv[i+1].(*yaml.Node))
	}
	return node
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(n int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n)}
}
