package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jovackbud/Research-assisant/internal/services"
	"github.com/Jovackbud/Research-assisant/internal/view"
)

var (
	errNoData = errors.New("no data available to download")
	errNoCSV  = errors.New("no specific CSV file available for download; please ensure analysis was completed successfully")
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored analysis result",
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf RESULT.json",
	Short: "Render the results table as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := loadPage(args[0])
		if err != nil {
			return err
		}
		t, err := page.ExportTable()
		if err != nil {
			return errNoData
		}

		out := outPath(cmd, page.PDFFilename)
		if err := services.NewPDFService().GeneratePDF(t, out); err != nil {
			return fmt.Errorf("error generating PDF: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PDF written to %s\n", out)
		return nil
	},
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx RESULT.json",
	Short: "Write the results table as an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := loadPage(args[0])
		if err != nil {
			return err
		}
		t, err := page.ExportTable()
		if err != nil {
			return errNoData
		}

		out := outPath(cmd, page.XLSXFilename)
		if err := services.NewSheetService().GenerateWorkbook(t, out); err != nil {
			return fmt.Errorf("error generating workbook: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", out)
		return nil
	},
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv RESULT.json",
	Short: "Download the CSV the backend generated for the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportCSV,
}

func init() {
	for _, cmd := range []*cobra.Command{exportPDFCmd, exportXLSXCmd, exportCSVCmd} {
		cmd.Flags().StringP("out", "o", "", "output file (default: the suggested file name)")
		exportCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(exportCmd)
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	page, err := loadPage(args[0])
	if err != nil {
		return err
	}
	name, err := page.CSVTarget()
	if err != nil {
		return errNoCSV
	}

	download, err := backendClient().DownloadCSV(cmd.Context(), name)
	if err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("failed to download CSV: %s", apiErr.UserMessage())
		}
		return fmt.Errorf("an error occurred while downloading the CSV file: %w", err)
	}
	defer download.Body.Close()

	out := outPath(cmd, download.Filename)
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if _, err := io.Copy(f, download.Body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "CSV written to %s\n", out)
	return nil
}

func loadPage(path string) (*view.ResultsPage, error) {
	result, err := readResult(path)
	if err != nil {
		return nil, err
	}
	return view.NewResultsPage(result), nil
}

func outPath(cmd *cobra.Command, fallback string) string {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return out
	}
	return fallback
}
