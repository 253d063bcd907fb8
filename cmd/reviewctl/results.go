package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Jovackbud/Research-assisant/internal/domain"
	"github.com/Jovackbud/Research-assisant/internal/view"
)

// readResult loads a result file written by "reviewctl upload".
func readResult(path string) (domain.UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("read results: %w", err)
	}

	result, err := domain.ParseUploadResult(data)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("load results: %w", err)
	}
	return result, nil
}

func printSummary(w io.Writer, page *view.ResultsPage) {
	fmt.Fprintf(w, "Files Uploaded: %d\n", page.Summary.FilesUploaded)
	fmt.Fprintf(w, "Successfully Processed: %d\n", page.Summary.Processed)
	fmt.Fprintf(w, "Failed/Skipped: %d\n", page.Summary.Failed)

	switch {
	case page.APIKeyWarning:
		fmt.Fprintf(w, "\nWarning: %s\n", page.WarningMessage())
	case len(page.Summary.FailedFiles) > 0:
		fmt.Fprintf(w, "Failed files: %s\n", page.Summary.FailedFilesText())
	}
}
