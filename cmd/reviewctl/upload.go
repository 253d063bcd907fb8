package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Jovackbud/Research-assisant/internal/services"
	"github.com/Jovackbud/Research-assisant/internal/view"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload papers to the backend for review",
	Long: `Upload sends every FILE in one request to the review backend, writes the
returned analysis to --out and prints the processing summary.`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringP("out", "o", "analysis_results.json", "where to write the analysis result")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("please select at least one file")
	}
	out, _ := cmd.Flags().GetString("out")

	files := make([]services.UploadFile, 0, len(args))
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		files = append(files, services.UploadFile{Name: filepath.Base(path), Path: path})
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Uploading %d file(s) to %s...\n", len(files), backendURL())

	result, raw, err := backendClient().Upload(cmd.Context(), files)
	if err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) {
			return errors.New(apiErr.UserMessage())
		}
		return err
	}

	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	w := cmd.OutOrStdout()
	printSummary(w, view.NewResultsPage(result))
	fmt.Fprintf(w, "\nResults written to %s\n", out)
	return nil
}
