package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// ResultsKey is the session key holding the serialized UploadResult.
	ResultsKey = "analysisResults"

	DefaultPDFFilename     = "review_results.pdf"
	APIKeyFailurePhrase    = "API key missing or invalid"
	ErrorCodeAPIKeyInvalid = "api_key_invalid"
)

var ErrInvalidResult = errors.New("upload result must be a JSON object")

// UploadResult is the extraction backend's response to POST /upload/.
type UploadResult struct {
	TotalFilesUploaded         int      `json:"total_files_uploaded"`
	FilesProcessedSuccessfully int      `json:"files_processed_successfully"`
	FilesFailedOrSkipped       int      `json:"files_failed_or_skipped"`
	FailedFilesDetails         []string `json:"failed_files_details"`
	ResultsPreview             []Record `json:"results_preview,omitempty"`
	AllProcessedData           []Record `json:"all_processed_data,omitempty"`
	CSVGenerated               bool     `json:"csv_generated"`
	GeneratedCSVFilename       string   `json:"generated_csv_filename,omitempty"`
	GeneratedPDFFilename       string   `json:"generated_pdf_filename,omitempty"`
	ErrorCode                  string   `json:"error_code,omitempty"`
}

// ParseUploadResult decodes a stored or freshly received backend payload.
func ParseUploadResult(data []byte) (UploadResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return UploadResult{}, ErrInvalidResult
	}

	var result UploadResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return UploadResult{}, fmt.Errorf("decode upload result: %w", err)
	}
	return result, nil
}

// Dataset returns the full dataset when the backend sent one, else the preview batch.
func (r UploadResult) Dataset() []Record {
	if len(r.AllProcessedData) > 0 {
		return r.AllProcessedData
	}
	return r.ResultsPreview
}

// CSVFilename is empty unless the backend both generated a CSV and named it.
func (r UploadResult) CSVFilename() string {
	if !r.CSVGenerated {
		return ""
	}
	return strings.TrimSpace(r.GeneratedCSVFilename)
}

func (r UploadResult) PDFFilename() string {
	name := strings.TrimSpace(r.GeneratedPDFFilename)
	if name == "" {
		return DefaultPDFFilename
	}
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return DefaultPDFFilename
	}
	return name
}

// APIKeyFailure reports whether every file failed because the backend's AI key
// is unusable. An explicit error_code wins; the failure-text scan only runs when
// the backend sent none.
func (r UploadResult) APIKeyFailure() bool {
	if r.FilesProcessedSuccessfully != 0 || r.FilesFailedOrSkipped <= 0 {
		return false
	}
	if code := strings.TrimSpace(r.ErrorCode); code != "" {
		return code == ErrorCodeAPIKeyInvalid
	}
	for _, detail := range r.FailedFilesDetails {
		if strings.Contains(detail, APIKeyFailurePhrase) {
			return true
		}
	}
	return false
}
