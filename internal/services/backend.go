package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jovackbud/Research-assisant/internal/domain"
)

const (
	uploadPath      = "/upload/"
	downloadCSVPath = "/download/csv/"
	uploadFieldName = "files"
	maxErrorBody    = 64 * 1024
)

var ErrInvalidResponse = errors.New("backend returned an unreadable response")

// APIError is a non-2xx answer from the extraction backend.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s: status %d", e.Op, e.StatusCode)
}

// UserMessage is the text shown to the user: the backend's detail when it sent
// one, else a status-coded fallback.
func (e *APIError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Op == "upload" {
		return fmt.Sprintf("Upload failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("Server responded with status %d", e.StatusCode)
}

// UploadFile is a file on disk sent to the backend under its original name.
type UploadFile struct {
	Name string
	Path string
}

// CSVDownload is an open CSV response. The caller closes Body.
type CSVDownload struct {
	Filename      string
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// BackendClient talks to the extraction backend.
type BackendClient struct {
	baseURL    string
	reqTimeout time.Duration
	httpClient *http.Client
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		reqTimeout: timeout,
		httpClient: &http.Client{},
	}
}

// Upload posts the files as one multipart request and returns the decoded
// result together with the raw body.
func (s *BackendClient) Upload(ctx context.Context, files []UploadFile) (domain.UploadResult, []byte, error) {
	if len(files) == 0 {
		return domain.UploadResult{}, nil, errors.New("no files to upload")
	}

	if s.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reqTimeout)
		defer cancel()
	}

	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		writer.CloseWithError(writeUploadForm(form, files))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+uploadPath, body)
	if err != nil {
		body.Close()
		return domain.UploadResult{}, nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		body.Close()
		return domain.UploadResult{}, nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.UploadResult{}, nil, decodeAPIError("upload", resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.UploadResult{}, nil, fmt.Errorf("read upload response: %w", err)
	}

	result, err := domain.ParseUploadResult(raw)
	if err != nil {
		return domain.UploadResult{}, nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return result, raw, nil
}

func writeUploadForm(form *multipart.Writer, files []UploadFile) error {
	for _, f := range files {
		if err := copyFormFile(form, f); err != nil {
			return err
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return nil
}

func copyFormFile(form *multipart.Writer, f UploadFile) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}
	part, err := form.CreateFormFile(uploadFieldName, name)
	if err != nil {
		return fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}

// DownloadCSV fetches a generated CSV by the file name the backend returned.
func (s *BackendClient) DownloadCSV(ctx context.Context, filename string) (*CSVDownload, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, errors.New("csv filename required")
	}

	var cancel context.CancelFunc = func() {}
	if s.reqTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.reqTimeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+downloadCSVPath+url.PathEscape(filename), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("download request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, decodeAPIError("download", resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}

	return &CSVDownload{
		Filename:      filenameFromDisposition(resp.Header.Get("Content-Disposition"), filename),
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		Body:          &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// filenameFromDisposition recovers the server-suggested download name, falling
// back to the name the client already knows.
func filenameFromDisposition(disposition, fallback string) string {
	if !strings.Contains(disposition, "filename") {
		return fallback
	}

	name := ""
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		name = params["filename"]
	}
	if name == "" {
		if idx := strings.Index(disposition, "filename="); idx >= 0 {
			name = disposition[idx+len("filename="):]
			if end := strings.Index(name, ";"); end >= 0 {
				name = name[:end]
			}
			name = strings.TrimSpace(strings.ReplaceAll(name, `"`, ""))
		}
	}

	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}

func decodeAPIError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Detail = detailText(payload.Detail)
	}
	return apiErr
}

// detailText reads the detail field, which is a string for application errors
// and a list of {"msg": ...} objects for request validation errors.
func detailText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return ""
}
