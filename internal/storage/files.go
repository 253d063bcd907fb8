package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrFileTooLarge = errors.New("file exceeds maximum size")

// FileManager owns the on-disk scratch space: uploads staged before they are
// forwarded to the backend, and per-session export files.
type FileManager struct {
	baseDir        string
	uploadDir      string
	exportDir      string
	maxUploadBytes int64
}

// StagedFile is an uploaded file written to the staging directory.
type StagedFile struct {
	Name string
	Path string
	Size int64
}

func NewFileManager(baseDir string, maxUploadBytes int64) (*FileManager, error) {
	fm := &FileManager{
		baseDir:        baseDir,
		uploadDir:      filepath.Join(baseDir, "uploads"),
		exportDir:      filepath.Join(baseDir, "exports"),
		maxUploadBytes: maxUploadBytes,
	}

	dirs := []string{fm.baseDir, fm.uploadDir, fm.exportDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	return fm, nil
}

// StageUpload copies an uploaded file into the staging directory, enforcing
// the per-file size limit. The original name is kept for the backend.
func (fm *FileManager) StageUpload(r io.Reader, filename string) (StagedFile, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload"
	}

	path := filepath.Join(fm.uploadDir, uuid.NewString()+normalizeExtension(name))
	size, err := fm.writeWithLimit(path, r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return StagedFile{}, fmt.Errorf("%s: %w", name, err)
		}
		return StagedFile{}, err
	}

	return StagedFile{Name: name, Path: path, Size: size}, nil
}

// Remove deletes staged files, ignoring ones already gone.
func (fm *FileManager) Remove(files []StagedFile) {
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("warning: could not remove staged upload %s: %v", f.Path, err)
		}
	}
}

// ExportPath is where an export file for the session is written.
func (fm *FileManager) ExportPath(sessionID, filename string) string {
	return filepath.Join(fm.exportDir, filepath.Base(sessionID), filepath.Base(filename))
}

// ClearExports removes every export file written for the session.
func (fm *FileManager) ClearExports(sessionID string) error {
	dir := filepath.Join(fm.exportDir, filepath.Base(sessionID))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear exports: %w", err)
	}
	return nil
}

func (fm *FileManager) writeWithLimit(path string, r io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create staged file: %w", err)
	}

	cleanup := func(err error) (int64, error) {
		out.Close()
		os.Remove(path)
		return 0, err
	}

	src := r
	if fm.maxUploadBytes > 0 {
		src = io.LimitReader(r, fm.maxUploadBytes+1)
	}

	total, err := io.Copy(out, src)
	if err != nil {
		return cleanup(fmt.Errorf("write staged file: %w", err))
	}
	if fm.maxUploadBytes > 0 && total > fm.maxUploadBytes {
		return cleanup(ErrFileTooLarge)
	}

	if err := out.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("close staged file: %w", err)
	}

	return total, nil
}

func normalizeExtension(filename string) string {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
	if ext == "" {
		return ext
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
