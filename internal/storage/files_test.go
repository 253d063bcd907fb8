package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageUpload(t *testing.T) {
	fm, err := NewFileManager(t.TempDir(), 1024)
	require.NoError(t, err)

	staged, err := fm.StageUpload(strings.NewReader("%PDF-1.4 body"), `C:\papers\Paper One.PDF`)
	require.NoError(t, err)

	assert.Equal(t, "Paper One.PDF", staged.Name)
	assert.Equal(t, ".pdf", filepath.Ext(staged.Path))
	assert.Equal(t, int64(len("%PDF-1.4 body")), staged.Size)

	data, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	fm.Remove([]StagedFile{staged})
	_, err = os.Stat(staged.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestStageUploadTooLarge(t *testing.T) {
	fm, err := NewFileManager(t.TempDir(), 8)
	require.NoError(t, err)

	_, err = fm.StageUpload(strings.NewReader("0123456789"), "big.docx")
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.ErrorContains(t, err, "big.docx")

	entries, err := os.ReadDir(fm.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportPaths(t *testing.T) {
	base := t.TempDir()
	fm, err := NewFileManager(base, 0)
	require.NoError(t, err)

	path := fm.ExportPath("session-1", "../../review_results.pdf")
	assert.Equal(t, filepath.Join(base, "exports", "session-1", "review_results.pdf"), path)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, fm.ClearExports("session-1"))
	_, err = os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err))
}
