package http

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jovackbud/Research-assisant/internal/domain"
	"github.com/Jovackbud/Research-assisant/internal/services"
	"github.com/Jovackbud/Research-assisant/internal/storage"
)

const (
	uploadFormField = "files"

	msgSelectFiles      = "Please select at least one file."
	msgUploadInProgress = "An upload is already in progress."
	msgUploadTooLarge   = "The selected files exceed the maximum upload size."
	msgUnexpected       = "An unexpected error occurred."
)

func (a *API) handleUploadPage(c *gin.Context) {
	a.renderUploadPage(c, http.StatusOK, "")
}

func (a *API) renderUploadPage(c *gin.Context, status int, uploadError string) {
	c.HTML(status, "index.tmpl", gin.H{
		"Error":       uploadError,
		"Notice":      a.popFlash(c),
		"MaxUploadMB": a.cfg.MaxUploadBytes >> 20,
	})
}

func (a *API) handleUpload(c *gin.Context) {
	id := sessionID(c)

	headers, err := formFiles(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.renderUploadPage(c, http.StatusRequestEntityTooLarge, msgUploadTooLarge)
			return
		}
		log.Printf("read upload form: %v", err)
		a.renderUploadPage(c, http.StatusBadRequest, msgUnexpected)
		return
	}
	if len(headers) == 0 {
		a.renderUploadPage(c, http.StatusBadRequest, msgSelectFiles)
		return
	}

	if !a.uploads.acquire(id) {
		a.renderUploadPage(c, http.StatusConflict, msgUploadInProgress)
		return
	}
	defer a.uploads.release(id)

	var staged []storage.StagedFile
	defer func() { a.files.Remove(staged) }()

	for _, fh := range headers {
		file, err := stageFormFile(a.files, fh)
		if err != nil {
			if errors.Is(err, storage.ErrFileTooLarge) {
				a.renderUploadPage(c, http.StatusRequestEntityTooLarge, err.Error())
				return
			}
			log.Printf("stage upload %s: %v", fh.Filename, err)
			a.renderUploadPage(c, http.StatusInternalServerError, msgUnexpected)
			return
		}
		staged = append(staged, file)
	}
	log.Printf("Received upload: session=%s files=%d", id, len(staged))

	files := make([]services.UploadFile, len(staged))
	for i, s := range staged {
		files[i] = services.UploadFile{Name: s.Name, Path: s.Path}
	}

	ctx := c.Request.Context()
	result, raw, err := a.backend.Upload(ctx, files)
	if err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) {
			log.Printf("upload rejected: %v", apiErr)
			a.renderUploadPage(c, http.StatusBadGateway, apiErr.UserMessage())
			return
		}
		log.Printf("upload failed: %v", err)
		a.renderUploadPage(c, http.StatusBadGateway, msgUnexpected)
		return
	}
	log.Printf("Analysis complete: session=%s processed=%d failed=%d", id, result.FilesProcessedSuccessfully, result.FilesFailedOrSkipped)

	if err := a.files.ClearExports(id); err != nil {
		log.Printf("clear exports: %v", err)
	}
	if err := a.sessions.Set(ctx, id, domain.ResultsKey, raw); err != nil {
		log.Printf("store results: %v", err)
		a.renderUploadPage(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	c.Redirect(http.StatusSeeOther, resultsPagePath)
}

// formFiles returns the selected files. A form without file parts yields none.
func formFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, err
	}

	var out []*multipart.FileHeader
	for _, fh := range form.File[uploadFormField] {
		if fh.Filename != "" {
			out = append(out, fh)
		}
	}
	return out, nil
}

func stageFormFile(fm *storage.FileManager, fh *multipart.FileHeader) (storage.StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return storage.StagedFile{}, err
	}
	defer src.Close()

	return fm.StageUpload(src, fh.Filename)
}
