package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jovackbud/Research-assisant/internal/domain"
	"github.com/Jovackbud/Research-assisant/internal/storage"
	"github.com/Jovackbud/Research-assisant/internal/view"
)

const (
	msgResultsMissing = "No analysis results found. Redirecting to upload page."
	msgResultsBroken  = "Error loading results. Redirecting to upload page."
)

// loadResults builds the results page for the current session.
// storage.ErrNotFound means no result was stored.
func (a *API) loadResults(c *gin.Context) (*view.ResultsPage, error) {
	raw, err := a.sessions.Get(c.Request.Context(), sessionID(c), domain.ResultsKey)
	if err != nil {
		return nil, err
	}

	result, err := domain.ParseUploadResult(raw)
	if err != nil {
		return nil, fmt.Errorf("stored results: %w", err)
	}
	return view.NewResultsPage(result), nil
}

// resultsOrRedirect loads the results page, or flashes the reason and sends
// the browser back to the upload page.
func (a *API) resultsOrRedirect(c *gin.Context) (*view.ResultsPage, bool) {
	page, err := a.loadResults(c)
	if err == nil {
		return page, true
	}

	message := msgResultsMissing
	if !errors.Is(err, storage.ErrNotFound) {
		log.Printf("load results: %v", err)
		message = msgResultsBroken
	}
	a.setFlash(c, message)
	c.Redirect(http.StatusSeeOther, uploadPagePath)
	return nil, false
}

func (a *API) handleResultsPage(c *gin.Context) {
	page, ok := a.resultsOrRedirect(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "results.tmpl", gin.H{
		"Page":   page,
		"Notice": a.popFlash(c),
	})
}

func (a *API) handleBack(c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(c)

	if err := a.sessions.Delete(ctx, id, domain.ResultsKey); err != nil {
		log.Printf("clear results: %v", err)
	}
	if err := a.files.ClearExports(id); err != nil {
		log.Printf("clear exports: %v", err)
	}

	c.Redirect(http.StatusSeeOther, uploadPagePath)
}

func (a *API) handleGetResults(c *gin.Context) {
	raw, err := a.sessions.Get(c.Request.Context(), sessionID(c), domain.ResultsKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondMessage(c, http.StatusNotFound, "no analysis results found")
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
