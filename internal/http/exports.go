package http

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jovackbud/Research-assisant/internal/services"
)

const (
	msgNoData         = "No data available to download."
	msgPDFFailed      = "Error generating PDF. Please try again."
	msgXLSXFailed     = "Error generating Excel file. Please try again."
	msgNoCSV          = "No specific CSV file available for download. Please ensure analysis was completed successfully."
	msgCSVFailedFmt   = "Failed to download CSV: %s"
	msgCSVUnreachable = "An error occurred while downloading the CSV file."
)

// flashBack reports an export problem on the results page.
func (a *API) flashBack(c *gin.Context, message string) {
	a.setFlash(c, message)
	c.Redirect(http.StatusSeeOther, resultsPagePath)
}

func (a *API) handleExportPDF(c *gin.Context) {
	page, ok := a.resultsOrRedirect(c)
	if !ok {
		return
	}

	tbl, err := page.ExportTable()
	if err != nil {
		a.flashBack(c, msgNoData)
		return
	}

	path := a.files.ExportPath(sessionID(c), page.PDFFilename)
	if err := a.pdf.GeneratePDF(tbl, path); err != nil {
		log.Printf("generate pdf: %v", err)
		a.flashBack(c, msgPDFFailed)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(path, page.PDFFilename)
}

func (a *API) handleExportXLSX(c *gin.Context) {
	page, ok := a.resultsOrRedirect(c)
	if !ok {
		return
	}

	tbl, err := page.ExportTable()
	if err != nil {
		a.flashBack(c, msgNoData)
		return
	}

	path := a.files.ExportPath(sessionID(c), page.XLSXFilename)
	if err := a.sheet.GenerateWorkbook(tbl, path); err != nil {
		log.Printf("generate workbook: %v", err)
		a.flashBack(c, msgXLSXFailed)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.FileAttachment(path, page.XLSXFilename)
}

func (a *API) handleExportCSV(c *gin.Context) {
	page, ok := a.resultsOrRedirect(c)
	if !ok {
		return
	}

	name, err := page.CSVTarget()
	if err != nil {
		a.flashBack(c, msgNoCSV)
		return
	}

	download, err := a.backend.DownloadCSV(c.Request.Context(), name)
	if err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) {
			log.Printf("csv download rejected: %v", apiErr)
			a.flashBack(c, fmt.Sprintf(msgCSVFailedFmt, apiErr.UserMessage()))
			return
		}
		log.Printf("csv download failed: %v", err)
		a.flashBack(c, msgCSVUnreachable)
		return
	}
	defer download.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": download.Filename})
	c.DataFromReader(http.StatusOK, download.ContentLength, download.ContentType, download.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}
