package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jovackbud/Research-assisant/internal/config"
	"github.com/Jovackbud/Research-assisant/internal/services"
	"github.com/Jovackbud/Research-assisant/internal/storage"
)

const (
	uploadPagePath  = "/static/index.html"
	resultsPagePath = "/static/results.html"
)

type API struct {
	cfg      config.Config
	files    *storage.FileManager
	sessions storage.SessionStore
	backend  *services.BackendClient
	pdf      *services.PDFService
	sheet    *services.SheetService
	signer   *services.Signer
	uploads  *uploadGuard
}

func NewAPI(cfg config.Config, fm *storage.FileManager, sessions storage.SessionStore, backend *services.BackendClient, pdf *services.PDFService, sheet *services.SheetService, signer *services.Signer) *API {
	return &API{
		cfg:      cfg,
		files:    fm,
		sessions: sessions,
		backend:  backend,
		pdf:      pdf,
		sheet:    sheet,
		signer:   signer,
		uploads:  newUploadGuard(),
	}
}

// newEngine builds the gin engine with page templates and all routes.
func newEngine(api *API, middleware ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware...)
	engine.SetHTMLTemplate(pageTemplates)
	registerRoutes(engine, api)
	return engine
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/api/health", api.handleHealth)

	pages := r.Group("/", Sessions(api.signer, api.cfg.SessionTTL))
	{
		pages.GET("/", api.handleRoot)
		pages.GET(uploadPagePath, api.handleUploadPage)
		pages.POST("/upload", api.handleUpload)
		pages.GET(resultsPagePath, api.handleResultsPage)

		pages.GET("/results/pdf", api.handleExportPDF)
		pages.GET("/results/xlsx", api.handleExportXLSX)
		pages.GET("/results/csv", api.handleExportCSV)
		pages.POST("/results/back", api.handleBack)

		pages.GET("/api/results", api.handleGetResults)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleRoot(c *gin.Context) {
	c.Redirect(http.StatusFound, uploadPagePath)
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
