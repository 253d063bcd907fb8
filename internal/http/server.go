package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jovackbud/Research-assisant/internal/config"
	"github.com/Jovackbud/Research-assisant/internal/services"
	"github.com/Jovackbud/Research-assisant/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	api      *API
	sessions storage.SessionStore
}

func NewServer(cfg config.Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	fm, err := storage.NewFileManager(cfg.DataDir, cfg.MaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("init file manager: %w", err)
	}

	sessions, err := storage.OpenSessionStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	backend := services.NewBackendClient(cfg.BackendURL, cfg.BackendTimeout)
	pdfSvc := services.NewPDFService()
	sheetSvc := services.NewSheetService()
	signer := services.NewSigner(cfg.SessionSecret)

	api := NewAPI(cfg, fm, sessions, backend, pdfSvc, sheetSvc, signer)
	engine := newEngine(api,
		RequestLogger(),
		MaxBodySize(cfg.MaxRequestBytes),
		CORS(cfg.CORSOrigins),
	)

	return &Server{engine: engine, cfg: cfg, api: api, sessions: sessions}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes the
// session store.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.sessions.Close(); err != nil {
			log.Printf("close session store: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s, backend %s", srv.Addr, s.cfg.BackendURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	if s.cfg.SessionSweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.api.purgeExpired(ctx, now)
		}
	}
}
