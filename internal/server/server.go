// Package server exposes the scraper over HTTP: a scrape trigger, a cached
// profile read with scrape-on-miss, and a health probe.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"profilegram/pkg/config"
	"profilegram/pkg/logger"
	"profilegram/pkg/models"
	"profilegram/pkg/storage"
)

// ScrapeService is the slice of the orchestrator the server needs.
type ScrapeService interface {
	Run(ctx context.Context, username string) (*models.ProfileSnapshot, error)
}

// Server is the HTTP front of the service.
type Server struct {
	router  chi.Router
	scraper ScrapeService
	store   storage.Store
	logger  logger.Logger
	httpSrv *http.Server
	cfg     *config.ServerConfig
}

// New creates a server. store may be nil, in which case every profile read
// triggers a fresh scrape.
func New(cfg *config.ServerConfig, scraper ScrapeService, store storage.Store, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Server{
		scraper: scraper,
		store:   store,
		logger:  log,
		cfg:     cfg,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scrape", s.handleScrape)
		r.Get("/profiles/{username}", s.handleGetProfile)
	})

	s.router = r
	s.httpSrv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the routing tree. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.WithField("addr", s.httpSrv.Addr).Info("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}
