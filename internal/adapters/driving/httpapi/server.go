// Package httpapi exposes the audit and ask services over HTTP.
//
// Routes:
//
//	POST /analyze  multipart: file | address, optional contract_name
//	POST /ingest   multipart: files (one or more JSON reports)
//	POST /ask      JSON: {"question": "...", "top_k": 5}
//	GET  /health
//
// Failures are returned as {"detail": "..."} with a status derived from
// the domain error category.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// Configuration errors.
var (
	ErrMissingAuditService = errors.New("httpapi: audit service is required")
	ErrMissingAskService   = errors.New("httpapi: ask service is required")
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	audit    driving.AuditService
	ask      driving.AskService
	settings domain.ServerSettings
	server   *http.Server
}

// NewServer creates a server for the given services.
func NewServer(audit driving.AuditService, ask driving.AskService, settings domain.ServerSettings) (*Server, error) {
	if audit == nil {
		return nil, ErrMissingAuditService
	}
	if ask == nil {
		return nil, ErrMissingAskService
	}
	if settings.MaxUploadBytes <= 0 {
		settings.MaxUploadBytes = domain.DefaultAppSettings().Server.MaxUploadBytes
	}
	return &Server{audit: audit, ask: ask, settings: settings}, nil
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /health", s.handleHealth)
	return CORS(s.settings.AllowedOrigins)(mux)
}

// Run listens on the configured address until ctx is cancelled.
// No write timeout is set: an analysis may run for the sum of both tool
// ceilings.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.settings.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("listening on %s", s.settings.ListenAddr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
