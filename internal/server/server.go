// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the catalog over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/skill-catalog/internal/catalog"
	"github.com/pdiddy/skill-catalog/internal/csvimport"
	"github.com/pdiddy/skill-catalog/internal/httputil"
	"github.com/pdiddy/skill-catalog/pkg/types"
)

const (
	defaultAddr            = ":8080"
	defaultMaxUploadBytes  = 1 << 20
	defaultReadTimeout     = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Catalog is the storage the handlers need. *catalog.Store implements it.
type Catalog interface {
	Import(ctx context.Context, ci *types.CharacterImport) (catalog.ImportSummary, error)
	Characters(ctx context.Context) ([]types.Character, error)
	Character(ctx context.Context, id int64) (types.Character, error)
	Skills(ctx context.Context, id int64) (types.SkillGroups, error)
	Buffs(ctx context.Context, id int64, eidolonLevel int) ([]types.BuffView, error)
	Delete(ctx context.Context, id int64) error
	UpdateStats(ctx context.Context, rows []types.StatsRow) (catalog.StatsSummary, error)
}

// Server serves the catalog API.
type Server struct {
	catalog  Catalog
	importer *csvimport.Importer
	cfg      types.ServerConfig
	logger   *zap.Logger
}

// New returns a Server over cat. Zero config fields take defaults.
func New(cat Catalog, cfg types.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Server{
		catalog:  cat,
		importer: csvimport.New(logger),
		cfg:      cfg,
		logger:   logger,
	}
}

// Handler returns the routed API wrapped in request id, logging and panic
// recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return httputil.Chain(mux,
		httputil.RequestID(),
		httputil.Logging(s.logger),
		httputil.Recover(s.logger),
	)
}

// RegisterRoutes registers the API routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/characters", s.handleListCharacters)
	mux.HandleFunc("GET /api/characters/{id}", s.handleGetCharacter)
	mux.HandleFunc("DELETE /api/characters/{id}", s.handleDeleteCharacter)
	mux.HandleFunc("GET /api/characters/{id}/skills", s.handleSkills)
	mux.HandleFunc("GET /api/characters/{id}/buffs", s.handleBuffs)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/update-stats", s.handleUpdateStats)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving catalog api", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		s.logger.Info("catalog api stopped")
		return nil
	})
	return g.Wait()
}
