// Package server provides the read-only HTTP lookup API over a published
// postal-code dataset.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodepos-id/kodepos/internal/metrics"
	"github.com/kodepos-id/kodepos/internal/server/cache"
	"github.com/kodepos-id/kodepos/internal/server/index"
	"github.com/kodepos-id/kodepos/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	index   *index.Index
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  *zerolog.Logger
	config  Config
	version string
}

// New creates a server over idx. m may be nil when metrics are disabled.
func New(idx *index.Index, cfg Config, logger *zerolog.Logger, m *metrics.Metrics, version string) *Server {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/api/v1"
	}
	if m == nil {
		cfg.MetricsEnabled = false
	}
	return &Server{
		index:   idx,
		cache:   cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		metrics: m,
		logger:  logger,
		config:  cfg,
		version: version,
	}
}

// Handler returns the router with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// ListenAndServe serves until ctx is done, then drains open requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", srv.Addr).
			Int("villages", s.index.Len()).
			Msg("Lookup server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down lookup server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Cache returns the server's response cache.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}
