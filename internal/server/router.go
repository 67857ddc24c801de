package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kodepos-id/kodepos/internal/server/handlers"
	"github.com/kodepos-id/kodepos/internal/server/middleware"
	"github.com/kodepos-id/kodepos/internal/server/response"
)

// setupRouter creates the router with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()
	s.applyMiddleware(r)

	h := handlers.New(s.index, s.cache, s.logger, s.version)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found", r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method)
	})

	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/health", h.HandleHealth)
	if s.config.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route(s.config.PathPrefix, func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/ready", h.HandleReady)
		r.Get("/villages", h.HandleListVillages)
		r.Get("/villages/{code}", h.HandleGetVillage)
		r.Get("/postal-codes/{postal}", h.HandleGetPostalCode)
		r.Get("/stats", h.HandleStats)
		r.Get("/coverage", h.HandleCoverage)
	})
	return r
}

// applyMiddleware installs the middleware stack, outermost first.
func (s *Server) applyMiddleware(r chi.Router) {
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logger(s.logger))
	if s.config.MetricsEnabled {
		r.Use(middleware.Instrument(s.metrics))
	}
	if s.config.CORSEnabled {
		cfg := middleware.DefaultCORSConfig()
		cfg.AllowedOrigins = s.config.CORSOrigins
		r.Use(middleware.CORS(cfg))
	}
}
