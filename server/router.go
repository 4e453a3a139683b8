// Package server exposes curve fitting sessions over HTTP.
//
// Each session is a curve.Model kept in memory by a Manager and persisted as a
// binary snapshot after every mutation, so sessions survive restarts and can be
// served by any replica sharing the store.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the HTTP settings of NewRouter.
type RouterConfig struct {
	AllowedOrigins []string
	DefaultSamples int
}

func NewRouter(mgr *Manager, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:         300,
	}))

	sessions := NewSessionsHandler(mgr, cfg.DefaultSamples)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", sessions.Create)
		r.Get("/sessions", sessions.List)
		r.Post("/sessions/import", sessions.Import)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Delete)

			r.Post("/points", sessions.AddPoint)
			r.Patch("/points/{pointID}", sessions.UpdatePoint)
			r.Delete("/points/{pointID}", sessions.DeletePoint)

			r.Put("/order", sessions.SetOrder)
			r.Put("/mode", sessions.SetMode)
			r.Put("/coefficients", sessions.SetCoefficients)
			r.Post("/reset", sessions.Reset)

			r.Get("/curve", sessions.Curve)
			r.Get("/compare", sessions.Compare)
			r.Get("/snapshot", sessions.Snapshot)
		})
	})

	return r
}

func NewMetricsRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
