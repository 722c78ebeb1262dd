// Package api exposes the record gateway over HTTP: layout-scoped CRUD and
// bulk routes translating JSON section payloads into engine operations.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Router assembles the chi router for a server, wiring middleware, metrics
// and every record route.
func Router(server *Server, metrics *Metrics, registry *prometheus.Registry) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Single-record operations: any failure aborts the whole request
		r.Post("/{layout}/record", metrics.InstrumentHandler("POST", "/api/v1/{layout}/record", server.handleCreateRecord))
		r.Get("/{layout}/record/{id}", metrics.InstrumentHandler("GET", "/api/v1/{layout}/record/{id}", server.handleGetRecord))
		r.Put("/{layout}/record/{id}", metrics.InstrumentHandler("PUT", "/api/v1/{layout}/record/{id}", server.handleUpdateRecord))
		r.Delete("/{layout}/record/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/{layout}/record/{id}", server.handleDeleteRecord))

		// Bulk operations: per-record failures embed as multistatus entries
		r.Post("/{layout}/bulk", metrics.InstrumentHandler("POST", "/api/v1/{layout}/bulk", server.handleBulkCreate))
		r.Put("/{layout}/bulk", metrics.InstrumentHandler("PUT", "/api/v1/{layout}/bulk", server.handleBulkUpdate))
		r.Delete("/{layout}/bulk", metrics.InstrumentHandler("DELETE", "/api/v1/{layout}/bulk", server.handleBulkDelete))

		// Script invocation
		r.Get("/{layout}/script/{script}", metrics.InstrumentHandler("GET", "/api/v1/{layout}/script/{script}", server.handleRunScript))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured. It blocks
// until the listener fails.
func StartServer(service RecordService, config ServerConfig, log zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	server := NewServer(service, config, metrics, log)
	router := Router(server, metrics, registry)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	log.Info().Str("addr", addr).Msg("starting recordgate REST API server")
	return http.ListenAndServe(addr, router)
}
