// Package server exposes the scheduling engine over a JSON REST API: plan
// intake, diagnostics, greedy scheduling, and pool-based optimization.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/me/roadmap/internal/config"
	"github.com/me/roadmap/internal/metrics"
	"github.com/me/roadmap/internal/pool"
	"github.com/me/roadmap/internal/scheduler"
	"github.com/me/roadmap/internal/store"
)

// Server is the roadmap REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	store     store.Store
	greedy    *scheduler.Greedy
	poolCfg   pool.Config
	collector metrics.Collector
	registry  *prometheus.Registry
}

// New creates a new Server with all routes registered. The store doubles as
// the pool's worker-state persistence.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	poolCfg := pool.DefaultConfig()
	poolCfg.Workers = cfg.Workers

	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		greedy:    scheduler.New(logger),
		poolCfg:   poolCfg,
		collector: metrics.NewPrometheus(registry),
		registry:  registry,
	}

	s.routes()
	return s
}

// newPool builds a fresh coordinator for a single optimize request. The
// coordinator keeps per-run worker state, so handlers must not share one
// across concurrent requests.
func (s *Server) newPool() *pool.Coordinator {
	return pool.New(s.poolCfg, s.logger,
		pool.WithStateStore(s.store),
		pool.WithCollector(s.collector))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(withRequestID)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// API routes (JSON)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.handleListPlans)
			r.Post("/", s.handleCreatePlan)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlan)
				r.Delete("/", s.handleDeletePlan)
				r.Get("/diagnostics", s.handleDiagnostics)
				r.Get("/runs", s.handleListRuns)
				r.Post("/schedule", s.handleSchedule)
				r.Post("/optimize", s.handleOptimize)
			})
		})

		r.Get("/runs/{id}", s.handleGetRun)
	})
}
