// Package server exposes the aggregation services over HTTP: JSON endpoints
// for statements, company detail, prices and benchmarks, plus a websocket
// stream of staged dashboard snapshots.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/richslow/vnmarket/internal/config"
)

// Server wraps the HTTP listener and its routes.
type Server struct {
	cfg  config.ServerConfig
	http *http.Server
}

// New builds a Server around the handler set.
func New(cfg config.ServerConfig, h *Handlers) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Route("/statements/{ticker}", func(r chi.Router) {
			r.Get("/", h.StatementSet)
			r.Get("/{kind}", h.Series)
		})
		r.Route("/company/{ticker}", func(r chi.Router) {
			r.Get("/", h.Overview)
			r.Get("/profile", h.Profile)
			r.Get("/shareholders", h.Shareholders)
			r.Get("/officers", h.Officers)
			r.Get("/subsidiaries", h.Subsidiaries)
			r.Get("/dividends", h.Dividends)
			r.Get("/insider-deals", h.InsiderDeals)
			r.Get("/events", h.Events)
			r.Get("/news", h.News)
		})
		r.Get("/prices/{ticker}", h.Prices)
		r.Get("/benchmark/{ticker}", h.Benchmark)
		r.Get("/dashboard/{ticker}", h.Dashboard)
	})

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server: shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("server: listening", zap.Int("port", s.cfg.Port))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}
