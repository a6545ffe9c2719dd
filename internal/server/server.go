// Package server exposes the decoder's Prometheus metrics over HTTP
// while the watch tool runs.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frcviz/wpilog/internal/logging"
)

// Server serves /metrics and a liveness endpoint
type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

// Config holds server configuration
type Config struct {
	Address  string
	Registry *prometheus.Registry
	Logger   *logging.Logger
}

// New creates a new server
func New(cfg Config) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		cfg.Registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: cfg.Logger.WithComponent("server"),
	}
}

// Start starts serving in the background
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("address", s.httpServer.Addr).Msg("Starting metrics server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
