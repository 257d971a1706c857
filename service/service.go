// Package service exposes the optional healthz and metrics endpoints while
// a run is in flight, for CI systems that scrape them.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/intersend/interspace-test-hub/metrics"
)

const (
	DefaultHealthzPort = 8080
	DefaultMetricsPort = 7300

	shutdownTimeout = 5 * time.Second
)

// Config controls where the endpoints bind. Zero values fall back to the
// defaults, an empty Host binds all interfaces.
type Config struct {
	Host        string
	HealthzPort int
	MetricsPort int
	Log         log.Logger
}

// Service owns the two sidecar servers for the duration of a run.
type Service struct {
	log     log.Logger
	healthz *http.Server
	metrics *http.Server
}

func New(cfg Config) *Service {
	if cfg.HealthzPort == 0 {
		cfg.HealthzPort = DefaultHealthzPort
	}
	if cfg.MetricsPort == 0 {
		cfg.MetricsPort = DefaultMetricsPort
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	healthzMux := http.NewServeMux()
	healthzMux.HandleFunc("/healthz", handleHealthz(cfg.Log))
	allowAll := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	return &Service{
		log: cfg.Log,
		healthz: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.HealthzPort),
			Handler: allowAll.Handler(healthzMux),
		},
		metrics: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.MetricsPort),
			Handler: metricsMux,
		},
	}
}

// Start serves both endpoints in the background. A listen failure is
// recorded but never aborts the test run the sidecar accompanies.
func (s *Service) Start() {
	go s.serve("healthz", s.healthz)
	go s.serve("metrics", s.metrics)
}

func (s *Service) serve(name string, srv *http.Server) {
	s.log.Info("Starting server", "name", name, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("Server failed", "name", name, "err", err)
		metrics.RecordError(name + " server failed")
	}
}

// Shutdown stops both servers, waiting briefly for in-flight scrapes. Safe
// to call even if Start never ran.
func (s *Service) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for name, srv := range map[string]*http.Server{"healthz": s.healthz, "metrics": s.metrics} {
		if err := srv.Shutdown(ctx); err != nil {
			s.log.Error("Server shutdown failed", "name", name, "err", err)
		}
	}
	s.log.Info("Service stopped")
}

func handleHealthz(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Received health check request", "path", r.URL.Path)
		w.Write([]byte("OK")) //nolint:errcheck
	}
}
