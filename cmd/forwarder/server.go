package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ServerConfig holds configuration for the forwarder HTTP server.
type ServerConfig struct {
	// Addr is the address to listen on (e.g., ":8080").
	Addr string

	// TriggerRate is the sustained accepted trigger rate per second.
	TriggerRate float64

	// TriggerBurst is the burst allowance on top of TriggerRate.
	TriggerBurst int
}

// Triggerer is the fire-and-forget hook the webhook endpoint pulls.
type Triggerer interface {
	Trigger()
}

// Server exposes the Tetragon webhook, health probes, and metrics.
type Server struct {
	config    ServerConfig
	triggerer Triggerer
	client    kubernetes.Interface
	limiter   *rate.Limiter
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates the forwarder HTTP server.
func NewServer(config ServerConfig, triggerer Triggerer, client kubernetes.Interface, logger *zap.Logger) *Server {
	return &Server{
		config:    config,
		triggerer: triggerer,
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(config.TriggerRate), config.TriggerBurst),
		logger:    logger.Named("server"),
	}
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/handlers/tetragon", s.handleTrigger)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         s.config.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.config.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// handleTrigger accepts Tetragon webhook notifications. The request body is
// irrelevant; arrival alone schedules a debounced pipeline run, so the reply
// is always immediate.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.limiter.Allow() {
		http.Error(w, "too many triggers", http.StatusTooManyRequests)
		return
	}

	s.triggerer.Trigger()
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "accepted")
}

// handleHealth reports 503 when the cluster API is unreachable, since every
// pipeline run depends on it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := s.client.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: 1}); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		http.Error(w, "cluster api unreachable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReady handles the /readyz endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
