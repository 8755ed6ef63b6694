// Package diagnostics exposes the platform's observability surface over
// HTTP: Prometheus metrics, health, the wiring diagram, and a live
// scheduler statistics stream over websocket.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matteriben/hedera-services/errors"
	"github.com/matteriben/hedera-services/metric"
	"github.com/matteriben/hedera-services/wiring"
)

// StatsSource provides scheduler statistics and the wiring diagram.
type StatsSource interface {
	SchedulerStats() []wiring.SchedulerStats
	GenerateWiringDiagram() string
}

// HealthCheck reports a component's health by name. A nil error is
// healthy.
type HealthCheck func() error

// Server is the diagnostics HTTP server.
type Server struct {
	logger  *slog.Logger
	address string

	metrics *metric.MetricsRegistry
	source  StatsSource

	mu        sync.Mutex
	checks    map[string]HealthCheck
	server    *http.Server
	boundAddr string
	upgrader  websocket.Upgrader

	// statsPeriod is the interval between websocket stats frames.
	statsPeriod time.Duration
}

// NewServer creates a diagnostics server. It does not listen until Start.
func NewServer(logger *slog.Logger, address string, metrics *metric.MetricsRegistry, source StatsSource) *Server {
	return &Server{
		logger:      logger,
		address:     address,
		metrics:     metrics,
		source:      source,
		checks:      make(map[string]HealthCheck),
		statsPeriod: time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterHealthCheck adds a named health check evaluated by /healthz.
func (s *Server) RegisterHealthCheck(name string, check HealthCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Start begins serving. It returns once the listener is bound; serving
// continues until Stop is called or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "diagnostics", "Start", "server already running")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.PrometheusRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/wiring", s.handleWiring)
	mux.HandleFunc("/stats", s.handleStats)

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.WrapTransient(err, "diagnostics", "Start", "bind listener")
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.server = server

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := server.Serve(listener)
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	s.boundAddr = listener.Addr().String()
	s.logger.Info("diagnostics server started", "address", s.boundAddr)
	return nil
}

// Addr returns the bound listen address, empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// healthResponse is the /healthz payload.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	checks := make(map[string]HealthCheck, len(s.checks))
	for name, check := range s.checks {
		checks[name] = check
	}
	s.mu.Unlock()

	response := healthResponse{Status: "healthy", Checks: make(map[string]string, len(checks))}
	code := http.StatusOK
	for name, check := range checks {
		if err := check(); err != nil {
			response.Checks[name] = err.Error()
			response.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		} else {
			response.Checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleWiring(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, s.source.GenerateWiringDiagram())
}

// statsFrame is one websocket stats message.
type statsFrame struct {
	Session    string                 `json:"session"`
	Timestamp  time.Time              `json:"timestamp"`
	Schedulers []wiring.SchedulerStats `json:"schedulers"`
}

// handleStats streams scheduler statistics over a websocket until the
// client disconnects.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	session := uuid.NewString()
	s.logger.Debug("stats stream opened", "session", session)

	defer func() {
		_ = conn.Close()
		s.logger.Debug("stats stream closed", "session", session)
	}()

	// Reader goroutine: surface client close promptly.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.statsPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			frame := statsFrame{
				Session:    session,
				Timestamp:  time.Now(),
				Schedulers: s.source.SchedulerStats(),
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}
