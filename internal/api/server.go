// Package api exposes the manual control surface over HTTP: status display,
// start/stop commands and Prometheus metrics. Reads never take the operation
// lock; they tolerate observing a mid-transition state.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/serverwarden/serverwarden/internal/adapters/remote"
	"github.com/serverwarden/serverwarden/internal/metrics"
	"github.com/serverwarden/serverwarden/internal/modules/lifecycle"
)

const readTimeout = 10 * time.Second

type (
	// Logger defines the logging interface used by the API server.
	Logger interface {
		Debug(format string, args ...any)
		Warn(format string, args ...any)
		Info(format string, args ...any)
		Error(format string, args ...any)
	}

	// Orchestrator runs the state-mutating protocols on behalf of manual
	// commands.
	Orchestrator interface {
		Start(ctx context.Context) lifecycle.StartResult
		Shutdown(ctx context.Context, reason string) lifecycle.ShutdownOutcome
	}

	// StatusSource is the tracker view used for status rendering.
	StatusSource interface {
		State() lifecycle.RunState
		LastKnownName() string
	}

	// RemoteReader provides the live, non-mutating reads shown while the
	// server is up.
	RemoteReader interface {
		Players(ctx context.Context) ([]remote.Player, error)
		Metrics(ctx context.Context) (remote.ServerMetrics, error)
	}
)

// StatusView is the JSON rendering of the supervisor's current belief plus,
// when the server is up, live data from the management API.
type StatusView struct {
	State         string   `json:"state"`
	Name          string   `json:"name,omitempty"`
	Players       []string `json:"players,omitempty"`
	PlayerCount   int      `json:"player_count"`
	UptimeSeconds int64    `json:"uptime_seconds,omitempty"`
}

// StopRequest is the optional body of a manual stop command.
type StopRequest struct {
	Reason string `json:"reason"`
}

// Server is the HTTP control endpoint.
type Server struct {
	httpServer   *http.Server
	orchestrator Orchestrator
	status       StatusSource
	reader       RemoteReader
	logger       Logger
}

// NewServer wires the control endpoint on addr.
func NewServer(
	addr string,
	orchestrator Orchestrator,
	status StatusSource,
	reader RemoteReader,
	logger Logger,
) *Server {
	s := &Server{
		orchestrator: orchestrator,
		status:       status,
		reader:       reader,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("POST /api/v1/server/start", s.handleStart)
	mux.HandleFunc("POST /api/v1/server/stop", s.handleStop)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readTimeout,
	}

	return s
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Control endpoint listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleStatus renders the tracker view. Live reads are best-effort: a
// failed player or metrics call degrades the view instead of failing it.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	view := StatusView{
		State: s.status.State().String(),
		Name:  s.status.LastKnownName(),
	}

	if s.status.State() == lifecycle.StateUp {
		if players, err := s.reader.Players(r.Context()); err == nil {
			view.PlayerCount = len(players)
			for _, p := range players {
				view.Players = append(view.Players, p.Name)
			}
		} else {
			s.logger.Debug("Status: player read failed: %v", err)
		}

		if m, err := s.reader.Metrics(r.Context()); err == nil {
			view.UptimeSeconds = m.UptimeSeconds
		} else {
			s.logger.Debug("Status: metrics read failed: %v", err)
		}
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	result := s.orchestrator.Start(r.Context())
	if result.Started {
		metrics.IncOperation("start", metrics.ResultSuccess)
	} else {
		metrics.IncOperation("start", metrics.ResultDeclined)
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	req := StopRequest{Reason: "Server stopped by operator"}
	if r.Body != nil {
		// An empty or malformed body keeps the default reason.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	outcome := s.orchestrator.Shutdown(r.Context(), req.Reason)
	if outcome.Success {
		metrics.IncOperation("stop", metrics.ResultSuccess)
	} else {
		metrics.IncOperation("stop", metrics.ResultDeclined)
	}

	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("Failed to encode response: %v", err)
	}
}
