package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/appusage/internal/logfields"
	"git.home.luguber.info/inful/appusage/internal/report"
	"git.home.luguber.info/inful/appusage/internal/version"
)

// HTTPServer exposes the daemon's local status, summary, and metrics
// endpoints.
type HTTPServer struct {
	server *http.Server
	daemon *Daemon
}

// NewHTTPServer creates the status server bound to listen.
func NewHTTPServer(listen string, daemon *Daemon) *HTTPServer {
	s := &HTTPServer{daemon: daemon}
	s.server = &http.Server{
		Addr:              listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.Handle("/metrics", s.daemon.metrics.Handler())
	return mux
}

// Start begins serving in the background.
func (s *HTTPServer) Start() {
	slog.Info("Starting status server", "listen", s.server.Addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Status server failed", logfields.Error(err))
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Uptime         string `json:"uptime"`
	SessionID      string `json:"session_id"`
	CurrentApp     string `json:"current_app,omitempty"`
	TrackingSince  string `json:"tracking_since,omitempty"`
	Idle           bool   `json:"idle"`
	RecordsWritten int64  `json:"records_written"`
	Database       string `json:"database"`
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Status:         string(s.daemon.GetStatus()),
		Version:        version.Version,
		Uptime:         time.Since(s.daemon.GetStartTime()).Round(time.Second).String(),
		SessionID:      s.daemon.SessionID(),
		RecordsWritten: s.daemon.RecordsWritten(),
		Database:       s.daemon.GetConfig().Database.Path,
	}
	if s.daemon.tracker != nil {
		app, since, idle := s.daemon.tracker.Current()
		resp.CurrentApp = app
		resp.Idle = idle
		if !since.IsZero() {
			resp.TrackingSince = since.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	Window  string         `json:"window"`
	TotalMS int64          `json:"total_ms"`
	Total   string         `json:"total"`
	Apps    []summaryEntry `json:"apps"`
}

type summaryEntry struct {
	App     string `json:"app"`
	TotalMS int64  `json:"total_ms"`
	Total   string `json:"total"`
}

func (s *HTTPServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, err := report.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx := r.Context()
	apps, err := s.daemon.reporter.TopApps(ctx, window)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	total, err := s.daemon.reporter.Total(ctx, window)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := summaryResponse{
		Window:  window.String(),
		TotalMS: total.Milliseconds(),
		Total:   report.FormatDuration(total),
		Apps:    make([]summaryEntry, 0, len(apps)),
	}
	for _, app := range apps {
		resp.Apps = append(resp.Apps, summaryEntry{
			App:     app.App,
			TotalMS: app.Total.Milliseconds(),
			Total:   report.FormatDuration(app.Total),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", logfields.Error(err))
	}
}
