// Package server exposes the engine's operational endpoints: Prometheus metrics,
// a health check and a read-only view of the signal journal.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-signal/internal/journal"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/metrics"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

const defaultSignalLimit = 100

// HealthFunc reports whether the engine is healthy.
type HealthFunc func() error

// Server is the operational HTTP server.
type Server struct {
	router  *mux.Router
	journal journal.Journal
	health  HealthFunc
	logger  *logger.Logger
	http    *http.Server
}

// SignalRecordView is the JSON shape of one journal record.
type SignalRecordView struct {
	CycleID    string                      `json:"cycle_id"`
	Outcome    string                      `json:"outcome"`
	Error      string                      `json:"error,omitempty"`
	RecordedAt string                      `json:"recorded_at"`
	Signal     notification.WebhookPayload `json:"signal"`
}

// New builds the router. m and j may be nil, in which case their routes answer 404.
func New(addr string, m *metrics.Metrics, j journal.Journal, health HealthFunc, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		router:  mux.NewRouter(),
		journal: j,
		health:  health,
		logger:  log.Named("server"),
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	if m != nil {
		s.router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	if j != nil {
		s.router.HandleFunc("/signals", s.handleSignals).Methods(http.MethodGet)
		s.router.HandleFunc("/signals/counts", s.handleCounts).Methods(http.MethodGet)
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background until Shutdown is called.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Status server listening", zap.String("addr", s.http.Addr))

		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Status server stopped", zap.Error(err))
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.health != nil {
		if err := s.health(); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"code":   errors.GetCode(err),
				"error":  err.Error(),
			})

			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := journal.Filter{
		Symbol:  query.Get("symbol"),
		Outcome: types.SignalOutcome(query.Get("outcome")),
		Limit:   defaultSignalLimit,
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})

			return
		}

		filter.Limit = limit
	}

	if raw := query.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be an RFC3339 timestamp"})

			return
		}

		filter.Since = since
	}

	records, err := s.journal.Query(filter)
	if err != nil {
		s.logger.Error("Failed to query journal", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to query journal"})

		return
	}

	views := make([]SignalRecordView, 0, len(records))
	for _, record := range records {
		views = append(views, SignalRecordView{
			CycleID:    record.CycleID,
			Outcome:    string(record.Outcome),
			Error:      record.Error,
			RecordedAt: record.RecordedAt.UTC().Format(time.RFC3339),
			Signal:     notification.NewWebhookPayload(record.Signal),
		})
	}

	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCounts(w http.ResponseWriter, _ *http.Request) {
	counts, err := s.journal.Counts()
	if err != nil {
		s.logger.Error("Failed to count journal records", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to count journal records"})

		return
	}

	out := make(map[string]int, len(counts))
	for outcome, count := range counts {
		out[string(outcome)] = count
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}
