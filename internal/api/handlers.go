// Package api serves the pipeline JSON resources read by the dashboard.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/pipedash/internal/state"
)

// Prediction limits for the predictions resource.
const (
	DefaultPredictionLimit = 20
	MaxPredictionLimit     = 100
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	TimeUTC string `json:"time_utc"`
}

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	PipelineStatus string `json:"pipeline_status"`
	LastRunUTC     string `json:"last_run_utc"`
	RowsIngested   int64  `json:"rows_ingested"`
	RowsValidated  int64  `json:"rows_validated"`
	RowsFailed     int64  `json:"rows_failed"`
	ModelVersion   string `json:"model_version"`
}

// MetricsResponse is the body of GET /api/metrics.
type MetricsResponse struct {
	MetricName     string  `json:"metric_name"`
	MetricValue    float64 `json:"metric_value"`
	EvaluatedAtUTC string  `json:"evaluated_at_utc"`
}

// PredictionsResponse is the body of GET /api/predictions.
type PredictionsResponse struct {
	Items []state.Prediction `json:"items"`
}

// RunsResponse is the body of GET /api/runs.
type RunsResponse struct {
	Runs []state.Run `json:"runs"`
}

// Handlers provides HTTP handlers for the pipeline API.
type Handlers struct {
	store  state.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store state.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetupRoutes mounts the API under /api.
func SetupRoutes(router chi.Router, store state.Store, logger *slog.Logger) {
	h := NewHandlers(store, logger)
	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/summary", h.Summary)
		r.Get("/metrics", h.Metrics)
		r.Get("/predictions", h.Predictions)
		r.Get("/runs", h.Runs)
		r.Get("/runs/{runID}", h.Run)
	})
}

// Health reports liveness for probes and smoke tests.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		TimeUTC: h.now().UTC().Format(time.RFC3339),
	})
}

// Summary returns the status of the latest pipeline run.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.LatestRun(r.Context())
	if err != nil {
		h.storeError(w, "summary", err)
		return
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		PipelineStatus: string(run.Status),
		LastRunUTC:     run.CompletedAt.UTC().Format(time.RFC3339),
		RowsIngested:   run.RowsIngested,
		RowsValidated:  run.RowsValidated,
		RowsFailed:     run.RowsFailed,
		ModelVersion:   run.ModelVersion,
	})
}

// Metrics returns the latest evaluation metric.
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.LatestMetric(r.Context())
	if err != nil {
		h.storeError(w, "metrics", err)
		return
	}

	writeJSON(w, http.StatusOK, MetricsResponse{
		MetricName:     m.Name,
		MetricValue:    m.Value,
		EvaluatedAtUTC: m.EvaluatedAt.UTC().Format(time.RFC3339),
	})
}

// Predictions returns sampled predictions of the latest run. The limit query
// parameter defaults to 20 and is clamped to [1, 100].
func (h *Handlers) Predictions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	preds, err := h.store.ListPredictions(r.Context(), limit)
	if err != nil {
		h.storeError(w, "predictions", err)
		return
	}

	writeJSON(w, http.StatusOK, PredictionsResponse{Items: preds})
}

// Runs lists recent runs, newest first. It takes the same limit parameter as
// Predictions.
func (h *Handlers) Runs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		h.storeError(w, "runs", err)
		return
	}
	if runs == nil {
		runs = []state.Run{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

// Run returns one run with its metrics.
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.storeError(w, "run", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handlers) storeError(w http.ResponseWriter, resource string, err error) {
	if errors.Is(err, state.ErrNoRun) || errors.Is(err, state.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("failed to read "+resource, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to read "+resource)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultPredictionLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		// Integers past the int range still clamp.
		if strings.HasPrefix(raw, "-") {
			return 1, nil
		}
		return MaxPredictionLimit, nil
	}
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	return max(1, min(n, MaxPredictionLimit)), nil
}
