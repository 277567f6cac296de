// Package state persists pipeline runs for the dashboard API using SQLite.
// A run carries the pipeline summary, the evaluation metrics computed for the
// model it produced, and a sample of that model's predictions.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNoRun is returned when no pipeline run has been recorded yet.
var ErrNoRun = errors.New("no pipeline run recorded")

// RunStatus is the outcome of a pipeline run as shown on the dashboard.
type RunStatus string

// Run statuses.
const (
	RunStatusOK       RunStatus = "OK"
	RunStatusDegraded RunStatus = "DEGRADED"
	RunStatusFailed   RunStatus = "FAILED"
)

// Run is one completed pipeline execution.
type Run struct {
	ID            string       `json:"id"`
	Status        RunStatus    `json:"status"`
	CompletedAt   time.Time    `json:"completed_at"`
	RowsIngested  int64        `json:"rows_ingested"`
	RowsValidated int64        `json:"rows_validated"`
	RowsFailed    int64        `json:"rows_failed"`
	ModelVersion  string       `json:"model_version"`
	Metrics       []Metric     `json:"metrics,omitempty"`
	Predictions   []Prediction `json:"predictions,omitempty"`
}

// Metric is an evaluation metric computed for a run's model.
type Metric struct {
	Name        string    `json:"name"`
	Value       float64   `json:"value"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Prediction is one sampled inference row.
type Prediction struct {
	ID         int64   `json:"id"`
	FeatureX   float64 `json:"feature_x"`
	Prediction float64 `json:"prediction"`
	Actual     float64 `json:"actual"`
}

// Store is the persistence interface used by the API.
type Store interface {
	// RecordRun stores a run with its metrics and predictions atomically.
	// An empty ID is replaced with a generated one.
	RecordRun(ctx context.Context, run *Run) error

	// LatestRun returns the most recently completed run, without metrics
	// or predictions. It returns ErrNoRun when the store is empty.
	LatestRun(ctx context.Context) (*Run, error)

	// LatestMetric returns the most recently evaluated metric of the latest run.
	LatestMetric(ctx context.Context) (*Metric, error)

	// ListPredictions returns up to limit predictions of the latest run in id order.
	ListPredictions(ctx context.Context, limit int) ([]Prediction, error)

	// ListRuns returns up to limit runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetRun returns one run with its metrics, or ErrRunNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	Close() error
}
