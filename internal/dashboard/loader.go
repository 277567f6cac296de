package dashboard

import (
	"context"
	"fmt"
	"log/slog"
)

// Loader runs the dashboard load cycle against a Fetcher and a Sink.
// A Loader holds no state between cycles; calling Load again repeats the
// whole cycle.
type Loader struct {
	fetcher Fetcher
	sink    Sink
	logger  *slog.Logger
}

// NewLoader creates a Loader. A nil logger discards diagnostics.
func NewLoader(fetcher Fetcher, sink Sink, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		fetcher: fetcher,
		sink:    sink,
		logger:  logger,
	}
}

// Load fetches summary, metrics and predictions in sequence and writes them
// into the sink. On the first failure the remaining steps are skipped, the
// error is logged, and the status and metric value slots are overwritten
// with the error display. Slots written before the failure are kept.
//
// The returned error is the one that aborted the cycle, or nil.
func (l *Loader) Load(ctx context.Context) error {
	err := l.load(ctx)
	if err != nil {
		l.logger.Error("dashboard load failed", "error", err)
		l.sink.SetText(SlotPipelineStatus, ErrorStatusText)
		l.sink.SetText(SlotMetricValue, ErrorMetricText)
		return err
	}
	l.logger.Debug("dashboard loaded")
	return nil
}

func (l *Loader) load(ctx context.Context) error {
	var summary SummaryPayload
	if err := l.fetcher.FetchJSON(ctx, PathSummary, &summary); err != nil {
		return err
	}
	l.sink.SetText(SlotPipelineStatus, summary.PipelineStatus.String())
	l.sink.SetText(SlotLastRunUTC, summary.LastRunUTC.String())
	l.sink.SetText(SlotRowsIngested, summary.RowsIngested.String())
	l.sink.SetText(SlotModelVersion, summary.ModelVersion.String())

	var metrics MetricsPayload
	if err := l.fetcher.FetchJSON(ctx, PathMetrics, &metrics); err != nil {
		return err
	}
	l.sink.SetText(SlotMetricName, metrics.MetricName.String())
	l.sink.SetText(SlotMetricValue, metrics.MetricValue.String())

	var preds PredictionsPayload
	if err := l.fetcher.FetchJSON(ctx, PathPredictions, &preds); err != nil {
		return err
	}
	if err := l.sink.ReplaceRows(TablePredictions, preds.Rows()); err != nil {
		return fmt.Errorf("render predictions: %w", err)
	}
	return nil
}
