package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, status, completed_at, rows_ingested, rows_validated, rows_failed, model_version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		status    string
		completed string
	)
	if err := row.Scan(&run.ID, &status, &completed, &run.RowsIngested, &run.RowsValidated, &run.RowsFailed, &run.ModelVersion); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)

	var err error
	if run.CompletedAt, err = time.Parse(timeLayout, completed); err != nil {
		return nil, fmt.Errorf("invalid completed_at for run %s: %w", run.ID, err)
	}
	return &run, nil
}

// ListRuns returns up to limit runs, most recent first, without metrics or
// predictions.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs ORDER BY completed_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a run by ID together with its metrics.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value, evaluated_at FROM run_metrics WHERE run_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			m         Metric
			evaluated string
		)
		if err := rows.Scan(&m.Name, &m.Value, &evaluated); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		if m.EvaluatedAt, err = time.Parse(timeLayout, evaluated); err != nil {
			return nil, fmt.Errorf("invalid evaluated_at for metric %s: %w", m.Name, err)
		}
		run.Metrics = append(run.Metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metrics: %w", err)
	}
	return run, nil
}
