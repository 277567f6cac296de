package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewSQLiteStoreWithDB wraps an already opened database. The caller is
// responsible for running migrations.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state store", slog.String("path", path))
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// RecordRun implements Store.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = RunStatusOK
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, status, completed_at, rows_ingested, rows_validated, rows_failed, model_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), run.CompletedAt.UTC().Format(timeLayout),
		run.RowsIngested, run.RowsValidated, run.RowsFailed, run.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, m := range run.Metrics {
		evaluated := m.EvaluatedAt
		if evaluated.IsZero() {
			evaluated = run.CompletedAt
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_metrics (run_id, name, value, evaluated_at) VALUES (?, ?, ?, ?)`,
			run.ID, m.Name, m.Value, evaluated.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("failed to insert metric %s: %w", m.Name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_predictions (run_id, item_id, feature_x, prediction, actual) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare prediction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range run.Predictions {
		if _, err := stmt.ExecContext(ctx, run.ID, p.ID, p.FeatureX, p.Prediction, p.Actual); err != nil {
			return fmt.Errorf("failed to insert prediction %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	s.logger.Debug("recorded run",
		slog.String("id", run.ID),
		slog.String("status", string(run.Status)),
		slog.Int("metrics", len(run.Metrics)),
		slog.Int("predictions", len(run.Predictions)),
	)
	return nil
}

// LatestRun implements Store.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs ORDER BY completed_at DESC, rowid DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// LatestMetric implements Store.
func (s *SQLiteStore) LatestMetric(ctx context.Context) (*Metric, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	var (
		m         Metric
		evaluated string
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT name, value, evaluated_at FROM run_metrics
		 WHERE run_id = ? ORDER BY evaluated_at DESC, name LIMIT 1`,
		run.ID,
	).Scan(&m.Name, &m.Value, &evaluated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s has no metrics: %w", run.ID, ErrNoRun)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metric: %w", err)
	}

	if m.EvaluatedAt, err = time.Parse(timeLayout, evaluated); err != nil {
		return nil, fmt.Errorf("invalid evaluated_at for metric %s: %w", m.Name, err)
	}
	return &m, nil
}

// ListPredictions implements Store.
func (s *SQLiteStore) ListPredictions(ctx context.Context, limit int) ([]Prediction, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, feature_x, prediction, actual FROM run_predictions
		 WHERE run_id = ? ORDER BY item_id LIMIT ?`,
		run.ID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	preds := make([]Prediction, 0, limit)
	for rows.Next() {
		var p Prediction
		if err := rows.Scan(&p.ID, &p.FeatureX, &p.Prediction, &p.Actual); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return preds, nil
}
