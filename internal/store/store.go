package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/storefront-e2e/internal/runner"
	"github.com/xkilldash9x/storefront-e2e/internal/scenario"
)

// ErrRunNotFound is returned by LoadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store persists suite runs and their scenario outcomes in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	BaseURL    string
	Summary    runner.Summary
}

const (
	sqlCreateRuns = `
        CREATE TABLE IF NOT EXISTS runs (
            run_id           TEXT PRIMARY KEY,
            started_at       TIMESTAMPTZ NOT NULL,
            finished_at      TIMESTAMPTZ NOT NULL,
            base_url         TEXT NOT NULL,
            click_strategy   TEXT NOT NULL,
            contract_version TEXT NOT NULL,
            total            INTEGER NOT NULL,
            passed           INTEGER NOT NULL,
            failed           INTEGER NOT NULL,
            errored          INTEGER NOT NULL
        );
    `
	sqlCreateResults = `
        CREATE TABLE IF NOT EXISTS scenario_results (
            run_id         TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
            position       INTEGER NOT NULL,
            scenario_id    TEXT NOT NULL,
            slug           TEXT NOT NULL,
            name           TEXT NOT NULL,
            status         TEXT NOT NULL,
            kind           TEXT NOT NULL,
            detail         TEXT NOT NULL,
            started_at     TIMESTAMPTZ NOT NULL,
            duration_ns    BIGINT NOT NULL,
            session_id     TEXT NOT NULL,
            teardowns      INTEGER NOT NULL,
            teardown_error TEXT NOT NULL,
            phases         TEXT[] NOT NULL,
            PRIMARY KEY (run_id, position)
        );
    `
	sqlInsertRun = `
        INSERT INTO runs (run_id, started_at, finished_at, base_url, click_strategy, contract_version, total, passed, failed, errored)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `
	sqlSelectRun = `
        SELECT started_at, finished_at, base_url, click_strategy, contract_version
        FROM runs
        WHERE run_id = $1;
    `
	sqlSelectResults = `
        SELECT scenario_id, slug, name, status, kind, detail, started_at, duration_ns, session_id, teardowns, teardown_error, phases
        FROM scenario_results
        WHERE run_id = $1
        ORDER BY position ASC;
    `
	sqlRecentRuns = `
        SELECT run_id, started_at, finished_at, base_url, total, passed, failed, errored
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1;
    `
)

var resultColumns = []string{
	"run_id", "position", "scenario_id", "slug", "name", "status", "kind", "detail",
	"started_at", "duration_ns", "session_id", "teardowns", "teardown_error", "phases",
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// EnsureSchema creates the runs and scenario_results tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{sqlCreateRuns, sqlCreateResults} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// PersistRun stores a report and all its scenario results in one transaction.
func (s *Store) PersistRun(ctx context.Context, report *runner.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	sum := report.Summary()
	if _, err := tx.Exec(ctx, sqlInsertRun,
		report.RunID, report.StartedAt.UTC(), report.FinishedAt.UTC(),
		report.BaseURL, report.ClickStrategy, report.ContractVersion,
		sum.Total, sum.Passed, sum.Failed, sum.Errored,
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", report.RunID, err)
	}

	if len(report.Results) > 0 {
		if err := s.persistResults(ctx, tx, report); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.log.Debug("Run persisted.", zap.String("run_id", report.RunID), zap.Int("results", len(report.Results)))
	return nil
}

func (s *Store) persistResults(ctx context.Context, tx pgx.Tx, report *runner.Report) error {
	rows := make([][]any, len(report.Results))
	for i, r := range report.Results {
		phases := make([]string, len(r.Phases))
		for j, p := range r.Phases {
			phases[j] = string(p)
		}
		rows[i] = []any{
			report.RunID, i, r.ID, r.Slug, r.Name,
			string(r.Status), string(r.Kind), r.Detail,
			r.StartedAt.UTC(), int64(r.Duration), r.SessionID,
			r.Teardowns, r.TeardownError, phases,
		}
	}

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"scenario_results"}, resultColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy scenario results: %w", err)
	}
	if int(copyCount) != len(rows) {
		return fmt.Errorf("mismatch in copied scenario results count: expected %d, got %d", len(rows), copyCount)
	}
	return nil
}

// LoadRun rebuilds a stored report.
func (s *Store) LoadRun(ctx context.Context, runID string) (*runner.Report, error) {
	report := &runner.Report{RunID: runID}
	err := s.pool.QueryRow(ctx, sqlSelectRun, runID).Scan(
		&report.StartedAt, &report.FinishedAt, &report.BaseURL, &report.ClickStrategy, &report.ContractVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}

	rows, err := s.pool.Query(ctx, sqlSelectResults, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r            runner.Result
			status, kind string
			durationNS   int64
			phases       []string
		)
		if err := rows.Scan(
			&r.ID, &r.Slug, &r.Name, &status, &kind, &r.Detail,
			&r.StartedAt, &durationNS, &r.SessionID, &r.Teardowns, &r.TeardownError, &phases,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scenario result row: %w", err)
		}
		r.Status = runner.Status(status)
		r.Kind = scenario.FailureKind(kind)
		r.Duration = time.Duration(durationNS)
		for _, p := range phases {
			r.Phases = append(r.Phases, runner.Phase(p))
		}
		report.Results = append(report.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return report, nil
}

// RecentRuns lists up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.pool.Query(ctx, sqlRecentRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(
			&r.RunID, &r.StartedAt, &r.FinishedAt, &r.BaseURL,
			&r.Summary.Total, &r.Summary.Passed, &r.Summary.Failed, &r.Summary.Errored,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return runs, nil
}
