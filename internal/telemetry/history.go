package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stepflow-ai/stepflow/internal/core"

	_ "modernc.org/sqlite"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	workflow_name TEXT NOT NULL,
	status        TEXT NOT NULL,
	steps_total   INTEGER NOT NULL,
	steps_done    INTEGER NOT NULL,
	tokens_in     INTEGER NOT NULL,
	tokens_out    INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL,
	error         TEXT,
	result_json   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// HistoryStore records completed runs in a local sqlite database.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (creating if needed) the run history database.
func OpenHistory(dbPath string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying history schema: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one completed run. Recording the same run twice replaces
// the earlier row.
func (s *HistoryStore) Record(ctx context.Context, result *core.WorkflowResult) error {
	resultJSON, err := result.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing result for history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, workflow_name, status, steps_total, steps_done,
			tokens_in, tokens_out, duration_ms, started_at, finished_at,
			error, result_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			status = excluded.status,
			steps_done = excluded.steps_done,
			tokens_in = excluded.tokens_in,
			tokens_out = excluded.tokens_out,
			duration_ms = excluded.duration_ms,
			finished_at = excluded.finished_at,
			error = excluded.error,
			result_json = excluded.result_json
	`,
		result.RunID, result.WorkflowName, string(result.Status),
		len(result.Steps), result.CompletedSteps(),
		result.TotalTokens.InputTokens, result.TotalTokens.OutputTokens,
		result.TotalDuration.Milliseconds(),
		result.StartTime.UTC(), result.EndTime.UTC(),
		result.Error, string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", result.RunID, err)
	}
	return nil
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	RunID        string
	WorkflowName string
	Status       core.WorkflowStatus
	StepsTotal   int
	StepsDone    int
	Tokens       core.TokenUsage
	Duration     time.Duration
	StartedAt    time.Time
	Error        string
}

// List returns the most recent runs, newest first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, workflow_name, status, steps_total, steps_done,
		       tokens_in, tokens_out, duration_ms, started_at, COALESCE(error, '')
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			s          RunSummary
			status     string
			durationMS int64
		)
		if err := rows.Scan(
			&s.RunID, &s.WorkflowName, &status, &s.StepsTotal, &s.StepsDone,
			&s.Tokens.InputTokens, &s.Tokens.OutputTokens, &durationMS,
			&s.StartedAt, &s.Error,
		); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		s.Status = core.WorkflowStatus(status)
		s.Duration = time.Duration(durationMS) * time.Millisecond
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Get loads the full result document of one recorded run.
func (s *HistoryStore) Get(ctx context.Context, runID string) (*core.WorkflowResult, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM runs WHERE run_id = ?`, runID,
	).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, core.ErrState("RUN_NOT_FOUND", fmt.Sprintf("no recorded run %q", runID))
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}
	return core.ResultFromJSON([]byte(resultJSON))
}
