// Package results persists suite runs and their per-check outcomes in SQLite.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cacctools/drivecycle/pkg/cacc"
	"github.com/cacctools/drivecycle/pkg/temporal"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	suite       TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL,
	scenario       TEXT NOT NULL,
	check_name     TEXT NOT NULL,
	status         TEXT NOT NULL,
	reason         TEXT,
	violation_json TEXT,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
`

// RunRecord is one persisted suite run.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	Suite      string    `json:"suite"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// OutcomeRecord is one persisted check outcome.
type OutcomeRecord struct {
	Scenario  string          `json:"scenario"`
	Check     string          `json:"check"`
	Status    cacc.Status     `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	Violation *cacc.Violation `json:"violation,omitempty"`
}

// Store manages suite run history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSuiteResult writes a run and its outcomes atomically. A run arriving
// without a RunID is assigned one, so direct (non-workflow) callers can use
// the store too.
func (s *Store) SaveSuiteResult(ctx context.Context, result temporal.SuiteResult) error {
	runID := result.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, suite, passed, failed, skipped, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, result.Suite, result.Passed, result.Failed, result.Skipped,
		result.StartedAt.Format(time.RFC3339Nano), result.FinishedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, sc := range result.Results {
		for _, o := range sc.Outcomes {
			var violationPtr interface{}
			if o.Violation != nil {
				vj, err := json.Marshal(o.Violation)
				if err != nil {
					return fmt.Errorf("marshal violation: %w", err)
				}
				violationPtr = string(vj)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO outcomes (run_id, scenario, check_name, status, reason, violation_json)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				runID, o.Scenario, o.Check, string(o.Status), o.Reason, violationPtr,
			)
			if err != nil {
				return fmt.Errorf("insert outcome: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetRun retrieves a single run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	var rec RunRecord
	var startedStr, finishedStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, suite, passed, failed, skipped, started_at, finished_at
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &rec.Suite, &rec.Passed, &rec.Failed, &rec.Skipped, &startedStr, &finishedStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedStr)
	return rec, nil
}

// ListRuns returns the most recent runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, suite, passed, failed, skipped, started_at, finished_at
		 FROM runs ORDER BY finished_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedStr, finishedStr string
		if err := rows.Scan(&rec.RunID, &rec.Suite, &rec.Passed, &rec.Failed, &rec.Skipped,
			&startedStr, &finishedStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunOutcomes returns every check outcome recorded for a run.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scenario, check_name, status, reason, violation_json
		 FROM outcomes WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("run outcomes: %w", err)
	}
	defer rows.Close()

	var records []OutcomeRecord
	for rows.Next() {
		var rec OutcomeRecord
		var status string
		var reason sql.NullString
		var violationJSON sql.NullString
		if err := rows.Scan(&rec.Scenario, &rec.Check, &status, &reason, &violationJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Status = cacc.Status(status)
		if reason.Valid {
			rec.Reason = reason.String
		}
		if violationJSON.Valid {
			var v cacc.Violation
			if err := json.Unmarshal([]byte(violationJSON.String), &v); err != nil {
				return nil, fmt.Errorf("unmarshal violation: %w", err)
			}
			rec.Violation = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
