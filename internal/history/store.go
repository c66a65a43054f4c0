package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// defaultQueryLimit bounds queries when the caller does not give a limit.
const defaultQueryLimit = 50

// Run is one recorded case run.
type Run struct {
	ID           int64
	RunID        string
	CaseType     string
	CaseID       string
	Parameters   map[string]any
	StepStatuses map[string]string
	Failed       bool
	ErrorMessage string
	CaseDir      string
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
}

// Store keeps run history in a SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens the history database at dbPath, creating the file, its
// parent directory, and the schema as needed. ":memory:" works for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout goes first so the later pragmas wait on a concurrent
	// initializer instead of failing outright.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000",
	}
	for _, pragma := range pragmas {
		if err := retryExec(db, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := retryExec(db, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// retryExec runs one statement, backing off while SQLite reports the
// database as locked. Other errors fail immediately.
func retryExec(db *sql.DB, stmt string) error {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond << attempt)
	}
	return lastErr
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun inserts one run record. A missing RunID is assigned, and the
// database row id is written back to run.ID.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	paramsJSON := "{}"
	if len(run.Parameters) > 0 {
		data, err := json.Marshal(run.Parameters)
		if err != nil {
			return fmt.Errorf("marshal parameters: %w", err)
		}
		paramsJSON = string(data)
	}

	statusesJSON := "{}"
	if len(run.StepStatuses) > 0 {
		data, err := json.Marshal(run.StepStatuses)
		if err != nil {
			return fmt.Errorf("marshal step statuses: %w", err)
		}
		statusesJSON = string(data)
	}

	query := `INSERT INTO case_runs
		(run_id, case_type, case_id, parameters, step_statuses, failed, error_message, case_dir, started_at, finished_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.CaseType,
		run.CaseID,
		paramsJSON,
		statusesJSON,
		run.Failed,
		run.ErrorMessage,
		run.CaseDir,
		run.StartedAt,
		run.FinishedAt,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert case run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	run.ID = id

	return nil
}

// RecentRuns returns the most recent runs across all case types, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	query := `SELECT id, run_id, case_type, case_id, parameters, step_statuses, failed, error_message, case_dir, started_at, finished_at, duration_ms
		FROM case_runs
		ORDER BY id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// RunsByCaseType returns the most recent runs of one case type, newest first.
func (s *Store) RunsByCaseType(ctx context.Context, caseType string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	query := `SELECT id, run_id, case_type, case_id, parameters, step_statuses, failed, error_message, case_dir, started_at, finished_at, duration_ms
		FROM case_runs
		WHERE case_type = ?
		ORDER BY id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, caseType, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs by case type: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// FailureCount returns how many recorded runs of a case type failed.
func (s *Store) FailureCount(ctx context.Context, caseType string) (int, error) {
	query := `SELECT COUNT(*) FROM case_runs WHERE case_type = ? AND failed = 1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, caseType).Scan(&count); err != nil {
		return 0, fmt.Errorf("count failures: %w", err)
	}
	return count, nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var paramsJSON, statusesJSON string
		var durationMS int64
		err := rows.Scan(
			&run.ID,
			&run.RunID,
			&run.CaseType,
			&run.CaseID,
			&paramsJSON,
			&statusesJSON,
			&run.Failed,
			&run.ErrorMessage,
			&run.CaseDir,
			&run.StartedAt,
			&run.FinishedAt,
			&durationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		if paramsJSON != "" && paramsJSON != "{}" {
			if err := json.Unmarshal([]byte(paramsJSON), &run.Parameters); err != nil {
				return nil, fmt.Errorf("unmarshal parameters: %w", err)
			}
		}
		if statusesJSON != "" && statusesJSON != "{}" {
			if err := json.Unmarshal([]byte(statusesJSON), &run.StepStatuses); err != nil {
				return nil, fmt.Errorf("unmarshal step statuses: %w", err)
			}
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}
