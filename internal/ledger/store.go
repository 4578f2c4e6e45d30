// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records the history of corpus runs in a SQLite database so
// audits and merges over the same corpus can be compared over time.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/section-combiner/internal/corpus"
	"github.com/pdiddy/section-combiner/pkg/types"
)

// ErrDisabled is returned by Open when no database path is configured.
var ErrDisabled = errors.New("run ledger is disabled: no ledger path configured")

// ErrRunNotFound is returned when a run ID is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

const defaultLimit = 20

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the run ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.LedgerConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, ErrDisabled
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			root TEXT NOT NULL,
			dry_run INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			documents INTEGER NOT NULL,
			modified INTEGER NOT NULL,
			merges INTEGER NOT NULL,
			matches INTEGER NOT NULL,
			errors INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_documents (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			merges INTEGER NOT NULL,
			matches INTEGER NOT NULL,
			error_kind TEXT,
			error TEXT,
			PRIMARY KEY (run_id, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one recorded corpus run.
type Run struct {
	ID         string        `json:"id" yaml:"id"`
	Mode       string        `json:"mode" yaml:"mode"`
	Root       string        `json:"root" yaml:"root"`
	DryRun     bool          `json:"dry_run" yaml:"dry_run"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Documents  int           `json:"documents" yaml:"documents"`
	Modified   int           `json:"modified" yaml:"modified"`
	Merges     int           `json:"merges" yaml:"merges"`
	Matches    int           `json:"matches" yaml:"matches"`
	Errors     int           `json:"errors" yaml:"errors"`
	Entries    []DocumentRow `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// DocumentRow is the recorded outcome of one document in a run. Only
// documents that changed, matched or failed are recorded.
type DocumentRow struct {
	Path      string `json:"path" yaml:"path"`
	Merges    int    `json:"merges" yaml:"merges"`
	Matches   int    `json:"matches" yaml:"matches"`
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Record stores a finished run and its document rows in one transaction
// and returns the new run ID.
func (s *Store) Record(ctx context.Context, summary *corpus.Summary) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, root, dry_run, started_at, finished_at, documents, modified, merges, matches, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(summary.Mode), summary.Root, summary.DryRun,
		summary.StartedAt.UTC().Format(timeLayout),
		summary.FinishedAt.UTC().Format(timeLayout),
		summary.Documents, summary.Modified, summary.Merges, summary.Matches, len(summary.Errors),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_documents (run_id, path, merges, matches, error_kind, error)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range summary.Results {
		if res.Err == nil && !res.Modified && len(res.Matches) == 0 {
			continue
		}
		var kind, msg sql.NullString
		if res.Err != nil {
			kind = sql.NullString{String: string(res.Err.Kind), Valid: true}
			msg = sql.NullString{String: res.Err.Err.Error(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, res.Path, res.Merges, len(res.Matches), kind, msg); err != nil {
			return "", fmt.Errorf("inserting document %s: %w", res.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Runs returns up to limit recorded runs, newest first. limit <= 0 selects
// the default of 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, root, dry_run, started_at, finished_at, documents, modified, merges, matches, errors
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns one run with its document rows.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, root, dry_run, started_at, finished_at, documents, modified, merges, matches, errors
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	r.Entries, err = s.Documents(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// Documents returns the document rows of a run ordered by path.
func (s *Store) Documents(ctx context.Context, runID string) ([]DocumentRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, merges, matches, error_kind, error
		 FROM run_documents WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRow
	for rows.Next() {
		var d DocumentRow
		var kind, msg sql.NullString
		if err := rows.Scan(&d.Path, &d.Merges, &d.Matches, &kind, &msg); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		d.ErrorKind = kind.String
		d.Error = msg.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var started, finished string
	err := row.Scan(&r.ID, &r.Mode, &r.Root, &r.DryRun, &started, &finished,
		&r.Documents, &r.Modified, &r.Merges, &r.Matches, &r.Errors)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parsing started_at of run %s: %w", r.ID, err)
	}
	if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parsing finished_at of run %s: %w", r.ID, err)
	}
	return r, nil
}
