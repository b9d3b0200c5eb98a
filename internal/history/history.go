// Package history records the mutating commands pacfront runs in a local
// sqlite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no entry has the requested ID
var ErrNotFound = errors.New("history entry not found")

// ErrAmbiguousID is returned when an ID prefix matches more than one entry
var ErrAmbiguousID = errors.New("history id prefix matches several entries")

// Entry is one recorded operation. ExitCode is -1 while the operation is
// running or when it was handed to an external terminal whose outcome is
// unknown.
type Entry struct {
	ID         string     `json:"id"`
	Action     string     `json:"action"`
	Command    string     `json:"command"`
	Packages   []string   `json:"packages"`
	Mode       string     `json:"mode"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ExitCode   int        `json:"exit_code"`
	Error      string     `json:"error,omitempty"`
}

// Succeeded reports whether the operation finished with exit code 0
func (e *Entry) Succeeded() bool {
	return e.FinishedAt != nil && e.ExitCode == 0 && e.Error == ""
}

// Store is the history database with separate read/write pools
type Store struct {
	write *sql.DB
	read  *sql.DB
	path  string
	now   func() time.Time
}

// Open opens (creating when needed) the history database at dbPath
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(4)
	read.SetMaxIdleConns(2)
	read.SetConnMaxIdleTime(time.Minute)

	s := &Store{write: write, read: read, path: dbPath, now: time.Now}

	if err := s.initSchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes both database connections
func (s *Store) Close() error {
	writeErr := s.write.Close()
	readErr := s.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS operations (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL,
    command TEXT NOT NULL,
    packages TEXT NOT NULL,
    mode TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER,
    exit_code INTEGER NOT NULL DEFAULT -1,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_operations_started ON operations(started_at);
	`

	if _, err := s.write.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Begin records the start of an operation and returns the new entry
func (s *Store) Begin(ctx context.Context, action, command string, packages []string, mode string) (*Entry, error) {
	e := &Entry{
		ID:        uuid.NewString(),
		Action:    action,
		Command:   command,
		Packages:  packages,
		Mode:      mode,
		StartedAt: s.now().UTC().Truncate(time.Millisecond),
		ExitCode:  -1,
	}
	if e.Packages == nil {
		e.Packages = []string{}
	}

	pkgsJSON, err := json.Marshal(e.Packages)
	if err != nil {
		return nil, fmt.Errorf("marshal packages: %w", err)
	}

	query := `
INSERT INTO operations (id, action, command, packages, mode, started_at)
VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := s.write.ExecContext(ctx, query,
		e.ID, e.Action, e.Command, string(pkgsJSON), e.Mode, e.StartedAt.UnixMilli(),
	); err != nil {
		return nil, fmt.Errorf("insert operation: %w", err)
	}

	return e, nil
}

// Finish stores the outcome of an operation
func (s *Store) Finish(ctx context.Context, id string, exitCode int, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}

	result, err := s.write.ExecContext(ctx,
		"UPDATE operations SET finished_at = ?, exit_code = ?, error = ? WHERE id = ?",
		s.now().UTC().UnixMilli(), exitCode, msg, id,
	)
	if err != nil {
		return fmt.Errorf("update operation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const selectColumns = `SELECT id, action, command, packages, mode, started_at, finished_at, exit_code, error FROM operations`

// Get retrieves an entry by its ID or by a prefix matching exactly one ID
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.read.QueryContext(ctx, selectColumns+" WHERE substr(id, 1, ?) = ? LIMIT 2", len(id), id)
	if err != nil {
		return nil, fmt.Errorf("query operation: %w", err)
	}
	defer rows.Close()

	var found []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// List returns the most recent entries first. A limit of 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectColumns + " ORDER BY started_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

// Prune keeps the newest keep entries and deletes the rest
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	result, err := s.write.ExecContext(ctx, `
DELETE FROM operations WHERE id NOT IN (
    SELECT id FROM operations ORDER BY started_at DESC, rowid DESC LIMIT ?
)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune operations: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e        Entry
		pkgsJSON string
		started  int64
		finished sql.NullInt64
	)

	if err := sc.Scan(&e.ID, &e.Action, &e.Command, &pkgsJSON, &e.Mode, &started, &finished, &e.ExitCode, &e.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan operation: %w", err)
	}

	if err := json.Unmarshal([]byte(pkgsJSON), &e.Packages); err != nil {
		return nil, fmt.Errorf("unmarshal packages: %w", err)
	}

	e.StartedAt = time.UnixMilli(started).UTC()
	if finished.Valid {
		t := time.UnixMilli(finished.Int64).UTC()
		e.FinishedAt = &t
	}
	return &e, nil
}
