package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/shcmd/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS variable_values (
	id TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	command_id TEXT,
	alias TEXT,
	command TEXT,
	shell TEXT,
	state TEXT,
	success INTEGER,
	exit_code INTEGER,
	execution_time_ms INTEGER
);`

// timestampLayout is fixed width so timestamps order lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists variable values and history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Get implements ports.VariableStore.
func (s *SQLiteStore) Get(ctx context.Context, id string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM variable_values WHERE id = ?`, id).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set implements ports.VariableStore.
func (s *SQLiteStore) Set(ctx context.Context, id, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO variable_values (id, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		id, value, time.Now().Format(domain.TimestampFormat))
	return err
}

// Delete implements ports.VariableStore.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM variable_values WHERE id = ?`, id)
	return err
}

// All implements ports.VariableStore.
func (s *SQLiteStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, value FROM variable_values`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		out[id] = value
	}
	return out, rows.Err()
}

// Record implements ports.HistoryRepository.
func (s *SQLiteStore) Record(ctx context.Context, rec domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO executions
		(id, timestamp, command_id, alias, command, shell, state, success, exit_code, execution_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.UTC().Format(timestampLayout),
		rec.CommandID,
		rec.Alias,
		rec.Command,
		rec.Shell,
		string(rec.State),
		boolToInt(rec.Success),
		rec.ExitCode,
		rec.ExecutionTimeMS,
	)
	return err
}

// Recent implements ports.HistoryRepository. Newest first; limit <= 0 returns everything.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	query := `SELECT id, timestamp, command_id, alias, command, shell, state, success, exit_code, execution_time_ms
		FROM executions ORDER BY timestamp DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var (
			rec      domain.HistoryRecord
			ts       string
			state    string
			success  int
			exitCode sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.CommandID, &rec.Alias, &rec.Command, &rec.Shell,
			&state, &success, &exitCode, &rec.ExecutionTimeMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timestampLayout, ts); err == nil {
			rec.Timestamp = t
		}
		rec.State = domain.ExecutionState(state)
		rec.Success = success == 1
		if exitCode.Valid {
			code := int(exitCode.Int64)
			rec.ExitCode = &code
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear implements ports.HistoryRepository.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM executions")
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLiteStore)(nil)
