package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"secalerts/internal/domain"
	"secalerts/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_items (
    id      TEXT PRIMARY KEY,
    seen_at TEXT NOT NULL,
    source  TEXT NOT NULL,
    title   TEXT NOT NULL,
    url     TEXT NOT NULL
)`

// SQLiteStore persists delivered item identities in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ ports.SeenStore = (*SQLiteStore)(nil)

// Open creates the database file (and its parent directory) if absent,
// applies the schema, and returns a ready store. Safe to call repeatedly
// against the same path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exists reports whether the identity was committed by any prior cycle,
// including ones run by earlier process invocations.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	query, args, err := sq.Select("1").
		From("seen_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen: %w", err)
	}
	return true, nil
}

// Commit records a delivered item. Re-committing the same id is a no-op:
// the record is written once and never updated.
func (s *SQLiteStore) Commit(ctx context.Context, record domain.SeenRecord) error {
	query, args, err := sq.Insert("seen_items").
		Columns("id", "seen_at", "source", "title", "url").
		Values(record.ID, record.SeenAt.UTC().Format(time.RFC3339), record.Source, record.Title, record.URL).
		Suffix("ON CONFLICT(id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build commit query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("commit seen: %w", err)
	}
	return nil
}

// Count returns the total number of committed records. Operator
// visibility only; pipeline logic never branches on it.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("seen_items").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count seen: %w", err)
	}
	return count, nil
}
