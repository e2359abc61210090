// Package kvstore provides a small SQLite-backed key/value store used as
// the persistent tier of the translation cache.
package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a string key/value table with prefix scan support.
type Store struct {
	db   *sql.DB
	path string
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// Open creates or connects to a key/value database at path, creating
// parent directories as needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("kvstore path required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create kvstore directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open kvstore db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Get returns the value for key. The second return is false when the key
// is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore get: %w", err)
	}
	return value, true, nil
}

// Put writes or overwrites the value for key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("kvstore put: %w", err)
	}
	return nil
}

// prefixEnd returns the smallest string that sorts after every key
// starting with prefix, by incrementing the last byte below 0xFF. The
// second return is false when no upper bound exists (prefix is empty or
// all 0xFF bytes).
func prefixEnd(prefix string) (string, bool) {
	end := []byte(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return string(end[:i+1]), true
		}
	}
	return "", false
}

// prefixRange builds the WHERE clause matching every key with the given
// prefix. SQLite compares TEXT byte-wise under the default BINARY
// collation, same as Go string ordering.
func prefixRange(prefix string) (string, []any) {
	if end, ok := prefixEnd(prefix); ok {
		return `key >= ? AND key < ?`, []any{prefix, end}
	}
	return `key >= ?`, []any{prefix}
}

// ScanPrefix returns every key/value pair whose key starts with prefix.
func (s *Store) ScanPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	where, args := prefixRange(prefix)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT key, value FROM kv_entries WHERE `+where,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("kvstore scan: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("kvstore scan row: %w", err)
		}
		entries[key] = value
	}
	return entries, rows.Err()
}

// DeletePrefix removes every key starting with prefix and reports how many
// entries were deleted.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	where, args := prefixRange(prefix)
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM kv_entries WHERE `+where,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("kvstore delete prefix: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM kv_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("kvstore count: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
