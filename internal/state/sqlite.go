package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timestampLayout stores UTC instants without a zone suffix.
const timestampLayout = "2006-01-02T15:04:05.999999"

const sourceMetadataSchema = `
	CREATE TABLE IF NOT EXISTS source_metadata (
		url TEXT PRIMARY KEY,
		last_successful_run TEXT
	);
`

type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens the database at path, creating parent directories
// and the schema when missing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.CreateSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

func (s *SQLiteStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sourceMetadataSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetLastRun(ctx context.Context, sourceURL string) (time.Time, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT last_successful_run FROM source_metadata WHERE url = ?", sourceURL,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying source %s: %w", sourceURL, err)
	}
	if !value.Valid || value.String == "" {
		return time.Time{}, nil
	}
	return parseTimestamp(value.String)
}

func (s *SQLiteStore) RecordRun(ctx context.Context, sourceURL string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_metadata (url, last_successful_run) VALUES (?, ?)
		ON CONFLICT(url) DO UPDATE SET last_successful_run = excluded.last_successful_run
	`, sourceURL, formatTimestamp(t))
	if err != nil {
		return fmt.Errorf("updating source %s: %w", sourceURL, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp reads a stored marker. Values without a zone are UTC.
func parseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", v, err)
	}
	return t.UTC(), nil
}
