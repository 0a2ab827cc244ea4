// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/connectapp/connect-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for the Connect server.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// Pragmas are per connection, so they ride on the DSN and the driver
	// applies them to every connection in the pool.
	pragmas := []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"foreign_keys(1)",
		"busy_timeout(5000)",
	}
	q := make(url.Values)
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite database opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Shutdown implements do.Shutdowner.
func (s *Store) Shutdown() error {
	return s.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString returns a sql.NullString that is NULL for the empty string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullInt64 returns a sql.NullInt64 that is NULL for zero.
func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

// encodeTags stores a tag list as a JSON array. A nil list is stored as NULL.
func encodeTags(tags []string) (sql.NullString, error) {
	if tags == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode tags: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeTags is the inverse of encodeTags.
func decodeTags(s sql.NullString) ([]string, error) {
	if !s.Valid {
		return nil, nil
	}
	tags := []string{}
	if err := json.Unmarshal([]byte(s.String), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
