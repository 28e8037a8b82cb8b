package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordFetch inserts one fetch attempt into the journal. A missing ID
// gets a new UUID.
func (s *SQLiteStore) RecordFetch(ctx context.Context, rec FetchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetches (
			id, started_at, folder, fetch_limit, status, message_count, error
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt.UTC(), rec.Folder, rec.FetchLimit,
		rec.Status, rec.MessageCount, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("recording fetch %s: %w", rec.ID, err)
	}

	return nil
}

// RecentFetches returns the latest fetch attempts, newest first.
func (s *SQLiteStore) RecentFetches(ctx context.Context, limit int) ([]FetchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []FetchRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, started_at, folder, fetch_limit, status, message_count, error
		FROM fetches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying fetch history: %w", err)
	}

	return records, nil
}

// LastFetch returns the most recent fetch attempt, or nil when the
// journal is empty.
func (s *SQLiteStore) LastFetch(ctx context.Context) (*FetchRecord, error) {
	var rec FetchRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT id, started_at, folder, fetch_limit, status, message_count, error
		FROM fetches ORDER BY started_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last fetch: %w", err)
	}

	return &rec, nil
}
