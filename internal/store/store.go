package store

import (
	"context"
	"time"
)

// Fetch status values recorded in the journal.
const (
	StatusOK          = "ok"
	StatusEmpty       = "empty"
	StatusAuthFailed  = "auth_failed"
	StatusUnavailable = "unavailable"
	StatusFailed      = "failed"
)

// FetchRecord is one row of the fetch-history journal: a single
// refresh attempt and its outcome. The journal is what lets the UI
// tell "no new mail" apart from "fetch failed", since both produce an
// empty record list.
type FetchRecord struct {
	ID           string    `db:"id"`
	StartedAt    time.Time `db:"started_at"`
	Folder       string    `db:"folder"`
	FetchLimit   int       `db:"fetch_limit"`
	Status       string    `db:"status"`
	MessageCount int       `db:"message_count"`
	Error        string    `db:"error"`
}

// Succeeded reports whether the attempt completed without error.
func (r FetchRecord) Succeeded() bool {
	return r.Status == StatusOK || r.Status == StatusEmpty
}

// Store defines the persistence interface for the fetch journal.
type Store interface {
	RecordFetch(ctx context.Context, rec FetchRecord) error
	RecentFetches(ctx context.Context, limit int) ([]FetchRecord, error)
	LastFetch(ctx context.Context) (*FetchRecord, error)
	Close() error
}
