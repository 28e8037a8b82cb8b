// Package pipeline wires the fetch, decode, categorize, summarize, and
// persist stages into a single session object owned by the caller.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/cache"
	"github.com/nhle/mail-triage/internal/classify"
	"github.com/nhle/mail-triage/internal/decode"
	"github.com/nhle/mail-triage/internal/mailbox"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/store"
	"github.com/nhle/mail-triage/internal/summarize"
)

// ErrFetchInProgress is returned when Refresh is called while another
// refresh is still running. Triggers are rejected, not queued.
var ErrFetchInProgress = errors.New("a fetch is already in progress")

// Status classifies the outcome of a refresh. Callers that only look
// at Records see the legacy contract: any failure is an empty list.
type Status string

const (
	// StatusOK: messages were fetched and enriched.
	StatusOK Status = "ok"

	// StatusEmpty: the fetch succeeded but the folder had no messages.
	StatusEmpty Status = "empty"

	// StatusAuthFailed: the server rejected the credentials.
	StatusAuthFailed Status = "auth_failed"

	// StatusUnavailable: the server could not be reached.
	StatusUnavailable Status = "unavailable"

	// StatusFailed: any other fetch error.
	StatusFailed Status = "failed"

	// StatusBusy: another refresh was already in flight.
	StatusBusy Status = "busy"
)

// Result is the outcome of one refresh. Records is empty on any
// failure; Status and Err say why.
type Result struct {
	Records []model.EmailRecord
	Status  Status
	Err     error
}

// Failed reports whether the refresh did not complete.
func (r Result) Failed() bool {
	return r.Status != StatusOK && r.Status != StatusEmpty
}

// Fetcher retrieves raw messages from a mailbox. *mailbox.Client is
// the production implementation.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		creds mailbox.Credentials,
		folder string,
		limit int,
	) ([]mailbox.RawMessage, error)
}

// Session runs the pipeline and owns the current record list. It
// replaces the global mutable state of a UI re-render loop with an
// explicit object: construct one per dashboard session, seed it from
// the cache, and call Refresh on user action.
type Session struct {
	fetcher    Fetcher
	summarizer *summarize.Summarizer
	cache      *cache.Store
	history    store.Store
	log        *zap.Logger

	mu      sync.Mutex
	busy    bool
	records []model.EmailRecord
}

// NewSession creates a session seeded with the cached snapshot, so the
// dashboard has content before any network call.
func NewSession(
	fetcher Fetcher,
	summarizer *summarize.Summarizer,
	cacheStore *cache.Store,
	history store.Store,
	log *zap.Logger,
) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		fetcher:    fetcher,
		summarizer: summarizer,
		cache:      cacheStore,
		history:    history,
		log:        log,
		records:    cacheStore.Load(),
	}
}

// Cached returns the active record set: the last successful fetch, or
// the on-disk snapshot before the first one.
func (s *Session) Cached() []model.EmailRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.EmailRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Refresh runs one fetch-enrich-persist pass. On success the active
// set is replaced wholesale and written to the cache; on failure the
// previous set stays active and Records comes back empty. At most one
// refresh runs at a time; concurrent triggers get StatusBusy.
func (s *Session) Refresh(
	ctx context.Context,
	creds mailbox.Credentials,
	folder string,
	limit int,
) Result {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Result{Status: StatusBusy, Err: ErrFetchInProgress}
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	startedAt := time.Now()

	rawMessages, err := s.fetcher.Fetch(ctx, creds, folder, limit)
	if err != nil {
		status := fetchErrorStatus(err)
		s.log.Error("fetching emails",
			zap.String("folder", folder),
			zap.Int("limit", limit),
			zap.String("status", string(status)),
			zap.Error(err))
		s.journal(ctx, startedAt, folder, limit, status, 0, err)
		return Result{Status: status, Err: err}
	}

	records := s.enrich(ctx, rawMessages)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	// A save failure must not hide the freshly fetched records; it is
	// logged inside the store and the result stays successful.
	if err := s.cache.Save(records); err != nil {
		s.log.Warn("cache not updated, serving records from memory", zap.Error(err))
	}

	status := StatusOK
	if len(records) == 0 {
		status = StatusEmpty
	}
	s.journal(ctx, startedAt, folder, limit, status, len(records), nil)

	return Result{Records: records, Status: status}
}

// enrich decodes and enriches messages sequentially, preserving fetch
// order. Every returned record has a category and a summary.
func (s *Session) enrich(ctx context.Context, rawMessages []mailbox.RawMessage) []model.EmailRecord {
	records := make([]model.EmailRecord, 0, len(rawMessages))
	for _, raw := range rawMessages {
		rec := decode.Message(raw)
		rec.Category = classify.Categorize(rec.Subject)
		rec.Summary = s.summarizer.Summarize(ctx, rec.Content)
		records = append(records, rec)
	}
	return records
}

// journal records the attempt in the fetch history. Journal failures
// are logged and otherwise ignored; history is diagnostic only.
func (s *Session) journal(
	ctx context.Context,
	startedAt time.Time,
	folder string,
	limit int,
	status Status,
	count int,
	fetchErr error,
) {
	if s.history == nil {
		return
	}

	rec := store.FetchRecord{
		StartedAt:    startedAt,
		Folder:       folder,
		FetchLimit:   limit,
		Status:       string(status),
		MessageCount: count,
	}
	if fetchErr != nil {
		rec.Error = fetchErr.Error()
	}

	if err := s.history.RecordFetch(ctx, rec); err != nil {
		s.log.Warn("recording fetch history", zap.Error(err))
	}
}

// fetchErrorStatus maps a fetch error to its status.
func fetchErrorStatus(err error) Status {
	switch {
	case mailbox.IsAuthError(err):
		return StatusAuthFailed
	case mailbox.IsConnectError(err):
		return StatusUnavailable
	default:
		return StatusFailed
	}
}
