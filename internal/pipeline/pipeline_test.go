package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mail-triage/internal/cache"
	"github.com/nhle/mail-triage/internal/mailbox"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/pipeline"
	"github.com/nhle/mail-triage/internal/store"
	"github.com/nhle/mail-triage/internal/summarize"
	"github.com/nhle/mail-triage/tests/testutil"
)

type fakeFetcher struct {
	messages []mailbox.RawMessage
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ mailbox.Credentials, _ string, _ int) ([]mailbox.RawMessage, error) {
	return f.messages, f.err
}

// blockingFetcher parks until released, to hold a refresh in flight.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(_ context.Context, _ mailbox.Credentials, _ string, _ int) ([]mailbox.RawMessage, error) {
	close(f.started)
	<-f.release
	return nil, nil
}

type echoCapability struct{}

func (echoCapability) Summarize(_ context.Context, text string, _, _ int) (string, error) {
	words := strings.Fields(text)
	return "summary of " + words[0], nil
}

type failingCapability struct{}

func (failingCapability) Summarize(context.Context, string, int, int) (string, error) {
	return "", errors.New("model overloaded")
}

func rawMessage(uid uint32, subject, body string) mailbox.RawMessage {
	return mailbox.RawMessage{
		UID: uid,
		Body: []byte(strings.Join([]string{
			"Subject: " + subject,
			"From: sender@example.com",
			"Date: Mon, 06 Jan 2025 10:00:00 +0000",
			"Content-Type: text/plain",
			"",
			body,
		}, "\r\n")),
	}
}

func longBody(lead string) string {
	return lead + " " + strings.TrimSpace(strings.Repeat("word ", 20))
}

func newSession(t *testing.T, fetcher pipeline.Fetcher, capability summarize.Capability) (*pipeline.Session, *cache.Store, *store.SQLiteStore) {
	t.Helper()

	cacheStore := cache.New(filepath.Join(t.TempDir(), "emails.json"), nil)
	history := testutil.NewTestStore(t)
	session := pipeline.NewSession(
		fetcher,
		summarize.New(capability, nil),
		cacheStore,
		history,
		nil,
	)
	return session, cacheStore, history
}

func TestRefreshEnrichesInOrder(t *testing.T) {
	fetcher := &fakeFetcher{messages: []mailbox.RawMessage{
		rawMessage(1, "Invoice attached", longBody("first")),
		rawMessage(2, "Team meeting notes", longBody("second")),
		rawMessage(3, "Family photos", longBody("third")),
	}}
	session, cacheStore, _ := newSession(t, fetcher, echoCapability{})

	result := session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)

	require.Equal(t, pipeline.StatusOK, result.Status)
	require.NoError(t, result.Err)
	require.Len(t, result.Records, 3)

	assert.Equal(t, []uint32{1, 2, 3}, recordIDs(result.Records))
	assert.Equal(t, model.CategoryFinance, result.Records[0].Category)
	assert.Equal(t, model.CategoryWork, result.Records[1].Category)
	assert.Equal(t, model.CategoryOthers, result.Records[2].Category)
	assert.Equal(t, "summary of first", result.Records[0].Summary)
	for _, rec := range result.Records {
		assert.True(t, rec.Enriched(), "record %d must carry category and summary", rec.ID)
	}

	// The snapshot on disk matches the active set.
	assert.Equal(t, result.Records, cacheStore.Load())
	assert.Equal(t, result.Records, session.Cached())
}

func TestRefreshEmptyMailbox(t *testing.T) {
	session, cacheStore, history := newSession(t, &fakeFetcher{}, echoCapability{})

	// Seed a previous snapshot to prove the empty fetch replaces it.
	require.NoError(t, cacheStore.Save([]model.EmailRecord{{ID: 1, Subject: "old"}}))

	result := session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)

	assert.Equal(t, pipeline.StatusEmpty, result.Status)
	assert.Empty(t, result.Records)
	assert.False(t, result.Failed())
	assert.Empty(t, cacheStore.Load())

	last, err := history.LastFetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, store.StatusEmpty, last.Status)
	assert.Equal(t, 0, last.MessageCount)
}

func TestRefreshAuthFailureKeepsActiveSet(t *testing.T) {
	fetcher := &fakeFetcher{messages: []mailbox.RawMessage{
		rawMessage(1, "hello", longBody("first")),
	}}
	session, cacheStore, history := newSession(t, fetcher, echoCapability{})

	first := session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)
	require.Equal(t, pipeline.StatusOK, first.Status)

	fetcher.messages = nil
	fetcher.err = fmt.Errorf("logging in: %w",
		&mailbox.AuthError{Username: "a@b.c", Err: errors.New("LOGIN failed")})

	result := session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)

	assert.Equal(t, pipeline.StatusAuthFailed, result.Status)
	assert.True(t, result.Failed())
	assert.Error(t, result.Err)
	assert.Empty(t, result.Records)

	// Previous records stay active in memory and on disk.
	assert.Equal(t, first.Records, session.Cached())
	assert.Equal(t, first.Records, cacheStore.Load())

	last, err := history.LastFetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, store.StatusAuthFailed, last.Status)
	assert.Contains(t, last.Error, "LOGIN failed")
}

func TestRefreshConnectFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: &mailbox.ConnectError{
		Addr: "imap.example.com:993",
		Err:  errors.New("connection refused"),
	}}
	session, _, _ := newSession(t, fetcher, echoCapability{})

	result := session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)

	assert.Equal(t, pipeline.StatusUnavailable, result.Status)
	assert.Empty(t, result.Records)
}

func TestRefreshGenericFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("folder does not exist")}
	session, _, _ := newSession(t, fetcher, echoCapability{})

	result := session.Refresh(context.Background(), mailbox.Credentials{}, "Archive", 5)

	assert.Equal(t, pipeline.StatusFailed, result.Status)
}

func TestRefreshSummaryFailureDegrades(t *testing.T) {
	fetcher := &fakeFetcher{messages: []mailbox.RawMessage{
		rawMessage(1, "long email", longBody("first")),
		rawMessage(2, "short email", "tiny"),
	}}
	session, _, _ := newSession(t, fetcher, failingCapability{})

	result := session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)

	require.Equal(t, pipeline.StatusOK, result.Status)
	require.Len(t, result.Records, 2)
	assert.Equal(t, summarize.FailureMessage, result.Records[0].Summary)
	// Short content bypasses the capability and survives intact.
	assert.Equal(t, "tiny", result.Records[1].Summary)
}

func TestRefreshRejectsConcurrentTrigger(t *testing.T) {
	fetcher := &blockingFetcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	session, _, _ := newSession(t, fetcher, echoCapability{})

	done := make(chan pipeline.Result, 1)
	go func() {
		done <- session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)
	}()

	<-fetcher.started
	busy := session.Refresh(context.Background(), mailbox.Credentials{}, "INBOX", 5)
	assert.Equal(t, pipeline.StatusBusy, busy.Status)
	assert.ErrorIs(t, busy.Err, pipeline.ErrFetchInProgress)

	close(fetcher.release)
	first := <-done
	assert.Equal(t, pipeline.StatusEmpty, first.Status)
}

func TestNewSessionSeedsFromCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "emails.json")
	seed := cache.New(cachePath, nil)
	records := []model.EmailRecord{{ID: 5, Subject: "cached", Category: model.CategoryOthers, Summary: "s"}}
	require.NoError(t, seed.Save(records))

	session := pipeline.NewSession(
		&fakeFetcher{},
		summarize.New(echoCapability{}, nil),
		cache.New(cachePath, nil),
		testutil.NewTestStore(t),
		nil,
	)

	assert.Equal(t, records, session.Cached())
}

func recordIDs(records []model.EmailRecord) []uint32 {
	ids := make([]uint32, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}
