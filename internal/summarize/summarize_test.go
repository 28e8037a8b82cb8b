package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeCapability records the word bounds it was called with.
type fakeCapability struct {
	summary  string
	err      error
	called   bool
	minWords int
	maxWords int
}

func (f *fakeCapability) Summarize(_ context.Context, _ string, minWords, maxWords int) (string, error) {
	f.called = true
	f.minWords = minWords
	f.maxWords = maxWords
	return f.summary, f.err
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestSummarizeShortContentPassthrough(t *testing.T) {
	fake := &fakeCapability{summary: "should not be used"}
	s := New(fake, nil)

	content := words(9)
	got := s.Summarize(context.Background(), content)

	assert.Equal(t, content, got)
	assert.False(t, fake.called, "capability must not be invoked for short content")
}

func TestSummarizeBudget(t *testing.T) {
	tests := []struct {
		name         string
		inputWords   int
		wantMaxWords int
	}{
		{"at threshold", 10, 20},
		{"budget below cap", 50, 100},
		{"budget at cap", 65, 130},
		{"budget capped", 200, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCapability{summary: "a short summary"}
			s := New(fake, nil)

			got := s.Summarize(context.Background(), words(tt.inputWords))

			assert.Equal(t, "a short summary", got)
			assert.True(t, fake.called)
			assert.Equal(t, 30, fake.minWords)
			assert.Equal(t, tt.wantMaxWords, fake.maxWords)
		})
	}
}

func TestSummarizeCapabilityError(t *testing.T) {
	fake := &fakeCapability{err: errors.New("api unreachable")}
	s := New(fake, nil)

	got := s.Summarize(context.Background(), words(40))

	assert.Equal(t, FailureMessage, got)
}

func TestSummarizeNoCapability(t *testing.T) {
	s := New(nil, nil)

	// Short content still passes through untouched.
	assert.Equal(t, "too short", s.Summarize(context.Background(), "too short"))

	// Long content degrades to the failure message.
	assert.Equal(t, FailureMessage, s.Summarize(context.Background(), words(40)))
}
