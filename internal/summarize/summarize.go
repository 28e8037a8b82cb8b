// Package summarize produces short abstractive summaries of email
// bodies, degrading gracefully instead of failing the batch.
package summarize

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// FailureMessage is returned when the capability fails for any reason.
const FailureMessage = "Unable to generate summary."

const (
	// minInputWords is the threshold below which summarization adds
	// no value; shorter content is returned unchanged.
	minInputWords = 10

	// minSummaryWords and maxSummaryCap bound the output budget.
	minSummaryWords = 30
	maxSummaryCap   = 130
)

// Capability is the abstractive summarization black box. The word
// bounds are advisory targets; implementations must use deterministic
// decoding.
type Capability interface {
	Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error)
}

// Summarizer wraps a Capability with the length-adaptive budget and
// the degrade-not-fail policy. Construct once and reuse; the
// capability handle is expected to be long-lived.
type Summarizer struct {
	capability Capability
	log        *zap.Logger
}

// New creates a Summarizer around the given capability.
func New(capability Capability, log *zap.Logger) *Summarizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Summarizer{capability: capability, log: log}
}

// Summarize returns a summary of content, content itself when it has
// fewer than 10 words, or FailureMessage when the capability errors.
// It never returns an error; one bad message must not abort a batch.
func (s *Summarizer) Summarize(ctx context.Context, content string) string {
	words := len(strings.Fields(content))
	if words < minInputWords {
		return content
	}

	// No capability configured (e.g. missing API key) is treated the
	// same as a capability failure.
	if s.capability == nil {
		return FailureMessage
	}

	maxWords := maxSummaryCap
	if budget := 2 * words; budget < maxWords {
		maxWords = budget
	}

	summary, err := s.capability.Summarize(ctx, content, minSummaryWords, maxWords)
	if err != nil {
		s.log.Error("summarizing text",
			zap.Int("input_words", words),
			zap.Error(err))
		return FailureMessage
	}

	return summary
}
