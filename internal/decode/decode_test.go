package decode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/mail-triage/internal/mailbox"
	"github.com/nhle/mail-triage/internal/model"
)

// msg joins lines with CRLF as they arrive off the wire.
func msg(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestMessageSinglePart(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 42,
		Body: msg(
			"Subject: Quarterly report",
			"From: alice@example.com",
			"Date: Mon, 06 Jan 2025 10:00:00 +0000",
			"Content-Type: text/plain",
			"",
			"The report is attached.",
		),
	}

	rec := Message(raw)

	assert.Equal(t, uint32(42), rec.ID)
	assert.Equal(t, "Quarterly report", rec.Subject)
	assert.Equal(t, "alice@example.com", rec.From)
	assert.Equal(t, "Mon, 06 Jan 2025 10:00:00 +0000", rec.Date)
	assert.Equal(t, "The report is attached.", rec.Content)
}

func TestMessageMissingHeaders(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 7,
		Body: msg(
			"Content-Type: text/plain",
			"",
			"body only",
		),
	}

	rec := Message(raw)

	assert.Equal(t, model.NoSubject, rec.Subject)
	assert.Equal(t, model.UnknownFrom, rec.From)
	assert.Equal(t, model.UnknownDate, rec.Date)
	assert.Equal(t, "body only", rec.Content)
}

func TestMessageEmptySinglePartBody(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 1,
		Body: msg(
			"Subject: empty",
			"Content-Type: text/plain",
			"",
			"",
		),
	}

	rec := Message(raw)

	assert.Equal(t, model.NoContent, rec.Content)
}

func TestMessageMultipartPrefersFirstTextPlain(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 3,
		Body: msg(
			"Subject: mixed",
			"Content-Type: multipart/alternative; boundary=\"xyz\"",
			"",
			"--xyz",
			"Content-Type: text/html",
			"",
			"<p>rich version</p>",
			"--xyz",
			"Content-Type: text/plain",
			"",
			"plain version",
			"--xyz",
			"Content-Type: text/plain",
			"",
			"second plain version",
			"--xyz--",
			"",
		),
	}

	rec := Message(raw)

	assert.Equal(t, "plain version", rec.Content)
}

func TestMessageMultipartWithoutTextPlain(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 4,
		Body: msg(
			"Subject: html only",
			"Content-Type: multipart/alternative; boundary=\"xyz\"",
			"",
			"--xyz",
			"Content-Type: text/html",
			"",
			"<p>only html</p>",
			"--xyz--",
			"",
		),
	}

	rec := Message(raw)

	assert.Equal(t, model.NoTextContent, rec.Content)
}

func TestMessageMultipartSkipsEmptyTextPlain(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 5,
		Body: msg(
			"Subject: sparse",
			"Content-Type: multipart/mixed; boundary=\"xyz\"",
			"",
			"--xyz",
			"Content-Type: text/plain",
			"",
			"--xyz",
			"Content-Type: text/plain",
			"",
			"the real body",
			"--xyz--",
			"",
		),
	}

	rec := Message(raw)

	assert.Equal(t, "the real body", rec.Content)
}

func TestMessageNestedMultipart(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 6,
		Body: msg(
			"Subject: nested",
			"Content-Type: multipart/mixed; boundary=\"outer\"",
			"",
			"--outer",
			"Content-Type: multipart/alternative; boundary=\"inner\"",
			"",
			"--inner",
			"Content-Type: text/html",
			"",
			"<p>html</p>",
			"--inner",
			"Content-Type: text/plain",
			"",
			"nested plain",
			"--inner--",
			"--outer--",
			"",
		),
	}

	rec := Message(raw)

	assert.Equal(t, "nested plain", rec.Content)
}

func TestMessageEncodedSubject(t *testing.T) {
	raw := mailbox.RawMessage{
		UID: 8,
		Body: msg(
			"Subject: =?utf-8?q?Caf=C3=A9_receipt?=",
			"Content-Type: text/plain",
			"",
			"thanks for visiting",
		),
	}

	rec := Message(raw)

	assert.Equal(t, "Café receipt", rec.Subject)
}

func TestMessageInvalidUTF8Replaced(t *testing.T) {
	body := append(msg(
		"Subject: binary noise",
		"Content-Type: text/plain",
		"",
		"",
	), 0xff, 0xfe, 'o', 'k')

	rec := Message(mailbox.RawMessage{UID: 9, Body: body})

	assert.Contains(t, rec.Content, "�")
	assert.Contains(t, rec.Content, "ok")
}

func TestMessageGarbageBytes(t *testing.T) {
	rec := Message(mailbox.RawMessage{UID: 10, Body: []byte("\x00\x01\x02")})

	// Decoding is total: garbage still yields a record with placeholders.
	assert.Equal(t, uint32(10), rec.ID)
	assert.Equal(t, model.NoSubject, rec.Subject)
	assert.Equal(t, model.UnknownFrom, rec.From)
}
