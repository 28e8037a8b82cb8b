// Package decode turns raw message bytes into a partial EmailRecord.
// Decoding is total: malformed MIME, unknown charsets, and missing
// headers all resolve to placeholder values, never an error.
package decode

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"

	"github.com/nhle/mail-triage/internal/mailbox"
	"github.com/nhle/mail-triage/internal/model"
)

// Message parses raw MIME bytes into a normalized record with id,
// subject, from, date, and a best-effort plain-text body. Category and
// summary are left for the enrichment stage.
func Message(raw mailbox.RawMessage) model.EmailRecord {
	rec := model.EmailRecord{
		ID:      raw.UID,
		Subject: model.NoSubject,
		From:    model.UnknownFrom,
		Date:    model.UnknownDate,
		Content: model.NoContent,
	}

	entity, err := message.Read(bytes.NewReader(raw.Body))
	if entity == nil {
		return rec
	}
	if err != nil && !message.IsUnknownCharset(err) {
		// Headers may still have parsed; keep whatever is usable.
		fillHeaders(&rec, entity)
		return rec
	}

	fillHeaders(&rec, entity)

	if mr := entity.MultipartReader(); mr != nil {
		content, found := firstTextPlain(mr)
		if !found || content == "" {
			rec.Content = model.NoTextContent
		} else {
			rec.Content = content
		}
		return rec
	}

	body, err := io.ReadAll(entity.Body)
	if err != nil || len(body) == 0 {
		rec.Content = model.NoContent
		return rec
	}
	rec.Content = toUTF8(body)

	return rec
}

// fillHeaders extracts subject/from/date with fixed fallbacks.
// RFC 2047 encoded words are decoded best-effort.
func fillHeaders(rec *model.EmailRecord, entity *message.Entity) {
	dec := &mime.WordDecoder{CharsetReader: charset.Reader}

	if s := entity.Header.Get("Subject"); s != "" {
		if decoded, err := dec.DecodeHeader(s); err == nil {
			rec.Subject = decoded
		} else {
			rec.Subject = s
		}
	}
	if f := entity.Header.Get("From"); f != "" {
		if decoded, err := dec.DecodeHeader(f); err == nil {
			rec.From = decoded
		} else {
			rec.From = f
		}
	}
	if d := entity.Header.Get("Date"); d != "" {
		rec.Date = d
	}
}

// firstTextPlain walks parts in document order, descending into nested
// multiparts, and returns the body of the first text/plain part that
// has a non-empty payload.
func firstTextPlain(mr message.MultipartReader) (string, bool) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", false
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return "", false
		}

		if nested := part.MultipartReader(); nested != nil {
			if content, found := firstTextPlain(nested); found {
				return content, true
			}
			continue
		}

		mediaType, _, _ := part.Header.ContentType()
		if mediaType != "text/plain" {
			continue
		}

		body, err := io.ReadAll(part.Body)
		if err != nil || len(body) == 0 {
			continue
		}
		return toUTF8(body), true
	}
}

// toUTF8 converts decoded payload bytes to a valid UTF-8 string,
// replacing invalid sequences instead of failing.
func toUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
