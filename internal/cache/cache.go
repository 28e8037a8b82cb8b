// Package cache persists the most recent enriched fetch result to a
// JSON file so the dashboard has content before any network call.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/model"
)

// Store reads and writes the on-disk record snapshot. The file holds
// exactly one fetch's full record list; Save replaces it wholesale.
// Single-writer, single-reader per process.
type Store struct {
	path string
	log  *zap.Logger
}

// New creates a store backed by the file at path.
func New(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Save writes records as an indented JSON array, replacing any prior
// content. The write goes to a temp file first and is renamed into
// place so a crash mid-write cannot corrupt the snapshot.
func (s *Store) Save(records []model.EmailRecord) error {
	if records == nil {
		records = []model.EmailRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.log.Error("encoding cache snapshot", zap.Error(err))
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error("creating cache directory", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".emails-*.json")
	if err != nil {
		s.log.Error("creating cache temp file", zap.Error(err))
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.log.Error("writing cache snapshot", zap.Error(err))
		return fmt.Errorf("writing cache snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cache temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		s.log.Error("replacing cache snapshot", zap.Error(err))
		return fmt.Errorf("replacing cache snapshot: %w", err)
	}

	s.log.Info("cache snapshot written",
		zap.String("path", s.path),
		zap.Int("records", len(records)))

	return nil
}

// Load reads the snapshot if present and well-formed. An absent,
// unreadable, or malformed file yields an empty list, never an error;
// startup must not block on a bad cache.
func (s *Store) Load() []model.EmailRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("reading cache snapshot", zap.Error(err))
		}
		return nil
	}

	var records []model.EmailRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("cache snapshot is malformed, ignoring",
			zap.String("path", s.path),
			zap.Error(err))
		return nil
	}

	return records
}
