package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "imap.gmail.com", cfg.Mailbox.Host)
	assert.Equal(t, "993", cfg.Mailbox.Port)
	assert.Equal(t, "INBOX", cfg.Mailbox.Folder)
	assert.Equal(t, 10, cfg.Mailbox.Limit)
	assert.NotEmpty(t, cfg.Summarizer.Model)
	assert.NotEmpty(t, cfg.CachePath)
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Mailbox.Host = "mail.example.org"
	cfg.Mailbox.Username = "user@example.org"
	cfg.Mailbox.Limit = 25

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mail.example.org", loaded.Mailbox.Host)
	assert.Equal(t, "user@example.org", loaded.Mailbox.Username)
	assert.Equal(t, 25, loaded.Mailbox.Limit)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mailbox:\n  host: imap.fastmail.com\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "imap.fastmail.com", cfg.Mailbox.Host)
	assert.Equal(t, "993", cfg.Mailbox.Port)
	assert.Equal(t, 10, cfg.Mailbox.Limit)
}

func TestLoadConfigRejectsNonPositiveLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mailbox:\n  limit: -3\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Mailbox.Limit)
}
