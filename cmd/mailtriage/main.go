// Command mailtriage is a terminal dashboard that fetches recent
// emails over IMAP, categorizes and summarizes them, and serves the
// result from a local cache between fetches.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mail-triage/internal/app"
	"github.com/nhle/mail-triage/internal/cache"
	"github.com/nhle/mail-triage/internal/credential"
	"github.com/nhle/mail-triage/internal/mailbox"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/pipeline"
	"github.com/nhle/mail-triage/internal/store"
	"github.com/nhle/mail-triage/internal/summarize"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mailtriage: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newFileLogger(cfg.LogPath)
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	history, err := store.NewSQLiteStore(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("opening fetch history: %w", err)
	}
	defer history.Close()

	session := pipeline.NewSession(
		mailbox.New(cfg.Mailbox.Host, cfg.Mailbox.Port, logger),
		summarize.New(loadSummaryCapability(cfg), logger),
		cache.New(cfg.CachePath, logger),
		history,
		logger,
	)

	program := tea.NewProgram(
		app.New(session, cfg, configPath, logger),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// loadSummaryCapability builds the Claude-backed summarizer from the
// API key in the environment or the system keyring. Returns nil when
// no key is available; summaries then degrade to the failure message.
func loadSummaryCapability(cfg *model.AppConfig) summarize.Capability {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		var err error
		apiKey, err = credential.Get(credential.KeyClaudeAPIKey)
		if err != nil || apiKey == "" {
			return nil
		}
	}
	return summarize.NewClaude(apiKey, cfg.Summarizer)
}

// newFileLogger writes structured logs to the configured file, keeping
// stdout free for the terminal UI. Falls back to a no-op logger when
// the file cannot be opened.
func newFileLogger(path string) *zap.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zap.NewNop()
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}

	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
