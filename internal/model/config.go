package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MailboxConfig holds the IMAP server settings. The server endpoint is
// fixed configuration; credentials are supplied interactively.
type MailboxConfig struct {
	// Host is the IMAP server hostname.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the IMAP port (implicit TLS).
	Port string `mapstructure:"port" yaml:"port"`

	// Folder is the mailbox folder to read.
	Folder string `mapstructure:"folder" yaml:"folder"`

	// Limit is how many of the most recent messages to fetch.
	Limit int `mapstructure:"limit" yaml:"limit"`

	// Username prefills the login form when set.
	Username string `mapstructure:"username" yaml:"username"`
}

// SummarizerConfig holds settings for the summarization capability.
type SummarizerConfig struct {
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Mailbox    MailboxConfig    `mapstructure:"mailbox" yaml:"mailbox"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" yaml:"summarizer"`

	// CachePath is where the last fetch's enriched records are written.
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`

	// HistoryPath is the SQLite file recording fetch attempts.
	HistoryPath string `mapstructure:"history_path" yaml:"history_path"`

	// LogPath is where the process writes its log file.
	LogPath string `mapstructure:"log_path" yaml:"log_path"`
}

// ConfigDir returns the directory holding the application's files,
// ~/.config/mailtriage, falling back to the working directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailtriage")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		Mailbox: MailboxConfig{
			Host:   "imap.gmail.com",
			Port:   "993",
			Folder: "INBOX",
			Limit:  10,
		},
		Summarizer: SummarizerConfig{
			Model:     "claude-3-5-haiku-latest",
			MaxTokens: 1024,
		},
		CachePath:   filepath.Join(dir, "emails.json"),
		HistoryPath: filepath.Join(dir, "history.db"),
		LogPath:     filepath.Join(dir, "mailtriage.log"),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("mailbox.host", defaults.Mailbox.Host)
	v.SetDefault("mailbox.port", defaults.Mailbox.Port)
	v.SetDefault("mailbox.folder", defaults.Mailbox.Folder)
	v.SetDefault("mailbox.limit", defaults.Mailbox.Limit)
	v.SetDefault("summarizer.model", defaults.Summarizer.Model)
	v.SetDefault("summarizer.max_tokens", defaults.Summarizer.MaxTokens)
	v.SetDefault("cache_path", defaults.CachePath)
	v.SetDefault("history_path", defaults.HistoryPath)
	v.SetDefault("log_path", defaults.LogPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Mailbox.Limit <= 0 {
		cfg.Mailbox.Limit = defaults.Mailbox.Limit
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("mailbox", cfg.Mailbox)
	v.Set("summarizer", cfg.Summarizer)
	v.Set("cache_path", cfg.CachePath)
	v.Set("history_path", cfg.HistoryPath)
	v.Set("log_path", cfg.LogPath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
