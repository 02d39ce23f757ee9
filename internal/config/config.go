// Package config handles application configuration from environment variables
// and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Digest delivery modes.
const (
	DigestBoth    = "both"
	DigestFile    = "file"
	DigestMessage = "message"
)

// Config holds the application configuration.
type Config struct {
	FilesDir    string `yaml:"files_dir"`
	PostsDir    string `yaml:"posts_dir"`
	HTMLDir     string `yaml:"html_dir"`
	AnalysisDir string `yaml:"analysis_dir"`

	KeywordsFile    string `yaml:"keywords_file"`
	GroupsFile      string `yaml:"groups_file"`
	CounterFile     string `yaml:"counter_file"`
	DescriptionFile string `yaml:"description_file"`
	LogFile         string `yaml:"log_file"`
	LogLevel        string `yaml:"log_level"`

	StorageBackend string `yaml:"storage_backend"`
	DatabasePath   string `yaml:"database_path"`

	SourceFeedURL          string `yaml:"source_feed_url"`
	WindowHours            int    `yaml:"window_hours"`
	RetentionDays          int    `yaml:"retention_days"`
	PersistCounterEachPost bool   `yaml:"persist_counter_each_post"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id"`
	DigestMode       string `yaml:"digest_mode"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		FilesDir:       "./files",
		PostsDir:       "./telegram_data",
		HTMLDir:        "./html",
		AnalysisDir:    "./analyzed_tables",
		LogLevel:       "info",
		StorageBackend: BackendJSON,
		DatabasePath:   "./data/scanner.db",
		WindowHours:    24,
		RetentionDays:  3,
		DigestMode:     DigestBoth,
		OpenAIBaseURL:  "https://api.openai.com/v1/chat/completions",
		OpenAIModel:    "gpt-4o-mini",
	}
}

// Load reads configuration. Values from the YAML file named by CONFIG_FILE are
// applied first; environment variables override them.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	cfg.fillPaths()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	strs := map[string]*string{
		"FILES_DIR":          &c.FilesDir,
		"POSTS_DIR":          &c.PostsDir,
		"HTML_DIR":           &c.HTMLDir,
		"ANALYSIS_DIR":       &c.AnalysisDir,
		"KEYWORDS_FILE":      &c.KeywordsFile,
		"GROUPS_FILE":        &c.GroupsFile,
		"COUNTER_FILE":       &c.CounterFile,
		"DESCRIPTION_FILE":   &c.DescriptionFile,
		"LOG_FILE":           &c.LogFile,
		"LOG_LEVEL":          &c.LogLevel,
		"STORAGE_BACKEND":    &c.StorageBackend,
		"DATABASE_PATH":      &c.DatabasePath,
		"SOURCE_FEED_URL":    &c.SourceFeedURL,
		"TELEGRAM_BOT_TOKEN": &c.TelegramBotToken,
		"DIGEST_MODE":        &c.DigestMode,
		"OPENAI_API_KEY":     &c.OpenAIAPIKey,
		"OPENAI_BASE_URL":    &c.OpenAIBaseURL,
		"OPENAI_MODEL":       &c.OpenAIModel,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WINDOW_HOURS":   &c.WindowHours,
		"RETENTION_DAYS": &c.RetentionDays,
	}
	for key, dst := range ints {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		c.TelegramChatID = id
	}

	if v := strings.TrimSpace(os.Getenv("PERSIST_COUNTER_EACH_POST")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PERSIST_COUNTER_EACH_POST %q: %w", v, err)
		}
		c.PersistCounterEachPost = b
	}
	return nil
}

func (c *Config) fillPaths() {
	defaults := []struct {
		dst  *string
		name string
	}{
		{&c.KeywordsFile, "keywords.txt"},
		{&c.GroupsFile, "telegram_groups.txt"},
		{&c.CounterFile, "last_post_id.json"},
		{&c.DescriptionFile, "full_description.txt"},
		{&c.LogFile, "script.log"},
	}
	for _, d := range defaults {
		if *d.dst == "" {
			*d.dst = filepath.Join(c.FilesDir, d.name)
		}
	}
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q, use: json, sqlite", c.StorageBackend)
	}
	switch c.DigestMode {
	case DigestBoth, DigestFile, DigestMessage:
	default:
		return fmt.Errorf("invalid DIGEST_MODE %q, use: both, file, message", c.DigestMode)
	}
	if c.WindowHours < 1 {
		return fmt.Errorf("WINDOW_HOURS must be positive, got %d", c.WindowHours)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("RETENTION_DAYS must not be negative, got %d", c.RetentionDays)
	}
	return nil
}

// Window returns the scan window length.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// Retention returns how long output files are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// TelegramConfigured reports whether digest delivery credentials are set.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// RequireSourceFeed checks the settings needed to scan sources.
func (c *Config) RequireSourceFeed() error {
	if c.SourceFeedURL == "" {
		return fmt.Errorf("SOURCE_FEED_URL is required")
	}
	return nil
}

// RequireOpenAI checks the settings needed by the analysis pass.
func (c *Config) RequireOpenAI() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}
