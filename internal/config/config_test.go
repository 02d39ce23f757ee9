package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var envKeys = []string{
	"CONFIG_FILE", "FILES_DIR", "POSTS_DIR", "HTML_DIR", "ANALYSIS_DIR",
	"KEYWORDS_FILE", "GROUPS_FILE", "COUNTER_FILE", "DESCRIPTION_FILE", "LOG_FILE", "LOG_LEVEL",
	"STORAGE_BACKEND", "DATABASE_PATH", "SOURCE_FEED_URL", "WINDOW_HOURS", "RETENTION_DAYS",
	"PERSIST_COUNTER_EACH_POST", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DIGEST_MODE",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func withPaths(c *Config) *Config {
	c.fillPaths()
	return c
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "defaults applied",
			env:  map[string]string{},
			want: withPaths(Default()),
		},
		{
			name: "values set",
			env: map[string]string{
				"FILES_DIR":                 "/srv/scanner/files",
				"LOG_LEVEL":                 "debug",
				"STORAGE_BACKEND":           "sqlite",
				"SOURCE_FEED_URL":           "https://bridge.example/{id}.xml",
				"WINDOW_HOURS":              "12",
				"PERSIST_COUNTER_EACH_POST": "true",
				"TELEGRAM_BOT_TOKEN":        "tok",
				"TELEGRAM_CHAT_ID":          "-100200",
				"DIGEST_MODE":               "file",
				"KEYWORDS_FILE":             "/etc/scanner/keywords.txt",
			},
			want: func() *Config {
				c := Default()
				c.FilesDir = "/srv/scanner/files"
				c.LogLevel = "debug"
				c.StorageBackend = BackendSQLite
				c.SourceFeedURL = "https://bridge.example/{id}.xml"
				c.WindowHours = 12
				c.PersistCounterEachPost = true
				c.TelegramBotToken = "tok"
				c.TelegramChatID = -100200
				c.DigestMode = DigestFile
				c.KeywordsFile = "/etc/scanner/keywords.txt"
				return withPaths(c)
			}(),
		},
		{
			name:    "invalid chat id",
			env:     map[string]string{"TELEGRAM_CHAT_ID": "abc"},
			wantErr: true,
		},
		{
			name:    "invalid backend",
			env:     map[string]string{"STORAGE_BACKEND": "postgres"},
			wantErr: true,
		},
		{
			name:    "invalid window",
			env:     map[string]string{"WINDOW_HOURS": "0"},
			wantErr: true,
		},
		{
			name:    "invalid bool",
			env:     map[string]string{"PERSIST_COUNTER_EACH_POST": "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadDerivedPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("FILES_DIR", "/data/files")

	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]string{
		"keywords":    "/data/files/keywords.txt",
		"groups":      "/data/files/telegram_groups.txt",
		"counter":     "/data/files/last_post_id.json",
		"description": "/data/files/full_description.txt",
		"log":         "/data/files/script.log",
	}
	gotPaths := map[string]string{
		"keywords":    got.KeywordsFile,
		"groups":      got.GroupsFile,
		"counter":     got.CounterFile,
		"description": got.DescriptionFile,
		"log":         got.LogFile,
	}
	if diff := cmp.Diff(want, gotPaths); diff != "" {
		t.Errorf("derived paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	content := "source_feed_url: https://bridge.example/{id}.xml\n" +
		"window_hours: 48\n" +
		"digest_mode: message\n" +
		"openai_model: gpt-test\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OPENAI_MODEL", "gpt-override")

	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.SourceFeedURL = "https://bridge.example/{id}.xml"
	want.WindowHours = 48
	want.DigestMode = DigestMessage
	want.OpenAIModel = "gpt-override"
	if diff := cmp.Diff(withPaths(want), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	if err := os.WriteFile(path, []byte("window_hours: [not an int"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestRequirements(t *testing.T) {
	c := Default()
	if err := c.RequireSourceFeed(); err == nil {
		t.Error("expected missing SOURCE_FEED_URL error")
	}
	if err := c.RequireOpenAI(); err == nil {
		t.Error("expected missing OPENAI_API_KEY error")
	}
	if c.TelegramConfigured() {
		t.Error("expected Telegram to be unconfigured")
	}

	c.SourceFeedURL = "https://bridge.example/{id}.xml"
	c.OpenAIAPIKey = "sk-test"
	c.TelegramBotToken = "tok"
	c.TelegramChatID = 1
	if err := c.RequireSourceFeed(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := c.RequireOpenAI(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !c.TelegramConfigured() {
		t.Error("expected Telegram to be configured")
	}
}
