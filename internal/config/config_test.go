// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, defaults, env var expansion, and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quill.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "./test.db"

model:
  name: "gemini-2.5-pro"
  timeout: "90s"

chat:
  history_window: 32
  max_steps: 8

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Model.Name != "gemini-2.5-pro" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "gemini-2.5-pro")
	}
	if cfg.Model.Timeout != 90*time.Second {
		t.Errorf("Model.Timeout = %v, want 90s", cfg.Model.Timeout)
	}
	if cfg.Chat.HistoryWindow != 32 {
		t.Errorf("Chat.HistoryWindow = %d, want 32", cfg.Chat.HistoryWindow)
	}
	if cfg.Chat.MaxSteps != 8 {
		t.Errorf("Chat.MaxSteps = %d, want 8", cfg.Chat.MaxSteps)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if cfg.Model.Name != want.Model.Name {
		t.Errorf("Model.Name = %q, want default %q", cfg.Model.Name, want.Model.Name)
	}
	if cfg.Chat.HistoryWindow != want.Chat.HistoryWindow {
		t.Errorf("Chat.HistoryWindow = %d, want default %d", cfg.Chat.HistoryWindow, want.Chat.HistoryWindow)
	}
	if cfg.Model.Timeout != 60*time.Second {
		t.Errorf("Model.Timeout = %v, want 60s", cfg.Model.Timeout)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/x.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Model.Name != "gemini-2.0-flash" {
		t.Errorf("Model.Name = %q, want default", cfg.Model.Name)
	}
	if cfg.Chat.MaxSteps != 16 {
		t.Errorf("Chat.MaxSteps = %d, want default 16", cfg.Chat.MaxSteps)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("QUILL_TEST_DB", "/data/expanded.db")

	path := writeConfig(t, `
database:
  path: "${QUILL_TEST_DB}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/data/expanded.db" {
		t.Errorf("Database.Path = %q, want expanded value", cfg.Database.Path)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
model:
  timeout: "not-a-duration"
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "model: [not: valid")

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty model name", func(c *Config) { c.Model.Name = "" }, true},
		{"negative window", func(c *Config) { c.Chat.HistoryWindow = -1 }, true},
		{"zero max steps", func(c *Config) { c.Chat.MaxSteps = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
