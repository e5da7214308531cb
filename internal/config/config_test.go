package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("addr default: %s", cfg.Server.Addr)
	}
	if cfg.Database.SQLitePath != "data/stocksage.db" {
		t.Errorf("db path default: %s", cfg.Database.SQLitePath)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" || cfg.Gemini.RequestsPerMinute != 13 || cfg.Gemini.DailyLimit != 1400 {
		t.Errorf("gemini defaults: %+v", cfg.Gemini)
	}
	if cfg.Schedule.NewsCron != "0 */30 * * * *" || cfg.Schedule.ScanCron != "0 30 16 * * 1-5" {
		t.Errorf("schedule defaults: %+v", cfg.Schedule)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9100"
database:
  sqlite_path: "/tmp/alt.db"
gemini:
  model: gemini-1.5-pro
  daily_limit: 500
schedule:
  news_cron: "0 0 * * * *"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("addr: %s", cfg.Server.Addr)
	}
	if cfg.Database.SQLitePath != "/tmp/alt.db" {
		t.Errorf("db path: %s", cfg.Database.SQLitePath)
	}
	if cfg.Gemini.Model != "gemini-1.5-pro" || cfg.Gemini.DailyLimit != 500 {
		t.Errorf("gemini: %+v", cfg.Gemini)
	}
	// Unset fields still take defaults.
	if cfg.Gemini.RequestsPerMinute != 13 {
		t.Errorf("rpm default after partial yaml: %d", cfg.Gemini.RequestsPerMinute)
	}
	if cfg.Schedule.NewsCron != "0 0 * * * *" || cfg.Schedule.ScanCron != "0 30 16 * * 1-5" {
		t.Errorf("schedule: %+v", cfg.Schedule)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9100\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVER_ADDR", ":7777")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("env should win over file: %s", cfg.Server.Addr)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("gemini key from env: %q", cfg.Gemini.APIKey)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg := base()
	cfg.DataSource.BaseURL = "https://data.internal"
	if err := cfg.Validate(); err == nil {
		t.Error("base_url without api_key should fail")
	}
	cfg.DataSource.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("base_url with api_key: %v", err)
	}

	cfg = base()
	cfg.Telegram.BotToken = "tok"
	if err := cfg.Validate(); err == nil {
		t.Error("one-sided telegram config should fail")
	}
	cfg.Telegram.ChatID = "123"
	if err := cfg.Validate(); err != nil {
		t.Errorf("paired telegram config: %v", err)
	}

	cfg = base()
	cfg.Gemini.DailyLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative daily limit should fail")
	}
}
