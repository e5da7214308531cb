package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from the YAML
// file first; environment variables override what the file sets.
type Config struct {
	Server struct {
		Addr string `yaml:"addr" envconfig:"SERVER_ADDR"`
	} `yaml:"server"`
	DataSource struct {
		// BaseURL switches the fetcher from Yahoo to a self-hosted
		// market data API when set.
		BaseURL string `yaml:"base_url" envconfig:"DATA_BASE_URL"`
		APIKey  string `yaml:"api_key" envconfig:"DATA_API_KEY"`
		Proxy   string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
	} `yaml:"data_source"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database"`
	Gemini struct {
		APIKey            string `yaml:"api_key" envconfig:"GEMINI_API_KEY"`
		Model             string `yaml:"model" envconfig:"GEMINI_MODEL"`
		RequestsPerMinute int    `yaml:"requests_per_minute" envconfig:"GEMINI_RPM"`
		DailyLimit        int    `yaml:"daily_limit" envconfig:"GEMINI_DAILY_LIMIT"`
	} `yaml:"gemini"`
	Schedule struct {
		NewsCron string `yaml:"news_cron" envconfig:"CRON_NEWS"`
		ScanCron string `yaml:"scan_cron" envconfig:"CRON_SCAN"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
}

// Load reads config from a YAML file, applies environment variable
// overrides, then fills in defaults. A missing file is not an error so
// the service can run on environment variables alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process("stocksage", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stocksage.db"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Gemini.RequestsPerMinute == 0 {
		cfg.Gemini.RequestsPerMinute = 13
	}
	if cfg.Gemini.DailyLimit == 0 {
		cfg.Gemini.DailyLimit = 1400
	}
	if cfg.Schedule.NewsCron == "" {
		cfg.Schedule.NewsCron = "0 */30 * * * *"
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 30 16 * * 1-5"
	}

	return cfg, nil
}

// Validate checks field consistency. The Gemini key and Telegram
// credentials are optional; the features degrade without them.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.DataSource.BaseURL != "" && c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required when base_url is set")
	}
	if c.Gemini.RequestsPerMinute < 0 || c.Gemini.DailyLimit < 0 {
		return fmt.Errorf("gemini rate limits must be non-negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
