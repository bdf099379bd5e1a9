package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Alpaca struct {
		APIKey  string `yaml:"api_key"`
		Secret  string `yaml:"api_secret"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"alpaca"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Tracker struct {
		Interval  string `yaml:"interval"`
		Capacity  int    `yaml:"capacity"`
		Window    int    `yaml:"window"`
		Evaluator string `yaml:"evaluator"` // full-reset or decay
	} `yaml:"tracker"`
	Schedule struct {
		ScanCron  string `yaml:"scan_cron"`
		ClockCron string `yaml:"clock_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Trading struct {
		EnableOrders bool `yaml:"enable_orders"`
	} `yaml:"trading"`
	CacheDir  string `yaml:"cache_dir"`
	ChartsDir string `yaml:"charts_dir"`
	Proxy     string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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

	// Environment variable overrides
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.Secret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("PRIVATE_CACHE"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("OUTPUTS_PATH"); v != "" {
		cfg.ChartsDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Tracker.Interval == "" {
		cfg.Tracker.Interval = "1m"
	}
	if cfg.Tracker.Capacity == 0 {
		cfg.Tracker.Capacity = 15 * 30
	}
	if cfg.Tracker.Window == 0 {
		cfg.Tracker.Window = 13
	}
	if cfg.Tracker.Evaluator == "" {
		cfg.Tracker.Evaluator = "full-reset"
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 */5 * * * *"
	}
	if cfg.Schedule.ClockCron == "" {
		cfg.Schedule.ClockCron = "0 0 * * * *"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "data/cache"
	}
	if cfg.ChartsDir == "" {
		cfg.ChartsDir = "data/charts"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/brickwatch.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" || c.Alpaca.Secret == "" {
		return fmt.Errorf("alpaca.api_key and alpaca.api_secret are required")
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Tracker.Evaluator != "full-reset" && c.Tracker.Evaluator != "decay" {
		return fmt.Errorf("tracker.evaluator must be full-reset or decay, got %q", c.Tracker.Evaluator)
	}
	return nil
}
