package config

import (
	"fmt"
	"os"
	"time"

	"BandWatch/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"` // "yahoo" or "rest"
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Bands struct {
		model.BandParams `yaml:",inline"`
		Mode             string `yaml:"mode"`
		Fill             string `yaml:"fill"`
		LookbackDays     int    `yaml:"lookback_days"`
	} `yaml:"bands"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		Backend   string        `yaml:"backend"` // "", "memory" or "redis"
		RedisAddr string        `yaml:"redis_addr"`
		Password  string        `yaml:"redis_password"`
		DB        int           `yaml:"redis_db"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Band parameters start from model.DefaultBandParams, so a key present in the
// file, zero included, always wins.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Bands.BandParams = model.DefaultBandParams

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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("REST_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
		if cfg.DataSource.Provider == "" {
			cfg.DataSource.Provider = "rest"
		}
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		cfg.Cache.Backend = "redis"
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.Bands.Mode == "" {
		cfg.Bands.Mode = string(model.ModeClose)
	}
	if cfg.Bands.Fill == "" {
		cfg.Bands.Fill = string(model.FillNone)
	}
	if cfg.Bands.LookbackDays == 0 {
		cfg.Bands.LookbackDays = 180
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{"AAPL"}
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 22 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/bandwatch.db"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.Bands.MinMaxWindow <= 0 || c.Bands.RangeWindow <= 0 {
		return fmt.Errorf("bands windows must be positive")
	}
	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("bands.mode: %w", err)
	}
	if _, err := c.Fill(); err != nil {
		return fmt.Errorf("bands.fill: %w", err)
	}
	if c.Bands.LookbackDays < 0 {
		return fmt.Errorf("bands.lookback_days must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	switch c.Cache.Backend {
	case "", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	return nil
}

// Mode returns the configured default band mode.
func (c *Config) Mode() (model.Mode, error) { return model.ParseMode(c.Bands.Mode) }

// Fill returns the configured default fill policy.
func (c *Config) Fill() (model.Fill, error) { return model.ParseFill(c.Bands.Fill) }

// Params returns the configured band parameters.
func (c *Config) Params() model.BandParams { return c.Bands.BandParams }

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }
