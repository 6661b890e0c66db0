package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	GFDL     GFDLConfig     `mapstructure:"gfdl"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	Universe UniverseConfig `mapstructure:"universe"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GFDLConfig holds the market-data transport configuration
type GFDLConfig struct {
	WSSURL           string        `mapstructure:"wss_url"`
	APIKey           string        `mapstructure:"api_key"`
	Exchange         string        `mapstructure:"exchange"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	AuthRetryBackoff time.Duration `mapstructure:"auth_retry_backoff"`
	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff"`
}

// ScannerConfig holds the alerting thresholds
type ScannerConfig struct {
	OIRocThreshold         float64       `mapstructure:"oi_roc_threshold"`
	MomentumWindow         time.Duration `mapstructure:"momentum_window"`
	MinLotsSizeAlert       int           `mapstructure:"min_lots_size_alert"`
	MinLotsMomentum        int           `mapstructure:"min_lots_momentum"`
	MomentumOIRocThreshold float64       `mapstructure:"momentum_oi_roc_threshold"`
	ATMBandRatio           float64       `mapstructure:"atm_band_ratio"`
}

// UniverseConfig holds the static instrument universe
type UniverseConfig struct {
	Symbols        []string       `mapstructure:"symbols"`
	LotSizes       map[string]int `mapstructure:"lot_sizes"`
	DefaultLotSize int            `mapstructure:"default_lot_size"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	QueueSize      int           `mapstructure:"queue_size"`
}

// JournalConfig holds the alert journal configuration
type JournalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	DBPath    string `mapstructure:"db_path"`
	MaxAlerts int    `mapstructure:"max_alerts"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("OI_SCANNER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("gfdl.exchange", "NFO")
	v.SetDefault("gfdl.handshake_timeout", "20s")
	v.SetDefault("gfdl.auth_retry_backoff", "30s")
	v.SetDefault("gfdl.reconnect_backoff", "10s")

	v.SetDefault("scanner.oi_roc_threshold", 2.0)
	v.SetDefault("scanner.momentum_window", "300s")
	v.SetDefault("scanner.min_lots_size_alert", 100)
	v.SetDefault("scanner.min_lots_momentum", 300)
	v.SetDefault("scanner.momentum_oi_roc_threshold", 2.0)
	v.SetDefault("scanner.atm_band_ratio", 0.001)

	v.SetDefault("universe.default_lot_size", 75)

	v.SetDefault("telegram.enabled", true)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")
	v.SetDefault("telegram.queue_size", 64)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.db_path", "./data/oiscanner.db")
	v.SetDefault("journal.max_alerts", 10000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid. The process must
// refuse to start on any configuration fault.
func (c *Config) Validate() error {
	if c.GFDL.WSSURL == "" {
		return fmt.Errorf("gfdl.wss_url is required")
	}
	if c.GFDL.APIKey == "" {
		return fmt.Errorf("gfdl.api_key is required")
	}
	if c.GFDL.Exchange == "" {
		return fmt.Errorf("gfdl.exchange is required")
	}
	if c.GFDL.HandshakeTimeout <= 0 {
		return fmt.Errorf("gfdl.handshake_timeout must be positive")
	}
	if c.GFDL.AuthRetryBackoff <= 0 {
		return fmt.Errorf("gfdl.auth_retry_backoff must be positive")
	}
	if c.GFDL.ReconnectBackoff <= 0 {
		return fmt.Errorf("gfdl.reconnect_backoff must be positive")
	}

	if c.Scanner.OIRocThreshold <= 0 {
		return fmt.Errorf("scanner.oi_roc_threshold must be positive")
	}
	if c.Scanner.MomentumWindow < time.Minute {
		return fmt.Errorf("scanner.momentum_window must be at least 1 minute")
	}
	if c.Scanner.MinLotsSizeAlert < 0 {
		return fmt.Errorf("scanner.min_lots_size_alert must not be negative")
	}
	if c.Scanner.MinLotsMomentum < 0 {
		return fmt.Errorf("scanner.min_lots_momentum must not be negative")
	}
	if c.Scanner.MomentumOIRocThreshold <= 0 {
		return fmt.Errorf("scanner.momentum_oi_roc_threshold must be positive")
	}
	if c.Scanner.ATMBandRatio <= 0 || c.Scanner.ATMBandRatio >= 1 {
		return fmt.Errorf("scanner.atm_band_ratio must be between 0 and 1")
	}

	if len(c.Universe.Symbols) == 0 {
		return fmt.Errorf("universe.symbols must contain at least one symbol")
	}
	if len(c.Universe.LotSizes) == 0 {
		return fmt.Errorf("universe.lot_sizes must contain at least one underlying")
	}
	for underlying, size := range c.Universe.LotSizes {
		if size < 1 {
			return fmt.Errorf("universe.lot_sizes[%s] must be at least 1", underlying)
		}
	}
	if c.Universe.DefaultLotSize < 1 {
		return fmt.Errorf("universe.default_lot_size must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.QueueSize < 1 {
			return fmt.Errorf("telegram.queue_size must be at least 1")
		}
	}

	if c.Journal.Enabled {
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path is required when the journal is enabled")
		}
		if c.Journal.MaxAlerts < 1 {
			return fmt.Errorf("journal.max_alerts must be at least 1")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
