// Package config provides configuration management for the dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "options-dashboard/internal/errors"
)

// Environment variables that override file configuration.
const (
	EnvTiingoAPIKey = "TIINGO_API_KEY"
	EnvServerAddr   = "OPTIONS_DASHBOARD_ADDR"
	EnvLogLevel     = "OPTIONS_DASHBOARD_LOG_LEVEL"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig  `mapstructure:"server"`
	Quote       QuoteConfig   `mapstructure:"quote"`
	Payoff      PayoffConfig  `mapstructure:"payoff"`
	Store       StoreConfig   `mapstructure:"store"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// QuoteConfig holds market-data provider configuration. APIKey is copied in
// from the credentials file or the environment.
type QuoteConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LookbackDays int           `mapstructure:"lookback_days"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	Breaker      BreakerConfig `mapstructure:"breaker"`
	APIKey       string        `mapstructure:"-" json:"-"`
}

// BreakerConfig controls the circuit breaker in front of the provider.
// A zero threshold disables it.
type BreakerConfig struct {
	Threshold int           `mapstructure:"threshold"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
}

// PayoffConfig holds payoff curve configuration.
type PayoffConfig struct {
	SharesPerContract int     `mapstructure:"shares_per_contract"`
	Step              float64 `mapstructure:"step"`
	Padding           float64 `mapstructure:"padding"`
}

// StoreConfig holds quote history storage configuration.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
}

// Credentials holds API credentials.
type Credentials struct {
	Tiingo TiingoCredentials `mapstructure:"tiingo"`
}

// TiingoCredentials holds Tiingo API credentials.
type TiingoCredentials struct {
	APIKey string `mapstructure:"api_key" json:"-"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-dashboard"
	}
	return filepath.Join(home, ".config", "options-dashboard")
}

// Default returns the configuration used when no file overrides a value.
func Default(configDir string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return &Config{
		Server: ServerConfig{
			Addr:         "localhost:8050",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Quote: QuoteConfig{
			BaseURL:      "https://api.tiingo.com",
			Timeout:      10 * time.Second,
			LookbackDays: 5,
			MaxAttempts:  1,
			RateLimit:    5,
			Breaker:      BreakerConfig{Threshold: 5, Cooldown: 30 * time.Second},
		},
		Payoff: PayoffConfig{
			SharesPerContract: 100,
			Step:              0.01,
			Padding:           20,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    filepath.Join(configDir, "quotes.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       true,
			FilePath:   filepath.Join(configDir, "logs", "dashboard.log"),
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default(configDir)

	// Load main config
	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)
	cfg.Quote.APIKey = cfg.Credentials.Tiingo.APIKey

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found, write a template and run on defaults
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(cfg)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("quote.base_url", cfg.Quote.BaseURL)
	v.SetDefault("quote.timeout", cfg.Quote.Timeout)
	v.SetDefault("quote.lookback_days", cfg.Quote.LookbackDays)
	v.SetDefault("quote.max_attempts", cfg.Quote.MaxAttempts)
	v.SetDefault("quote.rate_limit", cfg.Quote.RateLimit)
	v.SetDefault("quote.breaker.threshold", cfg.Quote.Breaker.Threshold)
	v.SetDefault("quote.breaker.cooldown", cfg.Quote.Breaker.Cooldown)
	v.SetDefault("payoff.shares_per_contract", cfg.Payoff.SharesPerContract)
	v.SetDefault("payoff.step", cfg.Payoff.Step)
	v.SetDefault("payoff.padding", cfg.Payoff.Padding)
	v.SetDefault("store.enabled", cfg.Store.Enabled)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.file_path", cfg.Logging.FilePath)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", cfg.Logging.MaxAge)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// The key may still arrive through the environment.
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvTiingoAPIKey); v != "" {
		cfg.Credentials.Tiingo.APIKey = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return apperrors.NewConfigError("server.addr", "must not be empty")
	}
	if c.Quote.BaseURL == "" {
		return apperrors.NewConfigError("quote.base_url", "must not be empty")
	}
	if c.Quote.Timeout <= 0 {
		return apperrors.NewConfigError("quote.timeout", "must be positive")
	}
	if c.Quote.LookbackDays < 1 {
		return apperrors.NewConfigError("quote.lookback_days", "must be at least 1")
	}
	if c.Quote.MaxAttempts < 1 {
		return apperrors.NewConfigError("quote.max_attempts", "must be at least 1")
	}
	if c.Quote.RateLimit < 0 {
		return apperrors.NewConfigError("quote.rate_limit", "must not be negative")
	}
	if c.Quote.Breaker.Threshold < 0 {
		return apperrors.NewConfigError("quote.breaker.threshold", "must not be negative")
	}
	if c.Quote.Breaker.Threshold > 0 && c.Quote.Breaker.Cooldown <= 0 {
		return apperrors.NewConfigError("quote.breaker.cooldown", "must be positive")
	}
	if c.Payoff.SharesPerContract < 1 {
		return apperrors.NewConfigError("payoff.shares_per_contract", "must be at least 1")
	}
	if c.Payoff.Step <= 0 {
		return apperrors.NewConfigError("payoff.step", "must be positive")
	}
	if c.Payoff.Padding <= 0 {
		return apperrors.NewConfigError("payoff.padding", "must be positive")
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return apperrors.NewConfigError("store.path", "required when the store is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigError("logging.level", fmt.Sprintf("invalid level %q (must be debug, info, warn or error)", c.Logging.Level))
	}

	return nil
}

// RequireQuoteCredentials fails when no market-data API key is configured.
// Commands that talk to the quote provider call it before doing any work.
func (c *Config) RequireQuoteCredentials() error {
	if c.Quote.APIKey == "" {
		return apperrors.NewConfigError("tiingo.api_key",
			fmt.Sprintf("missing %s, please set this environment variable or add it to credentials.toml", EnvTiingoAPIKey))
	}
	return nil
}
