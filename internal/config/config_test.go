package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "options-dashboard/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvTiingoAPIKey, "")
	t.Setenv(EnvServerAddr, "")
	t.Setenv(EnvLogLevel, "")
}

func TestLoadCreatesTemplates(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, p := range []string{ConfigPath(dir), CredentialsPath(dir)} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected template at %s: %v", p, err)
		}
	}
	info, err := os.Stat(CredentialsPath(dir))
	if err == nil && info.Mode().Perm() != 0600 {
		t.Errorf("credentials mode = %v, want 0600", info.Mode().Perm())
	}

	if cfg.Payoff.SharesPerContract != 100 {
		t.Errorf("shares_per_contract = %d, want 100", cfg.Payoff.SharesPerContract)
	}
	if cfg.Store.Path != filepath.Join(dir, "quotes.db") {
		t.Errorf("store path = %q", cfg.Store.Path)
	}

	// A second load reads the templates back without losing defaults.
	again, err := Load(dir)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again.Store.Path != cfg.Store.Path || again.Quote.Timeout != 10*time.Second {
		t.Errorf("reloaded config differs: %+v", again)
	}
}

func TestLoadReadsFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	mainCfg := `
[server]
addr = ":9000"

[quote]
timeout = "3s"
max_attempts = 3

[payoff]
shares_per_contract = 10
`
	creds := `
[tiingo]
api_key = "file-key"
`
	if err := os.WriteFile(ConfigPath(dir), []byte(mainCfg), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(CredentialsPath(dir), []byte(creds), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Quote.Timeout != 3*time.Second || cfg.Quote.MaxAttempts != 3 {
		t.Errorf("quote = %+v", cfg.Quote)
	}
	if cfg.Quote.LookbackDays != 5 {
		t.Errorf("lookback_days default lost: %d", cfg.Quote.LookbackDays)
	}
	if cfg.Payoff.SharesPerContract != 10 {
		t.Errorf("shares_per_contract = %d", cfg.Payoff.SharesPerContract)
	}
	if cfg.Quote.APIKey != "file-key" {
		t.Errorf("api key = %q, want file-key", cfg.Quote.APIKey)
	}
	if err := cfg.RequireQuoteCredentials(); err != nil {
		t.Errorf("RequireQuoteCredentials: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvTiingoAPIKey, "env-key")
	t.Setenv(EnvServerAddr, "0.0.0.0:8080")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Quote.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.Quote.APIKey)
	}
	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestRequireQuoteCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	err = cfg.RequireQuoteCredentials()
	if !errors.Is(err, apperrors.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	var cerr *apperrors.ConfigError
	if !errors.As(err, &cerr) || cerr.Key != "tiingo.api_key" {
		t.Errorf("expected ConfigError for tiingo.api_key, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"zero timeout", func(c *Config) { c.Quote.Timeout = 0 }, "quote.timeout"},
		{"zero attempts", func(c *Config) { c.Quote.MaxAttempts = 0 }, "quote.max_attempts"},
		{"negative breaker threshold", func(c *Config) { c.Quote.Breaker.Threshold = -1 }, "quote.breaker.threshold"},
		{"breaker without cooldown", func(c *Config) { c.Quote.Breaker.Cooldown = 0 }, "quote.breaker.cooldown"},
		{"zero shares", func(c *Config) { c.Payoff.SharesPerContract = 0 }, "payoff.shares_per_contract"},
		{"negative step", func(c *Config) { c.Payoff.Step = -0.01 }, "payoff.step"},
		{"store without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	if err := Default(t.TempDir()).Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			var cerr *apperrors.ConfigError
			if !errors.As(err, &cerr) || cerr.Key != tt.key {
				t.Errorf("Validate() = %v, want error for %s", err, tt.key)
			}
		})
	}

	cfg := Default(t.TempDir())
	cfg.Store.Enabled = false
	cfg.Store.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled store needs no path: %v", err)
	}
}
