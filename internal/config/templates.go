package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Payoff Dashboard Configuration

[server]
# Address the dashboard listens on
addr = "localhost:8050"
read_timeout = "10s"
write_timeout = "30s"

[quote]
# Tiingo REST endpoint
base_url = "https://api.tiingo.com"
# Per-request timeout
timeout = "10s"
# Days of daily closes requested; the newest row is used
lookback_days = 5
# Attempts per lookup before falling back to price 0
max_attempts = 1
# Client-side request rate limit per second (0 disables)
rate_limit = 5.0

[quote.breaker]
# Consecutive provider failures before lookups fall back without a request (0 disables)
threshold = 5
# How long the breaker stays open before trying the provider again
cooldown = "30s"

[payoff]
# Shares controlled by one contract, applied to total profit
shares_per_contract = 100
# Price sweep step and distance past the strike
step = 0.01
padding = 20.0

[store]
# Record quote lookups in a local SQLite database
enabled = true
# Defaults to quotes.db in the config directory
# path = "/var/lib/options-dashboard/quotes.db"

[logging]
# Log level: debug, info, warn, error
level = "info"
console = true
file = true
# Defaults to logs/dashboard.log in the config directory
# file_path = "/var/log/options-dashboard/dashboard.log"
max_size_mb = 50
max_backups = 5
max_age_days = 30
`

const credentialsTemplate = `# Options Payoff Dashboard Credentials
# WARNING: Keep this file secure! Do not commit to version control.
# TIINGO_API_KEY in the environment takes precedence.

[tiingo]
api_key = ""
`

// ConfigPath returns the path of the main config file in configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// CredentialsPath returns the path of the credentials file in configDir.
func CredentialsPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "credentials.toml")
}

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(ConfigPath(configDir), []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Use restricted permissions for credentials file
	if err := os.WriteFile(CredentialsPath(configDir), []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}
	return nil
}
