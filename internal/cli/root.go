// Package cli provides the command-line interface for the options dashboard.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-dashboard/internal/config"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/payoff"
	"options-dashboard/internal/quote"
	"options-dashboard/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-03-11"
)

// App holds the application dependencies. Fields left nil are built from
// configuration when a command first runs.
type App struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Store    store.QuoteStore
	Provider quote.Provider
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "options-dashboard",
		Short: "Options payoff dashboard",
		Long: `Options payoff dashboard computes profit curves for calls, puts,
covered calls and cash covered puts over a fine grid of stock prices.

Serve the interactive dashboard with 'options-dashboard serve' or print a
curve in the terminal with 'options-dashboard payoff'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			if err := app.init(configDir); err != nil {
				return err
			}

			// Handle debug flag
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				l := app.Logger.Level(zerolog.DebugLevel)
				app.Logger = &l
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.Store != nil {
				return app.Store.Close()
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-dashboard)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newPayoffCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newQuotesCmd(app))

	return rootCmd
}

// init loads whatever the caller did not inject.
func (a *App) init(configDir string) error {
	if a.Config == nil {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	if a.Logger == nil {
		l := logging.NewLoggerWithConfig(logging.LogConfig{
			Level:      a.Config.Logging.Level,
			Console:    a.Config.Logging.Console,
			File:       a.Config.Logging.File,
			FilePath:   a.Config.Logging.FilePath,
			MaxSize:    a.Config.Logging.MaxSize,
			MaxBackups: a.Config.Logging.MaxBackups,
			MaxAge:     a.Config.Logging.MaxAge,
		})
		a.Logger = &l
	}

	if a.Store == nil {
		a.Store = store.Nop{}
		if a.Config.Store.Enabled {
			st, err := store.NewSQLiteStore(a.Config.Store.Path)
			if err != nil {
				a.Logger.Warn().Err(err).Msg("Failed to initialize store, quote history is unavailable")
			} else {
				a.Store = st
				a.Logger.Debug().Str("path", a.Config.Store.Path).Msg("SQLite store initialized")
			}
		}
	}
	return nil
}

// engine builds the payoff engine shared by the dashboard and the CLI.
func (a *App) engine() payoff.Engine {
	e := payoff.NewEngine(a.Config.Payoff.SharesPerContract)
	e.Sweep = payoff.SweepConfig{Step: a.Config.Payoff.Step, Padding: a.Config.Payoff.Padding}
	return e
}

// quoteService fails fast when no API key is configured.
func (a *App) quoteService() (*quote.Service, error) {
	if err := a.Config.RequireQuoteCredentials(); err != nil {
		return nil, err
	}
	if a.Provider == nil {
		client, err := quote.NewClient(a.Config.Quote, *a.Logger)
		if err != nil {
			return nil, err
		}
		a.Provider = client
		if a.Config.Quote.Breaker.Threshold > 0 {
			a.Provider = quote.Guard(client, a.Config.Quote.Breaker, *a.Logger)
		}
	}
	return quote.NewService(a.Provider, a.Store, *a.Logger), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Needs no configuration.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Options Payoff Dashboard v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				output.JSON(map[string]string{
					"dir":         dir,
					"config":      config.ConfigPath(dir),
					"credentials": config.CredentialsPath(dir),
				})
			} else {
				output.Println(config.ConfigPath(dir))
				output.Println(config.CredentialsPath(dir))
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			credErr := app.Config.RequireQuoteCredentials()
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true, "quote_credentials": credErr == nil})
			}
			output.Success("✓ Configuration is valid")
			if credErr != nil {
				output.Warning("%v", credErr)
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Read Timeout:    %s\n", cfg.Server.ReadTimeout)
	output.Printf("  Write Timeout:   %s\n", cfg.Server.WriteTimeout)
	output.Println()

	output.Bold("Quotes")
	output.Printf("  Base URL:        %s\n", cfg.Quote.BaseURL)
	output.Printf("  Timeout:         %s\n", cfg.Quote.Timeout)
	output.Printf("  Lookback Days:   %d\n", cfg.Quote.LookbackDays)
	output.Printf("  Max Attempts:    %d\n", cfg.Quote.MaxAttempts)
	output.Printf("  Rate Limit:      %.1f/s\n", cfg.Quote.RateLimit)
	output.Printf("  Breaker:         %d failures, %s cooldown\n", cfg.Quote.Breaker.Threshold, cfg.Quote.Breaker.Cooldown)
	output.Printf("  API Key:         %s\n", maskKey(cfg.Quote.APIKey))
	output.Println()

	output.Bold("Payoff")
	output.Printf("  Shares/Contract: %d\n", cfg.Payoff.SharesPerContract)
	output.Printf("  Step:            %g\n", cfg.Payoff.Step)
	output.Printf("  Padding:         %g\n", cfg.Payoff.Padding)
	output.Println()

	output.Bold("Store")
	output.Printf("  Enabled:         %v\n", cfg.Store.Enabled)
	output.Printf("  Path:            %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %s\n", cfg.Logging.FilePath)

	return nil
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 4:
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// Execute runs cmd under ctx and returns the process exit code.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
