package cli

import (
	"github.com/spf13/cobra"

	"options-dashboard/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the payoff dashboard",
		Long: `Serve the interactive payoff dashboard and its JSON API.

The quote API key must be configured before the server starts. Set
TIINGO_API_KEY or add it to credentials.toml.`,
		Example: `  options-dashboard serve
  options-dashboard serve --addr 0.0.0.0:8050`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.quoteService()
			if err != nil {
				return err
			}

			cfg := app.Config.Server
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}

			output := NewOutput(cmd)
			if !output.IsJSON() {
				output.Info("Dashboard at http://%s", cfg.Addr)
			}

			return web.NewServer(cfg, app.engine(), svc, *app.Logger).Run(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return cmd
}
