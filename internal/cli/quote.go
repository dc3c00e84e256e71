package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"options-dashboard/internal/models"
	"options-dashboard/internal/store"
)

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <ticker>",
		Short: "Look up the last price of a ticker",
		Long: `Look up the latest close and company name of a ticker and suggest a
strike at the next half dollar. Every lookup is recorded in the quote history.`,
		Example: `  options-dashboard quote AAPL
  options-dashboard quote msft --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			svc, err := app.quoteService()
			if err != nil {
				return err
			}

			res := svc.Lookup(cmd.Context(), args[0])
			if res.Fallback {
				output.Error("Quote unavailable for %s: %v", res.Quote.Ticker, res.Err)
				return res.Err
			}

			q := res.Quote
			if output.IsJSON() {
				return output.JSON(map[string]any{
					"ticker":           q.Ticker,
					"name":             q.DisplayName(),
					"price":            q.LastPrice,
					"as_of":            q.AsOf,
					"suggested_strike": q.SuggestedStrike(),
				})
			}

			output.Bold("%s (%s)", q.DisplayName(), q.Ticker)
			output.Printf("  Last Close:       %s\n", FormatPrice(q.LastPrice))
			output.Printf("  As Of:            %s\n", FormatDate(q.AsOf))
			output.Printf("  Suggested Strike: %s\n", FormatPrice(q.SuggestedStrike()))
			return nil
		},
	}
}

func newQuotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Quote lookup history",
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "List recent quote lookups",
		Example: `  options-dashboard quotes history
  options-dashboard quotes history --ticker AAPL --limit 5
  options-dashboard quotes history --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			limit, _ := cmd.Flags().GetInt("limit")
			ticker, _ := cmd.Flags().GetString("ticker")
			all, _ := cmd.Flags().GetBool("all")

			records, err := app.Store.RecentQuotes(cmd.Context(), store.QuoteFilter{
				Ticker:          ticker,
				Limit:           limit,
				IncludeFallback: all,
			})
			if err != nil {
				return fmt.Errorf("loading quote history: %w", err)
			}
			if records == nil {
				records = []models.QuoteRecord{}
			}

			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Dim("No quote lookups recorded")
				return nil
			}

			table := NewTable(output, "Time", "Ticker", "Name", "Price", "Strike", "Status")
			for _, r := range records {
				status := output.Green("ok")
				if r.Fallback {
					status = output.Red("fallback")
				}
				table.AddRow(
					FormatDateTime(r.CreatedAt),
					r.Quote.Ticker,
					TruncateString(r.Quote.DisplayName(), 28),
					FormatPrice(r.Quote.LastPrice),
					FormatPrice(r.Quote.SuggestedStrike()),
					status,
				)
			}
			table.Render()
			return nil
		},
	}
	history.Flags().Int("limit", store.DefaultHistoryLimit, "maximum number of lookups")
	history.Flags().String("ticker", "", "only show this ticker")
	history.Flags().Bool("all", false, "include failed lookups")

	cmd.AddCommand(history)
	return cmd
}
