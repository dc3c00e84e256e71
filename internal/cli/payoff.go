package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"options-dashboard/internal/payoff"
	"options-dashboard/pkg/utils"
)

type payoffOutput struct {
	Kind              payoff.Kind        `json:"kind"`
	Strike            float64            `json:"strike"`
	Premium           float64            `json:"premium"`
	AvgPrice          float64            `json:"avg_price,omitempty"`
	Contracts         int                `json:"contracts"`
	SharesPerContract int                `json:"shares_per_contract"`
	Summary           payoff.Summary     `json:"summary"`
	Chart             payoff.ChartBounds `json:"chart"`
	Samples           []payoff.Sample    `json:"samples"`
}

func newPayoffCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Print an option payoff curve",
		Long: `Compute the payoff curve of one option position.

Prices are swept from 0 up to strike + padding in fixed steps. The table shows
every Nth sample; the summary covers the full curve.`,
		Example: `  options-dashboard payoff --kind call --strike 100 --premium 2
  options-dashboard payoff --kind put --strike 50 --premium 1.5 --contracts 2
  options-dashboard payoff --kind covered_call --strike 100 --premium 2 --avg-price 95 --every 500
  options-dashboard payoff --kind cash_covered_put --strike 40 --premium 1 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			kindFlag, _ := cmd.Flags().GetString("kind")
			strike, _ := cmd.Flags().GetFloat64("strike")
			premium, _ := cmd.Flags().GetFloat64("premium")
			avgPrice, _ := cmd.Flags().GetFloat64("avg-price")
			contracts, _ := cmd.Flags().GetInt("contracts")
			every, _ := cmd.Flags().GetInt("every")

			kind, err := payoff.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			if !kind.UsesAvgPrice() {
				avgPrice = 0
			}

			engine := app.engine()
			curve, err := engine.Curve(payoff.Request{
				Kind:      kind,
				Params:    payoff.Params{Strike: strike, Premium: premium, AvgPrice: avgPrice},
				Contracts: contracts,
			})
			if err != nil {
				return err
			}

			summary := curve.Summary()
			samples := curve.Every(every)

			if output.IsJSON() {
				if samples == nil {
					samples = []payoff.Sample{}
				}
				return output.JSON(payoffOutput{
					Kind:              kind,
					Strike:            strike,
					Premium:           premium,
					AvgPrice:          avgPrice,
					Contracts:         contracts,
					SharesPerContract: engine.SharesPerContract,
					Summary:           summary,
					Chart:             curve.ChartBounds(),
					Samples:           samples,
				})
			}

			output.Bold("%s payoff", kind.Label())
			output.Printf("  Strike:      %s\n", FormatPrice(strike))
			output.Printf("  Premium:     %s\n", FormatPrice(premium))
			if kind.UsesAvgPrice() {
				output.Printf("  Avg Price:   %s\n", FormatPrice(avgPrice))
			}
			output.Printf("  Position:    %s\n", FormatMultiplier(contracts, engine.SharesPerContract))
			output.Println()

			if summary.Samples == 0 {
				output.Warning("Empty price range for strike %s", FormatPrice(strike))
				return nil
			}

			output.Printf("  Max Profit:  %s at %s\n", output.FormatPnL(summary.MaxProfit), FormatPrice(summary.MaxProfitAt))
			output.Printf("  Max Loss:    %s at %s\n", output.FormatPnL(summary.MaxLoss), FormatPrice(summary.MaxLossAt))
			output.Printf("  Breakeven:   %s\n", FormatBreakevens(summary.Breakevens))
			output.Printf("  Samples:     %s\n", utils.FormatQuantity(int64(summary.Samples)))
			output.Println()

			table := NewTable(output, "Stock Price", "Profit", "Total Profit", "Return")
			for _, s := range samples {
				ret := "-"
				if s.Return != nil {
					ret = output.FormatRatio(*s.Return)
				}
				table.AddRow(
					fmt.Sprintf("%.2f", s.StockPrice),
					output.FormatPnL(s.Profit),
					output.FormatPnL(s.TotalProfit),
					ret,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("kind", string(payoff.KindCall), "instrument: call, put, covered_call, cash_covered_put")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().Float64("premium", 0, "option premium per share")
	cmd.Flags().Float64("avg-price", 0, "average price paid for the shares (covered call only)")
	cmd.Flags().Int("contracts", 1, "number of contracts")
	cmd.Flags().Int("every", 100, "print every Nth sample")

	return cmd
}
