package main

import (
	"text/tabwriter"

	"github.com/mcclellann/fredLedger/pkg/app"
	"github.com/mcclellann/fredLedger/pkg/logging"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type rateOutput struct {
	Rate         decimal.Decimal `json:"rate"`
	BaseCurrency string          `json:"base_currency"`
	Source       string          `json:"source"`
}

func newRateCmd(c *cli) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Show or set the exchange rate used for portfolio valuation",
		Long: `Reads the exchange rate from the configured rate source. With --set the
rate is first written through that source; a static source is read-only.

Examples:
  ledgerctl rate
  ledgerctl rate --set 15750 --config fredledger.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lc := logging.DefaultConfig()
			lc.Level = c.cfg.Log.Level
			lc.OutputPaths = []string{"stderr"}
			logger, err := logging.NewLogger(lc)
			if err != nil {
				return err
			}
			defer logger.Sync()

			a, err := app.New(cmd.Context(), c.cfg, logger, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if set != "" {
				rate, err := parseDecimal("set", set)
				if err != nil {
					return err
				}
				if err := a.Ledger.SetExchangeRate(cmd.Context(), rate); err != nil {
					return err
				}
			}

			rate, err := a.Ledger.ExchangeRate(cmd.Context())
			if err != nil {
				return err
			}

			out := rateOutput{Rate: rate, BaseCurrency: a.Ledger.BaseCurrency(), Source: c.cfg.Rates.Source}
			return c.render(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
				row(tw, "RATE", "BASE", "SOURCE")
				row(tw, out.Rate.String(), out.BaseCurrency, out.Source)
			})
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "store a new exchange rate before reading it")
	return cmd
}
