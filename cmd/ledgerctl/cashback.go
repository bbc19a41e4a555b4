package main

import (
	"text/tabwriter"

	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type cashbackOutput struct {
	Amount      decimal.Decimal `json:"amount"`
	RatePercent decimal.Decimal `json:"rate_percent"`
	Cashback    decimal.Decimal `json:"cashback"`
}

func newCashbackCmd(c *cli) *cobra.Command {
	var amount, rate string

	cmd := &cobra.Command{
		Use:   "cashback",
		Short: "Print the flat cashback earned on a purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out cashbackOutput
				err error
			)
			if out.Amount, err = parseDecimal("amount", amount); err != nil {
				return err
			}
			if out.RatePercent, err = parseDecimal("rate", rate); err != nil {
				return err
			}
			if out.Cashback, err = ledger.CalculateCashback(out.Amount, out.RatePercent); err != nil {
				return err
			}

			return c.render(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
				row(tw, "PURCHASE", "RATE %", "CASHBACK")
				row(tw, out.Amount.StringFixed(2), out.RatePercent.String(), out.Cashback.StringFixed(2))
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "0", "purchase amount")
	cmd.Flags().StringVar(&rate, "rate", "0", "cashback rate in percent")
	cmd.MarkFlagRequired("amount")
	return cmd
}
