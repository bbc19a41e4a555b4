package main

import (
	"text/tabwriter"
	"time"

	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/spf13/cobra"
)

func newAccrueCmd(c *cli) *cobra.Command {
	var principal, rate, start, maturity, asOf string

	cmd := &cobra.Command{
		Use:   "accrue",
		Short: "Print accrued interest of a time deposit",
		Long: `Prorates the term interest of a deposit between its start and maturity
dates.

Example:
  ledgerctl accrue --principal 10000000 --rate 6 --start 2024-01-01 --maturity 2025-01-01 --as-of 2024-07-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				inst models.AccrualInstrument
				err  error
			)
			if inst.Principal, err = parseDecimal("principal", principal); err != nil {
				return err
			}
			if inst.AnnualRatePercent, err = parseDecimal("rate", rate); err != nil {
				return err
			}
			if inst.StartDate, err = parseDate("start", start, time.Time{}); err != nil {
				return err
			}
			if inst.MaturityDate, err = parseDate("maturity", maturity, time.Time{}); err != nil {
				return err
			}
			on, err := parseDate("as-of", asOf, time.Now().UTC())
			if err != nil {
				return err
			}

			calc := ledger.AccrualCalculator{NearMaturityDays: c.cfg.Ledger.NearMaturityDays}
			result, err := calc.Accrue(inst, on)
			if err != nil {
				return err
			}

			return c.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				row(tw, "ACCRUED", result.AccruedInterest.StringFixed(2))
				row(tw, "TOTAL INTEREST", result.TotalInterest.StringFixed(2))
				row(tw, "MONTHLY RETURN", result.MonthlyReturn.StringFixed(2))
				row(tw, "MATURED", result.IsMatured)
				row(tw, "NEAR MATURITY", result.IsNearMaturity)
				row(tw, "DAYS REMAINING", result.DaysRemaining)
			})
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "0", "deposit principal")
	cmd.Flags().StringVar(&rate, "rate", "0", "interest rate in percent for the whole term")
	cmd.Flags().StringVar(&start, "start", "", "start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&maturity, "maturity", "", "maturity date, YYYY-MM-DD")
	cmd.Flags().StringVar(&asOf, "as-of", "", "valuation date, YYYY-MM-DD (default today)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("maturity")
	return cmd
}
