package main

import (
	"text/tabwriter"
	"time"

	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/spf13/cobra"
)

type scheduleOutput struct {
	Mode    string                        `json:"mode"`
	Summary ledger.InstallmentSummary     `json:"summary"`
	Entries []models.PaymentScheduleEntry `json:"entries"`
}

func newScheduleCmd(c *cli) *cobra.Command {
	var (
		principal, rate, adminFee string
		start, asOf, mode         string
		months, paid              int
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the payment schedule of an installment plan",
		Long: `Prints the month-by-month schedule of a credit card installment plan.
The admin fee is charged with the first month. --mode defaults to
ledger.installment_recompute from the configuration.

Examples:
  ledgerctl schedule --principal 1200000 --months 12 --admin-fee 60000 --start 2024-01-15
  ledgerctl schedule --principal 1200000 --months 12 --rate 5 --paid 3 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := models.InstallmentPlan{
				TotalMonths: months,
				PaidMonths:  paid,
			}
			var err error
			if plan.Principal, err = parseDecimal("principal", principal); err != nil {
				return err
			}
			if plan.InterestRatePercent, err = parseDecimal("rate", rate); err != nil {
				return err
			}
			if plan.AdminFee, err = parseDecimal("admin-fee", adminFee); err != nil {
				return err
			}
			today := time.Now().UTC()
			if plan.StartDate, err = parseDate("start", start, today); err != nil {
				return err
			}
			if today, err = parseDate("as-of", asOf, today); err != nil {
				return err
			}

			if !cmd.Flags().Changed("mode") {
				mode = c.cfg.Ledger.InstallmentRecompute
			}
			recompute, err := ledger.ParseRecomputeMode(mode)
			if err != nil {
				return err
			}

			summary, err := ledger.Summarize(plan)
			if err != nil {
				return err
			}
			entries, err := ledger.Amortizer{Mode: recompute}.BuildSchedule(plan, today)
			if err != nil {
				return err
			}

			out := scheduleOutput{Mode: recompute.String(), Summary: summary, Entries: entries}
			return c.render(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
				row(tw, "MONTH", "DUE", "BASE", "ADMIN FEE", "TOTAL", "STATUS")
				for _, e := range entries {
					row(tw, e.MonthIndex, e.DueDate.Format(dateLayout), e.BaseAmount.StringFixed(2),
						e.AdminFeePortion.StringFixed(2), e.TotalAmount.StringFixed(2), e.Status)
				}
				row(tw)
				row(tw, "TOTAL INTEREST", summary.TotalInterest.StringFixed(2))
				row(tw, "TOTAL COST", summary.TotalCost.StringFixed(2))
			})
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "0", "purchase amount")
	cmd.Flags().IntVar(&months, "months", 0, "number of monthly installments")
	cmd.Flags().StringVar(&rate, "rate", "0", "flat interest rate in percent for the whole term")
	cmd.Flags().StringVar(&adminFee, "admin-fee", "0", "one-time admin fee")
	cmd.Flags().StringVar(&start, "start", "", "first due date, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&paid, "paid", 0, "months already paid")
	cmd.Flags().StringVar(&asOf, "as-of", "", "date used to mark overdue months, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&mode, "mode", "full", "recompute mode: full or remaining")
	cmd.MarkFlagRequired("principal")
	cmd.MarkFlagRequired("months")
	return cmd
}
