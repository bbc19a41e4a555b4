package main

import (
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/mcclellann/fredLedger/pkg/ledger"
	"github.com/mcclellann/fredLedger/pkg/models"
	"github.com/spf13/cobra"
)

func newTransferCmd(c *cli) *cobra.Command {
	var (
		amount, fee, bearer       string
		balance                   string
		dailyLimit, dailyUsed     string
		monthlyLimit, monthlyUsed string
		pending                   bool
	)

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Quote how a transfer splits between source, destination and fee",
		Long: `Quotes a central transfer against a source account state without
moving any money.

Examples:
  ledgerctl transfer --amount 100 --fee 2.5 --bearer sender --balance 1000
  ledgerctl transfer --amount 100 --balance 1000 --daily-limit 500 --daily-used 450`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.TransferRequest{
				FeeBearer: models.FeeBearer(bearer),
				From:      models.AccountRef{ID: uuid.New()},
				To:        models.AccountRef{ID: uuid.New()},
			}
			var (
				src models.SourceState
				err error
			)
			if req.Amount, err = parseDecimal("amount", amount); err != nil {
				return err
			}
			if req.Fee, err = parseDecimal("fee", fee); err != nil {
				return err
			}
			if src.Balance, err = parseDecimal("balance", balance); err != nil {
				return err
			}
			if src.DailyUsed, err = parseDecimal("daily-used", dailyUsed); err != nil {
				return err
			}
			if src.MonthlyUsed, err = parseDecimal("monthly-used", monthlyUsed); err != nil {
				return err
			}
			if src.DailyLimit, err = parseLimit("daily-limit", dailyLimit); err != nil {
				return err
			}
			if src.MonthlyLimit, err = parseLimit("monthly-limit", monthlyLimit); err != nil {
				return err
			}

			mode := ledger.ExecuteImmediately
			if pending {
				mode = ledger.SavePending
			}
			result, err := ledger.Allocate(req, src, mode)
			if err != nil {
				return err
			}

			return c.render(cmd.OutOrStdout(), result, func(tw *tabwriter.Writer) {
				row(tw, "DEBIT", "CREDIT", "FEE")
				row(tw, result.DebitFromSource.StringFixed(2), result.CreditToDestination.StringFixed(2), result.FeeRecorded.StringFixed(2))
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "0", "transfer amount")
	cmd.Flags().StringVar(&fee, "fee", "0", "transfer fee")
	cmd.Flags().StringVar(&bearer, "bearer", string(models.FeeBearerSender), "who pays the fee: sender, receiver or none")
	cmd.Flags().StringVar(&balance, "balance", "0", "source account balance")
	cmd.Flags().StringVar(&dailyLimit, "daily-limit", "", "source daily limit (empty means none)")
	cmd.Flags().StringVar(&dailyUsed, "daily-used", "0", "amount already used today")
	cmd.Flags().StringVar(&monthlyLimit, "monthly-limit", "", "source monthly limit (empty means none)")
	cmd.Flags().StringVar(&monthlyUsed, "monthly-used", "0", "amount already used this month")
	cmd.Flags().BoolVar(&pending, "pending", false, "quote as a pending transfer, skipping usage limits")
	cmd.MarkFlagRequired("amount")
	return cmd
}
