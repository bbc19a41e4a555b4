package main

import (
	"fmt"
	"time"

	"github.com/mcclellann/fredLedger/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// cli carries the state shared by every subcommand.
type cli struct {
	cfgFile string
	output  string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Quote fredLedger calculations from the command line",
		Long: `ledgerctl runs the ledger arithmetic without a server: transfer
allocation, installment schedules, deposit accrual and cashback. Settings
are read from fredledger.yaml and FREDLEDGER_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch c.output {
			case "table", "json":
			default:
				return fmt.Errorf("unknown output format %q", c.output)
			}
			cfg, err := config.Load(c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file path (default is ./fredledger.yaml)")
	rootCmd.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "output format: table or json")

	rootCmd.AddCommand(
		newTransferCmd(c),
		newScheduleCmd(c),
		newAccrueCmd(c),
		newCashbackCmd(c),
		newRateCmd(c),
	)
	return rootCmd
}

func parseDecimal(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return d, nil
}

func parseLimit(flag, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(flag, s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// parseDate reads a YYYY-MM-DD flag. An empty value means fallback.
func parseDate(flag, s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: %w", flag, s, err)
	}
	return t, nil
}
