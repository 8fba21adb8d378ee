package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/simonvc/finreports/internal/client"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportAsOf  string
	reportStart string
	reportEnd   string
	reportXLSX  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce financial statements",
}

var balanceSheetCmd = &cobra.Command{
	Use:   "balance-sheet",
	Short: "Show the balance sheet as of a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		ctx := context.Background()

		if reportXLSX != "" {
			return saveSpreadsheet(ctx, c, report.BalanceSheet, "", reportAsOf)
		}
		bs, err := c.BalanceSheet(ctx, reportAsOf)
		if err != nil {
			return err
		}
		fmt.Println(renderBalanceSheet(bs))
		return nil
	},
}

var profitLossCmd = &cobra.Command{
	Use:     "profit-loss",
	Aliases: []string{"pl"},
	Short:   "Show profit and loss for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		ctx := context.Background()

		if reportXLSX != "" {
			return saveSpreadsheet(ctx, c, report.ProfitAndLoss, reportStart, reportEnd)
		}
		pl, err := c.ProfitLoss(ctx, reportStart, reportEnd)
		if err != nil {
			return err
		}
		fmt.Println(renderProfitLoss(pl))
		return nil
	},
}

func saveSpreadsheet(ctx context.Context, c *client.Client, kind report.Kind, start, end string) error {
	data, err := c.Spreadsheet(ctx, kind, start, end)
	if err != nil {
		return err
	}
	if err := os.WriteFile(reportXLSX, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", reportXLSX, err)
	}
	fmt.Printf("%s written to %s\n", kind.Title(), reportXLSX)
	return nil
}

func init() {
	now := time.Now()
	today := ledger.DateOf(now).String()
	monthStart := ledger.NewDate(now.Year(), now.Month(), 1).String()

	balanceSheetCmd.Flags().StringVar(&reportAsOf, "as-of", today, "Statement date (YYYY-MM-DD)")
	balanceSheetCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "Write the statement to this xlsx file")

	profitLossCmd.Flags().StringVar(&reportStart, "start", monthStart, "First day of the period (YYYY-MM-DD)")
	profitLossCmd.Flags().StringVar(&reportEnd, "end", today, "Last day of the period (YYYY-MM-DD)")
	profitLossCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "Write the statement to this xlsx file")

	reportCmd.AddCommand(balanceSheetCmd)
	reportCmd.AddCommand(profitLossCmd)
	rootCmd.AddCommand(reportCmd)
}
