package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/client"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"txn", "transaction"},
	Short:   "Post and inspect journal entries",
}

// parseEntryFlag reads "account_id:amount" with a signed amount, debit
// positive.
func parseEntryFlag(s string) (api.EntryRequest, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return api.EntryRequest{}, fmt.Errorf("invalid entry format %q, expected account_id:amount", s)
	}
	amount, err := ledger.ParseAmount(parts[1])
	if err != nil {
		return api.EntryRequest{}, fmt.Errorf("invalid amount in entry %q: %w", s, err)
	}
	return api.EntryRequest{AccountID: parts[0], Amount: &amount}, nil
}

// entry post
var (
	entryDate        string
	entryDescription string
	entryLegs        []string
)

var entryPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a balanced journal entry",
	Long:  "Post a double-entry transaction.\nEach --entry is formatted as \"account_id:amount\", debits positive and credits negative (e.g. \"1010:500\" \"4020:-500\").",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		req := api.PostTransactionRequest{Date: entryDate, Description: entryDescription}
		for _, e := range entryLegs {
			leg, err := parseEntryFlag(e)
			if err != nil {
				return err
			}
			req.Entries = append(req.Entries, leg)
		}

		created, err := c.PostTransaction(context.Background(), req)
		if err != nil {
			return err
		}

		fmt.Printf("Transaction posted: %s\n", created.ID)
		printEntries(created)
		return nil
	},
}

// entry list
var (
	entryListAccountID string
	entryListStart     string
	entryListEnd       string
	entryListLimit     int
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		txns, err := c.ListTransactions(context.Background(), client.TxnQuery{
			AccountID: entryListAccountID,
			Start:     entryListStart,
			End:       entryListEnd,
			Limit:     entryListLimit,
		})
		if err != nil {
			return err
		}

		if len(txns) == 0 {
			fmt.Println("No transactions found.")
			return nil
		}

		fmt.Printf("%-38s %-12s %-8s %s\n", "ID", "DATE", "ENTRIES", "DESCRIPTION")
		fmt.Printf("%-38s %-12s %-8s %s\n", "----", "----", "-------", "-----------")
		for _, t := range txns {
			desc := t.Description
			if len(desc) > 40 {
				desc = desc[:38] + ".."
			}
			fmt.Printf("%-38s %-12s %-8d %s\n", t.ID, t.Date, len(t.Entries), desc)
		}
		return nil
	},
}

// entry get
var entryGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get transaction details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		txn, err := c.GetTransaction(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", txn.ID)
		printEntries(txn)
		return nil
	},
}

func printEntries(txn *api.Transaction) {
	fmt.Printf("Date:        %s\n", txn.Date)
	fmt.Printf("Description: %s\n", txn.Description)
	fmt.Printf("Entries:\n")
	fmt.Printf("  %-4s %-12s %12s\n", "TYPE", "ACCOUNT", "AMOUNT")
	for _, entry := range txn.Entries {
		direction := "DR"
		amt := entry.Amount
		if strings.HasPrefix(amt, "-") {
			direction = "CR"
			amt = amt[1:]
		}
		fmt.Printf("  %-4s %-12s %12s\n", direction, entry.AccountID, amt)
	}
}

func init() {
	entryPostCmd.Flags().StringVar(&entryDate, "date", ledger.DateOf(time.Now()).String(), "Transaction date (YYYY-MM-DD)")
	entryPostCmd.Flags().StringVar(&entryDescription, "description", "", "Transaction description")
	entryPostCmd.Flags().StringArrayVar(&entryLegs, "entry", nil, "Entry in format account_id:amount (repeat for each leg)")
	entryPostCmd.MarkFlagRequired("description")
	entryPostCmd.MarkFlagRequired("entry")

	entryListCmd.Flags().StringVar(&entryListAccountID, "account", "", "Filter by account ID")
	entryListCmd.Flags().StringVar(&entryListStart, "start", "", "Earliest date (YYYY-MM-DD)")
	entryListCmd.Flags().StringVar(&entryListEnd, "end", "", "Latest date (YYYY-MM-DD)")
	entryListCmd.Flags().IntVar(&entryListLimit, "limit", 50, "Maximum transactions to show")

	entryCmd.AddCommand(entryPostCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryGetCmd)

	rootCmd.AddCommand(entryCmd)
}
