package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/client"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the chart of accounts",
}

// account create
var (
	acctCreateID             string
	acctCreateName           string
	acctCreateCode           int
	acctCreateClassification string
	acctCreateParent         string
	acctCreateDescription    string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		created, err := c.CreateAccount(context.Background(), api.CreateAccountRequest{
			ID:             acctCreateID,
			Name:           acctCreateName,
			Code:           acctCreateCode,
			Classification: acctCreateClassification,
			ParentID:       acctCreateParent,
			Description:    acctCreateDescription,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Account created: %s (%s) [%d] %s\n",
			created.ID, created.Name, created.Code, created.Classification)
		if len(created.Path) > 0 {
			fmt.Printf("Parent path: %s\n", strings.Join(created.Path, " > "))
		}
		return nil
	},
}

// account list
var (
	acctListClassification string
	acctListParent         string
)

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		accounts, err := c.ListAccounts(context.Background(), acctListClassification, acctListParent)
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}

		fmt.Printf("%-12s %-30s %6s %-12s %s\n", "ID", "NAME", "CODE", "CLASS", "PARENT")
		fmt.Printf("%-12s %-30s %6s %-12s %s\n", "----", "----", "----", "-----", "------")
		for _, a := range accounts {
			name := a.Name
			if len(name) > 28 {
				name = name[:28] + ".."
			}
			fmt.Printf("%-12s %-30s %6d %-12s %s\n", a.ID, name, a.Code, a.Classification, a.ParentID)
		}
		return nil
	},
}

// account get
var acctGetAsOf string

var accountGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get account details and balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		acct, err := c.GetAccount(context.Background(), args[0], acctGetAsOf)
		if err != nil {
			return err
		}

		fmt.Printf("ID:             %s\n", acct.ID)
		fmt.Printf("Name:           %s\n", acct.Name)
		fmt.Printf("Code:           %d\n", acct.Code)
		fmt.Printf("Classification: %s\n", acct.Classification)
		if len(acct.Path) > 0 {
			fmt.Printf("Path:           %s\n", strings.Join(acct.Path, " > "))
		}
		if acct.Description != "" {
			fmt.Printf("Description:    %s\n", acct.Description)
		}
		asOf := acct.AsOf
		if asOf == "" {
			asOf = "all postings"
		}
		fmt.Printf("Balance:        %s (%s)\n", formatSigned(acct.Balance), asOf)
		return nil
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an account with no postings and no children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		if err := c.DeleteAccount(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Account %s deleted\n", args[0])
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&acctCreateID, "id", "", "Account ID (defaults to the code)")
	accountCreateCmd.Flags().StringVar(&acctCreateName, "name", "", "Account name")
	accountCreateCmd.Flags().IntVar(&acctCreateCode, "code", 0, "IFRS account code")
	accountCreateCmd.Flags().StringVar(&acctCreateClassification, "classification", "", "asset, liability, equity, revenue or expense (derived from code or parent when empty)")
	accountCreateCmd.Flags().StringVar(&acctCreateParent, "parent", "", "Parent account ID")
	accountCreateCmd.Flags().StringVar(&acctCreateDescription, "description", "", "Description")
	accountCreateCmd.MarkFlagRequired("name")

	accountListCmd.Flags().StringVar(&acctListClassification, "classification", "", "Filter by classification")
	accountListCmd.Flags().StringVar(&acctListParent, "parent", "", "Filter by parent account")

	accountGetCmd.Flags().StringVar(&acctGetAsOf, "as-of", "", "Balance date (YYYY-MM-DD)")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountGetCmd)
	accountCmd.AddCommand(accountDeleteCmd)

	rootCmd.AddCommand(accountCmd)
}
