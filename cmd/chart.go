package cmd

import (
	"context"
	"fmt"

	"github.com/simonvc/finreports/internal/client"
	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Inspect the chart of accounts",
}

var chartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the account hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		tree, err := c.Chart(context.Background())
		if err != nil {
			return err
		}
		fmt.Print(renderChart(tree.Accounts))
		fmt.Println(dimStyle.Render(fmt.Sprintf("generation %d", tree.Generation)))
		return nil
	},
}

var chartReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the chart of accounts from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		tree, err := c.ReloadChart(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Chart reloaded (generation %d)", tree.Generation)))
		return nil
	},
}

func init() {
	chartCmd.AddCommand(chartShowCmd)
	chartCmd.AddCommand(chartReloadCmd)
	rootCmd.AddCommand(chartCmd)
}
