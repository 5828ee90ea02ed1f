// Package budget implements the budget commands: status against
// configured limits, limit estimation from history, and limit updates.
package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"the305/accountant/cmd/root"
	"the305/accountant/internal/models"
)

var months int

// Cmd is the budget command group.
var Cmd = &cobra.Command{
	Use:   "budget",
	Short: "Report spending against budget limits",
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare recent spending with configured limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		statuses, err := c.Budget().Status(time.Now(), months)
		if err != nil {
			return err
		}

		for _, s := range statuses {
			flag := ""
			if s.OverBudget {
				flag = "  OVER BUDGET"
			}
			fmt.Printf("%-28s spent %10s  limit %10s  remaining %10s%s\n",
				s.Category, s.Spent.StringFixed(2), s.Limit.StringFixed(2),
				s.Remaining.StringFixed(2), flag)
		}
		return nil
	},
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Propose monthly limits from spending history",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		limits, err := c.Budget().EstimateLimits(time.Now())
		if err != nil {
			return err
		}
		for _, l := range limits {
			fmt.Printf("%-28s %10s\n", l.Category, l.Limit.StringFixed(2))
		}
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <category> <monthly-limit>",
	Short: "Set the monthly limit for a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", args[1], err)
		}

		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Store().UpsertLimit(models.BudgetLimit{Category: args[0], Limit: limit}); err != nil {
			return err
		}
		fmt.Printf("%s limit set to %s/month\n", args[0], limit.StringFixed(2))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show average monthly spend over 1, 3, 6, and 18 month windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		hist, err := c.Budget().HistoricalAverages(time.Now())
		if err != nil {
			return err
		}
		for _, window := range []int{1, 3, 6, 18} {
			fmt.Printf("last %d month(s):\n", window)
			for cat, avg := range hist[window] {
				fmt.Printf("  %-26s %10s\n", cat, avg.StringFixed(2))
			}
		}
		return nil
	},
}

// Init registers subcommands and flags.
func Init() {
	statusCmd.Flags().IntVar(&months, "months", 1, "how many complete months to report on")
	Cmd.AddCommand(statusCmd, estimateCmd, setCmd, historyCmd)
}
