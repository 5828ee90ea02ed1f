// Package rules implements the rule-table commands: apply, backfill,
// correct, export, and import.
package rules

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"the305/accountant/cmd/root"
	"the305/accountant/internal/ledger"
)

var (
	force       bool
	category    string
	subcategory string
)

// Cmd is the rules command group.
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage merchant categorization rules",
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the rule table to existing transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.Rules().BulkApply(ledger.Filter{}, force)
		if err != nil {
			return err
		}
		fmt.Printf("%d updated, %d locked rows skipped\n", res.Updated, res.Skipped)
		return nil
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Learn rules from hand-corrected transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		learned, err := c.Rules().Backfill()
		if err != nil {
			return err
		}
		fmt.Printf("%d rules learned\n", learned)
		return nil
	},
}

var correctCmd = &cobra.Command{
	Use:   "correct <transaction-id>",
	Short: "Correct one transaction's category, lock it, and learn the rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Rules().Correct(args[0], category, subcategory); err != nil {
			return err
		}
		fmt.Printf("transaction %s corrected to %s\n", args[0], category)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Write the rule table to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		return c.Rules().ExportYAML(f)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load rules from a YAML file into the rule table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := c.Rules().ImportYAML(f)
		if err != nil {
			return err
		}
		fmt.Printf("%d rules imported\n", n)
		return nil
	},
}

// Init registers subcommands and flags.
func Init() {
	applyCmd.Flags().BoolVar(&force, "force", false, "overwrite locked rows too (the lock itself is kept)")
	correctCmd.Flags().StringVarP(&category, "category", "c", "", "new category (required)")
	correctCmd.Flags().StringVarP(&subcategory, "subcategory", "s", "", "new subcategory")
	_ = correctCmd.MarkFlagRequired("category")

	Cmd.AddCommand(applyCmd, backfillCmd, correctCmd, exportCmd, importCmd)
}
