// Package categorize implements the categorize command: resolve
// categories for every uncategorized row in the ledger.
package categorize

import (
	"fmt"

	"github.com/spf13/cobra"

	"the305/accountant/cmd/root"
	"the305/accountant/internal/ledger"
)

var batchID string

// Cmd is the categorize command.
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize uncategorized transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.BuildContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Resolver().ResolveBatch(cmd.Context(), ledger.Filter{BatchID: batchID})
		if err != nil {
			return err
		}
		fmt.Printf("%d resolved, %d defaulted, %d failed\n",
			stats.Resolved, stats.Defaulted, stats.Failed)
		return nil
	},
}

// Init registers flags.
func Init() {
	Cmd.Flags().StringVar(&batchID, "batch", "", "limit to one import batch")
}
