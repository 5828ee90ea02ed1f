// Package ingest implements the ingest command: read a CSV export,
// reconcile it against the ledger, categorize the new rows, and commit
// the batch.
package ingest

import (
	"fmt"

	"github.com/spf13/cobra"

	"the305/accountant/cmd/root"
	"the305/accountant/internal/importer"
	"the305/accountant/internal/ledger"
	"the305/accountant/internal/models"
)

var (
	accountName string
	skipAI      bool
)

// Cmd is the ingest command.
var Cmd = &cobra.Command{
	Use:   "ingest <file.csv>",
	Short: "Import a CSV export into the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

// Init registers flags.
func Init() {
	Cmd.Flags().StringVarP(&accountName, "account", "a", "", "account the export belongs to (required)")
	Cmd.Flags().BoolVar(&skipAI, "no-categorize", false, "reconcile only, leave rows uncategorized")
	_ = Cmd.MarkFlagRequired("account")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := root.BuildContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	rows, err := importer.ReadRawRows(args[0])
	if err != nil {
		return err
	}

	accountID, err := c.Store().GetOrCreateAccount(accountName)
	if err != nil {
		return err
	}

	batch := models.NewImportBatch(args[0], accountID)
	res, err := c.Reconciler().Reconcile(batch, rows)
	if err != nil {
		return err
	}

	if !skipAI {
		stats, err := c.Resolver().ResolveBatch(ctx, ledger.Filter{BatchID: batch.ID})
		if err != nil {
			return err
		}
		fmt.Printf("categorized: %d resolved, %d defaulted, %d failed\n",
			stats.Resolved, stats.Defaulted, stats.Failed)
	}

	if err := c.Reconciler().Commit(batch.ID); err != nil {
		return err
	}

	fmt.Printf("batch %s: %d inserted, %d skipped, %d merged, %d errors (%d rows)\n",
		batch.ID, res.Inserted, res.Skipped, res.Merged, res.Errors, res.Total())
	return nil
}
