// Package root holds the root command every subcommand hangs off.
package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"the305/accountant/internal/config"
	"the305/accountant/internal/container"
)

var logLevel string

// Cmd is the root command.
var Cmd = &cobra.Command{
	Use:   "accountant",
	Short: "Import, deduplicate, categorize, and budget personal finance transactions.",
	Long: `accountant maintains a transaction ledger: it ingests bank CSV
exports, deduplicates them against what is already known, assigns
categories through learned rules with an optional AI fallback, and
reports spending against budget limits.`,
	SilenceUsage: true,
}

// Init registers persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level (debug|info|warn|error)")
}

// BuildContainer loads configuration, applies flag overrides, and wires
// the application. Callers own the returned container and must Close it.
func BuildContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return container.New(ctx, cfg)
}
