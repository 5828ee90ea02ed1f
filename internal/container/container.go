// Package container wires the application dependencies: configuration,
// logging, the ledger store, the rule service, the resolver, the
// reconciler, and the budget aggregator. Construction is explicit so
// every component receives what it needs through its constructor.
package container

import (
	"context"
	"fmt"

	"the305/accountant/internal/budget"
	"the305/accountant/internal/categorizer"
	"the305/accountant/internal/config"
	"the305/accountant/internal/importer"
	"the305/accountant/internal/ledger"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/rules"
)

// Container holds the wired application. Fields are private; commands
// reach components through getters and never rewire them.
type Container struct {
	cfg        *config.Config
	logger     logging.Logger
	store      ledger.Store
	rules      *rules.Service
	resolver   *categorizer.Resolver
	reconciler *importer.Reconciler
	budget     *budget.Aggregator
	gemini     *categorizer.GeminiClient
}

// New builds the full dependency graph from configuration. The Gemini
// client is only created when AI is enabled and a key is present; the
// resolver handles a nil client by skipping the AI strategy.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	store, err := ledger.OpenSQLite(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	ruleSvc := rules.NewService(store, logger)

	var (
		aiClient categorizer.AIClient
		gemini   *categorizer.GeminiClient
	)
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err = categorizer.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
		aiClient = gemini
		logger.Info("ai categorization enabled", logging.F("model", cfg.AI.Model))
	} else {
		logger.Info("ai categorization disabled")
	}

	resolver := categorizer.NewResolver(store, ruleSvc, aiClient, categorizer.Options{
		AITimeout:           cfg.AITimeout(),
		ConfidenceThreshold: cfg.Categorization.ConfidenceThreshold,
		FallbackCategory:    cfg.AI.FallbackCategory,
		AutoLearn:           cfg.Categorization.AutoLearn,
	}, logger)

	return &Container{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		rules:      ruleSvc,
		resolver:   resolver,
		reconciler: importer.NewReconciler(store, logger),
		budget:     budget.NewAggregator(store, cfg.Budget.ExcludedCategories, logger),
		gemini:     gemini,
	}, nil
}

func (c *Container) Config() *config.Config           { return c.cfg }
func (c *Container) Logger() logging.Logger           { return c.logger }
func (c *Container) Store() ledger.Store              { return c.store }
func (c *Container) Rules() *rules.Service            { return c.rules }
func (c *Container) Resolver() *categorizer.Resolver  { return c.resolver }
func (c *Container) Reconciler() *importer.Reconciler { return c.reconciler }
func (c *Container) Budget() *budget.Aggregator       { return c.budget }

// Close releases the provider connection and the ledger.
func (c *Container) Close() error {
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			c.logger.WithError(err).Warn("failed to close ai client")
		}
	}
	return c.store.Close()
}
