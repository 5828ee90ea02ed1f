package categorizer

import (
	"context"
	"fmt"
	"time"

	"the305/accountant/internal/ledger"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
	"the305/accountant/internal/rules"
)

// Options tunes the resolver chain.
type Options struct {
	// AITimeout bounds each provider call.
	AITimeout time.Duration
	// ConfidenceThreshold rejects AI suggestions below it.
	ConfidenceThreshold float64
	// FallbackCategory is what the default strategy assigns.
	FallbackCategory string
	// AutoLearn turns accepted AI suggestions into rules.
	AutoLearn bool
}

// Resolver runs the strategy chain for one transaction and commits the
// outcome for whole batches. No ledger transaction is ever held across
// a provider call: resolution reads, releases, and commits with a
// short write.
type Resolver struct {
	store      ledger.Store
	rules      *rules.Service
	strategies []Strategy
	autoLearn  bool
	log        logging.Logger
}

// NewResolver wires the chain: rules, then AI (skipped when client is
// nil), then the default. The rule strategy sitting first guarantees a
// merchant with a rule never costs a provider call.
func NewResolver(store ledger.Store, ruleSvc *rules.Service, ai AIClient, opts Options, log logging.Logger) *Resolver {
	strategies := []Strategy{
		NewRuleStrategy(ruleSvc),
		NewAIStrategy(ai, opts.AITimeout, opts.ConfidenceThreshold, log),
		NewDefaultStrategy(opts.FallbackCategory),
	}
	return &Resolver{
		store:      store,
		rules:      ruleSvc,
		strategies: strategies,
		autoLearn:  opts.AutoLearn,
		log:        log,
	}
}

// Resolve proposes a categorization for one transaction without writing
// anything. Locked rows come back unchanged with an empty Source; the
// caller must not commit those.
func (r *Resolver) Resolve(ctx context.Context, tx models.Transaction) (Result, error) {
	if tx.Locked {
		return Result{
			Category:    tx.EffectiveCategory(),
			Subcategory: tx.Subcategory,
		}, nil
	}

	for _, s := range r.strategies {
		res, found, err := s.Resolve(ctx, tx)
		if err != nil {
			// provider failures degrade inside the AI strategy; an error
			// surfacing here means the rule table could not be read, and
			// guessing past it would write an AI answer over a rule
			return Result{}, fmt.Errorf("%s strategy: %w", s.Name(), err)
		}
		if !found {
			continue
		}

		if res.Source == models.SourceAI && r.autoLearn && res.Category != models.CategoryUncategorized {
			if err := r.rules.Upsert(tx.Merchant, res.Category, res.Subcategory, models.UpdatedByAI); err != nil {
				r.log.WithError(err).Warn("failed to learn rule from ai suggestion",
					logging.F("merchant", tx.Merchant))
			}
		}
		return res, nil
	}

	// unreachable while the default strategy terminates the chain
	return Result{Category: models.CategoryUncategorized, Source: models.SourceDefault}, nil
}

// BatchStats counts the outcome of a ResolveBatch pass.
type BatchStats struct {
	Resolved  int
	Defaulted int
	Failed    int
}

// ResolveBatch categorizes every uncategorized, unlocked row matching
// the filter and writes the results back. A failed write is counted
// and skipped; a failed rule lookup is a storage failure and aborts
// the batch.
func (r *Resolver) ResolveBatch(ctx context.Context, f ledger.Filter) (BatchStats, error) {
	var stats BatchStats

	f.Uncategorized = true
	txs, err := r.store.Query(f)
	if err != nil {
		return stats, err
	}

	for _, tx := range txs {
		if tx.Locked {
			continue
		}

		res, err := r.Resolve(ctx, tx)
		if err != nil {
			return stats, err
		}

		err = r.store.Update(tx.ID, map[string]interface{}{
			"category":        res.Category,
			"subcategory":     res.Subcategory,
			"category_source": res.Source,
		})
		if err != nil {
			stats.Failed++
			r.log.WithError(err).Warn("failed to write categorization", logging.F("transaction", tx.ID))
			continue
		}

		if res.Source == models.SourceDefault {
			stats.Defaulted++
		} else {
			stats.Resolved++
		}
	}

	r.log.Info("batch categorized",
		logging.F("resolved", stats.Resolved),
		logging.F("defaulted", stats.Defaulted),
		logging.F("failed", stats.Failed))
	return stats, nil
}
