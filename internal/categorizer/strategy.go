// Package categorizer assigns categories to transactions through an
// ordered list of strategies: learned rules first, then an AI
// suggestion, then the configured default. Human-locked rows are never
// touched.
package categorizer

import (
	"context"

	"the305/accountant/internal/models"
)

// Result is one resolved categorization. Source records which strategy
// produced it.
type Result struct {
	Category    string
	Subcategory string
	Source      string
	Confidence  float64
}

// Strategy is one way of proposing a category for a transaction.
// Implementations return found=false when they have no opinion, letting
// the resolver fall through to the next strategy.
type Strategy interface {
	Resolve(ctx context.Context, tx models.Transaction) (Result, bool, error)
	Name() string
}
