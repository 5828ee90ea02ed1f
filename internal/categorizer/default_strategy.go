package categorizer

import (
	"context"

	"the305/accountant/internal/models"
)

// DefaultStrategy terminates the chain. It always answers, so every
// transaction ends up with a real category value.
type DefaultStrategy struct {
	fallback string
}

// NewDefaultStrategy builds the terminal strategy. An empty fallback
// means Uncategorized.
func NewDefaultStrategy(fallback string) *DefaultStrategy {
	if fallback == "" {
		fallback = models.CategoryUncategorized
	}
	return &DefaultStrategy{fallback: fallback}
}

func (s *DefaultStrategy) Name() string {
	return "default"
}

func (s *DefaultStrategy) Resolve(context.Context, models.Transaction) (Result, bool, error) {
	return Result{
		Category: s.fallback,
		Source:   models.SourceDefault,
	}, true, nil
}
