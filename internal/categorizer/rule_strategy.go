package categorizer

import (
	"context"

	"the305/accountant/internal/models"
	"the305/accountant/internal/rules"
)

// RuleStrategy answers from the learned rule table. It is the first
// strategy in the chain, so a known merchant never reaches the AI.
type RuleStrategy struct {
	rules *rules.Service
}

// NewRuleStrategy builds a rule-table strategy.
func NewRuleStrategy(svc *rules.Service) *RuleStrategy {
	return &RuleStrategy{rules: svc}
}

func (s *RuleStrategy) Name() string {
	return "rule"
}

func (s *RuleStrategy) Resolve(_ context.Context, tx models.Transaction) (Result, bool, error) {
	rule, err := s.rules.Lookup(tx.Merchant)
	if err != nil {
		return Result{}, false, err
	}
	if rule == nil {
		return Result{}, false, nil
	}
	return Result{
		Category:    rule.Category,
		Subcategory: rule.Subcategory,
		Source:      models.SourceRule,
		Confidence:  1.0,
	}, true, nil
}
