package categorizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
)

// AIStrategy asks an external provider for a suggestion. It degrades
// gracefully: timeouts, provider failures, and low-confidence answers
// all surface as "no opinion" so the chain falls through to the
// default. A missing category can always be fixed later; a wrong
// guess written with confidence poisons the ledger.
type AIStrategy struct {
	client    AIClient
	timeout   time.Duration
	threshold float64
	log       logging.Logger
}

// NewAIStrategy builds an AI strategy. A nil client disables it.
func NewAIStrategy(client AIClient, timeout time.Duration, threshold float64, log logging.Logger) *AIStrategy {
	return &AIStrategy{client: client, timeout: timeout, threshold: threshold, log: log}
}

func (s *AIStrategy) Name() string {
	return "ai"
}

func (s *AIStrategy) Resolve(ctx context.Context, tx models.Transaction) (Result, bool, error) {
	if s.client == nil {
		return Result{}, false, nil
	}
	if tx.Merchant == "" || tx.Merchant == models.UnknownMerchant {
		return Result{}, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sugg, err := s.client.Suggest(ctx, tx.Merchant, tx.OriginalDescription)
	if err != nil {
		if errors.Is(err, ledgererr.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("ai suggestion timed out", logging.F("merchant", tx.Merchant))
		} else {
			s.log.WithError(err).Warn("ai suggestion failed", logging.F("merchant", tx.Merchant))
		}
		return Result{}, false, nil
	}

	if strings.TrimSpace(sugg.Category) == "" || sugg.Confidence < s.threshold {
		s.log.Debug("ai suggestion below threshold",
			logging.F("merchant", tx.Merchant),
			logging.F("category", sugg.Category),
			logging.F("confidence", sugg.Confidence))
		return Result{}, false, nil
	}

	return Result{
		Category:    sugg.Category,
		Subcategory: sugg.Subcategory,
		Source:      models.SourceAI,
		Confidence:  sugg.Confidence,
	}, true, nil
}
