// Package rules manages the merchant-to-category rule table: lookups
// during categorization, learning from corrections, and batch
// application over existing ledger rows.
package rules

import (
	"strings"
	"time"

	"the305/accountant/internal/ledger"
	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
	"the305/accountant/internal/normalize"
)

// Service wraps the ledger's rule table with the normalization and
// audit behavior every caller needs.
type Service struct {
	store ledger.Store
	log   logging.Logger
}

// NewService builds a rule service on top of a ledger store.
func NewService(store ledger.Store, log logging.Logger) *Service {
	return &Service{store: store, log: log}
}

// Lookup finds the rule for a merchant by exact match on the normalized
// key. Returns nil when no rule exists.
func (s *Service) Lookup(merchant string) (*models.Rule, error) {
	pattern := normalize.Key(merchant)
	if pattern == "" {
		return nil, nil
	}
	return s.store.GetRule(pattern)
}

// Upsert stores or replaces the rule for a merchant. Last write wins;
// updatedBy records who is writing (user, ai, backfill, import).
func (s *Service) Upsert(merchant, category, subcategory, updatedBy string) error {
	pattern := normalize.Key(merchant)
	if pattern == "" {
		return &ledgererr.ValidationError{Field: "merchant", Value: merchant, Reason: "normalizes to nothing"}
	}

	rule := models.Rule{
		Pattern:     pattern,
		Category:    category,
		Subcategory: subcategory,
		Merchant:    strings.TrimSpace(merchant),
		UpdatedAt:   time.Now().UTC(),
		UpdatedBy:   updatedBy,
	}
	if err := s.store.UpsertRule(rule); err != nil {
		return err
	}

	s.log.Debug("rule upserted",
		logging.F("pattern", pattern),
		logging.F("category", category),
		logging.F("updated_by", updatedBy))
	return nil
}

// ApplyResult counts the outcome of a BulkApply pass.
type ApplyResult struct {
	Updated int
	Skipped int
}

// BulkApply walks the transactions matched by the filter and applies
// the rule table to each one that has a rule for its merchant. Locked
// rows are skipped and counted unless force is set. Force overwrites
// the category but never sets or clears the lock.
func (s *Service) BulkApply(f ledger.Filter, force bool) (ApplyResult, error) {
	var res ApplyResult

	txs, err := s.store.Query(f)
	if err != nil {
		return res, err
	}

	for i := range txs {
		tx := &txs[i]
		rule, err := s.Lookup(tx.Merchant)
		if err != nil {
			return res, err
		}
		if rule == nil {
			continue
		}
		if tx.Locked && !force {
			res.Skipped++
			continue
		}
		if tx.Category == rule.Category && tx.Subcategory == rule.Subcategory {
			continue
		}

		fields := map[string]interface{}{
			"category":        rule.Category,
			"subcategory":     rule.Subcategory,
			"category_source": models.SourceRule,
		}
		if tx.Merchant == "" && rule.Merchant != "" {
			fields["merchant"] = rule.Merchant
		}
		if err := s.store.Update(tx.ID, fields); err != nil {
			return res, err
		}
		res.Updated++
	}

	s.log.Info("rules applied",
		logging.F("updated", res.Updated),
		logging.F("skipped", res.Skipped),
		logging.F("force", force))
	return res, nil
}

// Correct records a human correction: the row gets the new category,
// is locked against automated rewrites, and the mapping is learned as
// a user rule so future imports of the merchant categorize themselves.
func (s *Service) Correct(txID, category, subcategory string) error {
	tx, err := s.store.Get(txID)
	if err != nil {
		return err
	}
	if tx == nil {
		return &ledgererr.ValidationError{Field: "id", Value: txID, Reason: "no such transaction"}
	}

	err = s.store.Update(txID, map[string]interface{}{
		"category":        category,
		"subcategory":     subcategory,
		"category_source": models.SourceRule,
		"locked":          true,
	})
	if err != nil {
		return err
	}

	if tx.Merchant != "" && tx.Merchant != models.UnknownMerchant {
		if err := s.Upsert(tx.Merchant, category, subcategory, models.UpdatedByUser); err != nil {
			return err
		}
	}
	return nil
}

// Backfill learns rules from locked rows, so a ledger corrected by hand
// before rule learning existed seeds the rule table. Existing rules are
// not overwritten; the human already expressed a newer opinion there.
func (s *Service) Backfill() (int, error) {
	txs, err := s.store.Query(ledger.Filter{})
	if err != nil {
		return 0, err
	}

	learned := 0
	for _, tx := range txs {
		if !tx.Locked || !tx.Categorized() {
			continue
		}
		if tx.Merchant == "" || tx.Merchant == models.UnknownMerchant {
			continue
		}
		existing, err := s.Lookup(tx.Merchant)
		if err != nil {
			return learned, err
		}
		if existing != nil {
			continue
		}
		if err := s.Upsert(tx.Merchant, tx.Category, tx.Subcategory, models.UpdatedByBackfill); err != nil {
			return learned, err
		}
		learned++
	}
	return learned, nil
}
