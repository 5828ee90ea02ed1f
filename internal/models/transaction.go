// Package models defines the canonical domain types shared by every layer:
// transactions, categorization rules, import batches, and budget limits.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryUncategorized is the category of a transaction no strategy could
// resolve. It is a real value, not an absence marker, so downstream
// aggregation never has to special-case empty strings.
const CategoryUncategorized = "Uncategorized"

// UnknownMerchant is the merchant assigned when a description yields no
// usable tokens after normalization.
const UnknownMerchant = "Unknown Merchant"

// Categorization provenance values recorded on a transaction when a
// category is assigned.
const (
	SourceRule    = "rule"
	SourceAI      = "ai"
	SourceDefault = "default"
)

// Transaction is the canonical ledger row. Amounts follow a single sign
// convention: expenses negative, income positive. ID and DedupKey are
// assigned once at insert and never change afterwards.
type Transaction struct {
	ID                  string
	AccountID           int64
	Date                time.Time
	OriginalDescription string
	CleanedDescription  string
	Merchant            string
	Amount              decimal.Decimal
	Currency            string
	Category            string
	Subcategory         string
	CategorySource      string
	DedupKey            string
	BatchID             string
	Pending             bool
	// Locked marks a human-reviewed row. Automated categorization must
	// leave locked rows untouched unless explicitly forced.
	Locked bool
}

// IsExpense reports whether the transaction represents money leaving the
// account under the canonical sign convention.
func (t *Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction represents money entering the
// account.
func (t *Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// EffectiveCategory returns the assigned category, or CategoryUncategorized
// when none has been set yet.
func (t *Transaction) EffectiveCategory() string {
	if strings.TrimSpace(t.Category) == "" {
		return CategoryUncategorized
	}
	return t.Category
}

// Categorized reports whether a real category has been assigned.
func (t *Transaction) Categorized() bool {
	return t.EffectiveCategory() != CategoryUncategorized
}
