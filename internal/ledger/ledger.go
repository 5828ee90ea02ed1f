// Package ledger is the persistence layer: transactions, categorization
// rules, budget limits, accounts, and import batches. The Store
// interface keeps callers independent of the backing engine; the SQLite
// implementation is the production store and the memory implementation
// serves tests.
package ledger

import (
	"time"

	"the305/accountant/internal/models"
)

// Filter narrows a transaction query. Zero values mean "no constraint";
// Start is inclusive and End exclusive.
type Filter struct {
	AccountID     int64
	BatchID       string
	Category      string
	Uncategorized bool
	Start         time.Time
	End           time.Time
}

// Columns that Update accepts. Identity fields (id, account, date,
// amount, dedup key) are immutable after insert.
var mutableFields = map[string]bool{
	"original_description": true,
	"cleaned_description":  true,
	"merchant":             true,
	"currency":             true,
	"category":             true,
	"subcategory":          true,
	"category_source":      true,
	"batch_id":             true,
	"pending":              true,
	"locked":               true,
}

// Store is the persistence capability the pipeline components depend on.
// Implementations must be safe for concurrent readers.
type Store interface {
	// GetOrCreateAccount resolves an account name to its id, creating
	// the account on first sight.
	GetOrCreateAccount(name string) (int64, error)

	// Insert adds a new transaction and assigns its id. Inserting a
	// dedup key that already exists returns a DuplicateError.
	Insert(tx *models.Transaction) error
	// Get fetches one transaction by id, nil when absent.
	Get(id string) (*models.Transaction, error)
	// FindByKey fetches one transaction by dedup key, nil when absent.
	FindByKey(key string) (*models.Transaction, error)
	// Update changes a whitelisted subset of fields on one row.
	Update(id string, fields map[string]interface{}) error
	// Query returns transactions matching the filter, oldest first.
	Query(f Filter) ([]models.Transaction, error)

	GetRule(pattern string) (*models.Rule, error)
	UpsertRule(r models.Rule) error
	ListRules() ([]models.Rule, error)

	UpsertLimit(l models.BudgetLimit) error
	ListLimits() ([]models.BudgetLimit, error)

	CreateBatch(b models.ImportBatch) error
	GetBatch(id string) (*models.ImportBatch, error)
	SetBatchStatus(id string, status models.BatchStatus) error

	Close() error
}
