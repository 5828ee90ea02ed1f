package models

import "time"

// Rule author values recorded in UpdatedBy.
const (
	UpdatedByUser     = "user"
	UpdatedByAI       = "ai"
	UpdatedByBackfill = "backfill"
	UpdatedByImport   = "import"
)

// Rule maps a normalized merchant key to a category. Pattern is the
// primary key: the lowercased, scrubbed form produced by the normalizer.
// Merchant keeps the canonical display form for backfilling rows that
// were imported before the merchant table knew the name.
type Rule struct {
	Pattern     string    `yaml:"-"`
	Category    string    `yaml:"category"`
	Subcategory string    `yaml:"subcategory,omitempty"`
	Merchant    string    `yaml:"merchant,omitempty"`
	UpdatedAt   time.Time `yaml:"-"`
	UpdatedBy   string    `yaml:"updated_by,omitempty"`
}
