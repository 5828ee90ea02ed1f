package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus tracks an import batch through its staged lifecycle.
type BatchStatus string

const (
	// BatchRaw means rows have been read but not reconciled yet.
	BatchRaw BatchStatus = "raw"
	// BatchReconciled means rows were deduplicated against the ledger.
	BatchReconciled BatchStatus = "reconciled"
	// BatchCommitted means categorization ran and the batch is final.
	BatchCommitted BatchStatus = "committed"
)

// ImportBatch identifies one reconciliation run of a source file or feed.
type ImportBatch struct {
	ID        string
	Source    string
	AccountID int64
	Status    BatchStatus
	CreatedAt time.Time
}

// NewImportBatch creates a raw batch with a fresh id.
func NewImportBatch(source string, accountID int64) ImportBatch {
	return ImportBatch{
		ID:        uuid.New().String(),
		Source:    source,
		AccountID: accountID,
		Status:    BatchRaw,
		CreatedAt: time.Now().UTC(),
	}
}

// ImportResult counts the fate of every row in one reconcile call.
type ImportResult struct {
	Inserted int
	Skipped  int
	Merged   int
	Errors   int
}

// Total returns the number of rows the reconciler saw.
func (r ImportResult) Total() int {
	return r.Inserted + r.Skipped + r.Merged + r.Errors
}
