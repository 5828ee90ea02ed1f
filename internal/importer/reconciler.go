package importer

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"the305/accountant/internal/dateutils"
	"the305/accountant/internal/dedup"
	"the305/accountant/internal/ledger"
	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
	"the305/accountant/internal/normalize"
)

const defaultCurrency = "USD"

// parsedRow is a raw row after cell-level validation.
type parsedRow struct {
	raw         models.RawRow
	date        time.Time
	amount      decimal.Decimal
	description string
	cleaned     string
	valid       bool
}

// Reconciler deduplicates incoming rows against the ledger. One call
// handles one batch; calls for the same batch are serialized by the
// caller.
type Reconciler struct {
	store ledger.Store
	log   logging.Logger
}

// NewReconciler builds a reconciler over a ledger store.
func NewReconciler(store ledger.Store, log logging.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// Reconcile validates, sign-normalizes, and three-way merges the rows
// of one batch. Malformed rows cost one error count each; a storage
// failure aborts the whole batch. Running the same rows twice yields
// zero inserts the second time.
func (r *Reconciler) Reconcile(batch models.ImportBatch, rows []models.RawRow) (models.ImportResult, error) {
	var res models.ImportResult

	if err := r.store.CreateBatch(batch); err != nil {
		return res, err
	}

	parsed := make([]*parsedRow, len(rows))
	for i, raw := range rows {
		parsed[i] = r.parseRow(raw)
		if !parsed[i].valid {
			res.Errors++
		}
	}
	normalizeSigns(parsed)

	seen := make(map[string]bool, len(rows))
	for _, row := range parsed {
		if !row.valid {
			continue
		}

		key := dedup.BuildKey(batch.AccountID, row.date, row.amount, row.description)
		if seen[key] {
			// same key twice in one file is a source artifact, not
			// new information
			res.Skipped++
			continue
		}
		seen[key] = true

		existing, err := r.store.FindByKey(key)
		if err != nil {
			return res, err
		}

		if existing == nil {
			if err := r.insertRow(batch, row, key, &res); err != nil {
				return res, err
			}
			continue
		}

		merged, err := r.mergeRow(existing, row)
		if err != nil {
			return res, err
		}
		if merged {
			res.Merged++
		} else {
			res.Skipped++
		}
	}

	if err := r.store.SetBatchStatus(batch.ID, models.BatchReconciled); err != nil {
		return res, err
	}

	r.log.Info("batch reconciled",
		logging.F("batch", batch.ID),
		logging.F("inserted", res.Inserted),
		logging.F("skipped", res.Skipped),
		logging.F("merged", res.Merged),
		logging.F("errors", res.Errors))
	return res, nil
}

// Commit marks a reconciled batch final, after categorization ran.
func (r *Reconciler) Commit(batchID string) error {
	return r.store.SetBatchStatus(batchID, models.BatchCommitted)
}

func (r *Reconciler) parseRow(raw models.RawRow) *parsedRow {
	row := &parsedRow{raw: raw, description: strings.TrimSpace(raw.Description)}

	date, err := dateutils.ParseDate(raw.Date)
	if err != nil {
		r.log.WithError(err).Warn("row rejected", logging.F("date", raw.Date))
		return row
	}

	amount, err := models.ParseAmount(raw.Amount)
	if err != nil {
		r.log.WithError(err).Warn("row rejected", logging.F("amount", raw.Amount))
		return row
	}

	row.date = date
	row.amount = amount
	row.cleaned = normalize.Clean(row.description)
	row.valid = true
	return row
}

func (r *Reconciler) insertRow(batch models.ImportBatch, row *parsedRow, key string, res *models.ImportResult) error {
	merchant := strings.TrimSpace(row.raw.MerchantHint)
	if merchant == "" {
		merchant = normalize.Merchant(row.description)
	}
	currency := strings.ToUpper(strings.TrimSpace(row.raw.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	tx := &models.Transaction{
		AccountID:           batch.AccountID,
		Date:                row.date,
		OriginalDescription: row.description,
		CleanedDescription:  row.cleaned,
		Merchant:            merchant,
		Amount:              row.amount,
		Currency:            currency,
		DedupKey:            key,
		BatchID:             batch.ID,
		Pending:             row.raw.IsPending(),
	}

	err := r.store.Insert(tx)
	if err == nil {
		res.Inserted++
		return nil
	}

	var dup *ledgererr.DuplicateError
	if errors.As(err, &dup) {
		// raced another writer to the same key
		res.Skipped++
		return nil
	}
	var integrity *ledgererr.IntegrityError
	if errors.As(err, &integrity) {
		res.Errors++
		r.log.WithError(err).Error("row insert failed", logging.F("key", key))
		return nil
	}
	return err
}

// mergeRow folds non-identity updates from a re-imported row into the
// existing transaction. Identity fields and human-owned fields stay as
// they are; the id is preserved so references never break.
func (r *Reconciler) mergeRow(existing *models.Transaction, row *parsedRow) (bool, error) {
	fields := make(map[string]interface{})

	// a settled re-import clears the pending flag
	if existing.Pending && !row.raw.IsPending() {
		fields["pending"] = false
	}
	// banks rewrite reference tokens between exports; the latest
	// description wins as long as the dedup key matched and no human
	// has claimed the row
	if row.description != "" && row.description != existing.OriginalDescription && !existing.Locked {
		fields["original_description"] = row.description
		fields["cleaned_description"] = row.cleaned
	}
	if hint := strings.TrimSpace(row.raw.MerchantHint); hint != "" && !existing.Locked {
		if existing.Merchant == "" || existing.Merchant == models.UnknownMerchant {
			fields["merchant"] = hint
		}
	}
	if currency := strings.ToUpper(strings.TrimSpace(row.raw.Currency)); currency != "" && existing.Currency == "" {
		fields["currency"] = currency
	}

	if len(fields) == 0 {
		return false, nil
	}
	if err := r.store.Update(existing.ID, fields); err != nil {
		return false, err
	}
	return true, nil
}
