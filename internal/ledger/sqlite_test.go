package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := OpenSQLite(path, logging.NewRecorder())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestStore(t)

	acct, err := s.GetOrCreateAccount("chase-checking")
	require.NoError(t, err)
	again, err := s.GetOrCreateAccount("chase-checking")
	require.NoError(t, err)
	assert.Equal(t, acct, again)

	tx := &models.Transaction{
		AccountID:           acct,
		Date:                time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		OriginalDescription: "AMZN Mktp US*RT4Y12",
		CleanedDescription:  "AMZN MKTP US*RT4Y12",
		Merchant:            "Amazon",
		Amount:              decimal.RequireFromString("-23.99"),
		Currency:            "USD",
		DedupKey:            "abc123",
	}
	require.NoError(t, s.Insert(tx))
	require.NotEmpty(t, tx.ID)

	got, err := s.FindByKey("abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, "Amazon", got.Merchant)
	assert.True(t, got.Amount.Equal(tx.Amount))
	assert.Equal(t, "2026-03-05", got.Date.Format("2006-01-02"))
}

func TestSQLiteDuplicateKey(t *testing.T) {
	s := openTestStore(t)
	acct, err := s.GetOrCreateAccount("acct")
	require.NoError(t, err)

	mk := func() *models.Transaction {
		return &models.Transaction{
			AccountID: acct,
			Date:      time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
			Amount:    decimal.RequireFromString("-5.00"),
			Currency:  "USD",
			DedupKey:  "dup-key",
		}
	}
	require.NoError(t, s.Insert(mk()))

	err = s.Insert(mk())
	var dup *ledgererr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "dup-key", dup.Key)
}

func TestSQLiteUpdateAndQuery(t *testing.T) {
	s := openTestStore(t)
	acct, err := s.GetOrCreateAccount("acct")
	require.NoError(t, err)

	tx := &models.Transaction{
		AccountID: acct,
		Date:      time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("-5.00"),
		Currency:  "USD",
		DedupKey:  "k1",
	}
	require.NoError(t, s.Insert(tx))

	require.NoError(t, s.Update(tx.ID, map[string]interface{}{
		"category": "Dining",
		"locked":   true,
	}))

	err = s.Update(tx.ID, map[string]interface{}{"amount": "1.00"})
	var verr *ledgererr.ValidationError
	assert.ErrorAs(t, err, &verr, "amount is immutable")

	uncat, err := s.Query(Filter{Uncategorized: true})
	require.NoError(t, err)
	assert.Empty(t, uncat)

	dining, err := s.Query(Filter{Category: "Dining"})
	require.NoError(t, err)
	require.Len(t, dining, 1)
	assert.True(t, dining[0].Locked)
}

func TestSQLiteWhitespaceCategoryIsUncategorized(t *testing.T) {
	s := openTestStore(t)
	acct, err := s.GetOrCreateAccount("acct")
	require.NoError(t, err)

	tx := &models.Transaction{
		AccountID: acct,
		Date:      time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.RequireFromString("-5.00"),
		Currency:  "USD",
		DedupKey:  "k-ws",
	}
	require.NoError(t, s.Insert(tx))
	require.NoError(t, s.Update(tx.ID, map[string]interface{}{"category": "   "}))

	uncat, err := s.Query(Filter{Uncategorized: true})
	require.NoError(t, err)
	require.Len(t, uncat, 1)
	assert.False(t, uncat[0].Categorized(), "store and model agree on what uncategorized means")
}

func TestSQLiteRulesAndBatches(t *testing.T) {
	s := openTestStore(t)

	rule := models.Rule{
		Pattern:   "whole foods market",
		Category:  "Groceries",
		Merchant:  "Whole Foods Market",
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: models.UpdatedByUser,
	}
	require.NoError(t, s.UpsertRule(rule))

	rule.Category = "Food"
	require.NoError(t, s.UpsertRule(rule))

	got, err := s.GetRule("whole foods market")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Food", got.Category)

	rules, err := s.ListRules()
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	b := models.NewImportBatch("export.csv", 1)
	require.NoError(t, s.CreateBatch(b))
	require.NoError(t, s.SetBatchStatus(b.ID, models.BatchCommitted))
	gb, err := s.GetBatch(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchCommitted, gb.Status)
}
