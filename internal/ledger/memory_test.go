package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/models"
)

func testTransaction(key string, day int, amount string) *models.Transaction {
	return &models.Transaction{
		AccountID:           1,
		Date:                time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC),
		OriginalDescription: "CORNER STORE",
		Merchant:            "Corner Store",
		Amount:              decimal.RequireFromString(amount),
		Currency:            "USD",
		DedupKey:            key,
	}
}

func TestMemoryInsertAssignsID(t *testing.T) {
	s := NewMemoryStore()
	tx := testTransaction("key-1", 1, "-10.00")

	require.NoError(t, s.Insert(tx))
	assert.NotEmpty(t, tx.ID)

	got, err := s.Get(tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "key-1", got.DedupKey)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("-10.00")))
}

func TestMemoryInsertDuplicateKey(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Insert(testTransaction("key-1", 1, "-10.00")))

	err := s.Insert(testTransaction("key-1", 1, "-10.00"))
	var dup *ledgererr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "key-1", dup.Key)
}

func TestMemoryFindByKey(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Insert(testTransaction("key-1", 1, "-10.00")))

	got, err := s.FindByKey("key-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	missing, err := s.FindByKey("absent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryUpdate(t *testing.T) {
	s := NewMemoryStore()
	tx := testTransaction("key-1", 1, "-10.00")
	require.NoError(t, s.Insert(tx))

	err := s.Update(tx.ID, map[string]interface{}{
		"category":        "Groceries",
		"category_source": models.SourceRule,
		"locked":          true,
	})
	require.NoError(t, err)

	got, err := s.Get(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Category)
	assert.Equal(t, models.SourceRule, got.CategorySource)
	assert.True(t, got.Locked)
}

func TestMemoryUpdateRejectsImmutableField(t *testing.T) {
	s := NewMemoryStore()
	tx := testTransaction("key-1", 1, "-10.00")
	require.NoError(t, s.Insert(tx))

	err := s.Update(tx.ID, map[string]interface{}{"dedup_key": "other"})
	var verr *ledgererr.ValidationError
	assert.ErrorAs(t, err, &verr)

	err = s.Update("missing", map[string]interface{}{"category": "x"})
	assert.ErrorAs(t, err, &verr)
}

func TestMemoryUpdateRejectsWrongType(t *testing.T) {
	s := NewMemoryStore()
	tx := testTransaction("key-1", 1, "-10.00")
	require.NoError(t, s.Insert(tx))

	err := s.Update(tx.ID, map[string]interface{}{
		"category": "Groceries",
		"pending":  "yes",
	})
	var verr *ledgererr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pending", verr.Field)

	got, err := s.Get(tx.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Category, "a rejected update leaves the row untouched")
}

func TestMemoryQueryFilters(t *testing.T) {
	s := NewMemoryStore()

	a := testTransaction("key-a", 1, "-10.00")
	b := testTransaction("key-b", 15, "-20.00")
	c := testTransaction("key-c", 20, "-30.00")
	c.AccountID = 2
	require.NoError(t, s.Insert(a))
	require.NoError(t, s.Insert(b))
	require.NoError(t, s.Insert(c))
	require.NoError(t, s.Update(b.ID, map[string]interface{}{"category": "Groceries"}))

	all, err := s.Query(Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "key-a", all[0].DedupKey, "oldest first")

	byAccount, err := s.Query(Filter{AccountID: 2})
	require.NoError(t, err)
	assert.Len(t, byAccount, 1)

	uncat, err := s.Query(Filter{Uncategorized: true})
	require.NoError(t, err)
	assert.Len(t, uncat, 2)

	windowed, err := s.Query(Filter{
		Start: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "key-b", windowed[0].DedupKey, "end of window is exclusive")
}

func TestMemoryRules(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.UpsertRule(models.Rule{Pattern: "amazon", Category: "Shopping"}))
	require.NoError(t, s.UpsertRule(models.Rule{Pattern: "amazon", Category: "Subscriptions"}))

	r, err := s.GetRule("amazon")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "Subscriptions", r.Category, "last write wins")

	missing, err := s.GetRule("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = s.UpsertRule(models.Rule{Pattern: "", Category: "Shopping"})
	var verr *ledgererr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMemoryBatches(t *testing.T) {
	s := NewMemoryStore()
	b := models.NewImportBatch("chase.csv", 1)
	require.NoError(t, s.CreateBatch(b))

	require.NoError(t, s.SetBatchStatus(b.ID, models.BatchReconciled))
	got, err := s.GetBatch(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchReconciled, got.Status)

	err = s.SetBatchStatus("missing", models.BatchCommitted)
	var verr *ledgererr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMemoryLimits(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.UpsertLimit(models.BudgetLimit{Category: "Groceries", Limit: decimal.RequireFromString("400")}))
	require.NoError(t, s.UpsertLimit(models.BudgetLimit{Category: "Groceries", Limit: decimal.RequireFromString("450")}))

	limits, err := s.ListLimits()
	require.NoError(t, err)
	require.Len(t, limits, 1)
	assert.True(t, limits[0].Limit.Equal(decimal.RequireFromString("450")))
}
