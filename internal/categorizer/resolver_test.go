package categorizer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"the305/accountant/internal/ledger"
	"the305/accountant/internal/ledgererr"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
	"the305/accountant/internal/rules"
)

// mockAIClient counts calls and returns a canned suggestion or error.
type mockAIClient struct {
	suggestion Suggestion
	err        error
	callCount  int
}

func (m *mockAIClient) Suggest(_ context.Context, _, _ string) (Suggestion, error) {
	m.callCount++
	if m.err != nil {
		return Suggestion{}, m.err
	}
	return m.suggestion, nil
}

func testOptions() Options {
	return Options{
		AITimeout:           time.Second,
		ConfidenceThreshold: 0.8,
		FallbackCategory:    models.CategoryUncategorized,
		AutoLearn:           true,
	}
}

func newResolverFixture(t *testing.T, ai AIClient, opts Options) (*Resolver, *ledger.MemoryStore, *rules.Service) {
	t.Helper()
	store := ledger.NewMemoryStore()
	svc := rules.NewService(store, logging.NewRecorder())
	return NewResolver(store, svc, ai, opts, logging.NewRecorder()), store, svc
}

func makeTx(t *testing.T, store *ledger.MemoryStore, key, merchant string) models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		AccountID:           1,
		Date:                time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Merchant:            merchant,
		OriginalDescription: merchant,
		Amount:              decimal.RequireFromString("-25.00"),
		Currency:            "USD",
		DedupKey:            key,
	}
	require.NoError(t, store.Insert(tx))
	return *tx
}

func TestRulePrecedenceSkipsAI(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "Shopping", Confidence: 0.95}}
	r, store, svc := newResolverFixture(t, ai, testOptions())
	require.NoError(t, svc.Upsert("Whole Foods Market", "Groceries", "", models.UpdatedByUser))

	tx := makeTx(t, store, "k1", "Whole Foods Market")

	res, err := r.Resolve(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", res.Category)
	assert.Equal(t, models.SourceRule, res.Source)
	assert.Equal(t, 0, ai.callCount, "a merchant with a rule must never reach the provider")
}

func TestAIFallbackAndAutoLearn(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "Dining", Subcategory: "Coffee", Confidence: 0.9}}
	r, store, svc := newResolverFixture(t, ai, testOptions())

	tx := makeTx(t, store, "k1", "Corner Store")

	res, err := r.Resolve(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "Dining", res.Category)
	assert.Equal(t, models.SourceAI, res.Source)
	assert.Equal(t, 1, ai.callCount)

	learned, err := svc.Lookup("Corner Store")
	require.NoError(t, err)
	require.NotNil(t, learned, "accepted suggestion becomes a rule")
	assert.Equal(t, "Dining", learned.Category)
	assert.Equal(t, models.UpdatedByAI, learned.UpdatedBy)

	// second resolution answers from the learned rule
	res, err = r.Resolve(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, models.SourceRule, res.Source)
	assert.Equal(t, 1, ai.callCount)
}

func TestLowConfidenceFallsToDefault(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "Dining", Confidence: 0.3}}
	r, store, svc := newResolverFixture(t, ai, testOptions())

	tx := makeTx(t, store, "k1", "Corner Store")

	res, err := r.Resolve(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUncategorized, res.Category)
	assert.Equal(t, models.SourceDefault, res.Source)

	learned, err := svc.Lookup("Corner Store")
	require.NoError(t, err)
	assert.Nil(t, learned, "low-confidence suggestions must not become rules")
}

func TestProviderErrorDegradesToDefault(t *testing.T) {
	ai := &mockAIClient{err: &ledgererr.ProviderError{Provider: "gemini", Err: context.DeadlineExceeded}}
	r, store, _ := newResolverFixture(t, ai, testOptions())

	tx := makeTx(t, store, "k1", "Corner Store")

	res, err := r.Resolve(context.Background(), tx)
	require.NoError(t, err, "provider failure is not a resolution error")
	assert.Equal(t, models.SourceDefault, res.Source)
}

func TestTimeoutDegradesToDefault(t *testing.T) {
	ai := &mockAIClient{err: ledgererr.ErrTimeout}
	r, store, _ := newResolverFixture(t, ai, testOptions())

	tx := makeTx(t, store, "k1", "Corner Store")

	res, err := r.Resolve(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUncategorized, res.Category)
	assert.Equal(t, 1, ai.callCount)
}

// faultyRuleStore fails every rule lookup, as a wedged ledger would.
type faultyRuleStore struct {
	*ledger.MemoryStore
	ruleErr error
}

func (s *faultyRuleStore) GetRule(pattern string) (*models.Rule, error) {
	return nil, s.ruleErr
}

func TestRuleLookupFailureAborts(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "Shopping", Confidence: 0.95}}
	store := &faultyRuleStore{
		MemoryStore: ledger.NewMemoryStore(),
		ruleErr:     &ledgererr.IntegrityError{Op: "get rule", Err: context.Canceled},
	}
	svc := rules.NewService(store, logging.NewRecorder())
	r := NewResolver(store, svc, ai, testOptions(), logging.NewRecorder())

	tx := makeTx(t, store.MemoryStore, "k1", "Whole Foods Market")

	_, err := r.Resolve(context.Background(), tx)
	require.Error(t, err, "an unreadable rule table must not be guessed past")
	assert.Equal(t, 0, ai.callCount, "no provider call when the rule table cannot be read")

	_, err = r.ResolveBatch(context.Background(), ledger.Filter{})
	require.Error(t, err)

	got, err := store.MemoryStore.Get(tx.ID)
	require.NoError(t, err)
	assert.False(t, got.Categorized(), "nothing is written while the rule table is down")
}

func TestNilClientSkipsAI(t *testing.T) {
	r, store, _ := newResolverFixture(t, nil, testOptions())

	tx := makeTx(t, store, "k1", "Corner Store")

	res, err := r.Resolve(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, models.SourceDefault, res.Source)
}

func TestLockedRowIsNoOp(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "Shopping", Confidence: 0.95}}
	r, store, _ := newResolverFixture(t, ai, testOptions())

	tx := makeTx(t, store, "k1", "Corner Store")
	require.NoError(t, store.Update(tx.ID, map[string]interface{}{
		"category": "Gifts",
		"locked":   true,
	}))
	locked, err := store.Get(tx.ID)
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), *locked)
	require.NoError(t, err)
	assert.Equal(t, "Gifts", res.Category)
	assert.Empty(t, res.Source, "locked rows report no new source")
	assert.Equal(t, 0, ai.callCount)
}

func TestResolveBatch(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "Dining", Confidence: 0.9}}
	r, store, svc := newResolverFixture(t, ai, testOptions())
	require.NoError(t, svc.Upsert("Amazon", "Shopping", "", models.UpdatedByUser))

	makeTx(t, store, "k1", "Amazon")
	unknown := makeTx(t, store, "k2", "Mystery Shop")
	_ = unknown

	categorized := makeTx(t, store, "k3", "Target")
	require.NoError(t, store.Update(categorized.ID, map[string]interface{}{"category": "Household"}))

	stats, err := r.ResolveBatch(context.Background(), ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, 0, stats.Defaulted)
	assert.Equal(t, 0, stats.Failed)

	all, err := store.Query(ledger.Filter{})
	require.NoError(t, err)
	for _, tx := range all {
		assert.True(t, tx.Categorized(), "every row ends categorized: %s", tx.Merchant)
	}

	got, err := store.Get(categorized.ID)
	require.NoError(t, err)
	assert.Equal(t, "Household", got.Category, "already categorized rows are untouched")
}

func TestAIStrategyRejectsEmptyCategory(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "  ", Confidence: 0.99}}
	strategy := NewAIStrategy(ai, time.Second, 0.5, logging.NewRecorder())

	_, found, err := strategy.Resolve(context.Background(), models.Transaction{Merchant: "Shop"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAIStrategySkipsUnknownMerchant(t *testing.T) {
	ai := &mockAIClient{suggestion: Suggestion{Category: "Dining", Confidence: 0.99}}
	strategy := NewAIStrategy(ai, time.Second, 0.5, logging.NewRecorder())

	_, found, err := strategy.Resolve(context.Background(), models.Transaction{Merchant: models.UnknownMerchant})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, ai.callCount)
}

func TestParseSuggestion(t *testing.T) {
	sugg := parseSuggestion("Category: Groceries\nSubcategory: Produce\nConfidence: 0.92")
	assert.Equal(t, "Groceries", sugg.Category)
	assert.Equal(t, "Produce", sugg.Subcategory)
	assert.InDelta(t, 0.92, sugg.Confidence, 0.001)

	sugg = parseSuggestion("Category: Dining")
	assert.Equal(t, "Dining", sugg.Category)
	assert.InDelta(t, 0.5, sugg.Confidence, 0.001, "missing confidence gets the neutral default")

	sugg = parseSuggestion("Confidence: 7")
	assert.InDelta(t, 0.5, sugg.Confidence, 0.001, "out-of-range confidence is ignored")
}
