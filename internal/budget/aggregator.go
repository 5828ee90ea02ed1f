// Package budget aggregates categorized transactions into per-category
// window summaries and compares them against configured limits. Every
// report (status, averages, estimates) flows through the same
// summarize path so the numbers can never disagree.
package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"the305/accountant/internal/dateutils"
	"the305/accountant/internal/ledger"
	"the305/accountant/internal/logging"
	"the305/accountant/internal/models"
)

// historyWindows are the month spans reported by HistoricalAverages.
var historyWindows = []int{1, 3, 6, 18}

// estimateMonths is the history window limit estimation averages over.
const estimateMonths = 3

// Aggregator computes budget views over the ledger.
type Aggregator struct {
	store    ledger.Store
	excluded map[string]bool
	log      logging.Logger
}

// NewAggregator builds an aggregator. Excluded categories (transfers,
// income, card payments) are kept out of spending averages and limit
// estimates but still appear in plain summaries.
func NewAggregator(store ledger.Store, excludedCategories []string, log logging.Logger) *Aggregator {
	excluded := make(map[string]bool, len(excludedCategories))
	for _, c := range excludedCategories {
		excluded[c] = true
	}
	return &Aggregator{store: store, excluded: excluded, log: log}
}

// Summarize groups transactions into signed per-category totals,
// ordered by absolute total descending. Rows outside [start, end) are
// ignored; zero start or end means unbounded on that side.
func (a *Aggregator) Summarize(txs []models.Transaction, start, end time.Time) []models.CategoryTotal {
	totals := make(map[string]*models.CategoryTotal)

	for _, tx := range txs {
		if !start.IsZero() && tx.Date.Before(start) {
			continue
		}
		if !end.IsZero() && !tx.Date.Before(end) {
			continue
		}

		cat := tx.EffectiveCategory()
		t, ok := totals[cat]
		if !ok {
			t = &models.CategoryTotal{Category: cat}
			totals[cat] = t
		}
		t.Total = t.Total.Add(tx.Amount)
		t.Count++
	}

	out := make([]models.CategoryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Total.Abs(), out[j].Total.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Window queries the ledger with the filter and summarizes the result.
func (a *Aggregator) Window(f ledger.Filter) ([]models.CategoryTotal, error) {
	txs, err := a.store.Query(f)
	if err != nil {
		return nil, err
	}
	return a.Summarize(txs, f.Start, f.End), nil
}

// Compare evaluates spending against limits over a window of the given
// month count. Spent counts expense flow only; a category that nets
// positive has spent zero. Categories without a limit are reported with
// a zero limit and never flagged over budget.
func (a *Aggregator) Compare(totals []models.CategoryTotal, limits []models.BudgetLimit, months int) []models.BudgetStatus {
	if months < 1 {
		months = 1
	}
	scale := decimal.NewFromInt(int64(months))

	spentBy := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		if t.Total.IsNegative() {
			spentBy[t.Category] = t.Total.Abs()
		} else {
			spentBy[t.Category] = decimal.Zero
		}
	}

	limited := make(map[string]bool, len(limits))
	var out []models.BudgetStatus
	for _, l := range limits {
		limited[l.Category] = true
		scaled := l.Limit.Mul(scale)
		spent := spentBy[l.Category]
		remaining := scaled.Sub(spent)
		out = append(out, models.BudgetStatus{
			Category:   l.Category,
			Limit:      scaled,
			Spent:      spent,
			Remaining:  remaining,
			OverBudget: l.Limit.IsPositive() && remaining.IsNegative(),
		})
	}

	for _, t := range totals {
		if limited[t.Category] {
			continue
		}
		spent := spentBy[t.Category]
		out = append(out, models.BudgetStatus{
			Category:  t.Category,
			Spent:     spent,
			Remaining: spent.Neg(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Status reports budget standing for the n complete months before now.
func (a *Aggregator) Status(now time.Time, months int) ([]models.BudgetStatus, error) {
	if months < 1 {
		months = 1
	}
	start, end := dateutils.LastFullMonths(now, months)

	totals, err := a.Window(ledger.Filter{Start: start, End: end})
	if err != nil {
		return nil, err
	}
	limits, err := a.store.ListLimits()
	if err != nil {
		return nil, err
	}

	return a.Compare(totals, limits, months), nil
}

// AverageMonthlySpend returns per-category average monthly expense over
// the n complete months before now. Excluded categories and net-income
// categories are dropped.
func (a *Aggregator) AverageMonthlySpend(now time.Time, months int) (map[string]decimal.Decimal, error) {
	start, end := dateutils.LastFullMonths(now, months)

	totals, err := a.Window(ledger.Filter{Start: start, End: end})
	if err != nil {
		return nil, err
	}

	div := decimal.NewFromInt(int64(months))
	out := make(map[string]decimal.Decimal)
	for _, t := range totals {
		if a.excluded[t.Category] || !t.Total.IsNegative() {
			continue
		}
		out[t.Category] = t.Total.Abs().Div(div).Round(2)
	}
	return out, nil
}

// HistoricalAverages reports average monthly spend per category across
// the standard 1, 3, 6, and 18 month windows, all through the same
// aggregation path.
func (a *Aggregator) HistoricalAverages(now time.Time) (map[int]map[string]decimal.Decimal, error) {
	out := make(map[int]map[string]decimal.Decimal, len(historyWindows))
	for _, months := range historyWindows {
		avg, err := a.AverageMonthlySpend(now, months)
		if err != nil {
			return nil, err
		}
		out[months] = avg
	}
	return out, nil
}

// EstimateLimits proposes a monthly limit per category from recent
// spending history. Nothing is persisted; the caller reviews and
// upserts what it accepts.
func (a *Aggregator) EstimateLimits(now time.Time) ([]models.BudgetLimit, error) {
	avg, err := a.AverageMonthlySpend(now, estimateMonths)
	if err != nil {
		return nil, err
	}

	out := make([]models.BudgetLimit, 0, len(avg))
	for cat, amount := range avg {
		out = append(out, models.BudgetLimit{Category: cat, Limit: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
