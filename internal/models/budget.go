package models

import "github.com/shopspring/decimal"

// BudgetLimit is a per-category monthly spending limit.
type BudgetLimit struct {
	Category string
	Limit    decimal.Decimal
}

// CategoryTotal is the signed sum of amounts for one category over some
// window. Expense-heavy categories come out negative.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// BudgetStatus compares actual spending in a window against a limit
// scaled to that window. Spent is always non-negative.
type BudgetStatus struct {
	Category   string
	Limit      decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	OverBudget bool
}
