package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "12.34", want: "12.34"},
		{name: "negative", input: "-12.34", want: "-12.34"},
		{name: "dollar sign", input: "$1,234.56", want: "1234.56"},
		{name: "parentheses negative", input: "(45.00)", want: "-45"},
		{name: "parentheses with symbol", input: "($1,045.10)", want: "-1045.1"},
		{name: "trailing CR is credit", input: "50.00 CR", want: "50"},
		{name: "trailing CR overrides minus", input: "-50.00CR", want: "50"},
		{name: "trailing DR is debit", input: "50.00 DR", want: "-50"},
		{name: "apostrophe separator", input: "1'234.50", want: "1234.5"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "symbols only", input: "$-", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTransactionSignHelpers(t *testing.T) {
	tx := Transaction{}

	var err error
	tx.Amount, err = ParseAmount("(12.00)")
	require.NoError(t, err)
	assert.True(t, tx.IsExpense())
	assert.False(t, tx.IsIncome())

	tx.Amount, err = ParseAmount("99.00 CR")
	require.NoError(t, err)
	assert.True(t, tx.IsIncome())
}

func TestEffectiveCategory(t *testing.T) {
	tx := Transaction{}
	assert.Equal(t, CategoryUncategorized, tx.EffectiveCategory())
	assert.False(t, tx.Categorized())

	tx.Category = "Groceries"
	assert.Equal(t, "Groceries", tx.EffectiveCategory())
	assert.True(t, tx.Categorized())
}
