package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"the305/accountant/internal/models"
)

func TestMerchant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "canonical amazon", input: "AMZN Mktp US*RT4Y12 Amzn.com/bill WA", want: "Amazon"},
		{name: "canonical doordash", input: "DD DOORDASH CHIPOTLE 855-973-1040 CA", want: "DoorDash"},
		{name: "canonical whole foods", input: "WHOLEFD MARKET 10452 MIAMI FL", want: "Whole Foods Market"},
		{name: "store number and state dropped", input: "STARBUCKS STORE 08765 SEATTLE WA", want: "Starbucks Store Seattle"},
		{name: "unknown kept title cased", input: "JOES DINER", want: "Joes Diner"},
		{name: "truncated to five tokens", input: "some very long merchant descriptor line with extra words", want: "Some Very Long Merchant Descriptor"},
		{name: "zelle counterparty", input: "ZELLE PAYMENT TO JOHN DOE REF #ABC123", want: "Zelle To John Doe"},
		{name: "transfer counterparty", input: "ONLINE TRANSFER REF #IB0THMKLQP FROM PERSONAL LINE OF CREDIT XXXXXX4311 ON 08/12/25", want: "Transfer From Personal Line Of Credit"},
		{name: "empty", input: "", want: models.UnknownMerchant},
		{name: "whitespace only", input: "   ", want: models.UnknownMerchant},
		{name: "digits only", input: "123456", want: models.UnknownMerchant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merchant(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "whole foods market", Key("Whole Foods Market"))
	assert.Equal(t, "amazon", Key("  AMAZON  "))
	assert.Equal(t, "a b", Key("A    B"))
}

func TestEventScrubsOneOffTokens(t *testing.T) {
	a := Event("PURCHASE REF #9912 AT CORNER STORE ON 08/12/25")
	b := Event("PURCHASE REF #4471 AT CORNER STORE ON 09/01/25")
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)

	c := Event("WITHDRAWAL CARD XXXXXX4311")
	d := Event("WITHDRAWAL CARD XXXXXX9999")
	assert.Equal(t, c, d)
}

func TestEventPrefersDeterministicForms(t *testing.T) {
	a := Event("ZELLE PAYMENT TO JOHN DOE REF #ABC123")
	b := Event("Zelle payment to John Doe Conf 99X1")
	assert.Equal(t, "ZELLE TO JOHN DOE", a)
	assert.Equal(t, a, b)
}

func TestEventCaseAndWhitespaceStable(t *testing.T) {
	a := Event("Corner  Store   Coffee")
	b := Event("CORNER STORE COFFEE")
	c := Event("CORNER\tSTORE COFFEE")
	assert.Equal(t, a, b)
	assert.Equal(t, a, c, "a single tab collapses like any other whitespace run")
}

func TestExtractZelle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "ZELLE PAYMENT TO JOHN DOE", want: "Zelle To John Doe"},
		{input: "Zelle transfer from Jane Smith XXXXXX1234", want: "Zelle From Jane Smith"},
		{input: "ZELLE CREDIT FROM ACME LLC CONF 881", want: "Zelle From Acme Llc"},
		{input: "ZELLE", want: "Zelle"},
		{input: "CHECKCARD GROCERY", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractZelle(tt.input), tt.input)
	}
}

func TestExtractTransfer(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			input: "ONLINE TRANSFER REF #IB0THMKLQP FROM PERSONAL LINE OF CREDIT XXXXXX4311 ON 08/12/25",
			want:  "Transfer From Personal Line Of Credit",
		},
		{input: "ACH PAYMENT TO CITY UTILITIES", want: "Transfer To City Utilities"},
		{input: "DEBIT CARD PURCHASE", want: ""},
		{input: "TRANSFER REF ABC123", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractTransfer(tt.input), tt.input)
	}
}
