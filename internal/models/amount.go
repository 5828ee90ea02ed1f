package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	",", "",
	"'", "",
	" ", "",
	" ", "",
)

// ParseAmount converts a raw amount cell into a decimal. It tolerates the
// formats bank exports actually produce: currency symbols, thousands
// separators, parentheses for negatives, and trailing CR/DR markers.
// CR forces a positive value, DR a negative one.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	sign := decimal.NewFromInt(1)
	credit := false

	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "CR"):
		s = strings.TrimSpace(s[:len(s)-2])
		credit = true
	case strings.HasSuffix(upper, "DR"):
		s = strings.TrimSpace(s[:len(s)-2])
		sign = decimal.NewFromInt(-1)
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
		sign = sign.Neg()
	}

	s = amountReplacer.Replace(s)
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "+" {
		return decimal.Zero, fmt.Errorf("amount %q has no digits", raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if credit {
		return d.Abs(), nil
	}
	return d.Mul(sign), nil
}
