package models

import "strings"

// RawRow is one unvalidated line of an export file, exactly as the source
// produced it. Everything is a string here; parsing and validation happen
// during reconciliation so a bad cell costs one row, not the whole batch.
type RawRow struct {
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Amount       string `csv:"amount"`
	MerchantHint string `csv:"merchant"`
	Currency     string `csv:"currency"`
	Pending      string `csv:"pending"`
	SourceID     string `csv:"source_id"`
}

// IsPending interprets the pending cell, which sources express in several
// spellings. Anything unrecognized counts as settled.
func (r RawRow) IsPending() bool {
	switch strings.ToLower(strings.TrimSpace(r.Pending)) {
	case "true", "t", "yes", "y", "1", "pending":
		return true
	}
	return false
}
