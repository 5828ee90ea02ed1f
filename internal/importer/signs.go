package importer

import (
	"strings"
)

// creditKeywords mark rows that represent money coming in regardless of
// how the source signed them.
var creditKeywords = []string{
	"payment", "thank you", "refund", "reversal", "credit", "deposit",
	"interest", "cashback", "direct deposit", "transfer in",
	"payroll", "ach credit", "zelle from", "incoming",
}

// normalizeSigns enforces the canonical sign convention on a parsed
// batch. Rows whose description carries a credit keyword are forced
// positive. If at least half of the remaining rows are positive the
// source is assumed to export expenses as positive, and those rows are
// flipped negative. Both the cleaned and original descriptions are
// searched so a keyword scrubbed from one still matches in the other.
func normalizeSigns(rows []*parsedRow) {
	credit := make([]bool, len(rows))
	positives, nonCredit := 0, 0

	for i, row := range rows {
		if !row.valid {
			continue
		}
		desc := strings.ToLower(row.cleaned + " " + row.description)
		for _, kw := range creditKeywords {
			if strings.Contains(desc, kw) {
				credit[i] = true
				break
			}
		}
		if credit[i] {
			row.amount = row.amount.Abs()
			continue
		}
		nonCredit++
		if row.amount.IsPositive() {
			positives++
		}
	}

	// majority of non-credit rows positive means the export signs
	// expenses positive; flip them
	if nonCredit > 0 && positives*2 >= nonCredit {
		for i, row := range rows {
			if !row.valid || credit[i] {
				continue
			}
			row.amount = row.amount.Abs().Neg()
		}
	}
}
