package normalize

import (
	"regexp"
	"strings"
)

var (
	reZelle = regexp.MustCompile(`(?i)zelle(?:\s+payment|\s+transfer|\s+credit|\s+debit|)\s*(to|from)\s*[:\-]?\s*([A-Za-z][\w .,&'` + "`" + `-]{2,})`)

	reTransferHint = regexp.MustCompile(`(?i)\b(transfer|payment|pmt|xfer)\b`)
	reToFrom       = regexp.MustCompile(`(?i)\b(to|from)\b\s*[:#-]?\s*(.+)`)

	reTailMeta   = regexp.MustCompile(`(?i)\b(?:ref(?:erence)?|id|trace|conf(?:irmation)?|txn)\b.*$`)
	reTailDate   = regexp.MustCompile(`(?i)\bon\s+\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`)
	reTailMasked = regexp.MustCompile(`(?i)\b(?:x{2,}|[*#]{2,})\d{2,}\b`)
	reAcctNoise  = regexp.MustCompile(`(?i)\b(?:acct|account|ending|number)\b[:#]?\s*`)
	reStrayCode  = regexp.MustCompile(`(?i)^(ref|id|conf|trace|txn)[\s:#-]*\w+$`)
)

// ExtractZelle produces a canonical "Zelle To X" / "Zelle From Y" form
// from the many phrasings banks use, or "" when the line is not a Zelle
// payment. A Zelle line with no recoverable counterparty comes back as
// plain "Zelle".
func ExtractZelle(description string) string {
	if !strings.Contains(strings.ToLower(description), "zelle") {
		return ""
	}

	if m := reZelle.FindStringSubmatch(description); m != nil {
		direction := titleCase(m[1])
		name := stripCounterpartyTail(m[2])
		if name != "" {
			return "Zelle " + direction + " " + titleCase(name)
		}
		return "Zelle " + direction
	}

	return "Zelle"
}

// ExtractTransfer produces "Transfer To X" / "Transfer From Y" for
// online, ACH, wire, and internal transfer lines, or "" when the line
// does not look like a transfer with a counterparty. Reference numbers,
// masked account digits, and trailing dates are dropped; the account
// name itself survives.
func ExtractTransfer(description string) string {
	if !reTransferHint.MatchString(description) {
		return ""
	}

	m := reToFrom.FindStringSubmatch(description)
	if m == nil {
		return ""
	}

	direction := titleCase(m[1])
	tail := stripCounterpartyTail(m[2])
	if tail == "" || reStrayCode.MatchString(tail) {
		return ""
	}

	return "Transfer " + direction + " " + titleCase(tail)
}

func stripCounterpartyTail(s string) string {
	s = reTailMeta.ReplaceAllString(s, "")
	s = reTailDate.ReplaceAllString(s, "")
	s = reTailMasked.ReplaceAllString(s, "")
	s = reAcctNoise.ReplaceAllString(s, "")
	s = strings.Trim(s, " -:.,")
	s = reMultiWS.ReplaceAllString(s, " ")
	return s
}
