// Package normalize turns raw bank descriptions into stable merchant
// names and the event form the dedup key is built from. Everything here
// is pure; the same input always yields the same output.
package normalize

import (
	"regexp"
	"strings"

	"the305/accountant/internal/models"
)

// canonicalMerchants maps noisy substrings to the display name the rest
// of the system should see. Keys are matched against the scrubbed,
// lowercased description.
var canonicalMerchants = []struct {
	key   string
	canon string
}{
	{"amzn mktp us", "Amazon"},
	{"amazon.com", "Amazon"},
	{"amazon", "Amazon"},
	{"uber trip", "Uber"},
	{"uber", "Uber"},
	{"lyft", "Lyft"},
	{"dd doordash", "DoorDash"},
	{"doordash", "DoorDash"},
	{"wholefd market", "Whole Foods Market"},
	{"whole foods", "Whole Foods Market"},
	{"trader joes", "Trader Joe's"},
	{"trader joe", "Trader Joe's"},
	{"walmart", "Walmart"},
	{"target", "Target"},
	{"costco", "Costco"},
	{"home depot", "Home Depot"},
	{"lowes", "Lowe's"},
	{"square *", "Square"},
	{"sq *", "Square"},
	{"stripe", "Stripe"},
	{"zelle", "Zelle"},
	{"venmo", "Venmo"},
	{"cash app", "Cash App"},
	{"airbnb", "Airbnb"},
	{"booking.com", "Booking.com"},
	{"marriott", "Marriott"},
	{"hilton", "Hilton"},
}

var (
	rePunct   = regexp.MustCompile(`[^\w\s&'.*-]+`)
	reDigits  = regexp.MustCompile(`\b\d{2,}\b`)
	reStates  = regexp.MustCompile(`(?i)\b(AL|AK|AS|AZ|AR|CA|CO|CT|DC|DE|FL|GA|GU|HI|IA|ID|IL|IN|KS|KY|LA|MA|MD|ME|MI|MN|MO|MP|MS|MT|NC|ND|NE|NH|NJ|NM|NV|NY|OH|OK|OR|PA|PR|RI|SC|SD|TN|TX|UM|UT|VA|VI|VT|WA|WI|WV|WY)\b`)
	reMultiWS = regexp.MustCompile(`\s+`)

	reRefToken  = regexp.MustCompile(`(?i)\bref(?:erence)?\s*#?\s*[\w-]+\b`)
	reMasked    = regexp.MustCompile(`(?i)\b[Xx]{2,}\d+\b`)
	reDateTail  = regexp.MustCompile(`(?i)\bon\s+\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b.*$`)
	reAcctTail  = regexp.MustCompile(`(?i)\b(?:account|acct|ending|number|no\.)\b.*$`)
	reRecurring = regexp.MustCompile(`(?i)\brecurr?ing\b`)
)

// Merchant derives a display merchant name from a raw description.
// Zelle and transfer counterparties are extracted first; everything else
// goes through punctuation, store-number, and state-code scrubbing and
// the canonical merchant table. Descriptions that yield nothing usable
// come back as the unknown-merchant sentinel.
func Merchant(description string) string {
	s := strings.TrimSpace(description)
	if s == "" {
		return models.UnknownMerchant
	}

	if z := ExtractZelle(s); z != "" {
		return z
	}
	if t := ExtractTransfer(s); t != "" {
		return t
	}

	low := strings.ToLower(s)
	low = rePunct.ReplaceAllString(low, " ")
	low = reDigits.ReplaceAllString(low, " ")
	low = reStates.ReplaceAllString(low, " ")
	low = reMultiWS.ReplaceAllString(low, " ")
	low = strings.TrimSpace(low)
	if low == "" {
		return models.UnknownMerchant
	}

	for _, m := range canonicalMerchants {
		if strings.Contains(low, m.key) {
			return m.canon
		}
	}

	tokens := strings.Fields(low)
	if len(tokens) > 5 {
		tokens = tokens[:5]
	}
	return titleCase(strings.Join(tokens, " "))
}

// Key is the normalized form used for rule lookup and storage: the
// merchant name lowercased with collapsed whitespace.
func Key(merchant string) string {
	return strings.ToLower(strings.TrimSpace(reMultiWS.ReplaceAllString(merchant, " ")))
}

// Event reduces a description to the stable form hashed into the dedup
// key. Deterministic Zelle/transfer forms win; otherwise one-off tokens
// (REF numbers, masked account tails, trailing dates) are scrubbed so
// visually duplicate rows collide.
func Event(description string) string {
	s := strings.TrimSpace(description)
	if s == "" {
		return ""
	}

	if z := ExtractZelle(s); z != "" {
		return strings.ToUpper(z)
	}
	if t := ExtractTransfer(s); t != "" {
		return strings.ToUpper(t)
	}

	s = reRefToken.ReplaceAllString(s, "")
	s = reMasked.ReplaceAllString(s, "")
	s = reDateTail.ReplaceAllString(s, "")
	s = reAcctTail.ReplaceAllString(s, "")
	s = reRecurring.ReplaceAllString(s, "")
	s = reMultiWS.ReplaceAllString(s, " ")
	s = strings.Trim(s, " -:.,\t")
	return strings.ToUpper(s)
}

// Clean returns the scrubbed, uppercased description stored alongside
// the original for display and search.
func Clean(description string) string {
	return Event(description)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
