// Package dedup builds the content-derived key that makes imports
// idempotent. Two rows with the same account, date, amount, and
// normalized event collapse to one ledger row no matter how many times
// or through which path they arrive.
package dedup

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"the305/accountant/internal/dateutils"
	"the305/accountant/internal/normalize"
)

// KeyLength is the number of hex characters kept from the digest.
const KeyLength = 24

// BuildKey derives the dedup key for a transaction. The basis is
// account|ISO date|amount to two decimals|normalized event, hashed with
// sha1 and truncated. The key is sensitive to sign and date but
// invariant to case, whitespace, and one-off reference tokens in the
// description.
func BuildKey(accountID int64, date time.Time, amount decimal.Decimal, description string) string {
	event := normalize.Event(description)
	basis := fmt.Sprintf("%d|%s|%s|%s", accountID, dateutils.ToISO(date), amount.StringFixed(2), event)
	sum := sha1.Sum([]byte(basis))
	return hex.EncodeToString(sum[:])[:KeyLength]
}
