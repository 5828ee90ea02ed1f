// Package ledgererr defines the error taxonomy of the import and
// categorization pipeline. Row-level failures are typed so callers can
// count and continue; only storage unavailability should abort a batch.
package ledgererr

import (
	"errors"
	"fmt"
)

// ErrTimeout marks an external suggestion provider exceeding its
// deadline. The resolver treats it as "no answer", never as fatal.
var ErrTimeout = errors.New("suggestion provider timed out")

// ErrStorageUnavailable marks the ledger being unreachable. This is the
// only condition that aborts a whole batch.
var ErrStorageUnavailable = errors.New("ledger storage unavailable")

// ValidationError reports a malformed input row. It costs one row.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// DuplicateError reports an insert that collided with an existing
// dedup key. Callers normally turn it into a skip.
type DuplicateError struct {
	Key string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("transaction with dedup key %s already exists", e.Key)
}

// LockConflict reports an automated write that was refused because the
// row carries a human edit.
type LockConflict struct {
	TransactionID string
}

func (e *LockConflict) Error() string {
	return fmt.Sprintf("transaction %s is locked by a human edit", e.TransactionID)
}

// ProviderError wraps a failure from an external categorization
// provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IntegrityError wraps an unexpected storage constraint violation, as
// opposed to the expected dedup-key collision.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation during %s: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}
