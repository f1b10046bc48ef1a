package core

import "errors"

// Sentinel errors shared across the ledger, storage and HTTP layers.
// Store-level failures are wrapped with %w and left opaque; these cover the
// conditions callers are expected to branch on.
var (
	// ErrNotFound means a referenced record id did not resolve at
	// application time.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification means a balance write lost a
	// compare-and-swap race; the caller may re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrValidation wraps caller-supplied input that violates a
	// precondition. Check with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrCreditLimitExceeded is returned only when limit enforcement is
	// enabled; by default cards are allowed to go over limit.
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
)
