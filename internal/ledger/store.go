package ledger

import (
	"context"

	"fintrack/internal/core"
)

// Store is the persistence port the engine drives. Reads return
// core.ErrNotFound for unresolved ids. Balance writes are conditional on the
// balance the engine last read: a mismatch means another writer got there
// first and surfaces as core.ErrConcurrentModification, leaving the row
// untouched. The engine never caches between operations; every operation
// re-reads before it writes.
type Store interface {
	GetCreditCard(ctx context.Context, id string) (core.CreditCard, error)
	GetDebitCard(ctx context.Context, id string) (core.DebitCard, error)
	GetCredit(ctx context.Context, id string) (core.Credit, error)

	// SwapCreditCardBalance sets the card balance to next if it still
	// equals expected.
	SwapCreditCardBalance(ctx context.Context, id string, expected, next core.Money) error

	// SwapDebitCardBalance sets the card balance to next if it still
	// equals expected.
	SwapDebitCardBalance(ctx context.Context, id string, expected, next core.Money) error

	// SwapCreditState sets the credit's balance and active flag if the
	// balance still equals expected.
	SwapCreditState(ctx context.Context, id string, expected, next core.Money, active bool) error
}
