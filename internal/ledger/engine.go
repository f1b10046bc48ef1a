// Package ledger keeps card and installment-credit balances consistent with
// the transactions and credits that reference them.
//
// Balance arithmetic follows fixed propagation rules: debit balances move
// with income/expense, credit-card balances accumulate purchases and loan
// principals, installment credits pay down independently and release their
// principal from the linked card in full when they settle. Every subtraction
// clamps at zero; the clamp is silent domain policy, not an error.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// Engine applies balance propagation against a Store. Operations are atomic
// from the caller's point of view per balance row (compare-and-swap), but a
// multi-row operation that fails midway leaves earlier rows applied; the
// error is surfaced and nothing is rolled back.
type Engine struct {
	store Store

	// enforceLimit rejects card postings that would exceed a card's
	// credit limit. Off by default: the product lets cards go over limit
	// and only displays availability.
	enforceLimit bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimitEnforcement makes card postings fail with ErrCreditLimitExceeded
// instead of pushing a limited card past its credit limit.
func WithLimitEnforcement(on bool) Option {
	return func(e *Engine) {
		e.enforceLimit = on
	}
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyTransactionCreate propagates a newly created transaction into the
// balances it touches: the debit card (income adds, expense subtracts), the
// credit card for a regular purchase (amount owed grows), and the referenced
// installment credit for a loan payment (balance shrinks; on reaching zero
// the credit settles and its full principal is released from the linked
// card).
func (e *Engine) ApplyTransactionCreate(ctx context.Context, tx core.Transaction) error {
	if tx.DebitCardID != "" {
		if err := e.adjustDebitCard(ctx, tx.DebitCardID, tx.Amount, tx.Type == core.Income); err != nil {
			return err
		}
	}

	if tx.IsCardPurchase() {
		if err := e.chargeCreditCard(ctx, tx.CreditCardID, tx.Amount); err != nil {
			return err
		}
	}

	if tx.IsCreditPayment() {
		if err := e.payDownCredit(ctx, tx.CreditID, tx.Amount); err != nil {
			return err
		}
	}

	return nil
}

// ApplyTransactionDelete reverses ApplyTransactionCreate for a stored
// transaction. The reversal is exact except where the original create
// clamped at zero, and deliberately does not re-activate a settled credit:
// reversing a payment leaves IsActive as it stands. That asymmetry is the
// product's observed behavior and is kept as-is.
func (e *Engine) ApplyTransactionDelete(ctx context.Context, tx core.Transaction) error {
	if tx.DebitCardID != "" {
		// Income was added, so subtract it back; expense the other way.
		if err := e.adjustDebitCard(ctx, tx.DebitCardID, tx.Amount, tx.Type != core.Income); err != nil {
			return err
		}
	}

	if tx.IsCardPurchase() {
		card, err := e.store.GetCreditCard(ctx, tx.CreditCardID)
		if err != nil {
			return fmt.Errorf("read credit card %s: %w", tx.CreditCardID, err)
		}
		next := card.CurrentBalance.SubClamped(tx.Amount)
		if err := e.store.SwapCreditCardBalance(ctx, card.ID, card.CurrentBalance, next); err != nil {
			return fmt.Errorf("reverse card purchase on %s: %w", card.ID, err)
		}
	}

	if tx.IsCreditPayment() {
		credit, err := e.store.GetCredit(ctx, tx.CreditID)
		if err != nil {
			return fmt.Errorf("read credit %s: %w", tx.CreditID, err)
		}
		next := credit.CurrentBalance.Add(tx.Amount)
		if err := e.store.SwapCreditState(ctx, credit.ID, credit.CurrentBalance, next, credit.IsActive); err != nil {
			return fmt.Errorf("reverse payment on credit %s: %w", credit.ID, err)
		}
	}

	return nil
}

// ApplyTransactionUpdate reverses the old transaction and applies the new
// one. Both steps read fresh balances; there is no shared snapshot, since
// both may touch the same rows.
func (e *Engine) ApplyTransactionUpdate(ctx context.Context, old, updated core.Transaction) error {
	if err := e.ApplyTransactionDelete(ctx, old); err != nil {
		return fmt.Errorf("reverse previous transaction: %w", err)
	}
	if err := e.ApplyTransactionCreate(ctx, updated); err != nil {
		return fmt.Errorf("apply updated transaction: %w", err)
	}
	return nil
}

// ApplyCreditCreate posts a new installment credit's full principal to its
// linked card, if any: the whole financed amount counts as owed at loan
// inception.
func (e *Engine) ApplyCreditCreate(ctx context.Context, credit core.Credit) error {
	if credit.CreditCardID == "" {
		return nil
	}
	return e.chargeCreditCard(ctx, credit.CreditCardID, credit.OriginalAmount)
}

// ApplyCreditUpdate moves the principal posting when a credit's linked card
// or original amount changes: the old posting is reversed on the old card
// and the new amount posted on the new card. A no-op when neither changed.
func (e *Engine) ApplyCreditUpdate(ctx context.Context, old, updated core.Credit) error {
	if old.CreditCardID == updated.CreditCardID && old.OriginalAmount == updated.OriginalAmount {
		return nil
	}

	if old.CreditCardID != "" {
		card, err := e.store.GetCreditCard(ctx, old.CreditCardID)
		if err != nil {
			return fmt.Errorf("read credit card %s: %w", old.CreditCardID, err)
		}
		next := card.CurrentBalance.SubClamped(old.OriginalAmount)
		if err := e.store.SwapCreditCardBalance(ctx, card.ID, card.CurrentBalance, next); err != nil {
			return fmt.Errorf("reverse principal on %s: %w", card.ID, err)
		}
	}

	if updated.CreditCardID != "" {
		if err := e.chargeCreditCard(ctx, updated.CreditCardID, updated.OriginalAmount); err != nil {
			return err
		}
	}

	return nil
}

// ApplyCreditDelete releases a deleted credit's remaining balance, not its
// original amount, from the linked card. The part already paid down stays
// on the card as charges that really happened.
func (e *Engine) ApplyCreditDelete(ctx context.Context, credit core.Credit) error {
	if credit.CreditCardID == "" {
		return nil
	}
	card, err := e.store.GetCreditCard(ctx, credit.CreditCardID)
	if err != nil {
		return fmt.Errorf("read credit card %s: %w", credit.CreditCardID, err)
	}
	next := card.CurrentBalance.SubClamped(credit.CurrentBalance)
	if err := e.store.SwapCreditCardBalance(ctx, card.ID, card.CurrentBalance, next); err != nil {
		return fmt.Errorf("release remaining balance on %s: %w", card.ID, err)
	}
	return nil
}

func (e *Engine) adjustDebitCard(ctx context.Context, id string, amount core.Money, add bool) error {
	card, err := e.store.GetDebitCard(ctx, id)
	if err != nil {
		return fmt.Errorf("read debit card %s: %w", id, err)
	}
	var next core.Money
	if add {
		next = card.CurrentBalance.Add(amount)
	} else {
		next = card.CurrentBalance.SubClamped(amount)
	}
	if err := e.store.SwapDebitCardBalance(ctx, id, card.CurrentBalance, next); err != nil {
		return fmt.Errorf("write debit card %s: %w", id, err)
	}
	return nil
}

func (e *Engine) chargeCreditCard(ctx context.Context, id string, amount core.Money) error {
	card, err := e.store.GetCreditCard(ctx, id)
	if err != nil {
		return fmt.Errorf("read credit card %s: %w", id, err)
	}
	next := card.CurrentBalance.Add(amount)
	if e.enforceLimit && card.HasLimit() && next.Cents > card.CreditLimit.Cents {
		return fmt.Errorf("card %s: %w", id, core.ErrCreditLimitExceeded)
	}
	if err := e.store.SwapCreditCardBalance(ctx, id, card.CurrentBalance, next); err != nil {
		return fmt.Errorf("write credit card %s: %w", id, err)
	}
	return nil
}

func (e *Engine) payDownCredit(ctx context.Context, id string, amount core.Money) error {
	credit, err := e.store.GetCredit(ctx, id)
	if err != nil {
		return fmt.Errorf("read credit %s: %w", id, err)
	}

	next := credit.CurrentBalance.SubClamped(amount)
	settled := credit.IsActive && next.IsZero()
	active := credit.IsActive && !next.IsZero()

	if err := e.store.SwapCreditState(ctx, credit.ID, credit.CurrentBalance, next, active); err != nil {
		return fmt.Errorf("write credit %s: %w", credit.ID, err)
	}

	if settled && credit.CreditCardID != "" {
		// The full principal was posted at creation; release it in full
		// now that the loan is paid off.
		card, err := e.store.GetCreditCard(ctx, credit.CreditCardID)
		if err != nil {
			return fmt.Errorf("read credit card %s: %w", credit.CreditCardID, err)
		}
		release := card.CurrentBalance.SubClamped(credit.OriginalAmount)
		if err := e.store.SwapCreditCardBalance(ctx, card.ID, card.CurrentBalance, release); err != nil {
			return fmt.Errorf("release principal on %s: %w", card.ID, err)
		}
		slog.InfoContext(ctx, "Credit settled, principal released from card",
			"credit_id", credit.ID,
			"card_id", card.ID,
			"principal_cents", credit.OriginalAmount.Cents)
	}

	return nil
}
