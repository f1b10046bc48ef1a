// Package services orchestrates storage, the balance engine and event
// publishing. Every mutation follows the same sequence: the record is written
// first, balances propagate second, events go out last. A failure anywhere is
// surfaced to the caller as-is; nothing is retried or rolled back.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/storage"
)

type TransactionService struct {
	storage    *storage.SQLiteRepository
	engine     *ledger.Engine
	amqpClient *amqp.Client
}

func NewTransactionService(repo *storage.SQLiteRepository, engine *ledger.Engine, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    repo,
		engine:     engine,
		amqpClient: amqpClient,
	}
}

// Create records a transaction expressed as an intent and propagates its
// balance effects. The intent fixes the stored type: a credit payment must
// reference a credit and is stored as an expense.
func (s *TransactionService) Create(ctx context.Context, intent core.Intent, tx core.Transaction) (core.Transaction, error) {
	storageType, err := intent.StorageType()
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = storageType
	if intent.RequiresCredit() && tx.CreditID == "" {
		return core.Transaction{}, fmt.Errorf("credit payment without credit reference: %w", core.ErrValidation)
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.engine.ApplyTransactionCreate(ctx, created); err != nil {
		return core.Transaction{}, fmt.Errorf("propagate balances: %w", err)
	}

	s.publishBalanceEvents(ctx, created)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, f)
}

// Update rewrites the stored record, then reverses the old balance effects
// and applies the new ones. The intent fixes the stored type the same way
// Create does.
func (s *TransactionService) Update(ctx context.Context, intent core.Intent, updated core.Transaction) (core.Transaction, error) {
	storageType, err := intent.StorageType()
	if err != nil {
		return core.Transaction{}, err
	}
	updated.Type = storageType
	if intent.RequiresCredit() && updated.CreditID == "" {
		return core.Transaction{}, fmt.Errorf("credit payment without credit reference: %w", core.ErrValidation)
	}
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	old, err := s.storage.GetTransaction(ctx, updated.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction: %w", err)
	}

	if err := s.storage.UpdateTransaction(ctx, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.engine.ApplyTransactionUpdate(ctx, old, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("propagate balances: %w", err)
	}

	s.publishBalanceEvents(ctx, old)
	s.publishBalanceEvents(ctx, updated)
	return updated, nil
}

// Delete removes the record and reverses its balance effects. The reversal
// does not re-activate a credit the deleted payment had settled.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	tx, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("read transaction: %w", err)
	}

	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.engine.ApplyTransactionDelete(ctx, tx); err != nil {
		return fmt.Errorf("reverse balances: %w", err)
	}

	s.publishBalanceEvents(ctx, tx)
	return nil
}

// publishBalanceEvents emits the post-apply balance of every entity the
// transaction touched. Publishing is best-effort: failures are logged, the
// operation already succeeded.
func (s *TransactionService) publishBalanceEvents(ctx context.Context, tx core.Transaction) {
	if s.amqpClient == nil {
		return
	}

	if tx.DebitCardID != "" {
		if card, err := s.storage.GetDebitCard(ctx, tx.DebitCardID); err == nil {
			s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBalanceChanged, amqp.EntityDebitCard, card.ID, card.CurrentBalance.Cents))
		}
	}
	if tx.IsCardPurchase() {
		if card, err := s.storage.GetCreditCard(ctx, tx.CreditCardID); err == nil {
			s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBalanceChanged, amqp.EntityCreditCard, card.ID, card.CurrentBalance.Cents))
		}
	}
	if tx.IsCreditPayment() {
		credit, err := s.storage.GetCredit(ctx, tx.CreditID)
		if err != nil {
			return
		}
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBalanceChanged, amqp.EntityCredit, credit.ID, credit.CurrentBalance.Cents))
		if !credit.IsActive && credit.CurrentBalance.IsZero() {
			s.publish(ctx, amqp.NewLedgerEvent(amqp.EventCreditSettled, amqp.EntityCredit, credit.ID, 0))
			if credit.CreditCardID != "" {
				if card, err := s.storage.GetCreditCard(ctx, credit.CreditCardID); err == nil {
					s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBalanceChanged, amqp.EntityCreditCard, card.ID, card.CurrentBalance.Cents))
				}
			}
		}
	}
}

func (s *TransactionService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if err := s.amqpClient.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"entity_id", ev.EntityID,
			"error", err)
	}
}
