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

type CreditService struct {
	storage    *storage.SQLiteRepository
	engine     *ledger.Engine
	amqpClient *amqp.Client
}

func NewCreditService(repo *storage.SQLiteRepository, engine *ledger.Engine, amqpClient *amqp.Client) *CreditService {
	return &CreditService{
		storage:    repo,
		engine:     engine,
		amqpClient: amqpClient,
	}
}

// Create records an installment credit and posts its principal to the linked
// card. A credit starts with its full amount outstanding unless the caller
// supplies a partial balance explicitly.
func (s *CreditService) Create(ctx context.Context, credit core.Credit) (core.Credit, error) {
	if credit.CurrentBalance.IsZero() {
		credit.CurrentBalance = credit.OriginalAmount
	}
	credit.IsActive = true
	if err := credit.Validate(); err != nil {
		return core.Credit{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	created, err := s.storage.CreateCredit(ctx, credit)
	if err != nil {
		return core.Credit{}, fmt.Errorf("save credit: %w", err)
	}

	if err := s.engine.ApplyCreditCreate(ctx, created); err != nil {
		return core.Credit{}, fmt.Errorf("post principal: %w", err)
	}

	s.publishCardBalance(ctx, created.CreditCardID)
	return created, nil
}

func (s *CreditService) Get(ctx context.Context, id string) (core.Credit, error) {
	return s.storage.GetCredit(ctx, id)
}

func (s *CreditService) List(ctx context.Context) ([]core.Credit, error) {
	return s.storage.ListCredits(ctx)
}

// Update rewrites descriptive fields and, when the linked card or original
// amount changed, moves the principal posting accordingly.
func (s *CreditService) Update(ctx context.Context, updated core.Credit) (core.Credit, error) {
	old, err := s.storage.GetCredit(ctx, updated.ID)
	if err != nil {
		return core.Credit{}, fmt.Errorf("read credit: %w", err)
	}

	// Balance and active flag only move through the ledger.
	updated.CurrentBalance = old.CurrentBalance
	updated.IsActive = old.IsActive
	if err := updated.Validate(); err != nil {
		return core.Credit{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	if err := s.storage.UpdateCredit(ctx, updated); err != nil {
		return core.Credit{}, fmt.Errorf("save credit: %w", err)
	}

	if err := s.engine.ApplyCreditUpdate(ctx, old, updated); err != nil {
		return core.Credit{}, fmt.Errorf("move principal: %w", err)
	}

	s.publishCardBalance(ctx, old.CreditCardID)
	if updated.CreditCardID != old.CreditCardID {
		s.publishCardBalance(ctx, updated.CreditCardID)
	}
	return updated, nil
}

// Delete removes the credit and releases only its remaining balance from the
// linked card; payments already made stay on the card.
func (s *CreditService) Delete(ctx context.Context, id string) error {
	credit, err := s.storage.GetCredit(ctx, id)
	if err != nil {
		return fmt.Errorf("read credit: %w", err)
	}

	if err := s.storage.DeleteCredit(ctx, id); err != nil {
		return fmt.Errorf("delete credit: %w", err)
	}

	if err := s.engine.ApplyCreditDelete(ctx, credit); err != nil {
		return fmt.Errorf("release balance: %w", err)
	}

	s.publishCardBalance(ctx, credit.CreditCardID)
	return nil
}

func (s *CreditService) publishCardBalance(ctx context.Context, cardID string) {
	if s.amqpClient == nil || cardID == "" {
		return
	}
	card, err := s.storage.GetCreditCard(ctx, cardID)
	if err != nil {
		return
	}
	ev := amqp.NewLedgerEvent(amqp.EventBalanceChanged, amqp.EntityCreditCard, card.ID, card.CurrentBalance.Cents)
	if err := s.amqpClient.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity_id", card.ID,
			"error", err)
	}
}
