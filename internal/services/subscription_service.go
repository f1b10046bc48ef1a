package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/recurrence"
	"fintrack/internal/storage"
)

// SubscriptionService manages subscription records. Subscriptions never touch
// balances directly; they only drive projections and the calendar.
type SubscriptionService struct {
	storage *storage.SQLiteRepository
}

func NewSubscriptionService(repo *storage.SQLiteRepository) *SubscriptionService {
	return &SubscriptionService{storage: repo}
}

func (s *SubscriptionService) Create(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}
	created, err := s.storage.CreateSubscription(ctx, sub)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}
	return created, nil
}

func (s *SubscriptionService) Get(ctx context.Context, id string) (core.Subscription, error) {
	return s.storage.GetSubscription(ctx, id)
}

func (s *SubscriptionService) List(ctx context.Context) ([]core.Subscription, error) {
	return s.storage.ListSubscriptions(ctx)
}

func (s *SubscriptionService) Update(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}
	if err := s.storage.UpdateSubscription(ctx, sub); err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	return s.storage.DeleteSubscription(ctx, id)
}

// RollForward advances every active subscription whose next billing date has
// passed to its next occurrence on or after today. Returns how many anchors
// moved. The worker runs this on an interval so projections never point into
// the past.
func (s *SubscriptionService) RollForward(ctx context.Context, today core.Date) (int, error) {
	subs, err := s.storage.ListSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	advanced := 0
	for _, sub := range subs {
		if !sub.IsActive || !sub.NextBillingDate.Before(today.Time) {
			continue
		}

		next := recurrence.NextSubscriptionBilling(sub, today)
		if next.IsZero() || next.Equal(sub.NextBillingDate.Time) {
			continue
		}

		sub.NextBillingDate = next
		if err := s.storage.UpdateSubscription(ctx, sub); err != nil {
			return advanced, fmt.Errorf("advance subscription %s: %w", sub.ID, err)
		}

		slog.InfoContext(ctx, "Advanced subscription billing date",
			"subscription_id", sub.ID,
			"name", sub.Name,
			"next_billing", next.Format("2006-01-02"))
		advanced++
	}

	return advanced, nil
}
