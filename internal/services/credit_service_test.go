package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestCreditCreateDefaultsAndPostsPrincipal(t *testing.T) {
	repo, engine := newTestEnv(t)
	svc := NewCreditService(repo, engine, nil)
	ctx := context.Background()

	card := seedCreditCard(t, repo, 0)

	created, err := svc.Create(ctx, core.Credit{
		Name:           "Laptop",
		OriginalAmount: core.Money{Cents: 1200000},
		MonthlyPayment: core.Money{Cents: 100000},
		PaymentDay:     5,
		CreditCardID:   card.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CurrentBalance != created.OriginalAmount {
		t.Errorf("balance = %d, want full original amount", created.CurrentBalance.Cents)
	}
	if !created.IsActive {
		t.Error("new credit should be active")
	}

	got, _ := repo.GetCreditCard(ctx, card.ID)
	if got.CurrentBalance.Cents != 1200000 {
		t.Errorf("card balance = %d, want 1200000 (principal posted)", got.CurrentBalance.Cents)
	}
}

func TestCreditPayoffEndToEnd(t *testing.T) {
	repo, engine := newTestEnv(t)
	credits := NewCreditService(repo, engine, nil)
	txs := NewTransactionService(repo, engine, nil)
	ctx := context.Background()

	card := seedCreditCard(t, repo, 0)

	credit, err := credits.Create(ctx, core.Credit{
		Name:           "Laptop",
		OriginalAmount: core.Money{Cents: 1200000},
		MonthlyPayment: core.Money{Cents: 100000},
		PaymentDay:     5,
		CreditCardID:   card.ID,
	})
	if err != nil {
		t.Fatalf("create credit: %v", err)
	}

	for i := 0; i < 12; i++ {
		_, err := txs.Create(ctx, core.IntentCreditPayment, core.Transaction{
			Amount:   core.Money{Cents: 100000},
			Date:     core.NewDate(2025, time.Month(i%12+1), 5),
			CreditID: credit.ID,
		})
		if err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
	}

	gotCredit, _ := repo.GetCredit(ctx, credit.ID)
	if gotCredit.CurrentBalance.Cents != 0 || gotCredit.IsActive {
		t.Errorf("after payoff: balance=%d active=%v, want 0/false",
			gotCredit.CurrentBalance.Cents, gotCredit.IsActive)
	}
	gotCard, _ := repo.GetCreditCard(ctx, card.ID)
	if gotCard.CurrentBalance.Cents != 0 {
		t.Errorf("card balance = %d, want 0 (principal released)", gotCard.CurrentBalance.Cents)
	}
}

func TestCreditUpdateKeepsLedgerFields(t *testing.T) {
	repo, engine := newTestEnv(t)
	svc := NewCreditService(repo, engine, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Credit{
		Name:           "Loan",
		OriginalAmount: core.Money{Cents: 50000},
		MonthlyPayment: core.Money{Cents: 5000},
		PaymentDay:     10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := created
	updated.Name = "Car loan"
	// Callers cannot move the balance or flip the flag through Update.
	updated.CurrentBalance = core.Money{Cents: 1}
	updated.IsActive = false

	got, err := svc.Update(ctx, updated)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Car loan" {
		t.Errorf("name = %q, want Car loan", got.Name)
	}
	if got.CurrentBalance != created.CurrentBalance || !got.IsActive {
		t.Errorf("ledger fields changed through update: balance=%d active=%v",
			got.CurrentBalance.Cents, got.IsActive)
	}
}

func TestCreditDeleteReleasesRemaining(t *testing.T) {
	repo, engine := newTestEnv(t)
	credits := NewCreditService(repo, engine, nil)
	txs := NewTransactionService(repo, engine, nil)
	ctx := context.Background()

	card := seedCreditCard(t, repo, 0)

	credit, err := credits.Create(ctx, core.Credit{
		Name:           "Phone",
		OriginalAmount: core.Money{Cents: 9000},
		MonthlyPayment: core.Money{Cents: 3000},
		PaymentDay:     1,
		CreditCardID:   card.ID,
	})
	if err != nil {
		t.Fatalf("create credit: %v", err)
	}

	if _, err := txs.Create(ctx, core.IntentCreditPayment, core.Transaction{
		Amount:   core.Money{Cents: 3000},
		Date:     core.NewDate(2025, time.March, 1),
		CreditID: credit.ID,
	}); err != nil {
		t.Fatalf("payment: %v", err)
	}

	if err := credits.Delete(ctx, credit.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetCredit(ctx, credit.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("credit still present: %v", err)
	}
	// 9000 posted - 6000 remaining released = 3000 of real payments stay.
	got, _ := repo.GetCreditCard(ctx, card.ID)
	if got.CurrentBalance.Cents != 3000 {
		t.Errorf("card balance = %d, want 3000", got.CurrentBalance.Cents)
	}
}
