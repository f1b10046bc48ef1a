package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateCategory(ctx, core.Category{Name: "Food", Type: core.Expense, Color: "#e74c3c"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create did not assign an id")
	}

	got, err := repo.GetCategory(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Errorf("get = %+v, want %+v", got, created)
	}

	created.Name = "Groceries"
	if err := repo.UpdateCategory(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetCategory(ctx, created.ID)
	if got.Name != "Groceries" {
		t.Errorf("name after update = %q, want Groceries", got.Name)
	}

	if err := repo.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetCategory(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteCategory(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestSwapCreditCardBalance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	card, err := repo.CreateCreditCard(ctx, core.CreditCard{
		Name: "Gold", CreditLimit: core.Money{Cents: 100000},
		CurrentBalance: core.Money{Cents: 5000}, CutOffDay: 15, PaymentDueDay: 5, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SwapCreditCardBalance(ctx, card.ID, core.Money{Cents: 5000}, core.Money{Cents: 7000}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	got, _ := repo.GetCreditCard(ctx, card.ID)
	if got.CurrentBalance.Cents != 7000 {
		t.Errorf("balance = %d, want 7000", got.CurrentBalance.Cents)
	}

	// Stale expected value loses the race.
	err = repo.SwapCreditCardBalance(ctx, card.ID, core.Money{Cents: 5000}, core.Money{Cents: 9000})
	if !errors.Is(err, core.ErrConcurrentModification) {
		t.Errorf("stale swap error = %v, want ErrConcurrentModification", err)
	}
	got, _ = repo.GetCreditCard(ctx, card.ID)
	if got.CurrentBalance.Cents != 7000 {
		t.Errorf("balance after failed swap = %d, want 7000 untouched", got.CurrentBalance.Cents)
	}

	err = repo.SwapCreditCardBalance(ctx, "no-such-card", core.Money{Cents: 0}, core.Money{Cents: 1})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing card swap error = %v, want ErrNotFound", err)
	}
}

func TestSwapCreditStateSettles(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	credit, err := repo.CreateCredit(ctx, core.Credit{
		Name: "Laptop", OriginalAmount: core.Money{Cents: 120000},
		CurrentBalance: core.Money{Cents: 10000}, MonthlyPayment: core.Money{Cents: 10000},
		PaymentDay: 5, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.SwapCreditState(ctx, credit.ID, core.Money{Cents: 10000}, core.Money{}, false); err != nil {
		t.Fatalf("swap: %v", err)
	}
	got, _ := repo.GetCredit(ctx, credit.ID)
	if got.CurrentBalance.Cents != 0 || got.IsActive {
		t.Errorf("after settle: balance=%d active=%v, want 0/false", got.CurrentBalance.Cents, got.IsActive)
	}
}

func TestCreditNullableCardLink(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	card, _ := repo.CreateCreditCard(ctx, core.CreditCard{Name: "Gold", CutOffDay: 15, PaymentDueDay: 5, IsActive: true})

	linked, err := repo.CreateCredit(ctx, core.Credit{
		Name: "Linked", OriginalAmount: core.Money{Cents: 100}, CurrentBalance: core.Money{Cents: 100},
		MonthlyPayment: core.Money{Cents: 10}, PaymentDay: 1, CreditCardID: card.ID, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create linked: %v", err)
	}
	unlinked, err := repo.CreateCredit(ctx, core.Credit{
		Name: "Unlinked", OriginalAmount: core.Money{Cents: 100}, CurrentBalance: core.Money{Cents: 100},
		MonthlyPayment: core.Money{Cents: 10}, PaymentDay: 1, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create unlinked: %v", err)
	}

	got, _ := repo.GetCredit(ctx, linked.ID)
	if got.CreditCardID != card.ID {
		t.Errorf("linked card id = %q, want %q", got.CreditCardID, card.ID)
	}
	got, _ = repo.GetCredit(ctx, unlinked.ID)
	if got.CreditCardID != "" {
		t.Errorf("unlinked card id = %q, want empty", got.CreditCardID)
	}
}

func TestSubscriptionDateRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sub, err := repo.CreateSubscription(ctx, core.Subscription{
		Name: "Streaming", Amount: core.Money{Cents: 1500}, BillingCycle: core.Monthly,
		BillingDay: 10, NextBillingDate: core.NewDate(2025, time.March, 10), IsActive: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.NextBillingDate.Equal(core.NewDate(2025, time.March, 10).Time) {
		t.Errorf("next billing = %v, want 2025-03-10", got.NextBillingDate)
	}

	got.NextBillingDate = core.NewDate(2025, time.April, 10)
	if err := repo.UpdateSubscription(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetSubscription(ctx, sub.ID)
	if !got.NextBillingDate.Equal(core.NewDate(2025, time.April, 10).Time) {
		t.Errorf("next billing after update = %v, want 2025-04-10", got.NextBillingDate)
	}
}

func TestListTransactionsFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, _ := repo.CreateCategory(ctx, core.Category{Name: "Food", Type: core.Expense})
	mk := func(day int, month time.Month, categoryID string) {
		t.Helper()
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			Type: core.Expense, Amount: core.Money{Cents: 100},
			Date: core.NewDate(2025, month, day), CategoryID: categoryID,
		})
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}
	mk(5, time.March, cat.ID)
	mk(31, time.March, "")
	mk(1, time.April, cat.ID)

	march, err := repo.ListTransactions(ctx, TransactionFilter{Year: 2025, Month: time.March})
	if err != nil {
		t.Fatalf("list march: %v", err)
	}
	if len(march) != 2 {
		t.Errorf("march transactions = %d, want 2", len(march))
	}

	byCat, err := repo.ListTransactions(ctx, TransactionFilter{CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCat) != 2 {
		t.Errorf("category transactions = %d, want 2", len(byCat))
	}

	all, err := repo.ListTransactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all transactions = %d, want 3", len(all))
	}
	// Newest first.
	if all[0].Date.Month() != time.April {
		t.Errorf("first listed month = %v, want April", all[0].Date.Month())
	}
}

func TestBalanceHistoryAppendAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.AppendBalanceHistory(ctx, HistoryEntry{
			EventType:  "balance_changed",
			EntityKind: "credit_card",
			EntityID:   "c1",
			Balance:    core.Money{Cents: int64(1000 * (i + 1))},
			OccurredAt: now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := repo.AppendBalanceHistory(ctx, HistoryEntry{
		EventType: "balance_changed", EntityKind: "debit_card", EntityID: "d1",
		Balance: core.Money{Cents: 5}, OccurredAt: now,
	}); err != nil {
		t.Fatalf("append other entity: %v", err)
	}

	got, err := repo.ListBalanceHistory(ctx, "credit_card", "c1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 (limit applied)", len(got))
	}
	// Most recent first.
	if got[0].Balance.Cents != 3000 || got[1].Balance.Cents != 2000 {
		t.Errorf("balances = %d, %d, want 3000, 2000", got[0].Balance.Cents, got[1].Balance.Cents)
	}
	if !got[0].OccurredAt.Equal(now.Add(2 * time.Minute)) {
		t.Errorf("occurred_at = %v, want %v", got[0].OccurredAt, now.Add(2*time.Minute))
	}
}
