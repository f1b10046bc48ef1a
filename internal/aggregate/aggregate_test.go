package aggregate

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func cents(n int64) core.Money { return core.Money{Cents: n} }

func date(y int, m time.Month, d int) core.Date { return core.NewDate(y, m, d) }

func TestMonthlyBalance(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Amount: cents(500000), Date: date(2025, time.March, 1)},
		{Type: core.Expense, Amount: cents(120000), Date: date(2025, time.March, 5)},
		{Type: core.Expense, Amount: cents(80000), Date: date(2025, time.March, 20)},
		// Different month, must not count.
		{Type: core.Expense, Amount: cents(999999), Date: date(2025, time.February, 28)},
		// Same month a year earlier, must not count.
		{Type: core.Income, Amount: cents(999999), Date: date(2024, time.March, 1)},
	}

	got := MonthlyBalance(txs, 2025, time.March)
	if got.Income != cents(500000) {
		t.Errorf("Income = %d, want 500000", got.Income.Cents)
	}
	if got.Expenses != cents(200000) {
		t.Errorf("Expenses = %d, want 200000", got.Expenses.Cents)
	}
	if got.Balance != 300000 {
		t.Errorf("Balance = %d, want 300000", got.Balance)
	}
}

func TestMonthlyBalanceCanGoNegative(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Expense, Amount: cents(10000), Date: date(2025, time.March, 5)},
	}
	if got := MonthlyBalance(txs, 2025, time.March); got.Balance != -10000 {
		t.Errorf("Balance = %d, want -10000", got.Balance)
	}
}

func TestCardUtilization(t *testing.T) {
	cards := []core.CreditCard{
		{ID: "c1", Name: "Gold", CreditLimit: cents(1000000), CurrentBalance: cents(250000), IsActive: true},
		{ID: "c2", Name: "No limit", CurrentBalance: cents(50000), IsActive: true},
		{ID: "c3", Name: "Closed", CreditLimit: cents(100000), CurrentBalance: cents(90000), IsActive: false},
	}

	got := CardUtilization(cards)
	if len(got) != 2 {
		t.Fatalf("got %d cards, want 2 (inactive excluded)", len(got))
	}

	if got[0].Utilization != 25 {
		t.Errorf("c1 utilization = %v, want 25", got[0].Utilization)
	}
	if got[0].Available != cents(750000) {
		t.Errorf("c1 available = %d, want 750000", got[0].Available.Cents)
	}

	if got[1].Utilization != 0 {
		t.Errorf("zero-limit utilization = %v, want 0", got[1].Utilization)
	}
	if got[1].Available != cents(0) {
		t.Errorf("zero-limit available = %d, want 0", got[1].Available.Cents)
	}
}

func TestCardsOverview(t *testing.T) {
	cards := []core.CreditCard{
		{ID: "c1", Name: "Gold", CreditLimit: cents(1000000), CurrentBalance: cents(400000), IsActive: true},
		// No limit: the balance still counts as used.
		{ID: "c2", Name: "No limit", CurrentBalance: cents(100000), IsActive: true},
		{ID: "c3", Name: "Closed", CreditLimit: cents(500000), CurrentBalance: cents(90000), IsActive: false},
	}

	got := CardsOverview(cards)
	if got.TotalLimit != cents(1000000) {
		t.Errorf("TotalLimit = %d, want 1000000", got.TotalLimit.Cents)
	}
	if got.TotalUsed != cents(500000) {
		t.Errorf("TotalUsed = %d, want 500000", got.TotalUsed.Cents)
	}
	if got.TotalAvailable != cents(500000) {
		t.Errorf("TotalAvailable = %d, want 500000", got.TotalAvailable.Cents)
	}
	if got.UsagePercentage != 50 {
		t.Errorf("UsagePercentage = %v, want 50", got.UsagePercentage)
	}
}

func TestCardsOverviewNoActiveCards(t *testing.T) {
	cards := []core.CreditCard{
		{ID: "c1", CreditLimit: cents(500000), CurrentBalance: cents(90000), IsActive: false},
	}

	got := CardsOverview(cards)
	if got.UsagePercentage != 0 {
		t.Errorf("UsagePercentage = %v, want 0", got.UsagePercentage)
	}
	if got.TotalAvailable != cents(0) {
		t.Errorf("TotalAvailable = %d, want 0", got.TotalAvailable.Cents)
	}
	if got.TotalLimit != cents(0) || got.TotalUsed != cents(0) {
		t.Errorf("totals = %d/%d, want 0/0", got.TotalLimit.Cents, got.TotalUsed.Cents)
	}
}

func TestDebitTotal(t *testing.T) {
	cards := []core.DebitCard{
		{ID: "d1", CurrentBalance: cents(150000), IsActive: true},
		{ID: "d2", CurrentBalance: cents(50000), IsActive: true},
		{ID: "d3", CurrentBalance: cents(999999), IsActive: false},
	}
	if got := DebitTotal(cards); got != cents(200000) {
		t.Errorf("DebitTotal() = %d, want 200000", got.Cents)
	}
}

func TestExpensesByCategoryTopFiveFold(t *testing.T) {
	categories := []core.Category{
		{ID: "food", Name: "Food", Color: "#e74c3c"},
		{ID: "rent", Name: "Rent"},
		{ID: "fun", Name: "Entertainment"},
		{ID: "gas", Name: "Gas"},
		{ID: "gym", Name: "Gym"},
		{ID: "pets", Name: "Pets"},
		{ID: "misc", Name: "Misc"},
	}
	// Seven categories with distinct totals; rent is the largest.
	txs := []core.Transaction{
		{Type: core.Expense, Amount: cents(70000), Date: date(2025, time.March, 1), CategoryID: "rent"},
		{Type: core.Expense, Amount: cents(60000), Date: date(2025, time.March, 2), CategoryID: "food"},
		{Type: core.Expense, Amount: cents(50000), Date: date(2025, time.March, 3), CategoryID: "fun"},
		{Type: core.Expense, Amount: cents(40000), Date: date(2025, time.March, 4), CategoryID: "gas"},
		{Type: core.Expense, Amount: cents(30000), Date: date(2025, time.March, 5), CategoryID: "gym"},
		{Type: core.Expense, Amount: cents(20000), Date: date(2025, time.March, 6), CategoryID: "pets"},
		{Type: core.Expense, Amount: cents(10000), Date: date(2025, time.March, 7), CategoryID: "misc"},
		// Income rows never count toward the breakdown.
		{Type: core.Income, Amount: cents(999999), Date: date(2025, time.March, 8), CategoryID: "food"},
	}

	got := ExpensesByCategory(txs, categories, 2025, time.March)
	if len(got) != 6 {
		t.Fatalf("got %d rows, want 6 (top five plus fold)", len(got))
	}
	if got[0].Name != "Rent" || got[0].Amount != cents(70000) {
		t.Errorf("row 0 = %s %d, want Rent 70000", got[0].Name, got[0].Amount.Cents)
	}
	if got[0].Percent != 100 {
		t.Errorf("largest bucket percent = %d, want 100", got[0].Percent)
	}
	if got[1].Name != "Food" || got[1].Color != "#e74c3c" {
		t.Errorf("row 1 = %s %q, want Food #e74c3c", got[1].Name, got[1].Color)
	}

	other := got[5]
	if other.Name != OtherCategoryName || other.CategoryID != "" {
		t.Fatalf("last row = %q (id %q), want the fold bucket", other.Name, other.CategoryID)
	}
	// pets + misc
	if other.Amount != cents(30000) {
		t.Errorf("fold amount = %d, want 30000", other.Amount.Cents)
	}
}

func TestExpensesByCategoryUnderFiveStaysUnfolded(t *testing.T) {
	categories := []core.Category{{ID: "food", Name: "Food"}}
	txs := []core.Transaction{
		{Type: core.Expense, Amount: cents(100), Date: date(2025, time.March, 1), CategoryID: "food"},
		{Type: core.Expense, Amount: cents(50), Date: date(2025, time.March, 2), CategoryID: "food"},
	}
	got := ExpensesByCategory(txs, categories, 2025, time.March)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].Amount != cents(150) {
		t.Errorf("amount = %d, want 150 (summed per category)", got[0].Amount.Cents)
	}
}

func TestExpensesByCategoryUncategorizedBucket(t *testing.T) {
	categories := []core.Category{{ID: "food", Name: "Food"}}
	txs := []core.Transaction{
		{Type: core.Expense, Amount: cents(3000), Date: date(2025, time.March, 1), CategoryID: "food"},
		{Type: core.Expense, Amount: cents(2000), Date: date(2025, time.March, 2)},
		{Type: core.Expense, Amount: cents(3000), Date: date(2025, time.March, 9)},
	}

	got := ExpensesByCategory(txs, categories, 2025, time.March)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(got), got)
	}
	if got[0].Name != UncategorizedName || got[0].CategoryID != "" {
		t.Errorf("row 0 = %q (id %q), want the uncategorized bucket", got[0].Name, got[0].CategoryID)
	}
	if got[0].Amount != cents(5000) {
		t.Errorf("uncategorized amount = %d, want 5000", got[0].Amount.Cents)
	}
	if got[1].Name != "Food" || got[1].Amount != cents(3000) {
		t.Errorf("row 1 = %s %d, want Food 3000", got[1].Name, got[1].Amount.Cents)
	}
}

func TestUpcomingPayments(t *testing.T) {
	today := date(2025, time.March, 12) // a Wednesday

	credits := []core.Credit{
		// Due Friday the 14th, inside a 7-day horizon.
		{ID: "l1", Name: "Laptop", MonthlyPayment: cents(100000), PaymentDay: 14, IsActive: true},
		// Day 5 already passed, next due April 5, outside the horizon.
		{ID: "l2", Name: "Car", MonthlyPayment: cents(500000), PaymentDay: 5, IsActive: true},
		// Settled credits never show up.
		{ID: "l3", Name: "Old", MonthlyPayment: cents(100), PaymentDay: 13, IsActive: false},
	}
	subs := []core.Subscription{
		{ID: "s1", Name: "Streaming", Amount: cents(1500), BillingCycle: core.Monthly, BillingDay: 13,
			NextBillingDate: date(2025, time.March, 13), IsActive: true},
		// Ten days out, beyond the horizon.
		{ID: "s2", Name: "Cloud", Amount: cents(900), BillingCycle: core.Monthly, BillingDay: 22,
			NextBillingDate: date(2025, time.March, 22), IsActive: true},
	}

	got := UpcomingPayments(credits, subs, today, 7)
	if len(got) != 2 {
		t.Fatalf("got %d payments, want 2: %+v", len(got), got)
	}
	// Sorted ascending by due date: subscription on the 13th, credit on the 14th.
	if got[0].ID != "s1" || got[0].Kind != PaymentSubscription {
		t.Errorf("payment 0 = %s/%s, want subscription s1", got[0].Kind, got[0].ID)
	}
	if got[1].ID != "l1" || got[1].Kind != PaymentCredit {
		t.Errorf("payment 1 = %s/%s, want credit l1", got[1].Kind, got[1].ID)
	}
	if !got[1].DueDate.Equal(date(2025, time.March, 14).Time) {
		t.Errorf("credit due = %v, want 2025-03-14", got[1].DueDate)
	}
}

func TestCalendarDayPayments(t *testing.T) {
	credits := []core.Credit{
		{ID: "l1", Name: "Laptop", MonthlyPayment: cents(100000), PaymentDay: 31, IsActive: true},
		{ID: "l2", Name: "Car", MonthlyPayment: cents(500), PaymentDay: 15, IsActive: true},
	}
	subs := []core.Subscription{
		{ID: "s1", Name: "Weekly thing", Amount: cents(2500), BillingCycle: core.Weekly,
			NextBillingDate: date(2025, time.February, 7), IsActive: true}, // a Friday
	}

	// Feb 28 2025 is the month's last day and a Friday: the day-31 credit
	// clamps onto it and the weekly subscription bills the same day.
	got := CalendarDayPayments(credits, subs, date(2025, time.February, 28))
	if len(got.Payments) != 2 {
		t.Fatalf("got %d payments, want 2: %+v", len(got.Payments), got.Payments)
	}
	if got.Total != cents(102500) {
		t.Errorf("Total = %d, want 102500", got.Total.Cents)
	}

	empty := CalendarDayPayments(credits, subs, date(2025, time.February, 10))
	if len(empty.Payments) != 0 || !empty.Total.IsZero() {
		t.Errorf("quiet day: got %+v, want no payments", empty)
	}
}

func TestMonthlyCommitments(t *testing.T) {
	credits := []core.Credit{
		{ID: "l1", MonthlyPayment: cents(100000), PaymentDay: 5, IsActive: true},
		{ID: "l2", MonthlyPayment: cents(999), PaymentDay: 5, IsActive: false},
	}
	subs := []core.Subscription{
		{ID: "s1", Amount: cents(1500), BillingCycle: core.Monthly, BillingDay: 10, IsActive: true},
		// March 2020 has five Mondays; anchor March 2 is a Monday.
		{ID: "s2", Amount: cents(1000), BillingCycle: core.Weekly,
			NextBillingDate: date(2020, time.March, 2), IsActive: true},
		{ID: "s3", Amount: cents(12000), BillingCycle: core.Yearly,
			NextBillingDate: date(2020, time.March, 20), IsActive: true},
		{ID: "s4", Amount: cents(50000), BillingCycle: core.Yearly,
			NextBillingDate: date(2020, time.June, 20), IsActive: true},
	}

	// 100000 + 1500 + 5*1000 + 12000
	if got := MonthlyCommitments(credits, subs, 2020, time.March); got != cents(118500) {
		t.Errorf("MonthlyCommitments() = %d, want 118500", got.Cents)
	}

	// June 2020 starts on a Monday (five Mondays); yearly s4 anchored here, s3 not.
	// 100000 + 1500 + 5*1000 + 50000
	if got := MonthlyCommitments(credits, subs, 2020, time.June); got != cents(156500) {
		t.Errorf("June commitments = %d, want 156500", got.Cents)
	}
}

func TestSubscriptionsMonthlyTotal(t *testing.T) {
	subs := []core.Subscription{
		{Amount: cents(2500), BillingCycle: core.Weekly, NextBillingDate: date(2025, time.March, 3), IsActive: true},
		{Amount: cents(1500), BillingCycle: core.Monthly, BillingDay: 1, IsActive: true},
		{Amount: cents(120000), BillingCycle: core.Yearly, NextBillingDate: date(2025, time.June, 1), IsActive: true},
		{Amount: cents(999999), BillingCycle: core.Monthly, BillingDay: 1, IsActive: false},
	}
	// 2500*4 + 1500 + 120000/12
	if got := SubscriptionsMonthlyTotal(subs); got != cents(21500) {
		t.Errorf("SubscriptionsMonthlyTotal() = %d, want 21500", got.Cents)
	}
}
