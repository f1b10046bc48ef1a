// Package aggregate computes display aggregates from entity snapshots. All
// functions are pure: they take slices already loaded from storage and never
// touch the database themselves.
package aggregate

import (
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/recurrence"
)

// MonthlySummary is the income/expense rollup for one calendar month.
type MonthlySummary struct {
	Income   core.Money
	Expenses core.Money
	// Balance is income minus expenses and may be negative.
	Balance int64
}

// MonthlyBalance sums the month's transactions by type. Transactions outside
// the month are ignored.
func MonthlyBalance(txs []core.Transaction, year int, month time.Month) MonthlySummary {
	var s MonthlySummary
	for _, tx := range txs {
		if tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}
		switch tx.Type {
		case core.Income:
			s.Income = s.Income.Add(tx.Amount)
		case core.Expense:
			s.Expenses = s.Expenses.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Cents - s.Expenses.Cents
	return s
}

// CardUsage is one credit card's utilization line.
type CardUsage struct {
	CardID      string
	Name        string
	Used        core.Money
	Available   core.Money
	Utilization float64 // percent of limit in use, 0 when no limit is set
}

// CardUtilization reports usage for every active credit card. A card without
// a limit shows zero utilization and zero available credit, never 100%.
func CardUtilization(cards []core.CreditCard) []CardUsage {
	var usages []CardUsage
	for _, card := range cards {
		if !card.IsActive {
			continue
		}
		u := CardUsage{
			CardID: card.ID,
			Name:   card.Name,
			Used:   card.CurrentBalance,
		}
		if card.HasLimit() {
			u.Available = card.CreditLimit.SubClamped(card.CurrentBalance)
			u.Utilization = float64(card.CurrentBalance.Cents) / float64(card.CreditLimit.Cents) * 100
		}
		usages = append(usages, u)
	}
	return usages
}

// CardTotals is the credit-card rollup across every active card.
type CardTotals struct {
	TotalLimit     core.Money
	TotalUsed      core.Money
	TotalAvailable core.Money
	// UsagePercentage is used over limit, 0 when no active card has a limit.
	UsagePercentage float64
}

// CardsOverview sums limits and balances over active credit cards. A card
// without a limit contributes its balance to the used total but nothing to
// the limit, so the available total can go negative.
func CardsOverview(cards []core.CreditCard) CardTotals {
	var t CardTotals
	for _, card := range cards {
		if !card.IsActive {
			continue
		}
		if card.HasLimit() {
			t.TotalLimit = t.TotalLimit.Add(card.CreditLimit)
		}
		t.TotalUsed = t.TotalUsed.Add(card.CurrentBalance)
	}
	t.TotalAvailable = core.Money{Cents: t.TotalLimit.Cents - t.TotalUsed.Cents}
	if t.TotalLimit.Cents > 0 {
		t.UsagePercentage = float64(t.TotalUsed.Cents) / float64(t.TotalLimit.Cents) * 100
	}
	return t
}

// DebitTotal sums the balances of all active debit cards.
func DebitTotal(cards []core.DebitCard) core.Money {
	var total core.Money
	for _, card := range cards {
		if card.IsActive {
			total = total.Add(card.CurrentBalance)
		}
	}
	return total
}

// OtherCategoryName labels the fold bucket for categories past the top five.
const OtherCategoryName = "Other"

// UncategorizedName labels the bucket for expenses without a category.
const UncategorizedName = "Uncategorized"

const topCategories = 5

// CategoryExpense is one row of the month's expense breakdown.
type CategoryExpense struct {
	CategoryID string // empty for the fold bucket
	Name       string
	Color      string
	Amount     core.Money
	Percent    int // bar width relative to the largest bucket
}

// ExpensesByCategory groups the month's expenses by category, sorted by
// amount descending. Expenses without a category group under a single
// uncategorized row. At most five categories are returned; anything beyond
// folds into a single "Other" row.
func ExpensesByCategory(txs []core.Transaction, categories []core.Category, year int, month time.Month) []CategoryExpense {
	names := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		names[c.ID] = c
	}

	totals := make(map[string]core.Money)
	var order []string
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}
		if _, seen := totals[tx.CategoryID]; !seen {
			order = append(order, tx.CategoryID)
		}
		totals[tx.CategoryID] = totals[tx.CategoryID].Add(tx.Amount)
	}

	rows := make([]CategoryExpense, 0, len(order))
	for _, id := range order {
		cat := names[id]
		name := cat.Name
		if id == "" {
			name = UncategorizedName
		} else if name == "" {
			name = id
		}
		rows = append(rows, CategoryExpense{
			CategoryID: id,
			Name:       name,
			Color:      cat.Color,
			Amount:     totals[id],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount.Cents > rows[j].Amount.Cents
	})

	if len(rows) > topCategories {
		var other core.Money
		for _, r := range rows[topCategories:] {
			other = other.Add(r.Amount)
		}
		rows = append(rows[:topCategories], CategoryExpense{Name: OtherCategoryName, Amount: other})
	}

	// Bar widths scale against the largest bucket, not the total.
	var maxCents int64
	for _, r := range rows {
		if r.Amount.Cents > maxCents {
			maxCents = r.Amount.Cents
		}
	}
	for i := range rows {
		if maxCents > 0 {
			rows[i].Percent = int((rows[i].Amount.Cents * 100) / maxCents)
		}
	}
	return rows
}

// PaymentKind tells which entity a scheduled payment comes from.
type PaymentKind string

const (
	PaymentCredit       PaymentKind = "credit"
	PaymentSubscription PaymentKind = "subscription"
)

// Payment is one scheduled outgoing payment, for upcoming lists and the
// calendar.
type Payment struct {
	Kind    PaymentKind
	ID      string
	Name    string
	Amount  core.Money
	DueDate core.Date
}

// UpcomingPayments lists payments due within horizonDays of today, sorted by
// due date ascending. Credits contribute their next payment-day occurrence,
// subscriptions their stored next billing date. Inactive entities are
// excluded.
func UpcomingPayments(credits []core.Credit, subs []core.Subscription, today core.Date, horizonDays int) []Payment {
	horizon := core.DateOf(today.AddDate(0, 0, horizonDays))

	var payments []Payment
	for _, c := range credits {
		if !c.IsActive {
			continue
		}
		due := recurrence.NextCreditDueDate(c.PaymentDay, today)
		if due.Between(today, horizon) {
			payments = append(payments, Payment{
				Kind:    PaymentCredit,
				ID:      c.ID,
				Name:    c.Name,
				Amount:  c.MonthlyPayment,
				DueDate: due,
			})
		}
	}
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		if s.NextBillingDate.Between(today, horizon) {
			payments = append(payments, Payment{
				Kind:    PaymentSubscription,
				ID:      s.ID,
				Name:    s.Name,
				Amount:  s.Amount,
				DueDate: s.NextBillingDate,
			})
		}
	}

	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].DueDate.Before(payments[j].DueDate.Time)
	})
	return payments
}

// DaySchedule is everything due on one calendar day.
type DaySchedule struct {
	Date     core.Date
	Payments []Payment
	Total    core.Money
}

// CalendarDayPayments collects the payments falling on one date: active
// credits whose clamped payment day matches, and active subscriptions whose
// cycle bills that day.
func CalendarDayPayments(credits []core.Credit, subs []core.Subscription, date core.Date) DaySchedule {
	schedule := DaySchedule{Date: date}

	dueDay := func(paymentDay int) int {
		return recurrence.ClampDayToMonth(date.Year(), date.Month(), paymentDay)
	}
	for _, c := range credits {
		if !c.IsActive || date.Day() != dueDay(c.PaymentDay) {
			continue
		}
		schedule.Payments = append(schedule.Payments, Payment{
			Kind:    PaymentCredit,
			ID:      c.ID,
			Name:    c.Name,
			Amount:  c.MonthlyPayment,
			DueDate: date,
		})
	}
	for _, s := range subs {
		if !s.IsActive || !recurrence.OccursOn(s, date) {
			continue
		}
		schedule.Payments = append(schedule.Payments, Payment{
			Kind:    PaymentSubscription,
			ID:      s.ID,
			Name:    s.Name,
			Amount:  s.Amount,
			DueDate: date,
		})
	}

	for _, p := range schedule.Payments {
		schedule.Total = schedule.Total.Add(p.Amount)
	}
	return schedule
}

// MonthlyCommitments totals what the month's schedule will actually charge:
// each active credit once, monthly subscriptions once, weekly subscriptions
// once per matching weekday in the month, yearly subscriptions only when
// their anchor falls inside the month.
func MonthlyCommitments(credits []core.Credit, subs []core.Subscription, year int, month time.Month) core.Money {
	monthStart := core.NewDate(year, month, 1)
	monthEnd := core.NewDate(year, month, recurrence.ClampDayToMonth(year, month, 31))

	var total core.Money
	for _, c := range credits {
		if c.IsActive {
			total = total.Add(c.MonthlyPayment)
		}
	}
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		switch s.BillingCycle {
		case core.Monthly:
			total = total.Add(s.Amount)
		case core.Weekly:
			n := recurrence.CountWeeklyOccurrences(s, monthStart, monthEnd)
			total = total.Add(core.Money{Cents: s.Amount.Cents * int64(n)})
		case core.Yearly:
			if s.NextBillingDate.Between(monthStart, monthEnd) {
				total = total.Add(s.Amount)
			}
		}
	}
	return total
}

// SubscriptionsMonthlyTotal normalizes every active subscription to its
// monthly equivalent and sums them.
func SubscriptionsMonthlyTotal(subs []core.Subscription) core.Money {
	var total core.Money
	for _, s := range subs {
		if s.IsActive {
			total = total.Add(recurrence.MonthlyEquivalent(s))
		}
	}
	return total
}
