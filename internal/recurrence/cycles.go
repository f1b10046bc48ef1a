// Package recurrence computes due dates for installment credits and
// subscriptions. Everything here is pure: no I/O, no clock reads, identical
// output for identical input.
package recurrence

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// CycleRule is the strategy interface for one billing cycle.
type CycleRule interface {
	// OccursOn reports whether the subscription is due on the given date.
	OccursOn(sub core.Subscription, date core.Date) bool

	// MonthlyEquivalent normalizes the subscription amount to an
	// approximate monthly cost.
	MonthlyEquivalent(amount core.Money) core.Money
}

// WeeklyRule bills on every date whose weekday equals the weekday of the
// subscription's billing anchor, not on a rolling schedule from the last
// payment.
type WeeklyRule struct{}

func (WeeklyRule) OccursOn(sub core.Subscription, date core.Date) bool {
	return date.Weekday() == sub.NextBillingDate.Weekday()
}

// MonthlyEquivalent approximates a month as four weeks. The 4x factor is a
// compatibility constant; do not replace it with the 4.345 average.
func (WeeklyRule) MonthlyEquivalent(amount core.Money) core.Money {
	return core.Money{Cents: amount.Cents * 4}
}

// MonthlyRule bills once a month on BillingDay, clamped to the last day of
// shorter months (day 31 bills on Feb 28 in a non-leap year).
type MonthlyRule struct{}

func (MonthlyRule) OccursOn(sub core.Subscription, date core.Date) bool {
	due := ClampDayToMonth(date.Year(), date.Month(), sub.BillingDay)
	return date.Day() == due
}

func (MonthlyRule) MonthlyEquivalent(amount core.Money) core.Money {
	return amount
}

// YearlyRule bills only on the exact anchor date. A window that does not
// span the anchor produces no occurrence, even if it covers the anchor's
// month and day in another year.
type YearlyRule struct{}

func (YearlyRule) OccursOn(sub core.Subscription, date core.Date) bool {
	return date.Equal(sub.NextBillingDate.Time)
}

func (YearlyRule) MonthlyEquivalent(amount core.Money) core.Money {
	return core.Money{Cents: amount.Cents / 12}
}

// cycleRules maps billing cycles to their rules.
var cycleRules = map[core.BillingCycle]CycleRule{
	core.Weekly:  WeeklyRule{},
	core.Monthly: MonthlyRule{},
	core.Yearly:  YearlyRule{},
}

// GetCycleRule returns the rule for a billing cycle, or an error for an
// unknown cycle.
func GetCycleRule(cycle core.BillingCycle) (CycleRule, error) {
	rule, ok := cycleRules[cycle]
	if !ok {
		return nil, fmt.Errorf("unknown billing cycle: %s", cycle)
	}
	return rule, nil
}

// RegisterCycleRule registers a rule for a new billing cycle, allowing
// extension without modifying the registry.
func RegisterCycleRule(cycle core.BillingCycle, rule CycleRule) {
	cycleRules[cycle] = rule
}

// ClampDayToMonth resolves a 1..31 day-of-month against a concrete month,
// clamping days past the month's end to its last day.
func ClampDayToMonth(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
