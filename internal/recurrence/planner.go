package recurrence

import (
	"time"

	"fintrack/internal/core"
)

// CreditDueDatesInRange returns every date in [start, end] on which an
// installment credit with the given payment day falls due. A credit is due
// once per calendar month; payment days past a month's end clamp to its last
// day rather than rolling over into the next month.
func CreditDueDatesInRange(paymentDay int, start, end core.Date) []core.Date {
	if end.Before(start.Time) {
		return nil
	}

	var dates []core.Date
	year, month := start.Year(), start.Month()
	for {
		day := ClampDayToMonth(year, month, paymentDay)
		due := core.NewDate(year, month, day)
		if due.After(end.Time) {
			break
		}
		if !due.Before(start.Time) {
			dates = append(dates, due)
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return dates
}

// NextCreditDueDate returns the next occurrence of a credit's payment day on
// or after today: this month's occurrence if today's day has not passed it,
// otherwise next month's.
func NextCreditDueDate(paymentDay int, today core.Date) core.Date {
	year, month := today.Year(), today.Month()
	if today.Day() > paymentDay {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return core.NewDate(year, month, ClampDayToMonth(year, month, paymentDay))
}

// SubscriptionDueDatesInRange returns every date in [start, end] on which the
// subscription bills, according to its cycle rule. Unknown cycles produce no
// dates.
func SubscriptionDueDatesInRange(sub core.Subscription, start, end core.Date) []core.Date {
	rule, err := GetCycleRule(sub.BillingCycle)
	if err != nil {
		return nil
	}

	var dates []core.Date
	for d := start; !d.After(end.Time); d = core.DateOf(d.AddDate(0, 0, 1)) {
		if rule.OccursOn(sub, d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// OccursOn reports whether the subscription bills on the given date.
func OccursOn(sub core.Subscription, date core.Date) bool {
	rule, err := GetCycleRule(sub.BillingCycle)
	if err != nil {
		return false
	}
	return rule.OccursOn(sub, date)
}

// CountWeeklyOccurrences counts the dates in [monthStart, monthEnd] inclusive
// that match the weekday of the subscription's billing anchor. Callers scale
// a weekly subscription's contribution to a monthly total by this count.
func CountWeeklyOccurrences(sub core.Subscription, monthStart, monthEnd core.Date) int {
	weekday := sub.NextBillingDate.Weekday()
	count := 0
	for d := monthStart; !d.After(monthEnd.Time); d = core.DateOf(d.AddDate(0, 0, 1)) {
		if d.Weekday() == weekday {
			count++
		}
	}
	return count
}

// MonthlyEquivalent normalizes any billing cycle to an approximate monthly
// cost: weekly x4, monthly x1, yearly /12. Unknown cycles normalize to zero.
func MonthlyEquivalent(sub core.Subscription) core.Money {
	rule, err := GetCycleRule(sub.BillingCycle)
	if err != nil {
		return core.Money{}
	}
	return rule.MonthlyEquivalent(sub.Amount)
}

// NextSubscriptionBilling returns the first date on or after today on which
// the subscription bills. Yearly subscriptions keep their anchor even when it
// lies in the past, since the anchor itself is the authoritative next date.
func NextSubscriptionBilling(sub core.Subscription, today core.Date) core.Date {
	if sub.BillingCycle == core.Yearly {
		if sub.NextBillingDate.Before(today.Time) {
			return core.DateOf(sub.NextBillingDate.AddDate(1, 0, 0))
		}
		return sub.NextBillingDate
	}

	rule, err := GetCycleRule(sub.BillingCycle)
	if err != nil {
		return core.Date{}
	}
	// Weekly repeats within 7 days, monthly within 31; 62 covers a missed
	// month plus clamping at year boundaries.
	for i := 0; i < 62; i++ {
		d := core.DateOf(today.AddDate(0, 0, i))
		if rule.OccursOn(sub, d) {
			return d
		}
	}
	return core.Date{}
}
