package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly  BillingCycle = "weekly"
	Monthly BillingCycle = "monthly"
	Yearly  BillingCycle = "yearly"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	BillingCycle    string
	TransactionType string

	// Date is a civil date pinned to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID    string
		Name  string
		Type  TransactionType
		Icon  string
		Color string
	}

	CreditCard struct {
		ID             string
		Name           string
		Bank           string
		CreditLimit    Money // zero means no limit
		CurrentBalance Money // amount owed
		CutOffDay      int
		PaymentDueDay  int
		IsActive       bool
	}

	DebitCard struct {
		ID             string
		Name           string
		Bank           string
		CurrentBalance Money
		IsActive       bool
	}

	// Credit is an installment loan, optionally financed on a credit card
	// (an MSI purchase). Its principal is posted to the card once at
	// creation and released in full when the loan settles.
	Credit struct {
		ID             string
		Name           string
		Institution    string
		OriginalAmount Money
		CurrentBalance Money
		MonthlyPayment Money
		PaymentDay     int
		CreditCardID   string
		IsActive       bool
	}

	Subscription struct {
		ID              string
		Name            string
		Amount          Money
		BillingCycle    BillingCycle
		BillingDay      int
		NextBillingDate Date
		CategoryID      string
		CreditCardID    string
		DebitCardID     string
		IsActive        bool
	}

	Transaction struct {
		ID           string
		Type         TransactionType
		Amount       Money
		Date         Date
		Description  string
		CategoryID   string
		CreditCardID string
		DebitCardID  string
		CreditID     string
		IsRecurring  bool
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDay        = errors.New("invalid day of month")
	ErrInvalidCycle      = errors.New("invalid billing cycle")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyName         = errors.New("empty name")
	ErrCardConflict      = errors.New("credit card and debit card are mutually exclusive")
	ErrZeroDate          = errors.New("date cannot be zero")
	ErrBalanceOverAmount = errors.New("current balance exceeds original amount")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its civil date at UTC midnight.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Between reports whether d falls within [start, end] inclusive.
func (d Date) Between(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// SubClamped returns m - other, never below zero. Excess is silently
// discarded: clamping is ledger policy, not an error.
func (m Money) SubClamped(other Money) Money {
	c := m.Cents - other.Cents
	if c < 0 {
		c = 0
	}
	return Money{Cents: c}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func validDayOfMonth(day int) bool {
	return day >= 1 && day <= 31
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Type != Income && c.Type != Expense {
		return ErrInvalidType
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !validDayOfMonth(c.CutOffDay) || !validDayOfMonth(c.PaymentDueDay) {
		return ErrInvalidDay
	}
	if c.CreditLimit.Cents < 0 || c.CurrentBalance.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// HasLimit reports whether the card carries a spending limit. A zero limit
// means the limit is unknown or not tracked, never "no credit available".
func (c CreditCard) HasLimit() bool {
	return c.CreditLimit.Cents > 0
}

func (d DebitCard) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.CurrentBalance.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Credit) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := c.OriginalAmount.Validate(); err != nil {
		return err
	}
	if err := c.MonthlyPayment.Validate(); err != nil {
		return err
	}
	if c.CurrentBalance.Cents < 0 {
		return ErrInvalidAmount
	}
	if c.CurrentBalance.Cents > c.OriginalAmount.Cents {
		return ErrBalanceOverAmount
	}
	if !validDayOfMonth(c.PaymentDay) {
		return ErrInvalidDay
	}
	return nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	switch s.BillingCycle {
	case Weekly, Monthly, Yearly:
	default:
		return ErrInvalidCycle
	}
	if s.BillingCycle == Monthly && !validDayOfMonth(s.BillingDay) {
		return ErrInvalidDay
	}
	if err := s.NextBillingDate.Validate(); err != nil {
		return err
	}
	if s.CreditCardID != "" && s.DebitCardID != "" {
		return ErrCardConflict
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.CreditCardID != "" && t.DebitCardID != "" {
		return ErrCardConflict
	}
	return nil
}

// IsCardPurchase reports whether the transaction posts a regular purchase to
// a credit card, i.e. increases the amount owed. Loan payments carry a
// CreditID and never count, even when charged through the linked card.
func (t Transaction) IsCardPurchase() bool {
	return t.CreditCardID != "" && t.CreditID == "" && t.Type == Expense
}

// IsCreditPayment reports whether the transaction pays down an installment
// credit.
func (t Transaction) IsCreditPayment() bool {
	return t.CreditID != "" && t.Type == Expense
}
