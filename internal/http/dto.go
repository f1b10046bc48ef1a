package http

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

func parseDateParam(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q: %w", s, core.ErrValidation)
	}
	return core.DateOf(t), nil
}

type categoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, Type: string(c.Type), Icon: c.Icon, Color: c.Color}
}

func (d categoryDTO) toDomain() core.Category {
	return core.Category{ID: d.ID, Name: d.Name, Type: core.TransactionType(d.Type), Icon: d.Icon, Color: d.Color}
}

type creditCardDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Bank          string `json:"bank,omitempty"`
	CreditLimit   int64  `json:"credit_limit_cents"`
	Balance       int64  `json:"current_balance_cents"`
	CutOffDay     int    `json:"cut_off_day"`
	PaymentDueDay int    `json:"payment_due_day"`
	IsActive      bool   `json:"is_active"`
}

func toCreditCardDTO(c core.CreditCard) creditCardDTO {
	return creditCardDTO{
		ID: c.ID, Name: c.Name, Bank: c.Bank,
		CreditLimit: c.CreditLimit.Cents, Balance: c.CurrentBalance.Cents,
		CutOffDay: c.CutOffDay, PaymentDueDay: c.PaymentDueDay, IsActive: c.IsActive,
	}
}

func (d creditCardDTO) toDomain() core.CreditCard {
	return core.CreditCard{
		ID: d.ID, Name: d.Name, Bank: d.Bank,
		CreditLimit:    core.Money{Cents: d.CreditLimit},
		CurrentBalance: core.Money{Cents: d.Balance},
		CutOffDay:      d.CutOffDay, PaymentDueDay: d.PaymentDueDay, IsActive: d.IsActive,
	}
}

type debitCardDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Bank     string `json:"bank,omitempty"`
	Balance  int64  `json:"current_balance_cents"`
	IsActive bool   `json:"is_active"`
}

func toDebitCardDTO(c core.DebitCard) debitCardDTO {
	return debitCardDTO{ID: c.ID, Name: c.Name, Bank: c.Bank, Balance: c.CurrentBalance.Cents, IsActive: c.IsActive}
}

func (d debitCardDTO) toDomain() core.DebitCard {
	return core.DebitCard{
		ID: d.ID, Name: d.Name, Bank: d.Bank,
		CurrentBalance: core.Money{Cents: d.Balance}, IsActive: d.IsActive,
	}
}

type creditDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Institution    string `json:"institution,omitempty"`
	OriginalAmount int64  `json:"original_amount_cents"`
	Balance        int64  `json:"current_balance_cents"`
	MonthlyPayment int64  `json:"monthly_payment_cents"`
	PaymentDay     int    `json:"payment_day"`
	CreditCardID   string `json:"credit_card_id,omitempty"`
	IsActive       bool   `json:"is_active"`
}

func toCreditDTO(c core.Credit) creditDTO {
	return creditDTO{
		ID: c.ID, Name: c.Name, Institution: c.Institution,
		OriginalAmount: c.OriginalAmount.Cents, Balance: c.CurrentBalance.Cents,
		MonthlyPayment: c.MonthlyPayment.Cents, PaymentDay: c.PaymentDay,
		CreditCardID: c.CreditCardID, IsActive: c.IsActive,
	}
}

func (d creditDTO) toDomain() core.Credit {
	return core.Credit{
		ID: d.ID, Name: d.Name, Institution: d.Institution,
		OriginalAmount: core.Money{Cents: d.OriginalAmount},
		CurrentBalance: core.Money{Cents: d.Balance},
		MonthlyPayment: core.Money{Cents: d.MonthlyPayment},
		PaymentDay:     d.PaymentDay, CreditCardID: d.CreditCardID, IsActive: d.IsActive,
	}
}

type subscriptionDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Amount          int64  `json:"amount_cents"`
	BillingCycle    string `json:"billing_cycle"`
	BillingDay      int    `json:"billing_day,omitempty"`
	NextBillingDate string `json:"next_billing_date"`
	CategoryID      string `json:"category_id,omitempty"`
	CreditCardID    string `json:"credit_card_id,omitempty"`
	DebitCardID     string `json:"debit_card_id,omitempty"`
	IsActive        bool   `json:"is_active"`
}

func toSubscriptionDTO(s core.Subscription) subscriptionDTO {
	return subscriptionDTO{
		ID: s.ID, Name: s.Name, Amount: s.Amount.Cents,
		BillingCycle: string(s.BillingCycle), BillingDay: s.BillingDay,
		NextBillingDate: s.NextBillingDate.Format(dateLayout),
		CategoryID:      s.CategoryID, CreditCardID: s.CreditCardID, DebitCardID: s.DebitCardID,
		IsActive: s.IsActive,
	}
}

func (d subscriptionDTO) toDomain() (core.Subscription, error) {
	next, err := parseDateParam(d.NextBillingDate)
	if err != nil {
		return core.Subscription{}, err
	}
	return core.Subscription{
		ID: d.ID, Name: d.Name, Amount: core.Money{Cents: d.Amount},
		BillingCycle: core.BillingCycle(d.BillingCycle), BillingDay: d.BillingDay,
		NextBillingDate: next,
		CategoryID:      d.CategoryID, CreditCardID: d.CreditCardID, DebitCardID: d.DebitCardID,
		IsActive: d.IsActive,
	}, nil
}

type transactionDTO struct {
	ID           string `json:"id"`
	Intent       string `json:"intent,omitempty"`
	Type         string `json:"type,omitempty"`
	Amount       int64  `json:"amount_cents"`
	Date         string `json:"date"`
	Description  string `json:"description,omitempty"`
	CategoryID   string `json:"category_id,omitempty"`
	CreditCardID string `json:"credit_card_id,omitempty"`
	DebitCardID  string `json:"debit_card_id,omitempty"`
	CreditID     string `json:"credit_id,omitempty"`
	IsRecurring  bool   `json:"is_recurring,omitempty"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID: t.ID, Intent: string(core.IntentOf(t)), Type: string(t.Type),
		Amount: t.Amount.Cents, Date: t.Date.Format(dateLayout),
		Description: t.Description, CategoryID: t.CategoryID,
		CreditCardID: t.CreditCardID, DebitCardID: t.DebitCardID, CreditID: t.CreditID,
		IsRecurring: t.IsRecurring,
	}
}

func (d transactionDTO) toDomain() (core.Transaction, error) {
	date, err := parseDateParam(d.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID: d.ID, Type: core.TransactionType(d.Type),
		Amount: core.Money{Cents: d.Amount}, Date: date,
		Description: d.Description, CategoryID: d.CategoryID,
		CreditCardID: d.CreditCardID, DebitCardID: d.DebitCardID, CreditID: d.CreditID,
		IsRecurring: d.IsRecurring,
	}, nil
}
