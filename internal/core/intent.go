package core

import "fmt"

// Intent is the caller-facing transaction type. The UI distinguishes a
// "credit payment" from a plain expense, but storage keeps only two types and
// marks payments by the presence of a credit id. This is the single place
// where the two representations are mapped; nothing else infers the overlay.
type Intent string

const (
	IntentIncome        Intent = "income"
	IntentExpense       Intent = "expense"
	IntentCreditPayment Intent = "credit_payment"
)

// StorageType translates an intent into the stored transaction type.
// A credit payment is stored as an expense.
func (i Intent) StorageType() (TransactionType, error) {
	switch i {
	case IntentIncome:
		return Income, nil
	case IntentExpense:
		return Expense, nil
	case IntentCreditPayment:
		return Expense, nil
	default:
		return "", fmt.Errorf("%w: unknown intent %q", ErrValidation, string(i))
	}
}

// RequiresCredit reports whether the intent must reference a credit record.
func (i Intent) RequiresCredit() bool {
	return i == IntentCreditPayment
}

// IntentOf recovers the intent from a stored transaction: an expense with a
// credit id reads back as a credit payment.
func IntentOf(t Transaction) Intent {
	if t.CreditID != "" && t.Type == Expense {
		return IntentCreditPayment
	}
	if t.Type == Income {
		return IntentIncome
	}
	return IntentExpense
}
