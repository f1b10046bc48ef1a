package core

import "testing"

func TestIntentStorageType(t *testing.T) {
	cases := []struct {
		intent  Intent
		want    TransactionType
		wantErr bool
	}{
		{IntentIncome, Income, false},
		{IntentExpense, Expense, false},
		{IntentCreditPayment, Expense, false},
		{Intent("transfer"), "", true},
	}
	for _, tc := range cases {
		got, err := tc.intent.StorageType()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tc.intent, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: StorageType() = %q, want %q", tc.intent, got, tc.want)
		}
	}
}

func TestIntentRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		tx   Transaction
		want Intent
	}{
		{"plain expense", Transaction{Type: Expense}, IntentExpense},
		{"income", Transaction{Type: Income}, IntentIncome},
		{"expense with credit id", Transaction{Type: Expense, CreditID: "l1"}, IntentCreditPayment},
		{"income with credit id stays income", Transaction{Type: Income, CreditID: "l1"}, IntentIncome},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IntentOf(tc.tx); got != tc.want {
				t.Errorf("IntentOf() = %q, want %q", got, tc.want)
			}
		})
	}
}
