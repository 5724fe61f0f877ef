package services

import (
	"context"
	"errors"
	"testing"

	"finreport/internal/core"
)

func TestShouldProcessTransaction(t *testing.T) {
	v := NewTransactionValidator(NewTransactionClassifier(testConfig, nil))

	tests := []struct {
		name            string
		tx              core.Transaction
		includeExisting bool
		want            bool
	}{
		{"uncategorized withdrawal", core.Transaction{Type: core.Withdrawal}, false, true},
		{"categorized withdrawal", core.Transaction{Type: core.Withdrawal, CategoryID: "1"}, false, false},
		{"categorized withdrawal included", core.Transaction{Type: core.Withdrawal, CategoryID: "1"}, true, true},
		{"transfer", core.Transaction{Type: core.Transfer}, true, false},
		{"uncategorized deposit", core.Transaction{Type: core.Deposit}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ShouldProcessTransaction(tt.tx, tt.includeExisting); got != tt.want {
				t.Errorf("ShouldProcessTransaction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldSetBudget(t *testing.T) {
	lookup := &fakeExclusions{excluded: map[string]bool{"Savings sweep": true}}
	v := NewTransactionValidator(NewTransactionClassifier(testConfig, lookup))
	ctx := context.Background()

	tests := []struct {
		name string
		tx   core.Transaction
		want bool
	}{
		{"plain withdrawal", core.Transaction{Type: core.Withdrawal, Description: "Groceries"}, true},
		{"bill", core.Transaction{Type: core.Withdrawal, BillID: "1"}, false},
		{"disposable", core.Transaction{Type: core.Withdrawal, Tags: []string{"disposable"}}, false},
		{"excluded", core.Transaction{Type: core.Withdrawal, Description: "Savings sweep"}, false},
		{"deposit", core.Transaction{Type: core.Deposit}, false},
		{"bill and excluded", core.Transaction{Type: core.Withdrawal, BillID: "1", Description: "Savings sweep"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ShouldSetBudget(ctx, tt.tx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldSetBudget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldSetBudgetLookupError(t *testing.T) {
	lookup := &fakeExclusions{err: errors.New("unavailable")}
	v := NewTransactionValidator(NewTransactionClassifier(testConfig, lookup))

	if _, err := v.ShouldSetBudget(context.Background(), core.Transaction{Type: core.Withdrawal}); err == nil {
		t.Fatal("expected error")
	}
	// Pure checks short-circuit before the lookup is consulted.
	lookup.calls = 0
	ok, err := v.ShouldSetBudget(context.Background(), core.Transaction{Type: core.Deposit})
	if ok || err != nil || lookup.calls != 0 {
		t.Fatalf("got %v, %v after %d lookups", ok, err, lookup.calls)
	}
}

func TestValidateTransactionData(t *testing.T) {
	v := NewTransactionValidator(NewTransactionClassifier(testConfig, nil))
	suggestions := map[string]core.Suggestion{"42": {CategoryName: "Food"}}

	if !v.ValidateTransactionData(core.Transaction{JournalID: "42"}, suggestions) {
		t.Error("expected known journal to validate")
	}
	if v.ValidateTransactionData(core.Transaction{JournalID: "43"}, suggestions) {
		t.Error("unknown journal must not validate")
	}
	if v.ValidateTransactionData(core.Transaction{}, suggestions) {
		t.Error("missing journal id must not validate")
	}
	if v.ValidateTransactionData(core.Transaction{JournalID: "42"}, nil) {
		t.Error("nil suggestions must not validate")
	}
}

func TestCategoryOrBudgetChanged(t *testing.T) {
	v := NewTransactionValidator(NewTransactionClassifier(testConfig, nil))
	tx := core.Transaction{CategoryName: "Food", BudgetID: "7"}

	tests := []struct {
		name     string
		category string
		budget   string
		want     bool
	}{
		{"same values", "Food", "7", false},
		{"no proposal", "", "", false},
		{"new category", "Dining", "7", true},
		{"new budget", "Food", "8", true},
		{"budget only", "", "8", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.CategoryOrBudgetChanged(tx, tt.category, tt.budget); got != tt.want {
				t.Errorf("CategoryOrBudgetChanged() = %v, want %v", got, tt.want)
			}
		})
	}
}
