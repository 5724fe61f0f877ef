package services

import (
	"context"

	"finreport/internal/core"
)

// TransactionValidator turns classifier predicates into processing decisions.
type TransactionValidator struct {
	classifier *TransactionClassifier
}

func NewTransactionValidator(classifier *TransactionClassifier) *TransactionValidator {
	return &TransactionValidator{classifier: classifier}
}

// ShouldProcessTransaction reports whether tx should be sent for
// categorization. Transfers never are; categorized entries only when
// includeAlreadyCategorized is set.
func (v *TransactionValidator) ShouldProcessTransaction(tx core.Transaction, includeAlreadyCategorized bool) bool {
	if v.classifier.IsTransfer(tx) {
		return false
	}
	return includeAlreadyCategorized || !v.classifier.HasACategory(tx)
}

// ShouldSetBudget reports whether tx should be assigned a budget: it must not
// be a bill, disposable income, a deposit, or on the exclusion list. The
// exclusion list is only consulted when the pure checks pass.
func (v *TransactionValidator) ShouldSetBudget(ctx context.Context, tx core.Transaction) (bool, error) {
	c := v.classifier
	if c.IsBill(tx) || c.IsDisposableIncome(tx) || c.IsDeposit(tx) {
		return false, nil
	}
	excluded, err := c.IsExcludedTransaction(ctx, tx.Description, tx.Amount)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

// ValidateTransactionData reports whether a suggestion exists for tx's
// journal. Suggestions for journals we did not ask about are ignored.
func (v *TransactionValidator) ValidateTransactionData(tx core.Transaction, suggestions map[string]core.Suggestion) bool {
	if tx.JournalID == "" {
		return false
	}
	_, ok := suggestions[tx.JournalID]
	return ok
}

// CategoryOrBudgetChanged reports whether applying the proposal would change
// tx. An empty proposal means "no proposal" for that field.
func (v *TransactionValidator) CategoryOrBudgetChanged(tx core.Transaction, newCategory, newBudgetID string) bool {
	if newCategory != "" && newCategory != tx.CategoryName {
		return true
	}
	return newBudgetID != "" && newBudgetID != tx.BudgetID
}
