package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetLimit is the amount allotted to a budget for one period.
type BudgetLimit struct {
	BudgetID string
	Name     string
	Amount   string
	Period   Period
}

// BudgetVariance compares a budget limit with what was actually spent.
type BudgetVariance struct {
	BudgetID  string
	Name      string
	Limit     decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
}

// BudgetReport is the budget variance for a whole period.
type BudgetReport struct {
	Lines          []BudgetVariance
	TotalLimit     decimal.Decimal
	TotalSpent     decimal.Decimal
	TotalRemaining decimal.Decimal
}

// UnbudgetedSummary totals the withdrawals that should carry a budget but do not.
type UnbudgetedSummary struct {
	Total        decimal.Decimal
	Count        int
	Transactions []Transaction
}

// Exclusion marks transactions that must never receive a budget. An empty
// field matches anything; a record with both fields empty matches nothing.
type Exclusion struct {
	Description string
	Amount      string
}

// Matches reports whether a transaction with the given description and
// amount is covered by the exclusion record.
func (e Exclusion) Matches(description, amount string) bool {
	wantDesc := strings.TrimSpace(e.Description)
	wantAmount := strings.TrimSpace(e.Amount)
	if wantDesc == "" && wantAmount == "" {
		return false
	}
	if wantDesc != "" && !strings.EqualFold(wantDesc, strings.TrimSpace(description)) {
		return false
	}
	if wantAmount != "" {
		want, err := NormalizeAmount(wantAmount)
		if err != nil {
			return false
		}
		got, err := NormalizeAmount(amount)
		if err != nil || got != want {
			return false
		}
	}
	return true
}

// MonthlyReport is a compact summary for a specific year+month.
type MonthlyReport struct {
	Period                Period
	GeneratedAt           time.Time
	ExpectedBills         decimal.Decimal
	AverageMonthlyBills   decimal.Decimal
	PaycheckSurplus       decimal.Decimal
	Budgets               BudgetReport
	Unbudgeted            UnbudgetedSummary
	PendingCategorization int
	// Errors lists the sections that could not be computed, keyed by operation.
	Errors map[string]string
}

// OK reports whether every section of the report was computed.
func (r MonthlyReport) OK() bool {
	return len(r.Errors) == 0
}
