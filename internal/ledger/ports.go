package ledger

import (
	"context"

	"finreport/internal/core"
)

// Ports for the ledger collaborators the engine reads from.
type (
	// TransactionRepository lists the journal entries booked in a period.
	TransactionRepository interface {
		TransactionsForPeriod(ctx context.Context, period core.Period) ([]core.Transaction, error)
	}

	// BillRepository lists the bills currently marked active.
	BillRepository interface {
		ActiveBills(ctx context.Context) ([]core.Bill, error)
	}

	// BudgetRepository returns the budget limits that apply to a period.
	BudgetRepository interface {
		BudgetLimits(ctx context.Context, period core.Period) ([]core.BudgetLimit, error)
	}

	// ExclusionLookup answers whether a transaction is on the exclusion list.
	ExclusionLookup interface {
		IsExcluded(ctx context.Context, description, amount string) (bool, error)
	}
)
