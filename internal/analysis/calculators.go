package analysis

import (
	"context"

	"github.com/shopspring/decimal"

	"finreport/internal/core"
	"finreport/internal/ledger"
	"finreport/internal/log"
	"finreport/internal/services"
)

// PaycheckSurplus compares the paychecks received in a period with the
// expected monthly paycheck.
type PaycheckSurplus struct {
	classifier *services.TransactionClassifier
	expected   *decimal.Decimal
	logger     *log.Logger
}

// NewPaycheckSurplus creates the calculator. A nil expected amount is
// treated as zero.
func NewPaycheckSurplus(classifier *services.TransactionClassifier, expected *decimal.Decimal, logger *log.Logger) *PaycheckSurplus {
	if logger == nil {
		logger = log.Default(log.ComponentAnalysis)
	}
	return &PaycheckSurplus{classifier: classifier, expected: expected, logger: logger.WithComponent(log.ComponentAnalysis)}
}

func (c *PaycheckSurplus) Operation() string { return log.OpPaycheckSurplus }

func (c *PaycheckSurplus) Aggregate(ctx context.Context, period core.Period, txs []core.Transaction) (decimal.Decimal, error) {
	received := decimal.Zero
	for _, tx := range txs {
		if !c.classifier.IsPaycheck(tx) {
			continue
		}
		amount, err := core.ParseAmount(tx.Amount)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping paycheck with invalid amount",
				log.FieldJournalID, tx.JournalID,
				log.FieldError, err)
			continue
		}
		received = received.Add(amount.Abs())
	}

	expected := decimal.Zero
	if c.expected != nil {
		expected = *c.expected
	} else {
		c.logger.WarnContext(ctx, "Expected monthly paycheck not configured, using 0",
			log.FieldErrorType, log.ErrorTypeConfiguration,
			log.FieldMonth, period.Month,
			log.FieldYear, period.Year)
	}
	return received.Sub(expected), nil
}

// BudgetVariance reports limit, spending and remaining amount per budget.
type BudgetVariance struct {
	budgets ledger.BudgetRepository
	logger  *log.Logger
}

func NewBudgetVariance(budgets ledger.BudgetRepository, logger *log.Logger) *BudgetVariance {
	if logger == nil {
		logger = log.Default(log.ComponentAnalysis)
	}
	return &BudgetVariance{budgets: budgets, logger: logger.WithComponent(log.ComponentAnalysis)}
}

func (c *BudgetVariance) Operation() string { return log.OpBudgetVariance }

// Aggregate sums withdrawals per budget and compares them with the limits
// for the period. Budgets without a limit are not reported.
func (c *BudgetVariance) Aggregate(ctx context.Context, period core.Period, txs []core.Transaction) (core.BudgetReport, error) {
	const op = log.OpBudgetVariance
	limits, err := c.budgets.BudgetLimits(ctx, period)
	if err != nil {
		return core.BudgetReport{}, core.NewFetchError(period, log.OpFetchBudgets, err)
	}

	spent := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != core.Withdrawal || tx.BudgetID == "" {
			continue
		}
		amount, err := core.ParseAmount(tx.Amount)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping withdrawal with invalid amount",
				log.FieldJournalID, tx.JournalID,
				log.FieldBudgetID, tx.BudgetID,
				log.FieldError, err)
			continue
		}
		spent[tx.BudgetID] = spent[tx.BudgetID].Add(amount.Abs())
	}

	report := core.BudgetReport{Lines: make([]core.BudgetVariance, 0, len(limits))}
	for _, limit := range limits {
		amount, err := core.ParseAmount(limit.Amount)
		if err != nil {
			return core.BudgetReport{}, core.NewCalculationError(period, op, "malformed limit for budget "+limit.BudgetID, err)
		}
		line := core.BudgetVariance{
			BudgetID:  limit.BudgetID,
			Name:      limit.Name,
			Limit:     amount,
			Spent:     spent[limit.BudgetID],
			Remaining: amount.Sub(spent[limit.BudgetID]),
		}
		report.Lines = append(report.Lines, line)
		report.TotalLimit = report.TotalLimit.Add(line.Limit)
		report.TotalSpent = report.TotalSpent.Add(line.Spent)
		report.TotalRemaining = report.TotalRemaining.Add(line.Remaining)
	}
	return report, nil
}

// Unbudgeted totals the withdrawals that should carry a budget but have none.
type Unbudgeted struct {
	validator *services.TransactionValidator
	logger    *log.Logger
}

func NewUnbudgeted(validator *services.TransactionValidator, logger *log.Logger) *Unbudgeted {
	if logger == nil {
		logger = log.Default(log.ComponentAnalysis)
	}
	return &Unbudgeted{validator: validator, logger: logger.WithComponent(log.ComponentAnalysis)}
}

func (c *Unbudgeted) Operation() string { return log.OpUnbudgeted }

func (c *Unbudgeted) Aggregate(ctx context.Context, period core.Period, txs []core.Transaction) (core.UnbudgetedSummary, error) {
	summary := core.UnbudgetedSummary{}
	for _, tx := range txs {
		if tx.Type != core.Withdrawal || tx.BudgetID != "" {
			continue
		}
		ok, err := c.validator.ShouldSetBudget(ctx, tx)
		if err != nil {
			return core.UnbudgetedSummary{}, core.NewFetchError(period, log.OpUnbudgeted, err)
		}
		if !ok {
			continue
		}
		amount, err := core.ParseAmount(tx.Amount)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping withdrawal with invalid amount",
				log.FieldJournalID, tx.JournalID,
				log.FieldError, err)
			continue
		}
		summary.Total = summary.Total.Add(amount.Abs())
		summary.Count++
		summary.Transactions = append(summary.Transactions, tx)
	}
	return summary, nil
}

// PendingCategorization counts the transactions still waiting for a category.
type PendingCategorization struct {
	validator *services.TransactionValidator
}

func NewPendingCategorization(validator *services.TransactionValidator) *PendingCategorization {
	return &PendingCategorization{validator: validator}
}

func (c *PendingCategorization) Operation() string { return log.OpPendingCategorize }

func (c *PendingCategorization) Aggregate(_ context.Context, _ core.Period, txs []core.Transaction) (int, error) {
	n := 0
	for _, tx := range txs {
		if c.validator.ShouldProcessTransaction(tx, false) {
			n++
		}
	}
	return n, nil
}
