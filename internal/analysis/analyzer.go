// Package analysis runs period analyses over ledger transactions.
//
// Every analysis follows the same pipeline: the period is validated, the
// period's transactions are fetched once, and a Calculator aggregates them.
// Failures at each stage come back as a typed *core.AnalysisError inside a
// core.Result, never as a panic or a raw collaborator error.
package analysis

import (
	"context"
	"fmt"
	"time"

	"finreport/internal/core"
	"finreport/internal/ledger"
	"finreport/internal/log"
)

// Calculator supplies the aggregation step of an analysis.
type Calculator[T any] interface {
	// Operation names the analysis in logs and errors.
	Operation() string
	// Aggregate computes the result from the period's transactions. It may
	// return an *core.AnalysisError to choose the error kind itself.
	Aggregate(ctx context.Context, period core.Period, txs []core.Transaction) (T, error)
}

// Analyzer holds the collaborators shared by all analyses. It keeps no state
// between runs.
type Analyzer struct {
	transactions ledger.TransactionRepository
	logger       *log.Logger
}

func NewAnalyzer(transactions ledger.TransactionRepository, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default(log.ComponentAnalysis)
	}
	return &Analyzer{
		transactions: transactions,
		logger:       logger.WithComponent(log.ComponentAnalysis),
	}
}

// Run executes calc for period.
func Run[T any](ctx context.Context, a *Analyzer, period core.Period, calc Calculator[T]) core.Result[T] {
	op := calc.Operation()
	start := time.Now()
	logger := log.FromContextOr(ctx, a.logger).WithComponent(log.ComponentAnalysis).With(log.NewFields().WithOperation(op).WithPeriod(period.Month, period.Year).ToSlice()...)

	if err := period.Validate(); err != nil {
		logger.WarnContext(ctx, "Rejected analysis period", log.FieldError, err)
		return core.Err[T](core.NewValidationError(period, op, err))
	}

	txs, err := a.transactions.TransactionsForPeriod(ctx, period)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to fetch transactions",
			log.FieldErrorType, log.ErrorTypeFetch,
			log.FieldError, err)
		return core.Err[T](core.NewFetchError(period, op, err))
	}
	logger.DebugContext(ctx, "Fetched transactions", log.FieldCount, len(txs))

	value, err := aggregate(ctx, period, calc, txs)
	if err != nil {
		ae := asAnalysisError(period, op, err)
		logger.ErrorContext(ctx, "Analysis failed",
			log.FieldSuccess, false,
			log.FieldErrorType, errorType(ae),
			log.FieldError, ae)
		return core.Err[T](ae)
	}

	logger.InfoContext(ctx, "Analysis completed",
		log.FieldSuccess, true,
		log.FieldCount, len(txs),
		log.FieldDuration, time.Since(start).Milliseconds())
	return core.Ok(value)
}

func aggregate[T any](ctx context.Context, period core.Period, calc Calculator[T], txs []core.Transaction) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during aggregation: %v", r)
		}
	}()
	return calc.Aggregate(ctx, period, txs)
}

// asAnalysisError keeps the kind of an *AnalysisError raised by a calculator
// and classifies anything else as a calculation failure.
func asAnalysisError(period core.Period, op string, err error) *core.AnalysisError {
	if ae, ok := core.AsAnalysisError(err); ok {
		out := *ae
		if out.Month == 0 && out.Year == 0 {
			out.Month, out.Year = period.Month, period.Year
		}
		if out.Operation == "" {
			out.Operation = op
		}
		return &out
	}
	return core.NewCalculationError(period, op, "aggregation failed", err)
}

func errorType(ae *core.AnalysisError) string {
	switch ae.Kind {
	case core.ErrValidation:
		return log.ErrorTypeValidation
	case core.ErrFetch:
		return log.ErrorTypeFetch
	case core.ErrCalculation:
		return log.ErrorTypeCalculation
	case core.ErrConfiguration:
		return log.ErrorTypeConfiguration
	default:
		return log.ErrorTypeInternal
	}
}
