// Package report assembles the monthly report from the engine's analyses
// and delivers it to the configured sinks.
package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finreport/internal/analysis"
	"finreport/internal/core"
	"finreport/internal/ledger"
	"finreport/internal/log"
	"finreport/internal/services"
)

// Deps are the collaborators a Builder reads from.
type Deps struct {
	Transactions     ledger.TransactionRepository
	Bills            services.ActiveBillSource
	Budgets          ledger.BudgetRepository
	Exclusions       ledger.ExclusionLookup
	Classification   core.ClassificationConfig
	ExpectedPaycheck *decimal.Decimal
	Logger           *log.Logger
	Now              func() time.Time
}

type Builder struct {
	deps       Deps
	bills      *services.ExpectedBillService
	surplus    *analysis.PaycheckSurplus
	variance   *analysis.BudgetVariance
	unbudgeted *analysis.Unbudgeted
	pending    *analysis.PendingCategorization
	logger     *log.Logger
}

func NewBuilder(d Deps) *Builder {
	if d.Logger == nil {
		d.Logger = log.Default(log.ComponentReport)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	classifier := services.NewTransactionClassifier(d.Classification, d.Exclusions)
	validator := services.NewTransactionValidator(classifier)
	return &Builder{
		deps:       d,
		bills:      services.NewExpectedBillService(d.Bills, d.Logger),
		surplus:    analysis.NewPaycheckSurplus(classifier, d.ExpectedPaycheck, d.Logger),
		variance:   analysis.NewBudgetVariance(d.Budgets, d.Logger),
		unbudgeted: analysis.NewUnbudgeted(validator, d.Logger),
		pending:    analysis.NewPendingCategorization(validator),
		logger:     d.Logger.WithComponent(log.ComponentReport),
	}
}

// Build computes every section of the report for period. An invalid period
// fails the whole build; any other section failure is recorded in
// MonthlyReport.Errors and the remaining sections are still computed.
func (b *Builder) Build(ctx context.Context, period core.Period) (core.MonthlyReport, error) {
	if err := period.Validate(); err != nil {
		return core.MonthlyReport{}, core.NewValidationError(period, "monthly_report", err)
	}

	logger := log.FromContextOr(ctx, b.logger).WithComponent(log.ComponentReport)
	start := time.Now()
	r := core.MonthlyReport{
		Period:      period,
		GeneratedAt: b.deps.Now().UTC(),
		Errors:      make(map[string]string),
	}
	fail := func(op string, err error) {
		r.Errors[op] = err.Error()
		logger.WarnContext(ctx, "Report section failed", log.FieldOperation, op, log.FieldError, err)
	}

	if v, err := b.bills.ExpectedSumForMonth(ctx, period.Month, period.Year); err != nil {
		fail(log.OpExpectedBills, err)
	} else {
		r.ExpectedBills = v
	}
	if v, err := b.bills.AverageMonthlyBillsForYear(ctx, period.Year); err != nil {
		fail(log.OpAverageMonthlyBills, err)
	} else {
		r.AverageMonthlyBills = v
	}

	// The period's transactions are fetched once and shared by every analysis.
	a := analysis.NewAnalyzer(&fetchOnce{repo: b.deps.Transactions}, b.deps.Logger)

	if v, err := analysis.Run[decimal.Decimal](ctx, a, period, b.surplus).Unwrap(); err != nil {
		fail(log.OpPaycheckSurplus, err)
	} else {
		r.PaycheckSurplus = v
	}
	if v, err := analysis.Run[core.BudgetReport](ctx, a, period, b.variance).Unwrap(); err != nil {
		fail(log.OpBudgetVariance, err)
	} else {
		r.Budgets = v
	}
	if v, err := analysis.Run[core.UnbudgetedSummary](ctx, a, period, b.unbudgeted).Unwrap(); err != nil {
		fail(log.OpUnbudgeted, err)
	} else {
		r.Unbudgeted = v
	}
	if v, err := analysis.Run[int](ctx, a, period, b.pending).Unwrap(); err != nil {
		fail(log.OpPendingCategorize, err)
	} else {
		r.PendingCategorization = v
	}

	logger.InfoContext(ctx, "Monthly report built",
		log.FieldMonth, period.Month,
		log.FieldYear, period.Year,
		log.FieldSuccess, r.OK(),
		log.FieldCount, len(r.Errors),
		log.FieldDuration, time.Since(start).Milliseconds())
	return r, nil
}

// fetchOnce memoizes the first TransactionsForPeriod call, error included.
// It lives for a single Build.
type fetchOnce struct {
	repo ledger.TransactionRepository
	once sync.Once
	txs  []core.Transaction
	err  error
}

func (f *fetchOnce) TransactionsForPeriod(ctx context.Context, period core.Period) ([]core.Transaction, error) {
	f.once.Do(func() {
		f.txs, f.err = f.repo.TransactionsForPeriod(ctx, period)
	})
	return f.txs, f.err
}

// Sink receives finished reports.
type Sink interface {
	Name() string
	Send(ctx context.Context, r core.MonthlyReport) error
}

// Deliver sends r to every sink and joins their errors. A failing sink does
// not stop delivery to the others.
func Deliver(ctx context.Context, logger *log.Logger, r core.MonthlyReport, sinks ...Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.Send(ctx, r); err != nil {
			logger.ErrorContext(ctx, "Report delivery failed", "sink", s.Name(), log.FieldError, err)
			errs = append(errs, err)
			continue
		}
		logger.InfoContext(ctx, "Report delivered", "sink", s.Name(), log.FieldMonth, r.Period.Month, log.FieldYear, r.Period.Year)
	}
	return errors.Join(errs...)
}
