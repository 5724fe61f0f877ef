package services

import (
	"context"

	"github.com/shopspring/decimal"

	"finreport/internal/core"
	"finreport/internal/log"
)

// ActiveBillSource is what ExpectedBillService reads bills from. *BillCache
// satisfies it; so does any ledger.BillRepository when caching is unwanted.
type ActiveBillSource interface {
	ActiveBills(ctx context.Context) ([]core.Bill, error)
}

var monthsPerYear = decimal.NewFromInt(12)

// ExpectedBillService answers how much the active bills are expected to cost.
type ExpectedBillService struct {
	bills  ActiveBillSource
	logger *log.Logger
}

func NewExpectedBillService(bills ActiveBillSource, logger *log.Logger) *ExpectedBillService {
	if logger == nil {
		logger = log.Default(log.ComponentBills)
	}
	return &ExpectedBillService{
		bills:  bills,
		logger: logger.WithComponent(log.ComponentBills),
	}
}

// ExpectedSumForMonth sums AmountMax over the active bills due in month/year.
// One malformed amount fails the whole sum.
func (s *ExpectedBillService) ExpectedSumForMonth(ctx context.Context, month, year int) (decimal.Decimal, error) {
	const op = log.OpExpectedBills
	period := core.NewPeriod(month, year)
	if err := period.Validate(); err != nil {
		return decimal.Zero, core.NewValidationError(period, op, err)
	}

	bills, err := s.bills.ActiveBills(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch bills", log.FieldOperation, op, log.FieldMonth, month, log.FieldYear, year, log.FieldError, err)
		return decimal.Zero, core.NewFetchError(period, op, err)
	}

	total := decimal.Zero
	due := 0
	for _, bill := range bills {
		if !bill.Active {
			continue
		}
		s.warnUnknownFrequency(ctx, bill)
		if !IsDueInMonth(bill, month, year) {
			continue
		}
		amount, err := bill.MaxAmount()
		if err != nil {
			return decimal.Zero, core.NewCalculationError(period, op, "malformed bill amount", err)
		}
		total = total.Add(amount)
		due++
	}

	s.logger.DebugContext(ctx, "Expected bills computed",
		log.FieldMonth, month,
		log.FieldYear, year,
		log.FieldCount, due,
		log.FieldAmount, core.FormatAmount(total))
	return total, nil
}

// AverageMonthlyBillsForYear returns the yearly projection of all active
// bills divided by twelve.
func (s *ExpectedBillService) AverageMonthlyBillsForYear(ctx context.Context, year int) (decimal.Decimal, error) {
	const op = log.OpAverageMonthlyBills
	period := core.Period{Year: year}
	if err := core.ValidateYear(year); err != nil {
		return decimal.Zero, core.NewValidationError(period, op, err)
	}

	bills, err := s.bills.ActiveBills(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch bills", log.FieldOperation, op, log.FieldYear, year, log.FieldError, err)
		return decimal.Zero, core.NewFetchError(period, op, err)
	}

	total := decimal.Zero
	for _, bill := range bills {
		if !bill.Active {
			continue
		}
		s.warnUnknownFrequency(ctx, bill)
		amount, err := YearlyOccurrenceAmount(bill, year)
		if err != nil {
			return decimal.Zero, core.NewCalculationError(period, op, "malformed bill amount", err)
		}
		total = total.Add(amount)
	}

	return total.Div(monthsPerYear), nil
}

func (s *ExpectedBillService) warnUnknownFrequency(ctx context.Context, bill core.Bill) {
	if _, err := GetRecurrenceRule(bill.Frequency); err != nil {
		s.logger.WarnContext(ctx, "Skipping bill with unknown frequency",
			log.FieldBillID, bill.ID,
			log.FieldBillName, bill.Name,
			log.FieldFrequency, string(bill.Frequency))
	}
}
