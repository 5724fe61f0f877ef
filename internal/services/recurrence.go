// Package services provides the bill and transaction services of the engine.
//
// This file implements the Strategy Pattern for bill recurrence. Each
// frequency (weekly, monthly, quarterly, half-year, yearly) has a rule that
// decides whether the bill recurs in a month and how many times it occurs in
// a year.
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finreport/internal/core"
)

// RecurrenceRule is the strategy interface for a bill frequency.
type RecurrenceRule interface {
	// RecursIn reports whether a bill that started monthsElapsed months
	// before the target month is due in it. It is only consulted after the
	// start/end boundaries have been checked.
	RecursIn(bill core.Bill, monthsElapsed int) bool

	// OccurrencesPerYear returns the steady-state number of occurrences in a
	// calendar year.
	OccurrencesPerYear(bill core.Bill) decimal.Decimal
}

// WeeklyRule recurs within every month.
type WeeklyRule struct{}

func (WeeklyRule) RecursIn(core.Bill, int) bool { return true }

func (WeeklyRule) OccurrencesPerYear(core.Bill) decimal.Decimal {
	return decimal.NewFromInt(52)
}

// MonthlyRule recurs every skip+1 months.
type MonthlyRule struct{}

func (MonthlyRule) RecursIn(bill core.Bill, monthsElapsed int) bool {
	return monthsElapsed >= 0 && monthsElapsed%interval(bill) == 0
}

func (MonthlyRule) OccurrencesPerYear(bill core.Bill) decimal.Decimal {
	return decimal.NewFromInt(12).Div(decimal.NewFromInt(int64(interval(bill))))
}

// EveryNMonthsRule recurs every N months counted from the start month.
// Quarterly and half-year bills use it.
type EveryNMonthsRule struct {
	Months int
}

func (r EveryNMonthsRule) RecursIn(_ core.Bill, monthsElapsed int) bool {
	return monthsElapsed >= 0 && monthsElapsed%r.Months == 0
}

func (r EveryNMonthsRule) OccurrencesPerYear(core.Bill) decimal.Decimal {
	return decimal.NewFromInt(int64(12 / r.Months))
}

// YearlyRule recurs in the start month of every year.
type YearlyRule struct{}

func (YearlyRule) RecursIn(_ core.Bill, monthsElapsed int) bool {
	return monthsElapsed >= 0 && monthsElapsed%12 == 0
}

func (YearlyRule) OccurrencesPerYear(core.Bill) decimal.Decimal {
	return decimal.NewFromInt(1)
}

// interval is the month step of a monthly bill; negative skips count as 0.
func interval(bill core.Bill) int {
	if bill.Skip < 0 {
		return 1
	}
	return bill.Skip + 1
}

var (
	rulesMu         sync.RWMutex
	recurrenceRules = map[core.Frequency]RecurrenceRule{
		core.Weekly:    WeeklyRule{},
		core.Monthly:   MonthlyRule{},
		core.Quarterly: EveryNMonthsRule{Months: 3},
		core.HalfYear:  EveryNMonthsRule{Months: 6},
		core.Yearly:    YearlyRule{},
	}
)

// GetRecurrenceRule returns the rule for a frequency.
// Returns an error if the frequency is not supported.
func GetRecurrenceRule(frequency core.Frequency) (RecurrenceRule, error) {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	rule, ok := recurrenceRules[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown bill frequency: %q", frequency)
	}
	return rule, nil
}

// RegisterRecurrenceRule registers a rule for a new frequency or replaces an
// existing one.
func RegisterRecurrenceRule(frequency core.Frequency, rule RecurrenceRule) {
	rulesMu.Lock()
	defer rulesMu.Unlock()
	recurrenceRules[frequency] = rule
}

// IsDueInMonth reports whether bill has an occurrence in month/year.
// All comparisons happen in UTC. Unknown frequencies are never due; callers
// that care should check GetRecurrenceRule and log.
func IsDueInMonth(bill core.Bill, month, year int) bool {
	period := core.NewPeriod(month, year)
	start := bill.StartDate.UTC()

	// Lapsed before the month began.
	if !bill.EndDate.IsZero() && bill.EndDate.UTC().Before(period.Start()) {
		return false
	}
	// Not started by the end of the month.
	if start.After(period.LastDay()) {
		return false
	}
	if period.Contains(bill.StartDate) {
		return true
	}

	rule, err := GetRecurrenceRule(bill.Frequency)
	if err != nil {
		return false
	}
	return rule.RecursIn(bill, monthsBetween(start, period))
}

// YearlyOccurrenceAmount projects what bill costs over year: AmountMax times
// the frequency's occurrences per year. The projection always covers a full
// year, even for bills starting part-way through it. Bills that start after
// the year or end before it cost nothing. Unknown frequencies project to 0.
func YearlyOccurrenceAmount(bill core.Bill, year int) (decimal.Decimal, error) {
	if bill.StartDate.Year() > year {
		return decimal.Zero, nil
	}
	if !bill.EndDate.IsZero() && bill.EndDate.Year() < year {
		return decimal.Zero, nil
	}

	rule, err := GetRecurrenceRule(bill.Frequency)
	if err != nil {
		return decimal.Zero, nil
	}

	amount, err := bill.MaxAmount()
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rule.OccurrencesPerYear(bill)), nil
}

func monthsBetween(start time.Time, target core.Period) int {
	return (target.Year-start.Year())*12 + (target.Month - int(start.Month()))
}
