package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	HalfYear  Frequency = "half-year"
	Yearly    Frequency = "yearly"
)

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
	Transfer   TransactionType = "transfer"
)

type (
	Frequency       string
	TransactionType string

	// Date is a calendar date normalized to midnight UTC.
	Date struct {
		time.Time
	}

	// Period is the (month, year) unit of analysis.
	Period struct {
		Month int
		Year  int
	}

	Bill struct {
		ID        string
		Name      string
		AmountMin string
		AmountMax string
		StartDate Date
		EndDate   Date // zero when the bill is open-ended; inclusive otherwise
		Frequency Frequency
		Skip      int // monthly only: 1 means every other month
		Active    bool
	}

	Transaction struct {
		JournalID            string
		Description          string
		Amount               string
		Date                 Date
		Type                 TransactionType
		Tags                 []string
		CategoryID           string
		CategoryName         string
		BudgetID             string
		BudgetName           string
		BillID               string
		SubscriptionID       string
		DestinationAccountID string
	}

	// ClassificationConfig carries the tag names and account ids the
	// classifier matches against. It is never mutated after construction.
	ClassificationConfig struct {
		NoNameExpenseAccountID string
		DisposableIncomeTag    string
		BillsTag               string
		PaycheckTag            string
	}

	// Suggestion is a proposed categorization for a single journal.
	Suggestion struct {
		CategoryName string
		BudgetID     string
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty bill name")
	ErrInvalidSkip   = errors.New("invalid skip interval")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a date-only value ("2024-05-31") or an RFC 3339 timestamp.
// Timestamps are converted to UTC before the time of day is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Date{Time: t.UTC()}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.UTC().Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.UTC().Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.UTC().Year()
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(time.DateOnly)
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// NewPeriod builds a period without validating it.
func NewPeriod(month, year int) Period {
	return Period{Month: month, Year: year}
}

// PeriodOf returns the period containing t (in UTC).
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: %d (must be 1-12)", ErrInvalidMonth, p.Month)
	}
	return ValidateYear(p.Year)
}

// ValidateYear checks that year is a positive four digit year.
func ValidateYear(year int) error {
	if year < 1000 || year > 9999 {
		return fmt.Errorf("%w: %d (must be a 4-digit year)", ErrInvalidYear, year)
	}
	return nil
}

// Start returns midnight UTC of the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC of the first day of the following period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// LastDay returns midnight UTC of the last day of the period.
func (p Period) LastDay() time.Time {
	return p.End().AddDate(0, 0, -1)
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	t := d.UTC()
	return !t.Before(p.Start()) && t.Before(p.End())
}

// Previous returns the period immediately before p.
func (p Period) Previous() Period {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MaxAmount parses AmountMax. Bills without a finite, non-negative maximum
// cannot take part in any projection.
func (b Bill) MaxAmount() (decimal.Decimal, error) {
	amount, err := ParseAmount(b.AmountMax)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bill %q amount_max %q: %w", b.Name, b.AmountMax, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("bill %q amount_max %q: %w", b.Name, b.AmountMax, ErrInvalidAmount)
	}
	return amount, nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if err := b.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate.Time) {
		return errors.New("end date must not be before start date")
	}
	if b.Skip < 0 {
		return ErrInvalidSkip
	}
	if _, err := b.MaxAmount(); err != nil {
		return err
	}
	return nil
}

// HasTag reports whether the transaction carries tag. A nil tag set has no tags.
func (t Transaction) HasTag(tag string) bool {
	return ContainsTag(t.Tags, tag)
}

// ContainsTag is nil-safe and ignores empty tag names.
func ContainsTag(tags []string, tag string) bool {
	if tag == "" {
		return false
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
