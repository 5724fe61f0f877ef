package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finreport/internal/core"
)

// ReportMessage carries a finished monthly report to downstream consumers.
// Amounts are decimal strings with two places.
type ReportMessage struct {
	ID                    string            `json:"id"`
	Year                  int               `json:"year"`
	Month                 int               `json:"month"`
	GeneratedAt           time.Time         `json:"generated_at"`
	ExpectedBills         string            `json:"expected_bills"`
	AverageMonthlyBills   string            `json:"average_monthly_bills"`
	PaycheckSurplus       string            `json:"paycheck_surplus"`
	BudgetLimit           string            `json:"budget_limit"`
	BudgetSpent           string            `json:"budget_spent"`
	BudgetRemaining       string            `json:"budget_remaining"`
	UnbudgetedTotal       string            `json:"unbudgeted_total"`
	UnbudgetedCount       int               `json:"unbudgeted_count"`
	PendingCategorization int               `json:"pending_categorization"`
	Errors                map[string]string `json:"errors,omitempty"`
	Timestamp             time.Time         `json:"timestamp"`
}

// NewReportMessage flattens r into a message with a fresh id.
func NewReportMessage(r core.MonthlyReport) *ReportMessage {
	return &ReportMessage{
		ID:                    uuid.NewString(),
		Year:                  r.Period.Year,
		Month:                 r.Period.Month,
		GeneratedAt:           r.GeneratedAt,
		ExpectedBills:         core.FormatAmount(r.ExpectedBills),
		AverageMonthlyBills:   core.FormatAmount(r.AverageMonthlyBills),
		PaycheckSurplus:       core.FormatAmount(r.PaycheckSurplus),
		BudgetLimit:           core.FormatAmount(r.Budgets.TotalLimit),
		BudgetSpent:           core.FormatAmount(r.Budgets.TotalSpent),
		BudgetRemaining:       core.FormatAmount(r.Budgets.TotalRemaining),
		UnbudgetedTotal:       core.FormatAmount(r.Unbudgeted.Total),
		UnbudgetedCount:       r.Unbudgeted.Count,
		PendingCategorization: r.PendingCategorization,
		Errors:                r.Errors,
		Timestamp:             time.Now(),
	}
}

// Period returns the month the report covers.
func (m *ReportMessage) Period() core.Period {
	return core.NewPeriod(m.Month, m.Year)
}

// Report rebuilds the report totals carried by the message. Per-budget
// lines and transaction lists are not part of the message.
func (m *ReportMessage) Report() (core.MonthlyReport, error) {
	r := core.MonthlyReport{
		Period:                m.Period(),
		GeneratedAt:           m.GeneratedAt,
		PendingCategorization: m.PendingCategorization,
		Errors:                m.Errors,
	}
	if err := r.Period.Validate(); err != nil {
		return core.MonthlyReport{}, err
	}
	r.Unbudgeted.Count = m.UnbudgetedCount

	fields := []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"expected_bills", m.ExpectedBills, &r.ExpectedBills},
		{"average_monthly_bills", m.AverageMonthlyBills, &r.AverageMonthlyBills},
		{"paycheck_surplus", m.PaycheckSurplus, &r.PaycheckSurplus},
		{"budget_limit", m.BudgetLimit, &r.Budgets.TotalLimit},
		{"budget_spent", m.BudgetSpent, &r.Budgets.TotalSpent},
		{"budget_remaining", m.BudgetRemaining, &r.Budgets.TotalRemaining},
		{"unbudgeted_total", m.UnbudgetedTotal, &r.Unbudgeted.Total},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		d, err := core.ParseAmount(f.src)
		if err != nil {
			return core.MonthlyReport{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return r, nil
}

func (m *ReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportMessageFromJSON(data []byte) (*ReportMessage, error) {
	var msg ReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
