package memory

import (
	"fmt"

	"finreport/internal/core"
)

// JSON shapes of the seed files. Field names follow the ledger export.
type (
	billRecord struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		AmountMin  string `json:"amount_min"`
		AmountMax  string `json:"amount_max"`
		Date       string `json:"date"`
		EndDate    string `json:"end_date"`
		RepeatFreq string `json:"repeat_freq"`
		Skip       int    `json:"skip"`
		Active     bool   `json:"active"`
	}

	transactionRecord struct {
		JournalID            string   `json:"transaction_journal_id"`
		Description          string   `json:"description"`
		Amount               string   `json:"amount"`
		Date                 string   `json:"date"`
		Type                 string   `json:"type"`
		Tags                 []string `json:"tags"`
		CategoryID           string   `json:"category_id"`
		CategoryName         string   `json:"category_name"`
		BudgetID             string   `json:"budget_id"`
		BudgetName           string   `json:"budget_name"`
		BillID               string   `json:"bill_id"`
		SubscriptionID       string   `json:"subscription_id"`
		DestinationAccountID string   `json:"destination_id"`
	}

	budgetRecord struct {
		BudgetID string `json:"budget_id"`
		Name     string `json:"name"`
		Amount   string `json:"amount"`
		Month    int    `json:"month"`
		Year     int    `json:"year"`
	}

	exclusionRecord struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
	}
)

func (r billRecord) toCore() (core.Bill, error) {
	start, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill %q start: %w", r.Name, err)
	}
	end, err := core.ParseDate(r.EndDate)
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill %q end: %w", r.Name, err)
	}
	return core.Bill{
		ID:        r.ID,
		Name:      r.Name,
		AmountMin: r.AmountMin,
		AmountMax: r.AmountMax,
		StartDate: start,
		EndDate:   end,
		Frequency: core.Frequency(r.RepeatFreq),
		Skip:      r.Skip,
		Active:    r.Active,
	}, nil
}

func (r transactionRecord) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %q: %w", r.JournalID, err)
	}
	return core.Transaction{
		JournalID:            r.JournalID,
		Description:          r.Description,
		Amount:               r.Amount,
		Date:                 date,
		Type:                 core.TransactionType(r.Type),
		Tags:                 r.Tags,
		CategoryID:           r.CategoryID,
		CategoryName:         r.CategoryName,
		BudgetID:             r.BudgetID,
		BudgetName:           r.BudgetName,
		BillID:               r.BillID,
		SubscriptionID:       r.SubscriptionID,
		DestinationAccountID: r.DestinationAccountID,
	}, nil
}

func (r budgetRecord) toCore() core.BudgetLimit {
	return core.BudgetLimit{
		BudgetID: r.BudgetID,
		Name:     r.Name,
		Amount:   r.Amount,
		Period:   core.NewPeriod(r.Month, r.Year),
	}
}
