package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"finreport/internal/core"
	"finreport/internal/ledger"
)

// Seed file names looked up by NewFromFiles.
const (
	BillsFile        = "bills.json"
	TransactionsFile = "transactions.json"
	BudgetsFile      = "budgets.json"
	ExclusionsFile   = "exclusions.json"
)

var (
	_ ledger.TransactionRepository = (*Store)(nil)
	_ ledger.BillRepository        = (*Store)(nil)
	_ ledger.BudgetRepository      = (*Store)(nil)
	_ ledger.ExclusionLookup       = (*Store)(nil)
)

// Store keeps a ledger snapshot in memory.
type Store struct {
	mu           sync.Mutex
	bills        []core.Bill
	transactions []core.Transaction
	budgets      []core.BudgetLimit
	exclusions   []core.Exclusion
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds a store from the JSON files in base. Missing files leave
// the matching collection empty; malformed files are an error.
func NewFromFiles(base string) (*Store, error) {
	s := New()

	var bills []billRecord
	if err := readJSON(filepath.Join(base, BillsFile), &bills); err != nil {
		return nil, err
	}
	for _, r := range bills {
		b, err := r.toCore()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", BillsFile, err)
		}
		s.AddBill(b)
	}

	var txs []transactionRecord
	if err := readJSON(filepath.Join(base, TransactionsFile), &txs); err != nil {
		return nil, err
	}
	for _, r := range txs {
		tx, err := r.toCore()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TransactionsFile, err)
		}
		s.AddTransaction(tx)
	}

	var budgets []budgetRecord
	if err := readJSON(filepath.Join(base, BudgetsFile), &budgets); err != nil {
		return nil, err
	}
	for _, r := range budgets {
		s.AddBudgetLimit(r.toCore())
	}

	var exclusions []exclusionRecord
	if err := readJSON(filepath.Join(base, ExclusionsFile), &exclusions); err != nil {
		return nil, err
	}
	for _, r := range exclusions {
		s.AddExclusion(core.Exclusion{Description: r.Description, Amount: r.Amount})
	}

	return s, nil
}

func (s *Store) AddBill(b core.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append(s.bills, b)
}

func (s *Store) AddTransaction(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, tx)
}

func (s *Store) AddBudgetLimit(l core.BudgetLimit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append(s.budgets, l)
}

func (s *Store) AddExclusion(e core.Exclusion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exclusions = append(s.exclusions, e)
}

// ActiveBills implements ledger.BillRepository.
func (s *Store) ActiveBills(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Bill, 0, len(s.bills))
	for _, b := range s.bills {
		if b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

// TransactionsForPeriod implements ledger.TransactionRepository.
func (s *Store) TransactionsForPeriod(_ context.Context, period core.Period) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.transactions {
		if period.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// BudgetLimits implements ledger.BudgetRepository.
func (s *Store) BudgetLimits(_ context.Context, period core.Period) ([]core.BudgetLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.BudgetLimit
	for _, l := range s.budgets {
		if l.Period == period {
			out = append(out, l)
		}
	}
	return out, nil
}

// IsExcluded implements ledger.ExclusionLookup.
func (s *Store) IsExcluded(_ context.Context, description, amount string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.exclusions {
		if e.Matches(description, amount) {
			return true, nil
		}
	}
	return false, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
