package storage

import (
	"context"
	"path/filepath"
	"testing"

	"finreport/internal/core"
	"finreport/internal/log"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "ledger.db"), log.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsApplied(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	repo, err := NewSQLiteRepository(dbPath, log.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	defer repo.Close()

	version, dirty, err := SchemaVersion(dbPath)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("got version %d dirty %v, want 1 clean", version, dirty)
	}
	if err := RunMigrations(dbPath); err != nil {
		t.Errorf("second RunMigrations() error = %v", err)
	}
}

func TestBillsRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bills := []core.Bill{
		{ID: "1", Name: "Rent", AmountMin: "900", AmountMax: "900", StartDate: core.NewDate(2024, 1, 1), Frequency: core.Monthly, Active: true},
		{ID: "2", Name: "Gym", AmountMin: "30", AmountMax: "35.50", StartDate: core.NewDate(2024, 2, 15), EndDate: core.NewDate(2024, 12, 31), Frequency: core.Monthly, Skip: 1, Active: true},
		{ID: "3", Name: "Old phone", AmountMin: "20", AmountMax: "20", StartDate: core.NewDate(2020, 1, 1), Frequency: core.Monthly, Active: false},
	}
	for _, b := range bills {
		if err := repo.SaveBill(ctx, b); err != nil {
			t.Fatalf("SaveBill(%s) error = %v", b.Name, err)
		}
	}

	active, err := repo.ActiveBills(ctx)
	if err != nil {
		t.Fatalf("ActiveBills() error = %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("got %d active bills, want 2", len(active))
	}
	gym := active[0]
	if gym.Name != "Gym" || gym.Skip != 1 || gym.EndDate.String() != "2024-12-31" || gym.AmountMax != "35.50" {
		t.Errorf("unexpected bill: %+v", gym)
	}
	if !active[1].EndDate.IsEmpty() {
		t.Errorf("open-ended bill got end date %s", active[1].EndDate)
	}

	if err := repo.SaveBill(ctx, core.Bill{ID: "4", Name: "", AmountMax: "1", StartDate: core.NewDate(2024, 1, 1)}); err == nil {
		t.Error("expected invalid bill to be rejected")
	}
}

func TestTransactionsForPeriod(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{JournalID: "a", Amount: "10", Date: core.NewDate(2024, 2, 29), Type: core.Withdrawal, Tags: []string{"food"}},
		{JournalID: "b", Amount: "20", Date: core.NewDate(2024, 3, 1), Type: core.Withdrawal},
		{JournalID: "c", Amount: "30", Date: core.NewDate(2024, 3, 31), Type: core.Deposit, Tags: []string{"paycheck", "work"}},
		{JournalID: "d", Amount: "40", Date: core.NewDate(2024, 4, 1), Type: core.Withdrawal},
	}
	for _, tx := range txs {
		if err := repo.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction(%s) error = %v", tx.JournalID, err)
		}
	}

	got, err := repo.TransactionsForPeriod(ctx, core.NewPeriod(3, 2024))
	if err != nil {
		t.Fatalf("TransactionsForPeriod() error = %v", err)
	}
	if len(got) != 2 || got[0].JournalID != "b" || got[1].JournalID != "c" {
		t.Fatalf("unexpected transactions: %+v", got)
	}
	if !got[1].HasTag("paycheck") || len(got[0].Tags) != 0 {
		t.Errorf("tags not preserved: %v / %v", got[0].Tags, got[1].Tags)
	}

	if err := repo.SaveTransaction(ctx, core.Transaction{Amount: "1"}); err == nil {
		t.Error("expected missing journal id to be rejected")
	}
}

func TestBudgetLimitsAndExclusions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	march := core.NewPeriod(3, 2024)

	if err := repo.SaveBudgetLimit(ctx, core.BudgetLimit{BudgetID: "g", Name: "Groceries", Amount: "400", Period: march}); err != nil {
		t.Fatalf("SaveBudgetLimit() error = %v", err)
	}
	if err := repo.SaveBudgetLimit(ctx, core.BudgetLimit{BudgetID: "g", Name: "Groceries", Amount: "450", Period: march}); err != nil {
		t.Fatalf("SaveBudgetLimit() update error = %v", err)
	}
	if err := repo.SaveBudgetLimit(ctx, core.BudgetLimit{BudgetID: "g", Amount: "abc", Period: march}); err == nil {
		t.Error("expected malformed limit to be rejected")
	}

	limits, err := repo.BudgetLimits(ctx, march)
	if err != nil {
		t.Fatalf("BudgetLimits() error = %v", err)
	}
	if len(limits) != 1 || limits[0].Amount != "450" || limits[0].Period != march {
		t.Errorf("unexpected limits: %+v", limits)
	}
	if other, _ := repo.BudgetLimits(ctx, core.NewPeriod(4, 2024)); len(other) != 0 {
		t.Errorf("limits leaked into April: %+v", other)
	}

	if _, err := repo.AddExclusion(ctx, core.Exclusion{Description: "Savings Sweep"}); err != nil {
		t.Fatalf("AddExclusion() error = %v", err)
	}
	if _, err := repo.AddExclusion(ctx, core.Exclusion{Amount: "-99.00"}); err != nil {
		t.Fatalf("AddExclusion() error = %v", err)
	}

	tests := []struct {
		desc, amount string
		want         bool
	}{
		{"savings sweep", "10", true},
		{"Coffee", "99", true},
		{"Coffee", "98", false},
	}
	for _, tt := range tests {
		got, err := repo.IsExcluded(ctx, tt.desc, tt.amount)
		if err != nil {
			t.Fatalf("IsExcluded() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("IsExcluded(%q, %q) = %v, want %v", tt.desc, tt.amount, got, tt.want)
		}
	}
}
