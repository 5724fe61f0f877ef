// Package storage is the SQLite ledger backend. It implements the ledger
// ports on top of a local database kept in sync with the upstream ledger.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finreport/internal/core"
	"finreport/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Default(log.ComponentStorage)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ActiveBills implements ledger.BillRepository.
func (r *SQLiteRepository) ActiveBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.queries.ListActiveBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active bills: %w", err)
	}

	bills := make([]core.Bill, 0, len(rows))
	for _, row := range rows {
		b, err := billFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", row.ID, err)
		}
		bills = append(bills, b)
	}

	r.logger.DebugContext(ctx, "Loaded active bills", log.FieldOperation, log.OpFetchBills, log.FieldCount, len(bills))
	return bills, nil
}

// TransactionsForPeriod implements ledger.TransactionRepository.
func (r *SQLiteRepository) TransactionsForPeriod(ctx context.Context, period core.Period) ([]core.Transaction, error) {
	from := period.Start().Format(time.DateOnly)
	to := period.End().Format(time.DateOnly)
	rows, err := r.queries.ListTransactionsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", period, err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := transactionFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", row.JournalID, err)
		}
		txs = append(txs, tx)
	}

	r.logger.DebugContext(ctx, "Loaded transactions",
		log.FieldOperation, log.OpFetchTransactions,
		log.FieldMonth, period.Month,
		log.FieldYear, period.Year,
		log.FieldCount, len(txs))
	return txs, nil
}

// BudgetLimits implements ledger.BudgetRepository.
func (r *SQLiteRepository) BudgetLimits(ctx context.Context, period core.Period) ([]core.BudgetLimit, error) {
	rows, err := r.queries.ListBudgetLimits(ctx, int64(period.Year), int64(period.Month))
	if err != nil {
		return nil, fmt.Errorf("list budget limits for %s: %w", period, err)
	}
	limits := make([]core.BudgetLimit, len(rows))
	for i, row := range rows {
		limits[i] = core.BudgetLimit{
			BudgetID: row.BudgetID,
			Name:     row.Name,
			Amount:   row.Amount,
			Period:   core.NewPeriod(int(row.Month), int(row.Year)),
		}
	}
	return limits, nil
}

// IsExcluded implements ledger.ExclusionLookup.
func (r *SQLiteRepository) IsExcluded(ctx context.Context, description, amount string) (bool, error) {
	rows, err := r.queries.ListExclusions(ctx)
	if err != nil {
		return false, fmt.Errorf("list exclusions: %w", err)
	}
	for _, row := range rows {
		if (core.Exclusion{Description: row.Description, Amount: row.Amount}).Matches(description, amount) {
			return true, nil
		}
	}
	return false, nil
}

// SaveBill inserts or replaces a bill.
func (r *SQLiteRepository) SaveBill(ctx context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	row := Bill{
		ID:        b.ID,
		Name:      b.Name,
		AmountMin: b.AmountMin,
		AmountMax: b.AmountMax,
		StartDate: b.StartDate.String(),
		Frequency: string(b.Frequency),
		Skip:      int64(b.Skip),
		Active:    b.Active,
	}
	if !b.EndDate.IsEmpty() {
		row.EndDate = sql.NullString{String: b.EndDate.String(), Valid: true}
	}
	if err := r.queries.UpsertBill(ctx, row); err != nil {
		return fmt.Errorf("save bill %s: %w", b.ID, err)
	}
	r.logger.InfoContext(ctx, "Bill saved", log.FieldBillID, b.ID, log.FieldBillName, b.Name)
	return nil
}

// SaveTransaction inserts or replaces a transaction by journal id.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	if tx.JournalID == "" {
		return fmt.Errorf("save transaction: missing journal id")
	}
	tags, err := json.Marshal(nonNil(tx.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	err = r.queries.UpsertTransaction(ctx, Transaction{
		JournalID:            tx.JournalID,
		Description:          tx.Description,
		Amount:               tx.Amount,
		Date:                 tx.Date.String(),
		Type:                 string(tx.Type),
		Tags:                 string(tags),
		CategoryID:           tx.CategoryID,
		CategoryName:         tx.CategoryName,
		BudgetID:             tx.BudgetID,
		BudgetName:           tx.BudgetName,
		BillID:               tx.BillID,
		SubscriptionID:       tx.SubscriptionID,
		DestinationAccountID: tx.DestinationAccountID,
	})
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", tx.JournalID, err)
	}
	return nil
}

// SaveBudgetLimit inserts or replaces the limit of a budget for its period.
func (r *SQLiteRepository) SaveBudgetLimit(ctx context.Context, l core.BudgetLimit) error {
	if err := l.Period.Validate(); err != nil {
		return err
	}
	if _, err := core.ParseAmount(l.Amount); err != nil {
		return fmt.Errorf("budget %s limit: %w", l.BudgetID, err)
	}
	err := r.queries.UpsertBudgetLimit(ctx, BudgetLimit{
		BudgetID: l.BudgetID,
		Name:     l.Name,
		Amount:   l.Amount,
		Year:     int64(l.Period.Year),
		Month:    int64(l.Period.Month),
	})
	if err != nil {
		return fmt.Errorf("save budget limit %s: %w", l.BudgetID, err)
	}
	return nil
}

// AddExclusion appends a record to the exclusion list.
func (r *SQLiteRepository) AddExclusion(ctx context.Context, e core.Exclusion) (int64, error) {
	id, err := r.queries.InsertExclusion(ctx, e.Description, e.Amount)
	if err != nil {
		return 0, fmt.Errorf("add exclusion: %w", err)
	}
	return id, nil
}

func billFromRow(row Bill) (core.Bill, error) {
	start, err := core.ParseDate(row.StartDate)
	if err != nil {
		return core.Bill{}, fmt.Errorf("start date: %w", err)
	}
	b := core.Bill{
		ID:        row.ID,
		Name:      row.Name,
		AmountMin: row.AmountMin,
		AmountMax: row.AmountMax,
		StartDate: start,
		Frequency: core.Frequency(row.Frequency),
		Skip:      int(row.Skip),
		Active:    row.Active,
	}
	if row.EndDate.Valid && row.EndDate.String != "" {
		end, err := core.ParseDate(row.EndDate.String)
		if err != nil {
			return core.Bill{}, fmt.Errorf("end date: %w", err)
		}
		b.EndDate = end
	}
	return b, nil
}

func transactionFromRow(row Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", err)
	}
	var tags []string
	if err := json.Unmarshal([]byte(row.Tags), &tags); err != nil {
		return core.Transaction{}, fmt.Errorf("decode tags: %w", err)
	}
	return core.Transaction{
		JournalID:            row.JournalID,
		Description:          row.Description,
		Amount:               row.Amount,
		Date:                 date,
		Type:                 core.TransactionType(row.Type),
		Tags:                 tags,
		CategoryID:           row.CategoryID,
		CategoryName:         row.CategoryName,
		BudgetID:             row.BudgetID,
		BudgetName:           row.BudgetName,
		BillID:               row.BillID,
		SubscriptionID:       row.SubscriptionID,
		DestinationAccountID: row.DestinationAccountID,
	}, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
