package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Bill struct {
	ID        string
	Name      string
	AmountMin string
	AmountMax string
	StartDate string
	EndDate   sql.NullString
	Frequency string
	Skip      int64
	Active    bool
}

type Transaction struct {
	JournalID            string
	Description          string
	Amount               string
	Date                 string
	Type                 string
	Tags                 string
	CategoryID           string
	CategoryName         string
	BudgetID             string
	BudgetName           string
	BillID               string
	SubscriptionID       string
	DestinationAccountID string
}

type BudgetLimit struct {
	BudgetID string
	Name     string
	Amount   string
	Year     int64
	Month    int64
}

type Exclusion struct {
	ID          int64
	Description string
	Amount      string
}

const upsertBill = `
INSERT INTO bills (id, name, amount_min, amount_max, start_date, end_date, frequency, skip, active, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    amount_min = excluded.amount_min,
    amount_max = excluded.amount_max,
    start_date = excluded.start_date,
    end_date = excluded.end_date,
    frequency = excluded.frequency,
    skip = excluded.skip,
    active = excluded.active,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertBill(ctx context.Context, b Bill) error {
	_, err := q.db.ExecContext(ctx, upsertBill,
		b.ID, b.Name, b.AmountMin, b.AmountMax, b.StartDate, b.EndDate, b.Frequency, b.Skip, b.Active)
	return err
}

const listActiveBills = `
SELECT id, name, amount_min, amount_max, start_date, end_date, frequency, skip, active
FROM bills
WHERE active = 1
ORDER BY name, id
`

func (q *Queries) ListActiveBills(ctx context.Context) ([]Bill, error) {
	rows, err := q.db.QueryContext(ctx, listActiveBills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Bill
	for rows.Next() {
		var i Bill
		if err := rows.Scan(&i.ID, &i.Name, &i.AmountMin, &i.AmountMax, &i.StartDate, &i.EndDate, &i.Frequency, &i.Skip, &i.Active); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertTransaction = `
INSERT INTO transactions (journal_id, description, amount, date, type, tags, category_id, category_name,
    budget_id, budget_name, bill_id, subscription_id, destination_account_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(journal_id) DO UPDATE SET
    description = excluded.description,
    amount = excluded.amount,
    date = excluded.date,
    type = excluded.type,
    tags = excluded.tags,
    category_id = excluded.category_id,
    category_name = excluded.category_name,
    budget_id = excluded.budget_id,
    budget_name = excluded.budget_name,
    bill_id = excluded.bill_id,
    subscription_id = excluded.subscription_id,
    destination_account_id = excluded.destination_account_id
`

func (q *Queries) UpsertTransaction(ctx context.Context, t Transaction) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction,
		t.JournalID, t.Description, t.Amount, t.Date, t.Type, t.Tags, t.CategoryID, t.CategoryName,
		t.BudgetID, t.BudgetName, t.BillID, t.SubscriptionID, t.DestinationAccountID)
	return err
}

const listTransactionsBetween = `
SELECT journal_id, description, amount, date, type, tags, category_id, category_name,
    budget_id, budget_name, bill_id, subscription_id, destination_account_id
FROM transactions
WHERE date >= ? AND date < ?
ORDER BY date, journal_id
`

// ListTransactionsBetween returns transactions dated in [from, to), both
// formatted as YYYY-MM-DD.
func (q *Queries) ListTransactionsBetween(ctx context.Context, from, to string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.JournalID, &i.Description, &i.Amount, &i.Date, &i.Type, &i.Tags,
			&i.CategoryID, &i.CategoryName, &i.BudgetID, &i.BudgetName, &i.BillID, &i.SubscriptionID,
			&i.DestinationAccountID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertBudgetLimit = `
INSERT INTO budget_limits (budget_id, name, amount, year, month)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(budget_id, year, month) DO UPDATE SET
    name = excluded.name,
    amount = excluded.amount
`

func (q *Queries) UpsertBudgetLimit(ctx context.Context, l BudgetLimit) error {
	_, err := q.db.ExecContext(ctx, upsertBudgetLimit, l.BudgetID, l.Name, l.Amount, l.Year, l.Month)
	return err
}

const listBudgetLimits = `
SELECT budget_id, name, amount, year, month
FROM budget_limits
WHERE year = ? AND month = ?
ORDER BY name, budget_id
`

func (q *Queries) ListBudgetLimits(ctx context.Context, year, month int64) ([]BudgetLimit, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetLimits, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetLimit
	for rows.Next() {
		var i BudgetLimit
		if err := rows.Scan(&i.BudgetID, &i.Name, &i.Amount, &i.Year, &i.Month); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertExclusion = `
INSERT INTO exclusions (description, amount) VALUES (?, ?)
RETURNING id
`

func (q *Queries) InsertExclusion(ctx context.Context, description, amount string) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertExclusion, description, amount)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listExclusions = `
SELECT id, description, amount FROM exclusions ORDER BY id
`

func (q *Queries) ListExclusions(ctx context.Context) ([]Exclusion, error) {
	rows, err := q.db.QueryContext(ctx, listExclusions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Exclusion
	for rows.Next() {
		var i Exclusion
		if err := rows.Scan(&i.ID, &i.Description, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
