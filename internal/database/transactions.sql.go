package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const transactionColumns = `id, order_id, date, type, amount, category, description, created_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (Transaction, error) {
	var t Transaction
	err := row.Scan(
		&t.ID,
		&t.OrderID,
		&t.Date,
		&t.Type,
		&t.Amount,
		&t.Category,
		&t.Description,
		&t.CreatedAt,
	)
	return t, err
}

const getTransactionByOrder = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE order_id = $1
`

// GetTransactionByOrder finds the single auto-synced transaction for an
// order; a partial unique index on order_id guarantees at most one.
func (q *Queries) GetTransactionByOrder(ctx context.Context, orderID uuid.UUID) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransactionByOrder, orderID))
}

const getTransaction = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE id = $1
`

func (q *Queries) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransaction, id))
}

const listTransactions = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE ($3::date IS NULL OR date >= $3)
  AND ($4::date IS NULL OR date <= $4)
  AND ($5::text IS NULL OR type = $5)
  AND ($6::text IS NULL OR category = $6)
ORDER BY date DESC, created_at DESC
LIMIT $1 OFFSET $2
`

type ListTransactionsParams struct {
	Limit     int32
	Offset    int32
	StartDate pgtype.Date
	EndDate   pgtype.Date
	Type      pgtype.Text
	Category  pgtype.Text
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactions, arg.Limit, arg.Offset, arg.StartDate, arg.EndDate, arg.Type, arg.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const createTransaction = `
INSERT INTO transactions (id, order_id, date, type, amount, category, description)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	ID          uuid.UUID
	OrderID     pgtype.UUID
	Date        pgtype.Date
	Type        string
	Amount      pgtype.Numeric
	Category    string
	Description string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRow(ctx, createTransaction,
		arg.ID,
		arg.OrderID,
		arg.Date,
		arg.Type,
		arg.Amount,
		arg.Category,
		arg.Description,
	)
	return scanTransaction(row)
}

const updateTransaction = `
UPDATE transactions
SET date = $2, amount = $3, description = $4
WHERE id = $1
RETURNING ` + transactionColumns

// UpdateTransactionParams overwrites the mutable fields of a synced
// transaction in place, preserving its id.
type UpdateTransactionParams struct {
	ID          uuid.UUID
	Date        pgtype.Date
	Amount      pgtype.Numeric
	Description string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, updateTransaction, arg.ID, arg.Date, arg.Amount, arg.Description))
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = $1
`

func (q *Queries) DeleteTransaction(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteTransactionByOrder = `
DELETE FROM transactions WHERE order_id = $1
`

func (q *Queries) DeleteTransactionByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteTransactionByOrder, orderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getFinancialSummary = `
SELECT
	COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0)  AS income,
	COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0) AS expense
FROM transactions
WHERE ($1::date IS NULL OR date >= $1)
  AND ($2::date IS NULL OR date <= $2)
`

type GetFinancialSummaryParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

type GetFinancialSummaryRow struct {
	Income  pgtype.Numeric
	Expense pgtype.Numeric
}

func (q *Queries) GetFinancialSummary(ctx context.Context, arg GetFinancialSummaryParams) (GetFinancialSummaryRow, error) {
	row := q.db.QueryRow(ctx, getFinancialSummary, arg.StartDate, arg.EndDate)
	var r GetFinancialSummaryRow
	err := row.Scan(&r.Income, &r.Expense)
	return r, err
}
