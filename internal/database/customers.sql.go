package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, name, whatsapp, address, birthday_person_name, birthday_person_age, last_order_date, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Whatsapp,
		&c.Address,
		&c.BirthdayPersonName,
		&c.BirthdayPersonAge,
		&c.LastOrderDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

const getCustomerByName = `
SELECT ` + customerColumns + `
FROM customers
WHERE lower(name) = lower(trim($1))
`

// GetCustomerByName is the directory's case-insensitive exact-name lookup.
// A unique index on lower(name) guarantees at most one row.
func (q *Queries) GetCustomerByName(ctx context.Context, name string) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, getCustomerByName, name))
}

const getCustomer = `
SELECT ` + customerColumns + `
FROM customers
WHERE id = $1
`

func (q *Queries) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, getCustomer, id))
}

const listCustomers = `
SELECT ` + customerColumns + `
FROM customers
WHERE ($3::text IS NULL OR name ILIKE '%' || $3 || '%' OR whatsapp ILIKE '%' || $3 || '%')
ORDER BY name
LIMIT $1 OFFSET $2
`

type ListCustomersParams struct {
	Limit  int32
	Offset int32
	Search pgtype.Text
}

func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers, arg.Limit, arg.Offset, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createCustomer = `
INSERT INTO customers (id, name, whatsapp, address, birthday_person_name, birthday_person_age, last_order_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + customerColumns

type CreateCustomerParams struct {
	ID                 uuid.UUID
	Name               string
	Whatsapp           pgtype.Text
	Address            pgtype.Text
	BirthdayPersonName pgtype.Text
	BirthdayPersonAge  pgtype.Int4
	LastOrderDate      pgtype.Timestamptz
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, createCustomer,
		arg.ID,
		arg.Name,
		arg.Whatsapp,
		arg.Address,
		arg.BirthdayPersonName,
		arg.BirthdayPersonAge,
		arg.LastOrderDate,
	)
	return scanCustomer(row)
}

const updateCustomer = `
UPDATE customers
SET whatsapp = $2,
    address = $3,
    birthday_person_name = $4,
    birthday_person_age = $5,
    last_order_date = $6,
    updated_at = now()
WHERE id = $1
RETURNING ` + customerColumns

type UpdateCustomerParams struct {
	ID                 uuid.UUID
	Whatsapp           pgtype.Text
	Address            pgtype.Text
	BirthdayPersonName pgtype.Text
	BirthdayPersonAge  pgtype.Int4
	LastOrderDate      pgtype.Timestamptz
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, updateCustomer,
		arg.ID,
		arg.Whatsapp,
		arg.Address,
		arg.BirthdayPersonName,
		arg.BirthdayPersonAge,
		arg.LastOrderDate,
	)
	return scanCustomer(row)
}
