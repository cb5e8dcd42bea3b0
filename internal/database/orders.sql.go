package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, customer_name, customer_whatsapp, birthday_person_name, birthday_person_age, party_type, theme, due_date, due_time, location, delivery_fee, discount, total_price, status, production_stage, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.CustomerWhatsapp,
		&o.BirthdayPersonName,
		&o.BirthdayPersonAge,
		&o.PartyType,
		&o.Theme,
		&o.DueDate,
		&o.DueTime,
		&o.Location,
		&o.DeliveryFee,
		&o.Discount,
		&o.TotalPrice,
		&o.Status,
		&o.ProductionStage,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

const createOrder = `
INSERT INTO orders (id, customer_name, customer_whatsapp, birthday_person_name, birthday_person_age, party_type, theme, due_date, due_time, location, delivery_fee, discount, total_price, status, production_stage, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	ID                 uuid.UUID
	CustomerName       string
	CustomerWhatsapp   pgtype.Text
	BirthdayPersonName pgtype.Text
	BirthdayPersonAge  pgtype.Int4
	PartyType          pgtype.Text
	Theme              pgtype.Text
	DueDate            pgtype.Date
	DueTime            pgtype.Text
	Location           pgtype.Text
	DeliveryFee        pgtype.Numeric
	Discount           pgtype.Numeric
	TotalPrice         pgtype.Numeric
	Status             string
	ProductionStage    string
	Notes              pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.ID,
		arg.CustomerName,
		arg.CustomerWhatsapp,
		arg.BirthdayPersonName,
		arg.BirthdayPersonAge,
		arg.PartyType,
		arg.Theme,
		arg.DueDate,
		arg.DueTime,
		arg.Location,
		arg.DeliveryFee,
		arg.Discount,
		arg.TotalPrice,
		arg.Status,
		arg.ProductionStage,
		arg.Notes,
	)
	return scanOrder(row)
}

const updateOrder = `
UPDATE orders
SET customer_name = $2,
    customer_whatsapp = $3,
    birthday_person_name = $4,
    birthday_person_age = $5,
    party_type = $6,
    theme = $7,
    due_date = $8,
    due_time = $9,
    location = $10,
    delivery_fee = $11,
    discount = $12,
    total_price = $13,
    status = $14,
    production_stage = $15,
    notes = $16,
    updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderParams struct {
	ID                 uuid.UUID
	CustomerName       string
	CustomerWhatsapp   pgtype.Text
	BirthdayPersonName pgtype.Text
	BirthdayPersonAge  pgtype.Int4
	PartyType          pgtype.Text
	Theme              pgtype.Text
	DueDate            pgtype.Date
	DueTime            pgtype.Text
	Location           pgtype.Text
	DeliveryFee        pgtype.Numeric
	Discount           pgtype.Numeric
	TotalPrice         pgtype.Numeric
	Status             string
	ProductionStage    string
	Notes              pgtype.Text
}

func (q *Queries) UpdateOrder(ctx context.Context, arg UpdateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrder,
		arg.ID,
		arg.CustomerName,
		arg.CustomerWhatsapp,
		arg.BirthdayPersonName,
		arg.BirthdayPersonAge,
		arg.PartyType,
		arg.Theme,
		arg.DueDate,
		arg.DueTime,
		arg.Location,
		arg.DeliveryFee,
		arg.Discount,
		arg.TotalPrice,
		arg.Status,
		arg.ProductionStage,
		arg.Notes,
	)
	return scanOrder(row)
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($3::text IS NULL OR customer_name ILIKE '%' || $3 || '%' OR theme ILIKE '%' || $3 || '%')
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

type ListOrdersParams struct {
	Limit  int32
	Offset int32
	Search pgtype.Text
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Limit, arg.Offset, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listPartyOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE birthday_person_name IS NOT NULL AND birthday_person_name <> ''
`

// ListPartyOrders returns every order carrying a birthday person, the input
// of the recurrence calculator.
func (q *Queries) ListPartyOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listPartyOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const deleteOrder = `
DELETE FROM orders WHERE id = $1
`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrder, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const updateOrderProductionStage = `
UPDATE orders
SET production_stage = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderProductionStageParams struct {
	ID              uuid.UUID
	ProductionStage string
}

func (q *Queries) UpdateOrderProductionStage(ctx context.Context, arg UpdateOrderProductionStageParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderProductionStage, arg.ID, arg.ProductionStage))
}

const createOrderItem = `
INSERT INTO order_items (id, order_id, product_id, name, quantity, unit_price, details, measure_unit, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, order_id, product_id, name, quantity, unit_price, details, measure_unit, sort_order
`

type CreateOrderItemParams struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   string
	Name        string
	Quantity    pgtype.Numeric
	UnitPrice   pgtype.Numeric
	Details     pgtype.Text
	MeasureUnit string
	SortOrder   int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.ID,
		arg.OrderID,
		arg.ProductID,
		arg.Name,
		arg.Quantity,
		arg.UnitPrice,
		arg.Details,
		arg.MeasureUnit,
		arg.SortOrder,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Name,
		&i.Quantity,
		&i.UnitPrice,
		&i.Details,
		&i.MeasureUnit,
		&i.SortOrder,
	)
	return i, err
}

const listOrderItemsByOrder = `
SELECT id, order_id, product_id, name, quantity, unit_price, details, measure_unit, sort_order
FROM order_items
WHERE order_id = $1
ORDER BY sort_order
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Name,
			&i.Quantity,
			&i.UnitPrice,
			&i.Details,
			&i.MeasureUnit,
			&i.SortOrder,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteOrderItemsByOrder = `
DELETE FROM order_items WHERE order_id = $1
`

func (q *Queries) DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderItemsByOrder, orderID)
	return err
}
