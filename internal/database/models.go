package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Product is a catalog entry. Products keep their catalog string ids
// (prod_kit_1, ...) — the set is closed and seeded, not user-managed.
type Product struct {
	ID                    string
	Name                  string
	Description           pgtype.Text
	BasePrice             pgtype.Numeric
	CostPrice             pgtype.Numeric
	Category              string
	MeasureUnit           string
	ProductionTimeMinutes int32
	IsBundle              bool
	CreatedAt             time.Time
}

// BundleItem is one component row of a bundle composition.
type BundleItem struct {
	ID        uuid.UUID
	BundleID  string
	ProductID string
	Quantity  int32
	SortOrder int32
}

type Order struct {
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
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type OrderItem struct {
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

type Customer struct {
	ID                 uuid.UUID
	Name               string
	Whatsapp           pgtype.Text
	Address            pgtype.Text
	BirthdayPersonName pgtype.Text
	BirthdayPersonAge  pgtype.Int4
	LastOrderDate      pgtype.Timestamptz
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Transaction is a ledger entry. OrderID is set only for the single
// auto-synced income row an order projects; manual entries leave it null.
type Transaction struct {
	ID          uuid.UUID
	OrderID     pgtype.UUID
	Date        pgtype.Date
	Type        string
	Amount      pgtype.Numeric
	Category    string
	Description string
	CreatedAt   time.Time
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
}
