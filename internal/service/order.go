package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aadelicias/api/internal/catalog"
	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/directory"
	"github.com/aadelicias/api/internal/enum"
	"github.com/aadelicias/api/internal/ledger"
	"github.com/aadelicias/api/internal/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrCustomerNameRequired = errors.New("customer_name is required")
	ErrDueDateRequired      = errors.New("due_date is required")
	ErrInvalidDueDate       = errors.New("invalid due_date")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidStage         = errors.New("invalid production_stage")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidUnitPrice     = errors.New("invalid unit_price")
	ErrProductNotFound      = errors.New("product not in catalog")
	ErrOrderNotFound        = errors.New("order not found")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to save and delete orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	ListProducts(ctx context.Context) ([]database.Product, error)
	ListBundleItems(ctx context.Context) ([]database.BundleItem, error)

	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	UpdateOrder(ctx context.Context, arg database.UpdateOrderParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error

	GetTransactionByOrder(ctx context.Context, orderID uuid.UUID) (database.Transaction, error)
	CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error)
	UpdateTransaction(ctx context.Context, arg database.UpdateTransactionParams) (database.Transaction, error)
	DeleteTransactionByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	GetCustomerByName(ctx context.Context, name string) (database.Customer, error)
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Selection is one product pick from the order form. Quantity is required;
// an empty UnitPrice falls back to the catalog base price; non-numeric
// DeliveryFee/Discount strings on the request are treated as zero, but a
// non-numeric unit price here is rejected (it names a real amount).
type Selection struct {
	ProductID string
	Quantity  string
	UnitPrice string
	Details   string
}

// SaveOrderRequest is the validated input for creating or updating an order.
// An empty ID means create.
type SaveOrderRequest struct {
	ID                 string
	CustomerName       string
	CustomerWhatsapp   string
	BirthdayPersonName string
	BirthdayPersonAge  int32
	PartyType          string
	Theme              string
	DueDate            string // 2006-01-02
	DueTime            string
	Location           string
	DeliveryFee        string
	Discount           string
	Status             string
	ProductionStage    string
	Notes              string
	Selections         []Selection
}

// SaveOrderResult is the stored order with its resolved items.
type SaveOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService owns the save/delete lifecycle of orders and the two side
// effects every save carries: the ledger projection and the customer upsert.
// All three land in one transaction — an order never exists without its
// financial mirror.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, now: time.Now}
}

// SaveOrder validates the request, rebuilds the item list (expanding kits and
// merging duplicate lines), prices the order, and commits the order upsert,
// ledger sync and customer upsert atomically.
func (s *OrderService) SaveOrder(ctx context.Context, req SaveOrderRequest) (*SaveOrderResult, error) {
	// --- Validate before any mutation ---
	if req.CustomerName == "" {
		return nil, ErrCustomerNameRequired
	}
	if req.DueDate == "" {
		return nil, ErrDueDateRequired
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDueDate, err)
	}

	status := req.Status
	if status == "" {
		status = enum.OrderStatusQuote
	}
	if !isValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	stage := req.ProductionStage
	if stage == "" {
		stage = enum.ProductionStagePrePrep
	}
	if !isValidProductionStage(stage) {
		return nil, ErrInvalidStage
	}

	var orderID uuid.UUID
	if req.ID != "" {
		orderID, err = uuid.Parse(req.ID)
		if err != nil {
			return nil, ErrOrderNotFound
		}
	}

	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	result, err := s.saveOrderTx(ctx, store, req, orderID, dueDate, status, stage)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// saveOrderTx runs the full save inside an open transaction.
func (s *OrderService) saveOrderTx(ctx context.Context, store OrderStore, req SaveOrderRequest, orderID uuid.UUID, dueDate time.Time, status, stage string) (*SaveOrderResult, error) {
	// --- Load the catalog (read-only collaborator) ---
	ix, err := s.loadCatalog(ctx, store)
	if err != nil {
		return nil, err
	}

	// --- Build the item list: expand kits, merge duplicate lines ---
	var items []order.LineItem
	for i, sel := range req.Selections {
		qty, err := decimal.NewFromString(sel.Quantity)
		if err != nil || !qty.IsPositive() {
			return nil, fmt.Errorf("selection[%d]: %w", i, ErrInvalidQuantity)
		}

		product, ok := ix.Product(sel.ProductID)
		if !ok {
			return nil, fmt.Errorf("selection[%d]: %w: %s", i, ErrProductNotFound, sel.ProductID)
		}

		unitPrice := product.BasePrice
		if sel.UnitPrice != "" {
			unitPrice, err = decimal.NewFromString(sel.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("selection[%d]: %w", i, ErrInvalidUnitPrice)
			}
		}

		candidates, err := order.ExpandSelection(ix, sel.ProductID, qty, unitPrice, sel.Details)
		if err != nil {
			return nil, fmt.Errorf("selection[%d]: %w", i, err)
		}
		items = order.MergeLines(items, candidates)
	}

	// --- Price the order; malformed fee/discount count as zero ---
	deliveryFee := parseAmountOrZero(req.DeliveryFee)
	discount := parseAmountOrZero(req.Discount)
	total := order.Total(items, deliveryFee, discount)

	// --- Upsert the order row ---
	dbOrder, err := s.upsertOrder(ctx, store, req, orderID, dueDate, status, stage, deliveryFee, discount, total)
	if err != nil {
		return nil, err
	}

	// --- Replace the item rows ---
	if err := store.DeleteOrderItemsByOrder(ctx, dbOrder.ID); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}
	dbItems := make([]database.OrderItem, 0, len(items))
	for i, it := range items {
		dbItem, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			ID:          it.ID,
			OrderID:     dbOrder.ID,
			ProductID:   it.ProductID,
			Name:        it.Name,
			Quantity:    decimalToNumeric(it.Quantity),
			UnitPrice:   decimalToNumeric(it.UnitPrice),
			Details:     textOrNull(it.Details),
			MeasureUnit: it.MeasureUnit,
			SortOrder:   int32(i),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		dbItems = append(dbItems, dbItem)
	}

	// --- Ledger sync: the transaction is a projection of status + total ---
	if err := s.syncLedger(ctx, store, dbOrder.ID, req, dueDate, status, total); err != nil {
		return nil, err
	}

	// --- Customer upsert by case-insensitive name ---
	if err := s.upsertCustomer(ctx, store, req); err != nil {
		return nil, err
	}

	return &SaveOrderResult{Order: dbOrder, Items: dbItems}, nil
}

// DeleteOrder removes an order, its items, and its ledger transaction in one
// transaction.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.DeleteTransactionByOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order transaction: %w", err)
	}
	if err := store.DeleteOrderItemsByOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	rows, err := store.DeleteOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if rows == 0 {
		return ErrOrderNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// loadCatalog builds the read-only catalog index from the product and
// bundle-composition tables.
func (s *OrderService) loadCatalog(ctx context.Context, store OrderStore) (*catalog.Index, error) {
	dbProducts, err := store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	dbBundleItems, err := store.ListBundleItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bundle items: %w", err)
	}

	products := make([]catalog.Product, len(dbProducts))
	for i, p := range dbProducts {
		products[i] = catalog.Product{
			ID:                    p.ID,
			Name:                  p.Name,
			Description:           p.Description.String,
			BasePrice:             numericToDecimal(p.BasePrice),
			CostPrice:             numericToDecimal(p.CostPrice),
			Category:              p.Category,
			MeasureUnit:           p.MeasureUnit,
			ProductionTimeMinutes: p.ProductionTimeMinutes,
		}
	}

	compositions := make(map[string][]catalog.BundleItem)
	for _, bi := range dbBundleItems {
		compositions[bi.BundleID] = append(compositions[bi.BundleID], catalog.BundleItem{
			ProductID: bi.ProductID,
			Quantity:  bi.Quantity,
		})
	}
	return catalog.NewIndex(products, compositions), nil
}

func (s *OrderService) upsertOrder(ctx context.Context, store OrderStore, req SaveOrderRequest, orderID uuid.UUID, dueDate time.Time, status, stage string, deliveryFee, discount, total decimal.Decimal) (database.Order, error) {
	birthdayAge := pgtype.Int4{}
	if req.BirthdayPersonAge > 0 {
		birthdayAge = pgtype.Int4{Int32: req.BirthdayPersonAge, Valid: true}
	}

	if orderID == uuid.Nil {
		dbOrder, err := store.CreateOrder(ctx, database.CreateOrderParams{
			ID:                 uuid.New(),
			CustomerName:       req.CustomerName,
			CustomerWhatsapp:   textOrNull(req.CustomerWhatsapp),
			BirthdayPersonName: textOrNull(req.BirthdayPersonName),
			BirthdayPersonAge:  birthdayAge,
			PartyType:          textOrNull(req.PartyType),
			Theme:              textOrNull(req.Theme),
			DueDate:            pgtype.Date{Time: dueDate, Valid: true},
			DueTime:            textOrNull(req.DueTime),
			Location:           textOrNull(req.Location),
			DeliveryFee:        decimalToNumeric(deliveryFee),
			Discount:           decimalToNumeric(discount),
			TotalPrice:         decimalToNumeric(total),
			Status:             status,
			ProductionStage:    stage,
			Notes:              textOrNull(req.Notes),
		})
		if err != nil {
			return database.Order{}, fmt.Errorf("create order: %w", err)
		}
		return dbOrder, nil
	}

	if _, err := store.GetOrder(ctx, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	dbOrder, err := store.UpdateOrder(ctx, database.UpdateOrderParams{
		ID:                 orderID,
		CustomerName:       req.CustomerName,
		CustomerWhatsapp:   textOrNull(req.CustomerWhatsapp),
		BirthdayPersonName: textOrNull(req.BirthdayPersonName),
		BirthdayPersonAge:  birthdayAge,
		PartyType:          textOrNull(req.PartyType),
		Theme:              textOrNull(req.Theme),
		DueDate:            pgtype.Date{Time: dueDate, Valid: true},
		DueTime:            textOrNull(req.DueTime),
		Location:           textOrNull(req.Location),
		DeliveryFee:        decimalToNumeric(deliveryFee),
		Discount:           decimalToNumeric(discount),
		TotalPrice:         decimalToNumeric(total),
		Status:             status,
		ProductionStage:    stage,
		Notes:              textOrNull(req.Notes),
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("update order: %w", err)
	}
	return dbOrder, nil
}

// syncLedger upserts or removes the order's single ledger transaction so it
// always equals revenueFraction(status) × total. Re-saving an unchanged order
// overwrites the same row; a status that recognizes nothing deletes it.
func (s *OrderService) syncLedger(ctx context.Context, store OrderStore, orderID uuid.UUID, req SaveOrderRequest, dueDate time.Time, status string, total decimal.Decimal) error {
	amount := ledger.Recognized(status, total)

	if !amount.IsPositive() {
		if _, err := store.DeleteTransactionByOrder(ctx, orderID); err != nil {
			return fmt.Errorf("delete order transaction: %w", err)
		}
		return nil
	}

	theme := req.Theme
	if theme == "" {
		theme = "Sweets"
	}
	description := fmt.Sprintf("Order: %s (%s)", req.CustomerName, theme)

	existing, err := store.GetTransactionByOrder(ctx, orderID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("get order transaction: %w", err)
		}
		_, err = store.CreateTransaction(ctx, database.CreateTransactionParams{
			ID:          uuid.New(),
			OrderID:     pgtype.UUID{Bytes: orderID, Valid: true},
			Date:        pgtype.Date{Time: dueDate, Valid: true},
			Type:        enum.TransactionTypeIncome,
			Amount:      decimalToNumeric(amount),
			Category:    enum.TransactionCategorySale,
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("create order transaction: %w", err)
		}
		return nil
	}

	// Overwrite in place, preserving the transaction id.
	_, err = store.UpdateTransaction(ctx, database.UpdateTransactionParams{
		ID:          existing.ID,
		Date:        pgtype.Date{Time: dueDate, Valid: true},
		Amount:      decimalToNumeric(amount),
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("update order transaction: %w", err)
	}
	return nil
}

// upsertCustomer keeps the directory consistent with the order: matched by
// case-insensitive name, merged field-by-field, created when unknown.
func (s *OrderService) upsertCustomer(ctx context.Context, store OrderStore, req SaveOrderRequest) error {
	now := s.now()
	upd := directory.Update{
		Name:               req.CustomerName,
		Whatsapp:           req.CustomerWhatsapp,
		Address:            req.Location,
		BirthdayPersonName: req.BirthdayPersonName,
		BirthdayPersonAge:  req.BirthdayPersonAge,
	}

	existing, err := store.GetCustomerByName(ctx, req.CustomerName)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("get customer: %w", err)
		}
		fresh := directory.New(upd, now)
		_, err = store.CreateCustomer(ctx, database.CreateCustomerParams{
			ID:                 uuid.New(),
			Name:               fresh.Name,
			Whatsapp:           textOrNull(fresh.Whatsapp),
			Address:            textOrNull(fresh.Address),
			BirthdayPersonName: textOrNull(fresh.BirthdayPersonName),
			BirthdayPersonAge:  ageOrNull(fresh.BirthdayPersonAge),
			LastOrderDate:      pgtype.Timestamptz{Time: now, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		return nil
	}

	merged := directory.Merge(directory.Customer{
		Name:               existing.Name,
		Whatsapp:           existing.Whatsapp.String,
		Address:            existing.Address.String,
		BirthdayPersonName: existing.BirthdayPersonName.String,
		BirthdayPersonAge:  existing.BirthdayPersonAge.Int32,
	}, upd, now)

	_, err = store.UpdateCustomer(ctx, database.UpdateCustomerParams{
		ID:                 existing.ID,
		Whatsapp:           textOrNull(merged.Whatsapp),
		Address:            textOrNull(merged.Address),
		BirthdayPersonName: textOrNull(merged.BirthdayPersonName),
		BirthdayPersonAge:  ageOrNull(merged.BirthdayPersonAge),
		LastOrderDate:      pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// --- Helpers ---

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusQuote, enum.OrderStatusPending50, enum.OrderStatusPending100,
		enum.OrderStatusPaid100, enum.OrderStatusFinalized:
		return true
	}
	return false
}

func isValidProductionStage(s string) bool {
	switch s {
	case enum.ProductionStagePrePrep, enum.ProductionStageProduction, enum.ProductionStageDrying,
		enum.ProductionStagePackaging, enum.ProductionStageReady:
		return true
	}
	return false
}

// parseAmountOrZero coerces malformed or negative money inputs to zero, per
// the pricing rules.
func parseAmountOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func ageOrNull(age int32) pgtype.Int4 {
	if age <= 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: age, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
