package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// mockTx implements the subset of pgx.Tx the service touches.
type mockTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	m.rolledBack = true
	return nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

type mockBeginner struct {
	tx       *mockTx
	beginErr error
}

func (m *mockBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return m.tx, nil
}

// mockOrderStore is an in-memory OrderStore.
type mockOrderStore struct {
	products    []database.Product
	bundleItems []database.BundleItem

	orders       map[uuid.UUID]database.Order
	orderItems   map[uuid.UUID][]database.OrderItem
	transactions map[uuid.UUID]database.Transaction // keyed by order id
	customers    map[string]database.Customer       // keyed by lowercase name

	failCreateTransaction bool
	calls                 []string
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		products:     testProducts(),
		bundleItems:  testBundleItems(),
		orders:       make(map[uuid.UUID]database.Order),
		orderItems:   make(map[uuid.UUID][]database.OrderItem),
		transactions: make(map[uuid.UUID]database.Transaction),
		customers:    make(map[string]database.Customer),
	}
}

func testProducts() []database.Product {
	return []database.Product{
		mkProduct("prod_kit_1", "Kit Festa 1", "150.00", true),
		mkProduct("prod_donut_mini", "Mini Donut", "4.50", false),
		mkProduct("prod_cakepop", "Cakepop", "6.00", false),
		mkProduct("prod_brownie", "Brownie", "8.00", false),
	}
}

func testBundleItems() []database.BundleItem {
	return []database.BundleItem{
		{BundleID: "prod_kit_1", ProductID: "prod_donut_mini", Quantity: 10},
		{BundleID: "prod_kit_1", ProductID: "prod_cakepop", Quantity: 5},
	}
}

func mkProduct(id, name, price string, isBundle bool) database.Product {
	var base pgtype.Numeric
	_ = base.Scan(price)
	return database.Product{
		ID:          id,
		Name:        name,
		BasePrice:   base,
		Category:    "Sweets",
		MeasureUnit: enum.MeasureUnitPiece,
		IsBundle:    isBundle,
	}
}

func (m *mockOrderStore) ListProducts(ctx context.Context) ([]database.Product, error) {
	m.calls = append(m.calls, "ListProducts")
	return m.products, nil
}

func (m *mockOrderStore) ListBundleItems(ctx context.Context) ([]database.BundleItem, error) {
	return m.bundleItems, nil
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	m.calls = append(m.calls, "CreateOrder")
	o := database.Order{
		ID:              arg.ID,
		CustomerName:    arg.CustomerName,
		Theme:           arg.Theme,
		DueDate:         arg.DueDate,
		DeliveryFee:     arg.DeliveryFee,
		Discount:        arg.Discount,
		TotalPrice:      arg.TotalPrice,
		Status:          arg.Status,
		ProductionStage: arg.ProductionStage,
	}
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) UpdateOrder(ctx context.Context, arg database.UpdateOrderParams) (database.Order, error) {
	m.calls = append(m.calls, "UpdateOrder")
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	o.CustomerName = arg.CustomerName
	o.Theme = arg.Theme
	o.DueDate = arg.DueDate
	o.TotalPrice = arg.TotalPrice
	o.Status = arg.Status
	o.ProductionStage = arg.ProductionStage
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := m.orders[id]; !ok {
		return 0, nil
	}
	delete(m.orders, id)
	return 1, nil
}

func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	it := database.OrderItem{
		ID:          arg.ID,
		OrderID:     arg.OrderID,
		ProductID:   arg.ProductID,
		Name:        arg.Name,
		Quantity:    arg.Quantity,
		UnitPrice:   arg.UnitPrice,
		Details:     arg.Details,
		MeasureUnit: arg.MeasureUnit,
		SortOrder:   arg.SortOrder,
	}
	m.orderItems[arg.OrderID] = append(m.orderItems[arg.OrderID], it)
	return it, nil
}

func (m *mockOrderStore) DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	delete(m.orderItems, orderID)
	return nil
}

func (m *mockOrderStore) GetTransactionByOrder(ctx context.Context, orderID uuid.UUID) (database.Transaction, error) {
	tr, ok := m.transactions[orderID]
	if !ok {
		return database.Transaction{}, pgx.ErrNoRows
	}
	return tr, nil
}

func (m *mockOrderStore) CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error) {
	if m.failCreateTransaction {
		return database.Transaction{}, errors.New("boom")
	}
	m.calls = append(m.calls, "CreateTransaction")
	tr := database.Transaction{
		ID:          arg.ID,
		OrderID:     arg.OrderID,
		Date:        arg.Date,
		Type:        arg.Type,
		Amount:      arg.Amount,
		Category:    arg.Category,
		Description: arg.Description,
	}
	m.transactions[uuid.UUID(arg.OrderID.Bytes)] = tr
	return tr, nil
}

func (m *mockOrderStore) UpdateTransaction(ctx context.Context, arg database.UpdateTransactionParams) (database.Transaction, error) {
	m.calls = append(m.calls, "UpdateTransaction")
	for orderID, tr := range m.transactions {
		if tr.ID == arg.ID {
			tr.Date = arg.Date
			tr.Amount = arg.Amount
			tr.Description = arg.Description
			m.transactions[orderID] = tr
			return tr, nil
		}
	}
	return database.Transaction{}, pgx.ErrNoRows
}

func (m *mockOrderStore) DeleteTransactionByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	m.calls = append(m.calls, "DeleteTransactionByOrder")
	if _, ok := m.transactions[orderID]; !ok {
		return 0, nil
	}
	delete(m.transactions, orderID)
	return 1, nil
}

func (m *mockOrderStore) GetCustomerByName(ctx context.Context, name string) (database.Customer, error) {
	c, ok := m.customers[strings.ToLower(name)]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockOrderStore) CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error) {
	m.calls = append(m.calls, "CreateCustomer")
	c := database.Customer{
		ID:                 arg.ID,
		Name:               arg.Name,
		Whatsapp:           arg.Whatsapp,
		Address:            arg.Address,
		BirthdayPersonName: arg.BirthdayPersonName,
		BirthdayPersonAge:  arg.BirthdayPersonAge,
		LastOrderDate:      arg.LastOrderDate,
	}
	m.customers[strings.ToLower(arg.Name)] = c
	return c, nil
}

func (m *mockOrderStore) UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error) {
	m.calls = append(m.calls, "UpdateCustomer")
	for key, c := range m.customers {
		if c.ID == arg.ID {
			c.Whatsapp = arg.Whatsapp
			c.Address = arg.Address
			c.BirthdayPersonName = arg.BirthdayPersonName
			c.BirthdayPersonAge = arg.BirthdayPersonAge
			c.LastOrderDate = arg.LastOrderDate
			m.customers[key] = c
			return c, nil
		}
	}
	return database.Customer{}, pgx.ErrNoRows
}

func newTestService(store *mockOrderStore) (*OrderService, *mockTx) {
	tx := &mockTx{}
	svc := NewOrderService(&mockBeginner{tx: tx}, func(db database.DBTX) OrderStore {
		return store
	})
	svc.now = func() time.Time {
		return time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc, tx
}

func saveRequest() SaveOrderRequest {
	return SaveOrderRequest{
		CustomerName: "Maria Silva",
		Theme:        "Dinosaurs",
		DueDate:      "2025-12-20",
		Status:       enum.OrderStatusPending50,
		Selections: []Selection{
			{ProductID: "prod_brownie", Quantity: "10"},
		},
	}
}

func amountOf(t *testing.T, n pgtype.Numeric) decimal.Decimal {
	t.Helper()
	return numericToDecimal(n)
}

func TestSaveOrderCreatesOrderLedgerAndCustomer(t *testing.T) {
	store := newMockOrderStore()
	svc, tx := newTestService(store)

	res, err := svc.SaveOrder(context.Background(), saveRequest())
	if err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	if !tx.committed {
		t.Error("expected transaction commit")
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}

	// 10 brownies at base price 8.00, half recognized at PENDING_50.
	if got := amountOf(t, res.Order.TotalPrice); !got.Equal(decimal.RequireFromString("80")) {
		t.Errorf("total = %s, want 80", got)
	}
	tr, ok := store.transactions[res.Order.ID]
	if !ok {
		t.Fatal("expected a ledger transaction")
	}
	if got := amountOf(t, tr.Amount); !got.Equal(decimal.RequireFromString("40")) {
		t.Errorf("recognized amount = %s, want 40", got)
	}
	if tr.Type != enum.TransactionTypeIncome || tr.Category != enum.TransactionCategorySale {
		t.Errorf("transaction type/category = %s/%s", tr.Type, tr.Category)
	}
	if tr.Description != "Order: Maria Silva (Dinosaurs)" {
		t.Errorf("description = %q", tr.Description)
	}

	if _, ok := store.customers["maria silva"]; !ok {
		t.Error("expected customer record")
	}
}

func TestSaveOrderExpandsBundles(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	req := saveRequest()
	req.Selections = []Selection{{ProductID: "prod_kit_1", Quantity: "2"}}

	res, err := svc.SaveOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	// Parent line plus two components.
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(res.Items))
	}
	// Components carry quantity scaled by the kit count and zero price.
	byProduct := make(map[string]database.OrderItem)
	for _, it := range res.Items {
		byProduct[it.ProductID] = it
	}
	donuts := byProduct["prod_donut_mini"]
	if got := amountOf(t, donuts.Quantity); !got.Equal(decimal.RequireFromString("20")) {
		t.Errorf("donut quantity = %s, want 20", got)
	}
	if got := amountOf(t, donuts.UnitPrice); !got.IsZero() {
		t.Errorf("component price = %s, want 0", got)
	}
	// Only the parent line is priced.
	if got := amountOf(t, res.Order.TotalPrice); !got.Equal(decimal.RequireFromString("300")) {
		t.Errorf("total = %s, want 300", got)
	}
}

func TestSaveOrderLedgerIdempotent(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	res, err := svc.SaveOrder(context.Background(), saveRequest())
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	firstTx := store.transactions[res.Order.ID]

	req := saveRequest()
	req.ID = res.Order.ID.String()
	if _, err := svc.SaveOrder(context.Background(), req); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if len(store.transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(store.transactions))
	}
	secondTx := store.transactions[res.Order.ID]
	if secondTx.ID != firstTx.ID {
		t.Error("re-save must preserve the transaction id")
	}
	if got := amountOf(t, secondTx.Amount); !got.Equal(decimal.RequireFromString("40")) {
		t.Errorf("amount after re-save = %s, want 40", got)
	}
}

func TestSaveOrderLedgerTransitions(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	res, err := svc.SaveOrder(context.Background(), saveRequest())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Paid in full: the transaction grows to the whole total.
	req := saveRequest()
	req.ID = res.Order.ID.String()
	req.Status = enum.OrderStatusPaid100
	if _, err := svc.SaveOrder(context.Background(), req); err != nil {
		t.Fatalf("save paid: %v", err)
	}
	tr := store.transactions[res.Order.ID]
	if got := amountOf(t, tr.Amount); !got.Equal(decimal.RequireFromString("80")) {
		t.Errorf("amount at PAID_100 = %s, want 80", got)
	}

	// Back to quote: nothing is recognized, the transaction goes away.
	req.Status = enum.OrderStatusQuote
	if _, err := svc.SaveOrder(context.Background(), req); err != nil {
		t.Fatalf("save quote: %v", err)
	}
	if len(store.transactions) != 0 {
		t.Errorf("expected no transactions at QUOTE, got %d", len(store.transactions))
	}
}

func TestSaveOrderAppliesFeeAndDiscount(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	req := saveRequest()
	req.DeliveryFee = "15.00"
	req.Discount = "10.00"
	res, err := svc.SaveOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	if got := amountOf(t, res.Order.TotalPrice); !got.Equal(decimal.RequireFromString("85")) {
		t.Errorf("total = %s, want 85", got)
	}
}

func TestSaveOrderMalformedFeeTreatedAsZero(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	req := saveRequest()
	req.DeliveryFee = "abc"
	req.Discount = "-5"
	res, err := svc.SaveOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	if got := amountOf(t, res.Order.TotalPrice); !got.Equal(decimal.RequireFromString("80")) {
		t.Errorf("total = %s, want 80", got)
	}
}

func TestSaveOrderMergesDuplicateCustomer(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	if _, err := svc.SaveOrder(context.Background(), saveRequest()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	req := saveRequest()
	req.CustomerName = "MARIA SILVA"
	req.CustomerWhatsapp = "11 99999-0000"
	if _, err := svc.SaveOrder(context.Background(), req); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if len(store.customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(store.customers))
	}
	c := store.customers["maria silva"]
	if c.Name != "Maria Silva" {
		t.Errorf("stored name = %q, want original casing", c.Name)
	}
	if c.Whatsapp.String != "11 99999-0000" {
		t.Errorf("whatsapp = %q, not merged", c.Whatsapp.String)
	}
}

func TestSaveOrderValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SaveOrderRequest)
		wantErr error
	}{
		{"missing customer", func(r *SaveOrderRequest) { r.CustomerName = "" }, ErrCustomerNameRequired},
		{"missing due date", func(r *SaveOrderRequest) { r.DueDate = "" }, ErrDueDateRequired},
		{"bad due date", func(r *SaveOrderRequest) { r.DueDate = "20/12/2025" }, ErrInvalidDueDate},
		{"bad status", func(r *SaveOrderRequest) { r.Status = "SHIPPED" }, ErrInvalidStatus},
		{"bad stage", func(r *SaveOrderRequest) { r.ProductionStage = "OVEN" }, ErrInvalidStage},
		{"zero quantity", func(r *SaveOrderRequest) { r.Selections[0].Quantity = "0" }, ErrInvalidQuantity},
		{"unknown product", func(r *SaveOrderRequest) { r.Selections[0].ProductID = "prod_nope" }, ErrProductNotFound},
		{"bad unit price", func(r *SaveOrderRequest) { r.Selections[0].UnitPrice = "cheap" }, ErrInvalidUnitPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockOrderStore()
			svc, tx := newTestService(store)

			req := saveRequest()
			tt.mutate(&req)
			_, err := svc.SaveOrder(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tx.committed {
				t.Error("must not commit on validation failure")
			}
			if len(store.orders) != 0 {
				t.Error("must not persist an order on validation failure")
			}
		})
	}
}

func TestSaveOrderUpdateMissingOrder(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	req := saveRequest()
	req.ID = uuid.NewString()
	_, err := svc.SaveOrder(context.Background(), req)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestSaveOrderRollsBackOnLedgerFailure(t *testing.T) {
	store := newMockOrderStore()
	store.failCreateTransaction = true
	svc, tx := newTestService(store)

	_, err := svc.SaveOrder(context.Background(), saveRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if tx.committed {
		t.Error("must not commit after a ledger write failure")
	}
	if !tx.rolledBack {
		t.Error("expected rollback")
	}
}

func TestDeleteOrderRemovesLedgerEntry(t *testing.T) {
	store := newMockOrderStore()
	svc, tx := newTestService(store)

	res, err := svc.SaveOrder(context.Background(), saveRequest())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	tx.committed = false

	if err := svc.DeleteOrder(context.Background(), res.Order.ID); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if !tx.committed {
		t.Error("expected commit")
	}
	if len(store.orders) != 0 || len(store.transactions) != 0 {
		t.Error("expected order and transaction to be gone")
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	store := newMockOrderStore()
	svc, _ := newTestService(store)

	err := svc.DeleteOrder(context.Background(), uuid.New())
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}
