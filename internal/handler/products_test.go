package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/enum"
	"github.com/aadelicias/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock store ---

type mockProductStore struct {
	products map[string]database.Product
	bundles  map[string][]database.BundleItem
}

func newMockProductStore() *mockProductStore {
	return &mockProductStore{
		products: make(map[string]database.Product),
		bundles:  make(map[string][]database.BundleItem),
	}
}

func (m *mockProductStore) ListProducts(_ context.Context) ([]database.Product, error) {
	var result []database.Product
	for _, p := range m.products {
		result = append(result, p)
	}
	return result, nil
}

func (m *mockProductStore) GetProduct(_ context.Context, id string) (database.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProductStore) ListBundleItemsByBundle(_ context.Context, bundleID string) ([]database.BundleItem, error) {
	return m.bundles[bundleID], nil
}

// --- Helpers ---

func numericFromString(s string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(s)
	return n
}

func setupProductRouter(store *mockProductStore) *chi.Mux {
	h := handler.NewProductHandler(store)
	r := chi.NewRouter()
	r.Route("/products", h.RegisterRoutes)
	return r
}

func seedCatalog(store *mockProductStore) {
	store.products["prod_kit_1"] = database.Product{
		ID:          "prod_kit_1",
		Name:        "Kit Festa 1",
		BasePrice:   numericFromString("150.00"),
		Category:    "Kits",
		MeasureUnit: enum.MeasureUnitPiece,
		IsBundle:    true,
	}
	store.products["prod_brownie"] = database.Product{
		ID:          "prod_brownie",
		Name:        "Brownie",
		BasePrice:   numericFromString("8.00"),
		Category:    "Sweets",
		MeasureUnit: enum.MeasureUnitPiece,
	}
	store.bundles["prod_kit_1"] = []database.BundleItem{
		{BundleID: "prod_kit_1", ProductID: "prod_donut_mini", Quantity: 10},
		{BundleID: "prod_kit_1", ProductID: "prod_cakepop", Quantity: 5},
	}
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	store := newMockProductStore()
	seedCatalog(store)
	router := setupProductRouter(store)

	req := httptest.NewRequest("GET", "/products/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("expected 2 products, got %d", len(resp))
	}
}

func TestGetProduct(t *testing.T) {
	store := newMockProductStore()
	seedCatalog(store)
	router := setupProductRouter(store)

	req := httptest.NewRequest("GET", "/products/prod_brownie", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["base_price"] != "8.00" {
		t.Errorf("base_price: got %v, want 8.00", resp["base_price"])
	}
	if resp["measure_unit"] != "UN" {
		t.Errorf("measure_unit: got %v, want UN", resp["measure_unit"])
	}
}

func TestGetProductNotFound(t *testing.T) {
	store := newMockProductStore()
	router := setupProductRouter(store)

	req := httptest.NewRequest("GET", "/products/prod_nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestListBundleItems(t *testing.T) {
	store := newMockProductStore()
	seedCatalog(store)
	router := setupProductRouter(store)

	req := httptest.NewRequest("GET", "/products/prod_kit_1/bundle-items", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 bundle items, got %d", len(resp))
	}
	if resp[0]["product_id"] != "prod_donut_mini" {
		t.Errorf("first component: got %v", resp[0]["product_id"])
	}
}

func TestListBundleItemsForPlainProduct(t *testing.T) {
	store := newMockProductStore()
	seedCatalog(store)
	router := setupProductRouter(store)

	req := httptest.NewRequest("GET", "/products/prod_brownie/bundle-items", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("expected empty composition, got %d items", len(resp))
	}
}
