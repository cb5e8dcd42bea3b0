package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock store ---

type mockCustomerStore struct {
	customers map[uuid.UUID]database.Customer
}

func newMockCustomerStore() *mockCustomerStore {
	return &mockCustomerStore{customers: make(map[uuid.UUID]database.Customer)}
}

func (m *mockCustomerStore) ListCustomers(_ context.Context, arg database.ListCustomersParams) ([]database.Customer, error) {
	var result []database.Customer
	for _, c := range m.customers {
		if arg.Search.Valid && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(arg.Search.String)) {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *mockCustomerStore) GetCustomer(_ context.Context, id uuid.UUID) (database.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func setupCustomerRouter(store *mockCustomerStore) *chi.Mux {
	h := handler.NewCustomerHandler(store)
	r := chi.NewRouter()
	r.Route("/customers", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestListCustomersWithSearch(t *testing.T) {
	store := newMockCustomerStore()
	for _, name := range []string{"Maria Silva", "Ana Costa"} {
		id := uuid.New()
		store.customers[id] = database.Customer{ID: id, Name: name}
	}
	router := setupCustomerRouter(store)

	req := httptest.NewRequest("GET", "/customers/?search=maria", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 1 || resp[0]["name"] != "Maria Silva" {
		t.Errorf("search result: got %v", resp)
	}
}

func TestGetCustomer(t *testing.T) {
	store := newMockCustomerStore()
	id := uuid.New()
	last := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	store.customers[id] = database.Customer{
		ID:            id,
		Name:          "Maria Silva",
		Whatsapp:      pgtype.Text{String: "11 99999-0000", Valid: true},
		LastOrderDate: pgtype.Timestamptz{Time: last, Valid: true},
	}
	router := setupCustomerRouter(store)

	req := httptest.NewRequest("GET", "/customers/"+id.String(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["whatsapp"] != "11 99999-0000" {
		t.Errorf("whatsapp: got %v", resp["whatsapp"])
	}
	if resp["last_order_date"] == nil {
		t.Error("expected last_order_date")
	}
}

func TestGetCustomerNotFound(t *testing.T) {
	router := setupCustomerRouter(newMockCustomerStore())

	req := httptest.NewRequest("GET", "/customers/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
