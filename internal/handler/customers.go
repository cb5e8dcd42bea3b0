package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aadelicias/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	ListCustomers(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
}

// CustomerHandler serves the customer directory. Records are written only as
// a side effect of order saves, so the surface is read-only.
type CustomerHandler struct {
	store CustomerStore
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// RegisterRoutes registers customer endpoints on the given Chi router.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// --- Response types ---

type customerResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Whatsapp           *string    `json:"whatsapp"`
	Address            *string    `json:"address"`
	BirthdayPersonName *string    `json:"birthday_person_name"`
	BirthdayPersonAge  *int32     `json:"birthday_person_age"`
	LastOrderDate      *time.Time `json:"last_order_date"`
}

func toCustomerResponse(c database.Customer) customerResponse {
	resp := customerResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Whatsapp:           textPtr(c.Whatsapp),
		Address:            textPtr(c.Address),
		BirthdayPersonName: textPtr(c.BirthdayPersonName),
	}
	if c.BirthdayPersonAge.Valid {
		age := c.BirthdayPersonAge.Int32
		resp.BirthdayPersonAge = &age
	}
	if c.LastOrderDate.Valid {
		last := c.LastOrderDate.Time
		resp.LastOrderDate = &last
	}
	return resp
}

// --- Handlers ---

// List returns customers, optionally filtered by name.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int32(50)
	offset := int32(0)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = int32(n)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = int32(n)
		}
	}

	var search pgtype.Text
	if v := r.URL.Query().Get("search"); v != "" {
		search = pgtype.Text{String: v, Valid: true}
	}

	customers, err := h.store.ListCustomers(r.Context(), database.ListCustomersParams{
		Limit:  limit,
		Offset: offset,
		Search: search,
	})
	if err != nil {
		log.Printf("ERROR: list customers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = toCustomerResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single customer by ID.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid customer ID"})
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		log.Printf("ERROR: get customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}
