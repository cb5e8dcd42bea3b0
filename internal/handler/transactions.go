package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// TransactionStore defines the database methods needed by ledger handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TransactionStore interface {
	ListTransactions(ctx context.Context, arg database.ListTransactionsParams) ([]database.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (database.Transaction, error)
	CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) (int64, error)
}

// TransactionHandler handles manual ledger entries. Order-linked entries are
// owned by the order lifecycle and cannot be created or deleted here.
type TransactionHandler struct {
	store TransactionStore
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(store TransactionStore) *TransactionHandler {
	return &TransactionHandler{store: store}
}

// RegisterRoutes registers ledger endpoints on the given Chi router.
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createTransactionRequest struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type transactionResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     *string   `json:"order_id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
}

func toTransactionResponse(tr database.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tr.ID,
		Type:        tr.Type,
		Amount:      numericString(tr.Amount),
		Category:    tr.Category,
		Description: tr.Description,
	}
	if tr.OrderID.Valid {
		oid := uuid.UUID(tr.OrderID.Bytes).String()
		resp.OrderID = &oid
	}
	if tr.Date.Valid {
		resp.Date = tr.Date.Time.Format("2006-01-02")
	}
	return resp
}

// --- Handlers ---

// List returns ledger entries, optionally filtered by period, type and
// category.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int32(100)
	offset := int32(0)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = int32(n)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = int32(n)
		}
	}

	params := database.ListTransactionsParams{Limit: limit, Offset: offset}

	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
			return
		}
		params.StartDate = pgtype.Date{Time: t, Valid: true}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date"})
			return
		}
		params.EndDate = pgtype.Date{Time: t, Valid: true}
	}
	if v := r.URL.Query().Get("type"); v != "" {
		if v != enum.TransactionTypeIncome && v != enum.TransactionTypeExpense {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
			return
		}
		params.Type = pgtype.Text{String: v, Valid: true}
	}
	if v := r.URL.Query().Get("category"); v != "" {
		params.Category = pgtype.Text{String: v, Valid: true}
	}

	transactions, err := h.store.ListTransactions(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list transactions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]transactionResponse, len(transactions))
	for i, tr := range transactions {
		resp[i] = toTransactionResponse(tr)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create records a manual income or expense entry.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Type != enum.TransactionTypeIncome && req.Type != enum.TransactionTypeExpense {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type must be INCOME or EXPENSE"})
		return
	}
	if req.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return
	}
	if req.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return
	}

	date := time.Now()
	if req.Date != "" {
		t, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
			return
		}
		date = t
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be > 0"})
		return
	}
	var amt pgtype.Numeric
	_ = amt.Scan(amount.StringFixed(2))

	tr, err := h.store.CreateTransaction(r.Context(), database.CreateTransactionParams{
		ID:          uuid.New(),
		Date:        pgtype.Date{Time: date, Valid: true},
		Type:        req.Type,
		Amount:      amt,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		log.Printf("ERROR: create transaction: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tr))
}

// Delete removes a manual ledger entry. Order-linked entries are a projection
// of their order and must be changed through the order itself.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction ID"})
		return
	}

	tr, err := h.store.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		log.Printf("ERROR: get transaction: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if tr.OrderID.Valid {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order-linked transactions are managed through their order"})
		return
	}

	if _, err := h.store.DeleteTransaction(r.Context(), id); err != nil {
		log.Printf("ERROR: delete transaction: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
