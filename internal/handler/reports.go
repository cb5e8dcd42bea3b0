package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aadelicias/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	GetFinancialSummary(ctx context.Context, arg database.GetFinancialSummaryParams) (database.GetFinancialSummaryRow, error)
}

// ReportsHandler serves aggregate views over the ledger.
type ReportsHandler struct {
	store ReportsStore
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/financial-summary", h.FinancialSummary)
}

type financialSummaryResponse struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Income    string `json:"income"`
	Expense   string `json:"expense"`
	Net       string `json:"net"`
}

// FinancialSummary returns income, expense and net over an optional period.
func (h *ReportsHandler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	var params database.GetFinancialSummaryParams
	resp := financialSummaryResponse{}

	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
			return
		}
		params.StartDate = pgtype.Date{Time: t, Valid: true}
		resp.StartDate = v
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date"})
			return
		}
		params.EndDate = pgtype.Date{Time: t, Valid: true}
		resp.EndDate = v
	}

	row, err := h.store.GetFinancialSummary(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: financial summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	income := numericDecimal(row.Income)
	expense := numericDecimal(row.Expense)
	resp.Income = income.StringFixed(2)
	resp.Expense = expense.StringFixed(2)
	resp.Net = income.Sub(expense).StringFixed(2)

	writeJSON(w, http.StatusOK, resp)
}

func numericDecimal(n pgtype.Numeric) decimal.Decimal {
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
