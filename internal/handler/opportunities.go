package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/recurrence"
	"github.com/go-chi/chi/v5"
)

// OpportunityStore defines the database methods needed by the opportunities
// handler. Satisfied by *database.Queries.
type OpportunityStore interface {
	ListPartyOrders(ctx context.Context) ([]database.Order, error)
}

// OpportunityHandler predicts upcoming birthdays from past party orders.
type OpportunityHandler struct {
	store    OpportunityStore
	leadDays int
	now      func() time.Time
}

// NewOpportunityHandler creates a new OpportunityHandler.
func NewOpportunityHandler(store OpportunityStore, leadDays int) *OpportunityHandler {
	return &OpportunityHandler{store: store, leadDays: leadDays, now: time.Now}
}

// RegisterRoutes registers the opportunities endpoint on the given Chi router.
func (h *OpportunityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type opportunityResponse struct {
	CustomerName       string `json:"customer_name"`
	CustomerWhatsapp   string `json:"customer_whatsapp,omitempty"`
	BirthdayPersonName string `json:"birthday_person_name"`
	Theme              string `json:"theme,omitempty"`
	LastDate           string `json:"last_date"`
	NextDate           string `json:"next_date"`
	NewAge             int32  `json:"new_age"`
	DaysUntil          int    `json:"days_until"`
}

// List returns outreach opportunities. An optional `today` query parameter
// (YYYY-MM-DD) pins the reference date for deterministic results.
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	today := h.now()
	if v := r.URL.Query().Get("today"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid today"})
			return
		}
		today = t
	}

	orders, err := h.store.ListPartyOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list party orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	records := make([]recurrence.PartyRecord, 0, len(orders))
	for _, o := range orders {
		rec := recurrence.PartyRecord{
			CustomerName:       o.CustomerName,
			CustomerWhatsapp:   o.CustomerWhatsapp.String,
			BirthdayPersonName: o.BirthdayPersonName.String,
			Theme:              o.Theme.String,
			Status:             o.Status,
		}
		if o.BirthdayPersonAge.Valid {
			rec.BirthdayPersonAge = o.BirthdayPersonAge.Int32
		}
		if o.DueDate.Valid {
			rec.DueDate = o.DueDate.Time
		}
		records = append(records, rec)
	}

	opportunities := recurrence.Upcoming(records, today, h.leadDays)

	resp := make([]opportunityResponse, len(opportunities))
	for i, op := range opportunities {
		resp[i] = opportunityResponse{
			CustomerName:       op.CustomerName,
			CustomerWhatsapp:   op.CustomerWhatsapp,
			BirthdayPersonName: op.BirthdayPersonName,
			Theme:              op.Theme,
			LastDate:           op.LastDate.Format("2006-01-02"),
			NextDate:           op.NextDate.Format("2006-01-02"),
			NewAge:             op.NewAge,
			DaysUntil:          op.DaysUntil,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
