package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/aadelicias/api/internal/database"
	"github.com/aadelicias/api/internal/enum"
	"github.com/aadelicias/api/internal/service"
	"github.com/aadelicias/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderSaver is the write side of the order lifecycle, satisfied by
// *service.OrderService.
type OrderSaver interface {
	SaveOrder(ctx context.Context, req service.SaveOrderRequest) (*service.SaveOrderResult, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// OrderReadStore defines the read queries order handlers use directly.
// Satisfied by *database.Queries.
type OrderReadStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderProductionStage(ctx context.Context, arg database.UpdateOrderProductionStageParams) (database.Order, error)
}

// Broadcaster pushes order events to connected dashboard clients.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	saver OrderSaver
	store OrderReadStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(saver OrderSaver, store OrderReadStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{saver: saver, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/production-stage", h.UpdateProductionStage)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Details   string `json:"details"`
}

type saveOrderRequest struct {
	CustomerName       string             `json:"customer_name"`
	CustomerWhatsapp   string             `json:"customer_whatsapp"`
	BirthdayPersonName string             `json:"birthday_person_name"`
	BirthdayPersonAge  int32              `json:"birthday_person_age"`
	PartyType          string             `json:"party_type"`
	Theme              string             `json:"theme"`
	DueDate            string             `json:"due_date"`
	DueTime            string             `json:"due_time"`
	Location           string             `json:"location"`
	DeliveryFee        string             `json:"delivery_fee"`
	Discount           string             `json:"discount"`
	Status             string             `json:"status"`
	ProductionStage    string             `json:"production_stage"`
	Notes              string             `json:"notes"`
	Items              []orderItemRequest `json:"items"`
}

type updateProductionStageRequest struct {
	ProductionStage string `json:"production_stage"`
}

type orderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   string    `json:"product_id"`
	Name        string    `json:"name"`
	Quantity    string    `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	Details     *string   `json:"details"`
	MeasureUnit string    `json:"measure_unit"`
}

type orderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	CustomerName       string              `json:"customer_name"`
	CustomerWhatsapp   *string             `json:"customer_whatsapp"`
	BirthdayPersonName *string             `json:"birthday_person_name"`
	BirthdayPersonAge  *int32              `json:"birthday_person_age"`
	PartyType          *string             `json:"party_type"`
	Theme              *string             `json:"theme"`
	DueDate            string              `json:"due_date"`
	DueTime            *string             `json:"due_time"`
	Location           *string             `json:"location"`
	DeliveryFee        string              `json:"delivery_fee"`
	Discount           string              `json:"discount"`
	TotalPrice         string              `json:"total_price"`
	Status             string              `json:"status"`
	ProductionStage    string              `json:"production_stage"`
	Notes              *string             `json:"notes"`
	Items              []orderItemResponse `json:"items,omitempty"`
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:          it.ID,
		ProductID:   it.ProductID,
		Name:        it.Name,
		Quantity:    numericString(it.Quantity),
		UnitPrice:   numericString(it.UnitPrice),
		Details:     textPtr(it.Details),
		MeasureUnit: it.MeasureUnit,
	}
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:                 o.ID,
		CustomerName:       o.CustomerName,
		CustomerWhatsapp:   textPtr(o.CustomerWhatsapp),
		BirthdayPersonName: textPtr(o.BirthdayPersonName),
		PartyType:          textPtr(o.PartyType),
		Theme:              textPtr(o.Theme),
		DueTime:            textPtr(o.DueTime),
		Location:           textPtr(o.Location),
		DeliveryFee:        numericString(o.DeliveryFee),
		Discount:           numericString(o.Discount),
		TotalPrice:         numericString(o.TotalPrice),
		Status:             o.Status,
		ProductionStage:    o.ProductionStage,
		Notes:              textPtr(o.Notes),
	}
	if o.DueDate.Valid {
		resp.DueDate = o.DueDate.Time.Format("2006-01-02")
	}
	if o.BirthdayPersonAge.Valid {
		age := o.BirthdayPersonAge.Int32
		resp.BirthdayPersonAge = &age
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(it))
	}
	return resp
}

func toSaveRequest(id string, req saveOrderRequest) service.SaveOrderRequest {
	out := service.SaveOrderRequest{
		ID:                 id,
		CustomerName:       req.CustomerName,
		CustomerWhatsapp:   req.CustomerWhatsapp,
		BirthdayPersonName: req.BirthdayPersonName,
		BirthdayPersonAge:  req.BirthdayPersonAge,
		PartyType:          req.PartyType,
		Theme:              req.Theme,
		DueDate:            req.DueDate,
		DueTime:            req.DueTime,
		Location:           req.Location,
		DeliveryFee:        req.DeliveryFee,
		Discount:           req.Discount,
		Status:             req.Status,
		ProductionStage:    req.ProductionStage,
		Notes:              req.Notes,
	}
	for _, it := range req.Items {
		out.Selections = append(out.Selections, service.Selection{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Details:   it.Details,
		})
	}
	return out
}

// --- Handlers ---

// List returns orders newest first, optionally filtered by customer or theme.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
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

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		Limit:  limit,
		Offset: offset,
		Search: search,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single order with its items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// Create saves a new order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	h.save(w, r, "", req, http.StatusCreated)
}

// Update replaces an existing order, items and all.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req saveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	h.save(w, r, id, req, http.StatusOK)
}

func (h *OrderHandler) save(w http.ResponseWriter, r *http.Request, id string, req saveOrderRequest, okStatus int) {
	result, err := h.saver.SaveOrder(r.Context(), toSaveRequest(id, req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case isValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: save order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.broadcast(ws.EventOrderSaved, resp)
	writeJSON(w, okStatus, resp)
}

// UpdateProductionStage moves an order along the production pipeline without
// touching pricing or the ledger.
func (h *OrderHandler) UpdateProductionStage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateProductionStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !isValidStage(req.ProductionStage) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid production_stage"})
		return
	}

	order, err := h.store.UpdateOrderProductionStage(r.Context(), database.UpdateOrderProductionStageParams{
		ID:              id,
		ProductionStage: req.ProductionStage,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update production stage: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order, nil)
	h.broadcast(ws.EventOrderSaved, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes an order together with its items and ledger transaction.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.saver.DeleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcast(ws.EventOrderDeleted, map[string]string{"id": id.String()})
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *OrderHandler) broadcast(eventType string, payload interface{}) {
	if h.hub == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.hub.Broadcast(ws.Event{Type: eventType, Payload: data})
}

func isValidStage(stage string) bool {
	switch stage {
	case enum.ProductionStagePrePrep, enum.ProductionStageProduction,
		enum.ProductionStageDrying, enum.ProductionStagePackaging, enum.ProductionStageReady:
		return true
	}
	return false
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		service.ErrCustomerNameRequired,
		service.ErrDueDateRequired,
		service.ErrInvalidDueDate,
		service.ErrInvalidStatus,
		service.ErrInvalidStage,
		service.ErrInvalidQuantity,
		service.ErrInvalidUnitPrice,
		service.ErrProductNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
