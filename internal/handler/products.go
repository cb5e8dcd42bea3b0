package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/aadelicias/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]database.Product, error)
	GetProduct(ctx context.Context, id string) (database.Product, error)
	ListBundleItemsByBundle(ctx context.Context, bundleID string) ([]database.BundleItem, error)
}

// ProductHandler serves the catalog. The catalog is seeded, not editable over
// the API, so the surface is read-only.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/bundle-items", h.BundleItems)
}

// --- Response types ---

type productResponse struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Description           *string `json:"description"`
	BasePrice             string  `json:"base_price"`
	CostPrice             string  `json:"cost_price"`
	Category              string  `json:"category"`
	MeasureUnit           string  `json:"measure_unit"`
	ProductionTimeMinutes int32   `json:"production_time_minutes"`
	IsBundle              bool    `json:"is_bundle"`
}

type bundleItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

func toProductResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		BasePrice:             numericString(p.BasePrice),
		CostPrice:             numericString(p.CostPrice),
		Category:              p.Category,
		MeasureUnit:           p.MeasureUnit,
		ProductionTimeMinutes: p.ProductionTimeMinutes,
		IsBundle:              p.IsBundle,
	}
	if p.Description.Valid {
		resp.Description = &p.Description.String
	}
	return resp
}

// numericString renders a pgtype.Numeric as money with 2 decimal places.
func numericString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

// --- Handlers ---

// List returns the whole catalog.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single product by its catalog id.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// BundleItems returns a bundle's composition. Non-bundle products yield an
// empty list.
func (h *ProductHandler) BundleItems(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.store.GetProduct(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListBundleItemsByBundle(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list bundle items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]bundleItemResponse, len(items))
	for i, bi := range items {
		resp[i] = bundleItemResponse{ProductID: bi.ProductID, Quantity: bi.Quantity}
	}

	writeJSON(w, http.StatusOK, resp)
}
