// Package order holds the pure order-composition logic: expanding kit
// selections into line-item candidates, merging candidates into an item list,
// and pricing. Functions return new slices; inputs are never mutated.
package order

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Detail strings attached to generated lines. They participate in the
// aggregation merge key, so they are fixed here rather than free text.
const (
	DetailBundle            = "bundle"
	detailComponentOfPrefix = "component-of:"
)

var (
	ErrQuantityNotPositive = errors.New("quantity must be > 0")
	ErrUnknownProduct      = errors.New("product not in catalog")
)

// LineItem is one row of an order. Owned by exactly one order.
type LineItem struct {
	ID          uuid.UUID
	ProductID   string
	Name        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Details     string
	MeasureUnit string
}

// Candidate is a line item before it has been merged into an order (no id
// yet). Kit expansion produces candidates; MergeLines assigns ids.
type Candidate struct {
	ProductID   string
	Name        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Details     string
	MeasureUnit string
}

// ComponentDetail is the detail string stamped on zero-priced component lines
// of the named bundle.
func ComponentDetail(bundleName string) string {
	return detailComponentOfPrefix + bundleName
}

// mergeKey identifies lines that aggregate together: same product, same price
// to the cent, same trimmed detail text.
type mergeKey struct {
	productID string
	unitPrice string
	details   string
}

func keyOf(productID string, unitPrice decimal.Decimal, details string) mergeKey {
	return mergeKey{
		productID: productID,
		unitPrice: unitPrice.Round(2).StringFixed(2),
		details:   strings.TrimSpace(details),
	}
}

// MergeLines folds candidates into items by merge key: an existing line with
// the same key has its quantity incremented, anything else is appended with a
// fresh id. The input slice is not modified. Adding the same candidate twice
// yields one line with the summed quantity.
func MergeLines(items []LineItem, candidates []Candidate) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)

	index := make(map[mergeKey]int, len(out))
	for i, it := range out {
		index[keyOf(it.ProductID, it.UnitPrice, it.Details)] = i
	}

	for _, c := range candidates {
		k := keyOf(c.ProductID, c.UnitPrice, c.Details)
		if i, ok := index[k]; ok {
			out[i].Quantity = out[i].Quantity.Add(c.Quantity)
			continue
		}
		out = append(out, LineItem{
			ID:          uuid.New(),
			ProductID:   c.ProductID,
			Name:        c.Name,
			Quantity:    c.Quantity,
			UnitPrice:   c.UnitPrice,
			Details:     strings.TrimSpace(c.Details),
			MeasureUnit: c.MeasureUnit,
		})
		index[k] = len(out) - 1
	}
	return out
}

// RemoveLine returns items without the line identified by id. Other lines are
// untouched.
func RemoveLine(items []LineItem, id uuid.UUID) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.ID == id {
			continue
		}
		out = append(out, it)
	}
	return out
}
