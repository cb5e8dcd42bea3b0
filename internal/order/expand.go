package order

import (
	"fmt"

	"github.com/aadelicias/api/internal/catalog"
	"github.com/shopspring/decimal"
)

// ExpandSelection turns one product selection into line-item candidates.
//
// For a registered bundle it emits the parent line at the given unit price
// plus one zero-priced line per component, scaled by the requested quantity,
// so the bundle's value is counted exactly once; the caller's detail text is
// ignored for bundles because generated lines carry fixed detail markers.
// Anything else becomes a single full-price line with the given detail text.
// Components missing from the catalog are skipped rather than failing the
// whole selection.
func ExpandSelection(ix *catalog.Index, productID string, quantity, unitPrice decimal.Decimal, details string) ([]Candidate, error) {
	if !quantity.IsPositive() {
		return nil, ErrQuantityNotPositive
	}
	product, ok := ix.Product(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	composition, isBundle := ix.Bundle(productID)
	if !isBundle {
		return []Candidate{{
			ProductID:   product.ID,
			Name:        product.Name,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Details:     details,
			MeasureUnit: product.MeasureUnit,
		}}, nil
	}

	candidates := make([]Candidate, 0, len(composition)+1)
	candidates = append(candidates, Candidate{
		ProductID:   product.ID,
		Name:        product.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Details:     DetailBundle,
		MeasureUnit: product.MeasureUnit,
	})

	for _, comp := range composition {
		compProduct, ok := ix.Product(comp.ProductID)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			ProductID:   compProduct.ID,
			Name:        compProduct.Name,
			Quantity:    decimal.NewFromInt32(comp.Quantity).Mul(quantity),
			UnitPrice:   decimal.Zero,
			Details:     ComponentDetail(product.Name),
			MeasureUnit: compProduct.MeasureUnit,
		})
	}
	return candidates, nil
}
