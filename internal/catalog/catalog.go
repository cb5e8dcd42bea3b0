// Package catalog provides a read-only index over the product catalog,
// including the registered bundle (kit) compositions. The index is built once
// from rows handed in by the persistence layer and is never mutated.
package catalog

import "github.com/shopspring/decimal"

// Product is an immutable catalog entry.
type Product struct {
	ID                    string
	Name                  string
	Description           string
	BasePrice             decimal.Decimal
	CostPrice             decimal.Decimal
	Category              string
	MeasureUnit           string
	ProductionTimeMinutes int32
}

// BundleItem is one component of a bundle composition: the component product
// and how many of it one bundle contains.
type BundleItem struct {
	ProductID string
	Quantity  int32
}

// Index is a lookup of products by id plus the bundle compositions.
type Index struct {
	products map[string]Product
	bundles  map[string][]BundleItem
}

// NewIndex builds an Index from catalog rows. Compositions referencing a
// bundle id that is not itself a product are dropped; component ids are kept
// as-is and resolved at lookup time.
func NewIndex(products []Product, compositions map[string][]BundleItem) *Index {
	ix := &Index{
		products: make(map[string]Product, len(products)),
		bundles:  make(map[string][]BundleItem),
	}
	for _, p := range products {
		ix.products[p.ID] = p
	}
	for bundleID, items := range compositions {
		if _, ok := ix.products[bundleID]; !ok {
			continue
		}
		ix.bundles[bundleID] = items
	}
	return ix
}

// Product returns the catalog entry for id.
func (ix *Index) Product(id string) (Product, bool) {
	p, ok := ix.products[id]
	return p, ok
}

// Bundle returns the composition for id, or false if id is not a registered
// bundle.
func (ix *Index) Bundle(id string) ([]BundleItem, bool) {
	items, ok := ix.bundles[id]
	return items, ok
}

// IsBundle reports whether id names a registered bundle product.
func (ix *Index) IsBundle(id string) bool {
	_, ok := ix.bundles[id]
	return ok
}
