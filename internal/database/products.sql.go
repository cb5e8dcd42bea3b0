package database

import (
	"context"
)

const listProducts = `
SELECT id, name, description, base_price, cost_price, category, measure_unit, production_time_minutes, is_bundle, created_at
FROM products
ORDER BY name
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.BasePrice,
			&i.CostPrice,
			&i.Category,
			&i.MeasureUnit,
			&i.ProductionTimeMinutes,
			&i.IsBundle,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getProduct = `
SELECT id, name, description, base_price, cost_price, category, measure_unit, production_time_minutes, is_bundle, created_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id string) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.BasePrice,
		&i.CostPrice,
		&i.Category,
		&i.MeasureUnit,
		&i.ProductionTimeMinutes,
		&i.IsBundle,
		&i.CreatedAt,
	)
	return i, err
}

const listBundleItems = `
SELECT id, bundle_id, product_id, quantity, sort_order
FROM bundle_items
ORDER BY bundle_id, sort_order
`

func (q *Queries) ListBundleItems(ctx context.Context) ([]BundleItem, error) {
	rows, err := q.db.Query(ctx, listBundleItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BundleItem
	for rows.Next() {
		var i BundleItem
		if err := rows.Scan(&i.ID, &i.BundleID, &i.ProductID, &i.Quantity, &i.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listBundleItemsByBundle = `
SELECT id, bundle_id, product_id, quantity, sort_order
FROM bundle_items
WHERE bundle_id = $1
ORDER BY sort_order
`

func (q *Queries) ListBundleItemsByBundle(ctx context.Context, bundleID string) ([]BundleItem, error) {
	rows, err := q.db.Query(ctx, listBundleItemsByBundle, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BundleItem
	for rows.Next() {
		var i BundleItem
		if err := rows.Scan(&i.ID, &i.BundleID, &i.ProductID, &i.Quantity, &i.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
