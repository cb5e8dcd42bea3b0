package order

import "github.com/shopspring/decimal"

// Subtotal is the sum of quantity × unit price over items. Component lines of
// a bundle carry a zero unit price, so they contribute nothing here.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Quantity.Mul(it.UnitPrice))
	}
	return total
}

// Total derives the order total: subtotal plus delivery fee minus discount,
// never negative. Negative fee or discount inputs are treated as zero; the
// total is recomputed from its inputs on every change and never stored
// independently of them.
func Total(items []LineItem, deliveryFee, discount decimal.Decimal) decimal.Decimal {
	if deliveryFee.IsNegative() {
		deliveryFee = decimal.Zero
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	total := Subtotal(items).Add(deliveryFee).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
