// Package ledger maps an order's payment status to the revenue the books
// recognize for it. The ledger carries at most one transaction per order, and
// that transaction is a deterministic projection of the order's status and
// total; the persistence side of the projection lives in the service layer.
package ledger

import (
	"github.com/aadelicias/api/internal/enum"
	"github.com/shopspring/decimal"
)

var (
	fractionZero = decimal.Zero
	fractionHalf = decimal.NewFromFloat(0.5)
	fractionFull = decimal.NewFromInt(1)
)

// RevenueFraction returns the portion of an order's total considered earned
// at the given status. PENDING_100 recognizes the full amount — observed
// bookkeeping behavior, kept as-is (see enum).
func RevenueFraction(status string) decimal.Decimal {
	switch status {
	case enum.OrderStatusPending50:
		return fractionHalf
	case enum.OrderStatusPending100, enum.OrderStatusPaid100, enum.OrderStatusFinalized:
		return fractionFull
	default:
		return fractionZero
	}
}

// Recognized is the income amount the ledger should carry for an order with
// the given status and total. A zero result means the order's transaction, if
// any, must be removed.
func Recognized(status string, total decimal.Decimal) decimal.Decimal {
	return RevenueFraction(status).Mul(total)
}
