// Package directory holds the customer-merge rule used by the save-time
// upsert: at most one customer exists per case-insensitive name, and an order
// only ever adds information — it never blanks a field the shop already knows.
package directory

import (
	"strings"
	"time"
)

// Customer is a directory record.
type Customer struct {
	Name               string
	Whatsapp           string
	Address            string
	BirthdayPersonName string
	BirthdayPersonAge  int32 // 0 = unknown
	LastOrderDate      time.Time
}

// Update carries the customer fields supplied by an order save. Empty strings
// and a zero age mean "not supplied".
type Update struct {
	Name               string
	Whatsapp           string
	Address            string
	BirthdayPersonName string
	BirthdayPersonAge  int32
}

// SameName reports whether two customer names match under the directory's
// case-insensitive exact comparison. No fuzzy matching.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Merge applies an order's fields onto an existing record. Non-empty supplied
// values overwrite; absent values pass through unchanged. LastOrderDate is
// always refreshed to now. The casing of the stored name is kept.
func Merge(existing Customer, upd Update, now time.Time) Customer {
	out := existing
	if upd.Whatsapp != "" {
		out.Whatsapp = upd.Whatsapp
	}
	if upd.Address != "" {
		out.Address = upd.Address
	}
	if upd.BirthdayPersonName != "" {
		out.BirthdayPersonName = upd.BirthdayPersonName
	}
	if upd.BirthdayPersonAge > 0 {
		out.BirthdayPersonAge = upd.BirthdayPersonAge
	}
	out.LastOrderDate = now
	return out
}

// New creates a fresh record from an order's fields.
func New(upd Update, now time.Time) Customer {
	return Customer{
		Name:               strings.TrimSpace(upd.Name),
		Whatsapp:           upd.Whatsapp,
		Address:            upd.Address,
		BirthdayPersonName: upd.BirthdayPersonName,
		BirthdayPersonAge:  upd.BirthdayPersonAge,
		LastOrderDate:      now,
	}
}
