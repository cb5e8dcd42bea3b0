// Package recurrence predicts the next annual birthday behind past party
// orders and decides when the shop should reach out. All date math runs on
// calendar days; "today" is always an explicit input so results are
// reproducible.
package recurrence

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aadelicias/api/internal/enum"
)

// PartyRecord is the slice of an order the scheduler needs.
type PartyRecord struct {
	CustomerName       string
	CustomerWhatsapp   string
	BirthdayPersonName string
	BirthdayPersonAge  int32
	Theme              string
	DueDate            time.Time
	Status             string
}

// Opportunity is a predicted upcoming birthday worth a proactive message.
type Opportunity struct {
	CustomerName       string
	CustomerWhatsapp   string
	BirthdayPersonName string
	Theme              string
	LastDate           time.Time
	NextDate           time.Time
	NewAge             int32
	DaysUntil          int
}

// Upcoming computes outreach opportunities from historical party orders.
//
// Records are grouped by (customer name, birthday person name), case
// insensitively, keeping only the most recent party per group. Quotes are
// skipped: an unconfirmed quote is not evidence a party happened, and so are
// records without a usable due date. For each group the next occurrence is
// the same month/day in today's year, rolled forward a year if already past;
// an opportunity is emitted iff today falls inside the lead window before
// that date. Results are sorted by DaysUntil ascending.
func Upcoming(records []PartyRecord, today time.Time, leadDays int) []Opportunity {
	today = truncateToDay(today)

	latest := make(map[string]PartyRecord)
	for _, rec := range records {
		if rec.BirthdayPersonName == "" || rec.DueDate.IsZero() {
			continue
		}
		if rec.Status == enum.OrderStatusQuote {
			continue
		}
		key := strings.ToLower(rec.CustomerName) + "\x00" + strings.ToLower(rec.BirthdayPersonName)
		if prev, ok := latest[key]; !ok || rec.DueDate.After(prev.DueDate) {
			latest[key] = rec
		}
	}

	var out []Opportunity
	for _, rec := range latest {
		last := truncateToDay(rec.DueDate)

		next := time.Date(today.Year(), last.Month(), last.Day(), 0, 0, 0, 0, today.Location())
		if next.Before(today) {
			next = next.AddDate(1, 0, 0)
		}

		windowStart := next.AddDate(0, 0, -leadDays)
		if today.Before(windowStart) || !today.Before(next) {
			continue
		}

		// Both times are midnight-truncated; rounding absorbs DST offsets.
		daysUntil := int(math.Round(next.Sub(today).Hours() / 24))
		newAge := rec.BirthdayPersonAge + int32(next.Year()-last.Year())

		out = append(out, Opportunity{
			CustomerName:       rec.CustomerName,
			CustomerWhatsapp:   rec.CustomerWhatsapp,
			BirthdayPersonName: rec.BirthdayPersonName,
			Theme:              rec.Theme,
			LastDate:           last,
			NextDate:           next,
			NewAge:             newAge,
			DaysUntil:          daysUntil,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DaysUntil < out[j].DaysUntil })
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
