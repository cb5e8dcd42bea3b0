package recurrence

import (
	"testing"
	"time"

	"github.com/aadelicias/api/internal/enum"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUpcomingDeterministicExample(t *testing.T) {
	// Party on 2023-12-20, child turned 5. Seen from 2024-10-01 the next
	// occurrence is 2024-12-20 and the child turns 6.
	records := []PartyRecord{{
		CustomerName:       "Maria Silva",
		BirthdayPersonName: "João",
		BirthdayPersonAge:  5,
		DueDate:            day(2023, time.December, 20),
		Status:             enum.OrderStatusFinalized,
	}}
	today := day(2024, time.October, 1)

	// 60-day window opens 2024-10-21; on 2024-10-01 nothing shows yet.
	if got := Upcoming(records, today, 60); len(got) != 0 {
		t.Fatalf("outside window: got %d opportunities, want 0", len(got))
	}

	today = day(2024, time.November, 1)
	got := Upcoming(records, today, 60)
	if len(got) != 1 {
		t.Fatalf("inside window: got %d opportunities, want 1", len(got))
	}
	op := got[0]
	if !op.NextDate.Equal(day(2024, time.December, 20)) {
		t.Errorf("nextDate: got %v, want 2024-12-20", op.NextDate)
	}
	if op.NewAge != 6 {
		t.Errorf("newAge: got %d, want 6", op.NewAge)
	}
	if op.DaysUntil != 49 {
		t.Errorf("daysUntil: got %d, want 49", op.DaysUntil)
	}
}

func TestUpcomingRollsAcrossYearBoundary(t *testing.T) {
	// Birthday month/day already passed this year: next occurrence is next year.
	records := []PartyRecord{{
		CustomerName:       "Ana",
		BirthdayPersonName: "Bia",
		BirthdayPersonAge:  3,
		DueDate:            day(2024, time.January, 15),
		Status:             enum.OrderStatusPaid100,
	}}

	got := Upcoming(records, day(2024, time.December, 20), 60)
	if len(got) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(got))
	}
	if !got[0].NextDate.Equal(day(2025, time.January, 15)) {
		t.Errorf("nextDate: got %v, want 2025-01-15", got[0].NextDate)
	}
	if got[0].NewAge != 4 {
		t.Errorf("newAge: got %d, want 4", got[0].NewAge)
	}
}

func TestUpcomingWindowBoundaries(t *testing.T) {
	records := []PartyRecord{{
		CustomerName:       "Ana",
		BirthdayPersonName: "Bia",
		DueDate:            day(2023, time.December, 20),
		Status:             enum.OrderStatusFinalized,
	}}

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"day before window opens", day(2024, time.October, 20), 0},
		{"window start day", day(2024, time.October, 21), 1},
		{"day before occurrence", day(2024, time.December, 19), 1},
		{"occurrence day itself", day(2024, time.December, 20), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Upcoming(records, tt.today, 60); len(got) != tt.want {
				t.Errorf("got %d opportunities, want %d", len(got), tt.want)
			}
		})
	}
}

func TestUpcomingKeepsLatestPartyPerPerson(t *testing.T) {
	records := []PartyRecord{
		{
			CustomerName:       "Maria Silva",
			BirthdayPersonName: "João",
			BirthdayPersonAge:  4,
			DueDate:            day(2022, time.December, 18),
			Status:             enum.OrderStatusFinalized,
		},
		{
			CustomerName:       "maria silva", // same customer, different casing
			BirthdayPersonName: "joão",
			BirthdayPersonAge:  5,
			DueDate:            day(2023, time.December, 20),
			Status:             enum.OrderStatusFinalized,
		},
	}

	got := Upcoming(records, day(2024, time.November, 1), 60)
	if len(got) != 1 {
		t.Fatalf("got %d opportunities, want 1 (groups must merge case-insensitively)", len(got))
	}
	if got[0].NewAge != 6 {
		t.Errorf("newAge from latest record: got %d, want 6", got[0].NewAge)
	}
}

func TestUpcomingSkipsQuotesAndIncompleteRecords(t *testing.T) {
	records := []PartyRecord{
		{CustomerName: "A", BirthdayPersonName: "X", DueDate: day(2023, time.December, 1), Status: enum.OrderStatusQuote},
		{CustomerName: "B", BirthdayPersonName: "", DueDate: day(2023, time.December, 1), Status: enum.OrderStatusFinalized},
		{CustomerName: "C", BirthdayPersonName: "Y", Status: enum.OrderStatusFinalized}, // zero due date
	}

	if got := Upcoming(records, day(2024, time.November, 1), 60); len(got) != 0 {
		t.Errorf("got %d opportunities, want 0", len(got))
	}
}

func TestUpcomingSortedByDaysUntil(t *testing.T) {
	records := []PartyRecord{
		{CustomerName: "A", BirthdayPersonName: "X", DueDate: day(2023, time.December, 20), Status: enum.OrderStatusFinalized},
		{CustomerName: "B", BirthdayPersonName: "Y", DueDate: day(2023, time.November, 10), Status: enum.OrderStatusFinalized},
	}

	got := Upcoming(records, day(2024, time.November, 1), 60)
	if len(got) != 2 {
		t.Fatalf("got %d opportunities, want 2", len(got))
	}
	if got[0].DaysUntil > got[1].DaysUntil {
		t.Errorf("not sorted ascending: %d then %d", got[0].DaysUntil, got[1].DaysUntil)
	}
	if got[0].CustomerName != "B" {
		t.Errorf("nearest first: got %s, want B", got[0].CustomerName)
	}
}
