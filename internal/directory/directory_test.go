package directory

import (
	"testing"
	"time"
)

func TestSameName(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Maria Silva", "maria silva", true},
		{"Maria Silva", "MARIA SILVA", true},
		{"  Maria Silva  ", "maria silva", true},
		{"Maria Silva", "Maria Souza", false},
		{"Maria", "Mariana", false},
	}

	for _, tt := range tests {
		if got := SameName(tt.a, tt.b); got != tt.want {
			t.Errorf("SameName(%q, %q): got %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMergeOverwritesOnlyNonEmpty(t *testing.T) {
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	existing := Customer{
		Name:               "Maria Silva",
		Whatsapp:           "+5511999990000",
		Address:            "Rua A, 10",
		BirthdayPersonName: "João",
		BirthdayPersonAge:  5,
		LastOrderDate:      now.AddDate(-1, 0, 0),
	}

	got := Merge(existing, Update{
		Name:     "maria silva", // different casing, stored name wins
		Whatsapp: "+5511888880000",
		// Address, birthday fields absent
	}, now)

	if got.Name != "Maria Silva" {
		t.Errorf("name: got %q, want stored casing kept", got.Name)
	}
	if got.Whatsapp != "+5511888880000" {
		t.Errorf("whatsapp not overwritten: %q", got.Whatsapp)
	}
	if got.Address != "Rua A, 10" {
		t.Errorf("absent address clobbered existing value: %q", got.Address)
	}
	if got.BirthdayPersonName != "João" || got.BirthdayPersonAge != 5 {
		t.Errorf("absent birthday fields clobbered: %q / %d", got.BirthdayPersonName, got.BirthdayPersonAge)
	}
	if !got.LastOrderDate.Equal(now) {
		t.Errorf("lastOrderDate not refreshed: %v", got.LastOrderDate)
	}
}

func TestMergeNeverFails(t *testing.T) {
	// A fully empty update only refreshes lastOrderDate.
	now := time.Now()
	existing := Customer{Name: "Ana", Whatsapp: "123"}
	got := Merge(existing, Update{}, now)
	if got.Whatsapp != "123" || got.Name != "Ana" {
		t.Errorf("empty update changed fields: %+v", got)
	}
}

func TestNew(t *testing.T) {
	now := time.Now()
	got := New(Update{Name: "  Ana Costa ", Whatsapp: "456", BirthdayPersonAge: 7}, now)
	if got.Name != "Ana Costa" {
		t.Errorf("name not trimmed: %q", got.Name)
	}
	if got.BirthdayPersonAge != 7 || got.Whatsapp != "456" {
		t.Errorf("fields not carried: %+v", got)
	}
	if !got.LastOrderDate.Equal(now) {
		t.Errorf("lastOrderDate: %v", got.LastOrderDate)
	}
}
