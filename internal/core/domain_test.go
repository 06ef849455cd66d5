package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := d.String(); got != "2025-01-31" {
		t.Errorf("String() = %q, want 2025-01-31", got)
	}

	for _, bad := range []string{"", "31/01/2025", "2025-13-01", "2025-01-32", "not a date"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 6, 15)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-06-15"` {
		t.Errorf("marshal = %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip: got %s, want %s", back, d)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)
	if got := Today(now); got.String() != "2025-03-14" {
		t.Errorf("Today = %s, want 2025-03-14", got)
	}
}

func TestDaysSince(t *testing.T) {
	a := NewDate(2025, 1, 1)
	b := NewDate(2025, 1, 8)
	if got := b.DaysSince(a); got != 7 {
		t.Errorf("DaysSince = %d, want 7", got)
	}
	if got := a.DaysSince(b); got != -7 {
		t.Errorf("reverse DaysSince = %d, want -7", got)
	}
	if got := a.DaysSince(a); got != 0 {
		t.Errorf("same-day DaysSince = %d, want 0", got)
	}
}

func TestSanitizeText(t *testing.T) {
	got := SanitizeText("  hello\x00\x1bworld\t! ")
	if got != "hello"+"world\t!" {
		t.Errorf("SanitizeText = %q", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:   NewDate(2025, 1, 1),
		Name:   "Client invoice",
		Type:   Income,
		Amount: Money{Cents: 150000},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"empty name", func(tx *Transaction) { tx.Name = "   " }, ErrEmptyName},
		{"long name", func(tx *Transaction) { tx.Name = strings.Repeat("x", MaxNameLength+1) }, ErrTooLong},
		{"long notes", func(tx *Transaction) { tx.Notes = strings.Repeat("x", MaxNotesLength+1) }, ErrTooLong},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{Name: "Business Meals", Type: Expense, DeductibilityPercent: 50}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}

	c.DeductibilityPercent = 101
	if err := c.Validate(); !errors.Is(err, ErrInvalidPercent) {
		t.Errorf("percent 101: got %v, want ErrInvalidPercent", err)
	}
	c.DeductibilityPercent = -1
	if err := c.Validate(); !errors.Is(err, ErrInvalidPercent) {
		t.Errorf("percent -1: got %v, want ErrInvalidPercent", err)
	}
}

func TestTaxConfigValidate(t *testing.T) {
	cfg := DefaultTaxConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}

	bad := cfg
	bad.Mode = "aggressive"
	if err := bad.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown mode: got %v, want ErrConfiguration", err)
	}

	bad = cfg
	bad.FilingStatus = "married_separate"
	if err := bad.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown filing status: got %v, want ErrConfiguration", err)
	}

	bad = cfg
	bad.SimpleRate = 120
	if err := bad.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("rate 120: got %v, want ErrConfiguration", err)
	}

	bad = cfg
	bad.Dependents = -1
	if err := bad.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("negative dependents: got %v, want ErrConfiguration", err)
	}
}
