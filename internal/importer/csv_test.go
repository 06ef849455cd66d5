package importer

import (
	"errors"
	"strings"
	"testing"

	"pnltracker/internal/core"
)

func TestParseBankDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4-Oct", "2024-10-04"},
		{"4 Oct", "2024-10-04"},
		{"Oct 4", "2024-10-04"},
		{"oct-4", "2024-10-04"},
		{"10/4", "2024-10-04"},
		{"10-4", "2024-10-04"},
		{"2024-10-04", "2024-10-04"},
		{"10/4/2023", "2023-10-04"},
		{"12/31/2024", "2024-12-31"},
		{" 4-Oct ", "2024-10-04"},
	}
	for _, tt := range tests {
		got, err := ParseBankDate(tt.in, 2024)
		if err != nil {
			t.Errorf("ParseBankDate(%q): %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseBankDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "sometime", "45-Oct", "13/45", "Xyz 4"} {
		if _, err := ParseBankDate(bad, 2024); !errors.Is(err, core.ErrInvalidDate) {
			t.Errorf("ParseBankDate(%q) = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestMatchVendor(t *testing.T) {
	categories := []core.Category{
		{ID: "saas", Name: "Software/SaaS", Type: core.Expense, DeductibilityPercent: 100},
		{ID: "supplies", Name: "Office Supplies", Type: core.Expense, DeductibilityPercent: 100},
		{ID: "sales", Name: "Software/SaaS", Type: core.Income}, // income categories never match
	}

	id, confidence := MatchVendor("GITHUB INC PAYMENT", categories)
	if id != "saas" || confidence != ConfidenceHigh {
		t.Errorf("GITHUB: got (%q, %s)", id, confidence)
	}

	id, confidence = MatchVendor("staples store #123", categories)
	if id != "supplies" || confidence != ConfidenceHigh {
		t.Errorf("staples: got (%q, %s)", id, confidence)
	}

	id, confidence = MatchVendor("UNKNOWN VENDOR LLC", categories)
	if id != "" || confidence != ConfidenceLow {
		t.Errorf("unknown: got (%q, %s)", id, confidence)
	}

	// Keyword hits for categories the user does not have fall through.
	id, confidence = MatchVendor("MARRIOTT HOTEL", categories)
	if id != "" || confidence != ConfidenceLow {
		t.Errorf("missing category: got (%q, %s)", id, confidence)
	}

	// No vendor keyword, but the description names the category itself.
	id, confidence = MatchVendor("OFFICE SUPPLIES WAREHOUSE", categories)
	if id != "supplies" || confidence != ConfidenceMedium {
		t.Errorf("category name: got (%q, %s)", id, confidence)
	}
}

func TestParseStatement(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,Description,Amount",
		`4-Oct,GITHUB INC,($10.00)`,
		`10/5,STAPLES STORE 123,"1,234.56"`,
		"bad-date,Mystery row,5.00",
		"10/7,Zero amount row,0.00",
		"2024-10-08,CLIENT PAYMENT,-250.00",
		"10/9,short",
	}, "\n")

	categories := []core.Category{
		{ID: "saas", Name: "Software/SaaS", Type: core.Expense, DeductibilityPercent: 100},
		{ID: "supplies", Name: "Office Supplies", Type: core.Expense, DeductibilityPercent: 100},
	}

	result, err := ParseStatement(strings.NewReader(csvData), 2024, categories)
	if err != nil {
		t.Fatalf("ParseStatement: %v", err)
	}

	if result.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", result.Skipped)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(result.Rows))
	}

	github := result.Rows[0]
	if github.Date.String() != "2024-10-04" {
		t.Errorf("github date = %s", github.Date)
	}
	if github.Amount.Cents != 1000 {
		t.Errorf("github amount = %d cents, want 1000 (parenthesized debit, abs)", github.Amount.Cents)
	}
	if github.SuggestedType != core.Expense {
		t.Errorf("github type = %s, want expense", github.SuggestedType)
	}
	if github.SuggestedCategoryID != "saas" || github.Confidence != ConfidenceHigh {
		t.Errorf("github suggestion = (%q, %s)", github.SuggestedCategoryID, github.Confidence)
	}

	staples := result.Rows[1]
	if staples.Amount.Cents != 123456 {
		t.Errorf("staples amount = %d cents, want 123456", staples.Amount.Cents)
	}

	client := result.Rows[2]
	if client.Amount.Cents != 25000 {
		t.Errorf("client amount = %d cents, want 25000 (negatives become absolute)", client.Amount.Cents)
	}
	if client.SuggestedType != core.Expense {
		t.Errorf("client type = %s; every statement row defaults to expense", client.SuggestedType)
	}
	if client.Confidence != ConfidenceLow {
		t.Errorf("client confidence = %s, want low", client.Confidence)
	}
}

func TestParseStatementNoHeader(t *testing.T) {
	csvData := "4-Oct,GITHUB INC,10.00\n5-Oct,STAPLES,20.00\n"

	result, err := ParseStatement(strings.NewReader(csvData), 2024, nil)
	if err != nil {
		t.Fatalf("ParseStatement: %v", err)
	}
	if len(result.Rows) != 2 || result.Skipped != 0 {
		t.Errorf("rows = %d skipped = %d, want 2 and 0", len(result.Rows), result.Skipped)
	}
}

func TestParseStatementAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"$1,234.56", 123456},
		{"-12.50", -1250},
		{"(12.50)", -1250},
		{"($12.50)", -1250},
		{"12.50", 1250},
		{" 1 234.56 ", 123456},
	}
	for _, tt := range tests {
		got, err := parseStatementAmount(tt.in)
		if err != nil {
			t.Errorf("parseStatementAmount(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseStatementAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if _, err := parseStatementAmount("abc"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("parseStatementAmount(abc) = %v, want ErrInvalidAmount", err)
	}
}
