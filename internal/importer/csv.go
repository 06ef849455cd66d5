// Package importer parses bank statement CSV exports into ledger rows.
//
// Banks disagree on almost everything: date formats, header rows, quoting,
// currency symbols, negative-amount conventions. The parser is permissive
// by design: rows it cannot make sense of are skipped and reported, never
// fatal. Categorization is a best-effort vendor keyword match that the
// user reviews before committing the import.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"pnltracker/internal/core"
)

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Confidence grades a category suggestion.
type Confidence string

// Row is one parsed statement line, ready for user review.
type Row struct {
	Date                core.Date            `json:"date"`
	Description         string               `json:"description"`
	Amount              core.Money           `json:"amount"`
	SuggestedType       core.TransactionType `json:"suggested_type"`
	SuggestedCategoryID string               `json:"suggested_category_id,omitempty"`
	Confidence          Confidence           `json:"confidence"`
}

// Result carries the parsed rows plus a count of lines that were skipped
// because the date or amount could not be parsed.
type Result struct {
	Rows    []Row `json:"rows"`
	Skipped int   `json:"skipped"`
}

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	dayMonthRe    = regexp.MustCompile(`^(\d{1,2})[-\s]([a-z]{3})`)
	monthDayRe    = regexp.MustCompile(`^([a-z]{3})[-\s](\d{1,2})`)
	numericRe     = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})$`)
	isoRe         = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	fullNumericRe = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})$`)
)

// ParseBankDate parses the date formats banks actually emit: "4-Oct",
// "Oct 4", "10/4", "10/4/2024" and ISO. Year-less formats borrow the
// statement year.
func ParseBankDate(raw string, year int) (core.Date, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		if month, ok := months[m[2]]; ok && day >= 1 && day <= 31 {
			return core.NewDate(year, month, day), nil
		}
	}
	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[2])
		if month, ok := months[m[1]]; ok && day >= 1 && day <= 31 {
			return core.NewDate(year, month, day), nil
		}
	}
	if m := numericRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return core.NewDate(year, month, day), nil
		}
	}
	if isoRe.MatchString(s) {
		return core.ParseDate(s)
	}
	if m := fullNumericRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return core.NewDate(y, month, day), nil
		}
	}

	return core.Date{}, fmt.Errorf("%w: unrecognized bank date %q", core.ErrInvalidDate, raw)
}

// MatchVendor suggests an expense category for a statement description.
// A known vendor keyword is a high-confidence hit; a description merely
// containing the category's own name is medium. Only expense categories are
// candidates; bank statement imports default to expenses.
func MatchVendor(description string, categories []core.Category) (string, Confidence) {
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		if c.Type == core.Expense {
			byName[c.Name] = c.ID
		}
	}

	upper := strings.ToUpper(description)
	for categoryName, keywords := range vendorKeywords {
		categoryID, ok := byName[categoryName]
		if !ok {
			continue
		}
		for _, keyword := range keywords {
			if strings.Contains(upper, keyword) {
				return categoryID, ConfidenceHigh
			}
		}
	}

	for name, id := range byName {
		if strings.Contains(upper, strings.ToUpper(name)) {
			return id, ConfidenceMedium
		}
	}

	return "", ConfidenceLow
}

// ParseStatement reads a bank statement CSV and returns review-ready rows.
// A header line mentioning date/description/amount is skipped; columns are
// taken positionally as date, description, amount.
func ParseStatement(r io.Reader, year int, categories []core.Category) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var result Result
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed quoting on one line should not sink the file.
			result.Skipped++
			continue
		}

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) < 3 {
			result.Skipped++
			continue
		}

		date, err := ParseBankDate(record[0], year)
		if err != nil {
			result.Skipped++
			continue
		}
		cents, err := parseStatementAmount(record[2])
		if err != nil || cents == 0 {
			result.Skipped++
			continue
		}

		description := core.SanitizeText(record[1])
		categoryID, confidence := MatchVendor(description, categories)
		if cents < 0 {
			cents = -cents
		}

		result.Rows = append(result.Rows, Row{
			Date:                date,
			Description:         description,
			Amount:              core.Money{Cents: cents},
			SuggestedType:       core.Expense,
			SuggestedCategoryID: categoryID,
			Confidence:          confidence,
		})
	}

	return result, nil
}

func isHeader(record []string) bool {
	line := strings.ToLower(strings.Join(record, ","))
	return strings.Contains(line, "date") ||
		strings.Contains(line, "description") ||
		strings.Contains(line, "amount") ||
		strings.Contains(line, "transaction")
}

// parseStatementAmount handles "$1,234.56", "-12.50" and the accounting
// convention "(12.50)" for debits. The sign is preserved for the caller.
func parseStatementAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidAmount, raw)
	}
	cents := core.CentsFromDollars(v)
	if negative {
		cents = -cents
	}
	return cents, nil
}
