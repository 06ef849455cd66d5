package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	ModeSimple TaxMode = "simple"
	ModeSmart  TaxMode = "smart"
)

const (
	Single       FilingStatus = "single"
	MarriedJoint FilingStatus = "married_joint"
)

const (
	MaxNameLength  = 200
	MaxNotesLength = 500
)

type (
	TransactionType string

	Frequency string

	TaxMode string

	FilingStatus string

	// Date is a calendar date with no time-of-day component. The wire and
	// storage format is YYYY-MM-DD; internally it is pinned to midnight UTC.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Name        string          `json:"name"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		CategoryID  string          `json:"category_id,omitempty"`
		Notes       string          `json:"notes"`
		RecurringID string          `json:"recurring_id,omitempty"`
	}

	Category struct {
		ID                   string          `json:"id"`
		Name                 string          `json:"name"`
		Type                 TransactionType `json:"type"`
		DeductibilityPercent float64         `json:"deductibility_percentage"`
	}

	TaxConfig struct {
		Mode                         TaxMode      `json:"mode"`
		SimpleRate                   float64      `json:"simpleRate"`
		FilingStatus                 FilingStatus `json:"filingStatus"`
		Dependents                   int          `json:"dependents"`
		SpouseGrossIncome            float64      `json:"spouseGrossIncome"`
		SpouseFederalWithholding     float64      `json:"spouseFederalWithholding"`
		SpousePretaxDeductionPercent float64      `json:"spousePretaxDeductionPercent"`
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrInvalidPercent = errors.New("percentage must be between 0 and 100")
	ErrEmptyName      = errors.New("empty name")
	ErrTooLong        = errors.New("text too long")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrConfiguration  = errors.New("invalid configuration")
	ErrNotFound       = errors.New("not found")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Today truncates an instant to its calendar date in UTC. Time-of-day never
// participates in series comparisons.
func Today(now time.Time) Date {
	y, m, d := now.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the whole-day difference d - other, rounded to the
// nearest day.
func (d Date) DaysSince(other Date) int {
	hours := d.Time.Sub(other.Time).Hours()
	if hours >= 0 {
		return int(hours/24 + 0.5)
	}
	return -int(-hours/24 + 0.5)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Weekly, Monthly, Yearly:
		return nil
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrConfiguration, string(f))
	}
}

// SanitizeText strips control characters and trims whitespace. HTML escaping
// is the presentation layer's concern; storage keeps raw text.
func SanitizeText(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrTooLong, MaxNameLength)
	}
	if len(t.Notes) > MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrTooLong, MaxNotesLength)
	}
	return t.Amount.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrTooLong, MaxNameLength)
	}
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if c.DeductibilityPercent < 0 || c.DeductibilityPercent > 100 {
		return ErrInvalidPercent
	}
	return nil
}

func (c TaxConfig) Validate() error {
	switch c.Mode {
	case ModeSimple, ModeSmart:
	default:
		return fmt.Errorf("%w: unknown tax mode %q", ErrConfiguration, string(c.Mode))
	}
	switch c.FilingStatus {
	case Single, MarriedJoint:
	default:
		return fmt.Errorf("%w: unknown filing status %q", ErrConfiguration, string(c.FilingStatus))
	}
	if c.SimpleRate < 0 || c.SimpleRate > 100 {
		return fmt.Errorf("%w: simple rate out of range", ErrConfiguration)
	}
	if c.Dependents < 0 {
		return fmt.Errorf("%w: negative dependents", ErrConfiguration)
	}
	if c.SpousePretaxDeductionPercent < 0 || c.SpousePretaxDeductionPercent > 100 {
		return fmt.Errorf("%w: spouse pretax deduction out of range", ErrConfiguration)
	}
	return nil
}

// DefaultTaxConfig mirrors the configuration a fresh install starts with.
func DefaultTaxConfig() TaxConfig {
	return TaxConfig{
		Mode:                         ModeSmart,
		SimpleRate:                   25,
		FilingStatus:                 Single,
		Dependents:                   0,
		SpousePretaxDeductionPercent: 10,
	}
}
