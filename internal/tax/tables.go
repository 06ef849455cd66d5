package tax

import (
	"fmt"
	"math"

	"pnltracker/internal/core"
)

// Bracket is one tier of a progressive rate schedule. Upper is the top of
// the tier in dollars; the last tier uses +Inf.
type Bracket struct {
	Upper float64
	Rate  float64
}

// Tables holds the per-year constants the estimator needs. They are data,
// not logic: the IRS publishes new figures annually and a new year is added
// here without touching the estimator.
type Tables struct {
	Year              int
	StandardDeduction map[core.FilingStatus]float64
	Brackets          map[core.FilingStatus][]Bracket
	ChildTaxCredit    float64
	StateRate         float64
	SETaxableShare    float64
	SERate            float64
}

// 2025 projected figures.
var tables2025 = Tables{
	Year: 2025,
	StandardDeduction: map[core.FilingStatus]float64{
		core.Single:       14600,
		core.MarriedJoint: 29200,
	},
	Brackets: map[core.FilingStatus][]Bracket{
		core.Single: {
			{Upper: 11925, Rate: 0.10},
			{Upper: 48475, Rate: 0.12},
			{Upper: 103350, Rate: 0.22},
			{Upper: 197300, Rate: 0.24},
			{Upper: 250525, Rate: 0.32},
			{Upper: 626350, Rate: 0.35},
			{Upper: math.Inf(1), Rate: 0.37},
		},
		core.MarriedJoint: {
			{Upper: 23850, Rate: 0.10},
			{Upper: 96950, Rate: 0.12},
			{Upper: 206700, Rate: 0.22},
			{Upper: 394600, Rate: 0.24},
			{Upper: 501050, Rate: 0.32},
			{Upper: 751600, Rate: 0.35},
			{Upper: math.Inf(1), Rate: 0.37},
		},
	},
	ChildTaxCredit: 2000,
	// PA flat rate; applies to the filer's business profit only.
	StateRate:      0.0307,
	SETaxableShare: 0.9235,
	SERate:         0.153,
}

var tablesByYear = map[int]Tables{
	2025: tables2025,
}

// TablesForYear returns the published constants for a tax year.
func TablesForYear(year int) (Tables, error) {
	t, ok := tablesByYear[year]
	if !ok {
		return Tables{}, fmt.Errorf("%w: no tax tables for year %d", core.ErrConfiguration, year)
	}
	return t, nil
}

// CurrentTables returns the most recent year on file.
func CurrentTables() Tables {
	latest := 0
	for year := range tablesByYear {
		if year > latest {
			latest = year
		}
	}
	return tablesByYear[latest]
}

// StandardDeductionFor looks up the standard deduction for a filing status.
func (t Tables) StandardDeductionFor(status core.FilingStatus) (float64, error) {
	d, ok := t.StandardDeduction[status]
	if !ok {
		return 0, fmt.Errorf("%w: unknown filing status %q", core.ErrConfiguration, string(status))
	}
	return d, nil
}

// BracketsFor looks up the rate schedule for a filing status.
func (t Tables) BracketsFor(status core.FilingStatus) ([]Bracket, error) {
	b, ok := t.Brackets[status]
	if !ok {
		return nil, fmt.Errorf("%w: unknown filing status %q", core.ErrConfiguration, string(status))
	}
	return b, nil
}
