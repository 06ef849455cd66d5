// Package tax estimates a self-employed filer's US tax liability from the
// ledger, the category deductibility table and the filing configuration.
//
// Two modes exist: simple applies one flat rate to cash profit; smart
// approximates a real return (Schedule C basis, self-employment tax,
// progressive federal brackets, flat state tax, child tax credit, spouse
// income and withholding for joint filers).
package tax

import (
	"math"

	"pnltracker/internal/core"
)

// Result is the full estimate breakdown. Monetary fields are dollars
// rounded to cents; TotalTax is negative when withholding exceeds the
// liability, i.e. an expected refund.
type Result struct {
	GrossIncome        float64 `json:"grossIncome"`
	TotalExpenses      float64 `json:"totalExpenses"`
	DeductibleExpenses float64 `json:"deductibleExpenses"`
	NetProfit          float64 `json:"netProfit"`
	TaxableNetProfit   float64 `json:"taxableNetProfit"`

	FederalTaxableIncome float64 `json:"federalTaxableIncome"`
	SETax                float64 `json:"seTax"`
	StateTax             float64 `json:"stateTax"`
	FederalTax           float64 `json:"federalTax"`
	Credits              float64 `json:"credits"`

	TotalTax                  float64 `json:"totalTax"`
	TotalTaxBeforeWithholding float64 `json:"totalTaxBeforeWithholding"`
	SpouseWithholding         float64 `json:"spouseWithholding"`
	SpouseGrossIncome         float64 `json:"spouseGrossIncome"`
	SpouseTaxableIncome       float64 `json:"spouseTaxableIncome"`

	EffectiveRate float64 `json:"effectiveRate"`
}

// Estimate computes the tax estimate for a transaction set. It is pure: no
// clock, no I/O, and it never panics on well-formed input. A malformed
// config (unknown mode or filing status) returns core.ErrConfiguration.
func Estimate(transactions []core.Transaction, categories []core.Category, cfg core.TaxConfig, tables Tables) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	deductibility := make(map[string]float64, len(categories))
	for _, c := range categories {
		deductibility[c.ID] = c.DeductibilityPercent
	}

	var grossIncome, totalExpenses, deductibleExpenses float64
	for _, tx := range transactions {
		amount := tx.Amount.Dollars()
		if tx.Type == core.Income {
			grossIncome += amount
			continue
		}
		totalExpenses += amount
		pct, ok := deductibility[tx.CategoryID]
		if !ok {
			// Uncategorized expenses default to fully deductible.
			pct = 100
		}
		deductibleExpenses += amount * pct / 100
	}

	netProfit := grossIncome - totalExpenses
	taxableNetProfit := math.Max(0, grossIncome-deductibleExpenses)

	if cfg.Mode == core.ModeSimple {
		return simpleEstimate(grossIncome, totalExpenses, netProfit, cfg.SimpleRate), nil
	}
	return smartEstimate(grossIncome, totalExpenses, deductibleExpenses, netProfit, taxableNetProfit, cfg, tables)
}

func simpleEstimate(grossIncome, totalExpenses, netProfit, rate float64) Result {
	totalTax := math.Max(0, netProfit*rate/100)
	effectiveRate := 0.0
	if netProfit > 0 {
		effectiveRate = totalTax / netProfit * 100
	}
	// Simple mode treats every expense as deductible and skips the Schedule C
	// basis entirely, so the deduction-adjusted fields echo the cash figures.
	return roundResult(Result{
		GrossIncome:               grossIncome,
		TotalExpenses:             totalExpenses,
		DeductibleExpenses:        totalExpenses,
		NetProfit:                 netProfit,
		TaxableNetProfit:          netProfit,
		FederalTaxableIncome:      netProfit,
		FederalTax:                totalTax,
		TotalTax:                  totalTax,
		TotalTaxBeforeWithholding: totalTax,
		EffectiveRate:             effectiveRate,
	})
}

func smartEstimate(grossIncome, totalExpenses, deductibleExpenses, netProfit, taxableNetProfit float64, cfg core.TaxConfig, tables Tables) (Result, error) {
	isJoint := cfg.FilingStatus == core.MarriedJoint

	var spouseGross, spouseTaxable, spouseWithholding float64
	if isJoint {
		spouseGross = cfg.SpouseGrossIncome
		spouseTaxable = math.Max(0, spouseGross-spouseGross*cfg.SpousePretaxDeductionPercent/100)
		spouseWithholding = cfg.SpouseFederalWithholding
	}

	// SE tax: 92.35% of taxable profit at the combined SS/Medicare rate,
	// with half of it deductible above the line.
	seTax := taxableNetProfit * tables.SETaxableShare * tables.SERate
	seTaxDeduction := seTax * 0.5

	standardDeduction, err := tables.StandardDeductionFor(cfg.FilingStatus)
	if err != nil {
		return Result{}, err
	}
	brackets, err := tables.BracketsFor(cfg.FilingStatus)
	if err != nil {
		return Result{}, err
	}

	federalTaxableIncome := math.Max(0, taxableNetProfit+spouseTaxable-seTaxDeduction-standardDeduction)
	federalTax := bracketTax(federalTaxableIncome, brackets)

	stateTax := taxableNetProfit * tables.StateRate
	credits := float64(cfg.Dependents) * tables.ChildTaxCredit
	federalTaxAfterCredits := math.Max(0, federalTax-credits)

	totalBeforeWithholding := seTax + federalTaxAfterCredits + stateTax
	totalTax := totalBeforeWithholding - spouseWithholding

	effectiveRate := 0.0
	if denominator := taxableNetProfit + spouseGross; denominator > 0 {
		effectiveRate = totalTax / denominator * 100
	}

	return roundResult(Result{
		GrossIncome:               grossIncome,
		TotalExpenses:             totalExpenses,
		DeductibleExpenses:        deductibleExpenses,
		NetProfit:                 netProfit,
		TaxableNetProfit:          taxableNetProfit,
		FederalTaxableIncome:      federalTaxableIncome,
		SETax:                     seTax,
		StateTax:                  stateTax,
		FederalTax:                federalTax,
		Credits:                   credits,
		TotalTax:                  totalTax,
		TotalTaxBeforeWithholding: totalBeforeWithholding,
		SpouseWithholding:         spouseWithholding,
		SpouseGrossIncome:         spouseGross,
		SpouseTaxableIncome:       spouseTaxable,
		EffectiveRate:             effectiveRate,
	}), nil
}

// bracketTax applies standard marginal-bracket arithmetic: each tier taxes
// the slice of income between the previous tier's top and its own.
func bracketTax(income float64, brackets []Bracket) float64 {
	var total, previous float64
	for _, b := range brackets {
		if income <= previous {
			break
		}
		total += (math.Min(income, b.Upper) - previous) * b.Rate
		previous = b.Upper
	}
	return total
}

// roundResult rounds every monetary field and the rate to 2 decimal places.
// Rounding happens once, at the boundary, so intermediate sums never
// accumulate rounding error.
func roundResult(r Result) Result {
	r.GrossIncome = round2(r.GrossIncome)
	r.TotalExpenses = round2(r.TotalExpenses)
	r.DeductibleExpenses = round2(r.DeductibleExpenses)
	r.NetProfit = round2(r.NetProfit)
	r.TaxableNetProfit = round2(r.TaxableNetProfit)
	r.FederalTaxableIncome = round2(r.FederalTaxableIncome)
	r.SETax = round2(r.SETax)
	r.StateTax = round2(r.StateTax)
	r.FederalTax = round2(r.FederalTax)
	r.Credits = round2(r.Credits)
	r.TotalTax = round2(r.TotalTax)
	r.TotalTaxBeforeWithholding = round2(r.TotalTaxBeforeWithholding)
	r.SpouseWithholding = round2(r.SpouseWithholding)
	r.SpouseGrossIncome = round2(r.SpouseGrossIncome)
	r.SpouseTaxableIncome = round2(r.SpouseTaxableIncome)
	r.EffectiveRate = round2(r.EffectiveRate)
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
