package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnltracker/internal/core"
)

func ledger(incomeCents, expenseCents int64, expenseCategory string) []core.Transaction {
	var txs []core.Transaction
	if incomeCents > 0 {
		txs = append(txs, core.Transaction{
			Date: core.NewDate(2025, 1, 15), Name: "Client work",
			Type: core.Income, Amount: core.Money{Cents: incomeCents},
		})
	}
	if expenseCents > 0 {
		txs = append(txs, core.Transaction{
			Date: core.NewDate(2025, 2, 1), Name: "Supplies",
			Type: core.Expense, Amount: core.Money{Cents: expenseCents},
			CategoryID: expenseCategory,
		})
	}
	return txs
}

func TestEstimateSimpleMode(t *testing.T) {
	cfg := core.TaxConfig{Mode: core.ModeSimple, SimpleRate: 25, FilingStatus: core.Single}

	result, err := Estimate(ledger(1000000, 400000, ""), nil, cfg, tables2025)
	require.NoError(t, err)

	assert.Equal(t, 10000.0, result.GrossIncome)
	assert.Equal(t, 4000.0, result.TotalExpenses)
	assert.Equal(t, 4000.0, result.DeductibleExpenses)
	assert.Equal(t, 6000.0, result.NetProfit)
	assert.Equal(t, 6000.0, result.TaxableNetProfit)
	assert.Equal(t, 6000.0, result.FederalTaxableIncome)
	assert.Equal(t, 1500.0, result.FederalTax)
	assert.Equal(t, 1500.0, result.TotalTax)
	assert.Equal(t, 25.0, result.EffectiveRate)
}

func TestEstimateSimpleModeLoss(t *testing.T) {
	cfg := core.TaxConfig{Mode: core.ModeSimple, SimpleRate: 25, FilingStatus: core.Single}

	result, err := Estimate(ledger(100000, 400000, ""), nil, cfg, tables2025)
	require.NoError(t, err)

	assert.Equal(t, -3000.0, result.NetProfit)
	assert.Equal(t, 0.0, result.TotalTax)
	assert.Equal(t, 0.0, result.EffectiveRate)
}

func TestEstimateSmartSingle(t *testing.T) {
	cfg := core.TaxConfig{Mode: core.ModeSmart, FilingStatus: core.Single}

	result, err := Estimate(ledger(5000000, 0, ""), nil, cfg, tables2025)
	require.NoError(t, err)

	// 50k profit, single, no dependents, 2025 figures:
	// SE tax 50000*0.9235*0.153, half deductible, 14600 standard deduction.
	assert.InDelta(t, 7064.78, result.SETax, 0.02)
	assert.InDelta(t, 31867.61, result.FederalTaxableIncome, 0.02)
	assert.InDelta(t, 3585.61, result.FederalTax, 0.02)
	assert.InDelta(t, 1535.00, result.StateTax, 0.02)
	assert.InDelta(t, 12185.39, result.TotalTax, 0.02)
	assert.InDelta(t, 24.37, result.EffectiveRate, 0.02)
	assert.Equal(t, 0.0, result.SpouseGrossIncome)
}

func TestEstimateDeductibility(t *testing.T) {
	categories := []core.Category{
		{ID: "meals", Name: "Business Meals", Type: core.Expense, DeductibilityPercent: 50},
	}
	cfg := core.TaxConfig{Mode: core.ModeSmart, FilingStatus: core.Single}

	result, err := Estimate(ledger(1000000, 20000, "meals"), categories, cfg, tables2025)
	require.NoError(t, err)

	assert.Equal(t, 200.0, result.TotalExpenses)
	assert.Equal(t, 100.0, result.DeductibleExpenses)
	assert.Equal(t, 9900.0, result.TaxableNetProfit)
}

func TestEstimateUncategorizedFullyDeductible(t *testing.T) {
	cfg := core.TaxConfig{Mode: core.ModeSmart, FilingStatus: core.Single}

	result, err := Estimate(ledger(1000000, 20000, "unknown-category"), nil, cfg, tables2025)
	require.NoError(t, err)
	assert.Equal(t, 200.0, result.DeductibleExpenses)
}

func TestEstimateChildTaxCredit(t *testing.T) {
	base := core.TaxConfig{Mode: core.ModeSmart, FilingStatus: core.Single}
	withKids := base
	withKids.Dependents = 2

	txs := ledger(8000000, 0, "")
	noCredit, err := Estimate(txs, nil, base, tables2025)
	require.NoError(t, err)
	credited, err := Estimate(txs, nil, withKids, tables2025)
	require.NoError(t, err)

	assert.Equal(t, 4000.0, credited.Credits)
	assert.InDelta(t, noCredit.TotalTax-4000, credited.TotalTax, 0.02)
}

func TestEstimateCreditsNeverNegativeFederal(t *testing.T) {
	cfg := core.TaxConfig{Mode: core.ModeSmart, FilingStatus: core.Single, Dependents: 10}

	result, err := Estimate(ledger(2000000, 0, ""), nil, cfg, tables2025)
	require.NoError(t, err)

	// Credits cap federal tax at zero; SE and state tax still apply.
	assert.GreaterOrEqual(t, result.TotalTax, result.SETax+result.StateTax-0.01)
}

func TestEstimateMarriedJointSpouse(t *testing.T) {
	cfg := core.TaxConfig{
		Mode:                         core.ModeSmart,
		FilingStatus:                 core.MarriedJoint,
		SpouseGrossIncome:            60000,
		SpouseFederalWithholding:     8000,
		SpousePretaxDeductionPercent: 10,
	}

	result, err := Estimate(ledger(5000000, 0, ""), nil, cfg, tables2025)
	require.NoError(t, err)

	assert.Equal(t, 60000.0, result.SpouseGrossIncome)
	assert.Equal(t, 54000.0, result.SpouseTaxableIncome)
	assert.Equal(t, 8000.0, result.SpouseWithholding)
	assert.InDelta(t, result.TotalTaxBeforeWithholding-8000, result.TotalTax, 0.02)
}

func TestEstimateSingleIgnoresSpouse(t *testing.T) {
	cfg := core.TaxConfig{
		Mode:                     core.ModeSmart,
		FilingStatus:             core.Single,
		SpouseGrossIncome:        60000,
		SpouseFederalWithholding: 8000,
	}

	result, err := Estimate(ledger(5000000, 0, ""), nil, cfg, tables2025)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.SpouseGrossIncome)
	assert.Equal(t, 0.0, result.SpouseWithholding)
	assert.Equal(t, result.TotalTax, result.TotalTaxBeforeWithholding)
}

func TestEstimateMonotonicInIncome(t *testing.T) {
	cfg := core.TaxConfig{Mode: core.ModeSmart, FilingStatus: core.Single}

	var previous float64
	for _, cents := range []int64{1000000, 5000000, 15000000, 30000000, 70000000} {
		result, err := Estimate(ledger(cents, 0, ""), nil, cfg, tables2025)
		require.NoError(t, err)
		require.GreaterOrEqual(t, result.TotalTax, previous,
			"tax decreased when income rose to %d cents", cents)
		previous = result.TotalTax
	}
}

func TestEstimateBadConfig(t *testing.T) {
	_, err := Estimate(nil, nil, core.TaxConfig{Mode: "guess", FilingStatus: core.Single}, tables2025)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = Estimate(nil, nil, core.TaxConfig{Mode: core.ModeSmart, FilingStatus: "unknown"}, tables2025)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestBracketTax(t *testing.T) {
	brackets := tables2025.Brackets[core.Single]

	// Entirely inside the first bracket.
	assert.InDelta(t, 1000.0, bracketTax(10000, brackets), 0.001)
	// Exactly at the first boundary.
	assert.InDelta(t, 1192.5, bracketTax(11925, brackets), 0.001)
	// Spanning two brackets.
	assert.InDelta(t, 1192.5+(20000-11925)*0.12, bracketTax(20000, brackets), 0.001)
	assert.Equal(t, 0.0, bracketTax(0, brackets))
}

func TestTablesForYear(t *testing.T) {
	tables, err := TablesForYear(2025)
	require.NoError(t, err)
	assert.Equal(t, 2025, tables.Year)

	_, err = TablesForYear(1999)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	assert.Equal(t, 2025, CurrentTables().Year)
}
