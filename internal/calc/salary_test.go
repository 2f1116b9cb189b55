package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkleiva/uttak/api/internal/rates"
)

// Rounded results reconcile to within a few kroner.
const kroneTolerance = 3.0

func testTable(t *testing.T) *rates.Table {
	t.Helper()
	table, err := rates.ForYear(2024)
	require.NoError(t, err)
	return table
}

func TestMaxGrossSalary_ConsumesBudget(t *testing.T) {
	table := testTable(t)

	for _, zone := range table.ZoneIDs() {
		t.Run("zone "+zone, func(t *testing.T) {
			result, err := MaxGrossSalary(table, 1_000_000, zone, false, 0)

			require.NoError(t, err)
			assert.InDelta(t, 1_000_000,
				result.GrossSalary+result.EmployerContribution, 0.01)
		})
	}
}

func TestMaxGrossSalary_ZeroRateZone(t *testing.T) {
	table := testTable(t)

	// Zone 5 has a 0% employer rate, so the whole budget becomes salary.
	result, err := MaxGrossSalary(table, 500_000, "5", false, 0)

	require.NoError(t, err)
	assert.Equal(t, 500_000.0, result.GrossSalary)
	assert.Equal(t, 0.0, result.EmployerContribution)
}

func TestMaxGrossSalary_WorkedExample(t *testing.T) {
	table := testTable(t)

	// Zone 1 carries a 14.1% employer rate: 1,000,000 / 1.141.
	result, err := MaxGrossSalary(table, 1_000_000, "1", false, 0)

	require.NoError(t, err)
	assert.InDelta(t, 876_424.19, result.GrossSalary, 0.01)
	assert.InDelta(t, 123_575.81, result.EmployerContribution, 0.01)
}

func TestMaxGrossSalary_WithPension(t *testing.T) {
	table := testTable(t)

	result, err := MaxGrossSalary(table, 1_000_000, "1", true, 0.05)

	require.NoError(t, err)
	assert.InDelta(t, 834_689.70, result.GrossSalary, 0.01)
	// Budget = salary + aga + pension + aga on pension, exactly.
	total := result.GrossSalary + result.EmployerContribution +
		result.PensionContribution + result.EmployerContributionOnPension
	assert.InDelta(t, 1_000_000, total, 0.01)
}

func TestMaxGrossSalary_UnknownZone(t *testing.T) {
	table := testTable(t)

	_, err := MaxGrossSalary(table, 1_000_000, "6", false, 0)

	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestMaxGrossSalary_NegativeBudget(t *testing.T) {
	table := testTable(t)

	_, err := MaxGrossSalary(table, -1, "1", false, 0)

	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestBracketTax_Values(t *testing.T) {
	table := testTable(t)

	testCases := []struct {
		name        string
		grossSalary float64
		expected    float64
	}{
		{"below first threshold", 100_000, 0},
		{"exactly at first threshold", 208_050, 0},
		{"inside second bracket", 300_000, 1_727.60},
		{"inside fourth bracket", 1_000_000, 63_270.60},
		{"inside top bracket", 1_500_000, 147_770.60},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, BracketTax(table, tc.grossSalary), 0.01)
		})
	}
}

func TestBracketTax_MonotonicAndContinuous(t *testing.T) {
	table := testTable(t)

	// Monotonically non-decreasing across a dense sweep.
	previous := 0.0
	for gross := 0.0; gross <= 2_000_000; gross += 997 {
		tax := BracketTax(table, gross)
		assert.GreaterOrEqual(t, tax, previous, "tax decreased at %v", gross)
		previous = tax
	}

	// No cliff at any threshold: crossing by epsilon adds at most
	// rate * epsilon.
	const epsilon = 1.0
	for _, bracket := range table.Brackets {
		below := BracketTax(table, bracket.Threshold-epsilon)
		above := BracketTax(table, bracket.Threshold+epsilon)
		assert.LessOrEqual(t, above-below, 2*epsilon, "cliff at %v", bracket.Threshold)
	}
}

func TestEmployeeContribution_Cliff(t *testing.T) {
	table := testTable(t)

	assert.Equal(t, 0.0, EmployeeContribution(table, 50_000))
	assert.Equal(t, 0.0, EmployeeContribution(table, table.EmployeeLowerBound))
	// One krone over the bound taxes the full salary, by design.
	over := table.EmployeeLowerBound + 1
	assert.InDelta(t, over*table.EmployeeRate, EmployeeContribution(table, over), 0.01)
}

func TestMinimumDeduction_Clamping(t *testing.T) {
	table := testTable(t)

	testCases := []struct {
		name        string
		grossSalary float64
		expected    float64
	}{
		{"floor applies", 5_000, 4_000},
		{"never exceeds salary", 2_000, 2_000},
		{"rate applies", 100_000, 46_000},
		{"cap applies", 500_000, 104_450},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, MinimumDeduction(table, tc.grossSalary), 0.01)
		})
	}
}

func TestIncomeTax_ZeroBelowAllowance(t *testing.T) {
	table := testTable(t)

	assert.Equal(t, 0.0, IncomeTax(table, 50_000))
}

func TestSalaryScenario_WorkedExample(t *testing.T) {
	table := testTable(t)

	result, err := SalaryScenario(table, 1_000_000, "1", Options{})

	require.NoError(t, err)
	assert.Equal(t, "salary", result.ScenarioType)
	assert.InDelta(t, 876_424, result.Personal.GrossSalary, 1)
	assert.InDelta(t, 123_576, result.Company.EmployerContribution, 1)
	assert.InDelta(t, 68_361, result.Personal.EmployeeContribution, 1)
	assert.InDelta(t, 44_601, result.Personal.BracketTax, 1)
	assert.InDelta(t, 150_419, result.Personal.IncomeTax, 1)
	assert.InDelta(t, 613_042, result.Final.NetPrivatePayout, 1)
	assert.InDelta(t, 386_958, result.Final.TotalTaxPaid, 1)
	assert.InDelta(t, 0.387, result.Final.EffectiveTaxRate, 0.001)
	assert.NotEmpty(t, result.Steps)
	assert.NotEmpty(t, result.Assumptions)
}

func TestSalaryScenario_Reconciliation(t *testing.T) {
	table := testTable(t)

	testCases := []struct {
		name   string
		profit float64
		zone   string
		opts   Options
	}{
		{"plain", 1_000_000, "1", Options{}},
		{"zero profit", 0, "1", Options{}},
		{"small profit", 100_000, "1", Options{}},
		{"zero-rate zone", 750_000, "5", Options{}},
		{"with pension", 1_000_000, "1", Options{IncludePension: true, PensionRate: 0.05}},
		{"with retention", 1_000_000, "1", Options{RetainEarnings: true, RetentionPercentage: 20}},
		{"pension and retention", 2_500_000, "4a", Options{
			IncludePension: true, PensionRate: 0.07,
			RetainEarnings: true, RetentionPercentage: 35,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := SalaryScenario(table, tc.profit, tc.zone, tc.opts)
			require.NoError(t, err)

			total := result.Final.NetPrivatePayout + result.Final.TotalTaxPaid +
				result.Final.RetainedInCompany + result.Final.PensionSaved
			assert.InDelta(t, tc.profit, total, kroneTolerance)

			if tc.profit > 0 {
				assert.GreaterOrEqual(t, result.Final.EffectiveTaxRate, 0.0)
				assert.Less(t, result.Final.EffectiveTaxRate, 1.0)
			} else {
				assert.Equal(t, 0.0, result.Final.EffectiveTaxRate)
			}
		})
	}
}

func TestSalaryScenario_ZeroProfit(t *testing.T) {
	table := testTable(t)

	result, err := SalaryScenario(table, 0, "1", Options{})

	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Final.NetPrivatePayout)
	assert.Equal(t, 0.0, result.Final.EffectiveTaxRate)
}

func TestSalaryScenario_UnknownZonePropagates(t *testing.T) {
	table := testTable(t)

	_, err := SalaryScenario(table, 1_000_000, "9", Options{})

	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestSalaryScenario_ZoneChangesResult(t *testing.T) {
	table := testTable(t)

	zone1, err := SalaryScenario(table, 1_000_000, "1", Options{})
	require.NoError(t, err)
	zone1a, err := SalaryScenario(table, 1_000_000, "1a", Options{})
	require.NoError(t, err)
	zone2, err := SalaryScenario(table, 1_000_000, "2", Options{})
	require.NoError(t, err)
	zone5, err := SalaryScenario(table, 1_000_000, "5", Options{})
	require.NoError(t, err)

	// Zones 1a and 2 share a rate, so the results match; zone 1 does
	// not. The 0% zone strictly dominates every positive-rate zone.
	assert.Equal(t, zone1a.Final.NetPrivatePayout, zone2.Final.NetPrivatePayout)
	assert.NotEqual(t, zone1.Final.NetPrivatePayout, zone1a.Final.NetPrivatePayout)
	assert.Greater(t, zone5.Final.NetPrivatePayout, zone1.Final.NetPrivatePayout)
	assert.Greater(t, zone5.Final.NetPrivatePayout, zone1a.Final.NetPrivatePayout)
}

func TestSalaryScenario_OrderedSteps(t *testing.T) {
	table := testTable(t)

	result, err := SalaryScenario(table, 1_000_000, "1", Options{})
	require.NoError(t, err)

	for i, step := range result.Steps {
		assert.Equal(t, i+1, step.Seq)
		assert.NotEmpty(t, step.Description)
	}
}
