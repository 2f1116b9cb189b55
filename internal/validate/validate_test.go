package validate

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkleiva/uttak/api/internal/rates"
)

func testTable(t *testing.T) *rates.Table {
	t.Helper()
	table, err := rates.ForYear(2024)
	require.NoError(t, err)
	return table
}

func TestProfit(t *testing.T) {
	table := testTable(t)

	testCases := []struct {
		name  string
		raw   any
		valid bool
		value float64
	}{
		{"plain number", 1_000_000.0, true, 1_000_000},
		{"zero", 0.0, true, 0},
		{"integer", 500_000, true, 500_000},
		{"numeric string", "750000", true, 750_000},
		{"json number", json.Number("250000"), true, 250_000},
		{"negative", -1000.0, false, 0},
		{"not a number", "abc", false, 0},
		{"missing", nil, false, 0},
		{"above sanity bound", 2_000_000_000.0, false, 0},
		{"NaN string", "NaN", false, 0},
		{"infinity string", "Inf", false, 0},
		{"native NaN", math.NaN(), false, 0},
		{"native infinity", math.Inf(1), false, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Profit(table, tc.raw)
			assert.Equal(t, tc.valid, res.Valid)
			if tc.valid {
				assert.Equal(t, tc.value, res.Value)
				assert.Empty(t, res.Errors)
			} else {
				assert.NotEmpty(t, res.Errors)
			}
		})
	}
}

func TestZone(t *testing.T) {
	table := testTable(t)

	testCases := []struct {
		name  string
		raw   any
		valid bool
	}{
		{"zone 1", "1", true},
		{"zone 1a", "1a", true},
		{"zero-rate zone 5", "5", true},
		{"unknown zone 6", "6", false},
		{"wrong case", "1A", false},
		{"empty", "", false},
		{"missing", nil, false},
		{"not a string", 1, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Zone(table, tc.raw)
			assert.Equal(t, tc.valid, res.Valid)
			if tc.valid {
				assert.Equal(t, tc.raw, res.Text)
			}
		})
	}
}

func TestZone_ErrorListsValidZones(t *testing.T) {
	table := testTable(t)

	res := Zone(table, "6")

	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "1, 1a, 2, 3, 4, 4a, 5")
}

func TestPercentage(t *testing.T) {
	testCases := []struct {
		name  string
		raw   any
		valid bool
		value float64
	}{
		{"lower bound", 0.0, true, 0},
		{"upper bound", 100.0, true, 100},
		{"interior", 42.5, true, 42.5},
		{"string", "60", true, 60},
		{"above bound", 101.0, false, 0},
		{"negative", -1.0, false, 0},
		{"not a number", "lots", false, 0},
		{"NaN string", "NaN", false, 0},
		{"native NaN", math.NaN(), false, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Percentage(tc.raw, "salary_ratio")
			assert.Equal(t, tc.valid, res.Valid)
			if tc.valid {
				assert.Equal(t, tc.value, res.Value)
			} else {
				assert.Contains(t, res.Errors[0], "salary_ratio")
			}
		})
	}
}

func TestStrategy(t *testing.T) {
	for _, s := range []string{StrategyAllSalary, StrategyAllDividend, StrategyCombination} {
		res := Strategy(s)
		assert.True(t, res.Valid, s)
		assert.Equal(t, s, res.Text)
	}

	for _, v := range []any{"half-and-half", "", nil, 3} {
		res := Strategy(v)
		assert.False(t, res.Valid)
	}
}

func TestPensionRate_DualUnit(t *testing.T) {
	testCases := []struct {
		name  string
		raw   any
		valid bool
		value float64
	}{
		{"fractional lower bound", 0.02, true, 0.02},
		{"fractional upper bound", 0.07, true, 0.07},
		{"whole percentage", 5.0, true, 0.05},
		{"whole percentage lower bound", 2.0, true, 0.02},
		{"whole percentage string", "7", true, 0.07},
		{"fraction below window", 0.01, false, 0},
		{"fraction above window", 0.08, false, 0},
		{"percentage above window", 8.0, false, 0},
		// 1 reads as 1%, which is below the legal window.
		{"exactly one", 1.0, false, 0},
		{"zero", 0.0, false, 0},
		{"negative", -5.0, false, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := PensionRate(tc.raw)
			assert.Equal(t, tc.valid, res.Valid)
			if tc.valid {
				assert.InDelta(t, tc.value, res.Value, 1e-12)
			} else {
				assert.Contains(t, res.Errors[0], "2%–7%")
			}
		})
	}
}

func TestPensionRate_NotANumber(t *testing.T) {
	res := PensionRate("five")

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "must be a number")
}

func TestPensionRate_NonFinite(t *testing.T) {
	for _, v := range []any{"NaN", "Inf", math.NaN(), math.Inf(1)} {
		res := PensionRate(v)
		assert.False(t, res.Valid, "%v", v)
	}
}

func TestCostBasis(t *testing.T) {
	res := CostBasis(nil)
	require.True(t, res.Valid)
	assert.Equal(t, 0.0, res.Value)

	res = CostBasis(300_000.0)
	require.True(t, res.Valid)
	assert.Equal(t, 300_000.0, res.Value)

	assert.False(t, CostBasis(-1.0).Valid)
	assert.False(t, CostBasis("much").Valid)
	assert.False(t, CostBasis(math.NaN()).Valid)
}

func TestValidate_HappyPath(t *testing.T) {
	table := testTable(t)

	res := Validate(table, RawInput{
		Profit:   1_000_000.0,
		Zone:     "1",
		Strategy: StrategyAllSalary,
	})

	require.True(t, res.IsValid)
	require.NotNil(t, res.Sanitized)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1_000_000.0, res.Sanitized.Profit)
	assert.Equal(t, "1", res.Sanitized.Zone)
	assert.Equal(t, StrategyAllSalary, res.Sanitized.Strategy)
	assert.False(t, res.Sanitized.Pension.Enabled)
	assert.False(t, res.Sanitized.Retention.Enabled)
}

func TestValidate_AggregatesAllErrors(t *testing.T) {
	table := testTable(t)

	res := Validate(table, RawInput{
		Profit:   "abc",
		Zone:     "6",
		Strategy: "yolo",
		Pension:  &RawPension{Enabled: true, Rate: 50.0},
	})

	require.False(t, res.IsValid)
	assert.Nil(t, res.Sanitized)
	// One error per broken field, all reported in a single pass.
	assert.Len(t, res.Errors, 4)
}

func TestValidate_RejectsNonFiniteInput(t *testing.T) {
	table := testTable(t)

	// NaN compares false against every bound, so the gate has to
	// catch it before any range check runs.
	res := Validate(table, RawInput{
		Profit:   "NaN",
		Zone:     "1",
		Strategy: StrategyAllSalary,
	})
	require.False(t, res.IsValid)
	assert.Nil(t, res.Sanitized)

	res = Validate(table, RawInput{
		Profit:      math.Inf(1),
		Zone:        "1",
		Strategy:    StrategyCombination,
		SalaryRatio: math.NaN(),
		Pension:     &RawPension{Enabled: true, Rate: "NaN"},
	})
	require.False(t, res.IsValid)
	assert.Len(t, res.Errors, 3)
}

func TestValidate_CombinationRequiresRatio(t *testing.T) {
	table := testTable(t)

	res := Validate(table, RawInput{
		Profit:   1_000_000.0,
		Zone:     "1",
		Strategy: StrategyCombination,
	})

	require.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "salary_ratio")

	res = Validate(table, RawInput{
		Profit:      1_000_000.0,
		Zone:        "1",
		Strategy:    StrategyCombination,
		SalaryRatio: 60.0,
	})

	require.True(t, res.IsValid)
	assert.Equal(t, 60.0, res.Sanitized.SalaryRatio)
}

func TestValidate_ZoneOptionalForAllDividend(t *testing.T) {
	table := testTable(t)

	res := Validate(table, RawInput{
		Profit:   1_000_000.0,
		Strategy: StrategyAllDividend,
	})

	require.True(t, res.IsValid)
	assert.Empty(t, res.Sanitized.Zone)

	// A zone that is present is still checked, even for dividends.
	res = Validate(table, RawInput{
		Profit:   1_000_000.0,
		Zone:     "6",
		Strategy: StrategyAllDividend,
	})
	assert.False(t, res.IsValid)
}

func TestValidate_Warnings(t *testing.T) {
	table := testTable(t)

	res := Validate(table, RawInput{
		Profit:   0.0,
		Zone:     "1",
		Strategy: StrategyAllSalary,
	})
	require.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "zero")

	res = Validate(table, RawInput{
		Profit:   1_000_000.0,
		Strategy: StrategyAllDividend,
		Pension:  &RawPension{Enabled: true, Rate: 0.05},
	})
	require.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "pension")
}

func TestValidate_PensionNormalized(t *testing.T) {
	table := testTable(t)

	res := Validate(table, RawInput{
		Profit:   1_000_000.0,
		Zone:     "1",
		Strategy: StrategyAllSalary,
		Pension:  &RawPension{Enabled: true, Rate: 5.0},
	})

	require.True(t, res.IsValid)
	assert.True(t, res.Sanitized.Pension.Enabled)
	assert.InDelta(t, 0.05, res.Sanitized.Pension.Rate, 1e-12)
}

func TestValidate_Retention(t *testing.T) {
	table := testTable(t)

	res := Validate(table, RawInput{
		Profit:    1_000_000.0,
		Zone:      "1",
		Strategy:  StrategyAllDividend,
		Retention: &RawRetention{Enabled: true, Percentage: 30.0},
	})

	require.True(t, res.IsValid)
	assert.True(t, res.Sanitized.Retention.Enabled)
	assert.Equal(t, 30.0, res.Sanitized.Retention.Percentage)

	res = Validate(table, RawInput{
		Profit:    1_000_000.0,
		Zone:      "1",
		Strategy:  StrategyAllDividend,
		Retention: &RawRetention{Enabled: true, Percentage: 130.0},
	})
	assert.False(t, res.IsValid)
}
