package rates

import "fmt"

// Named constants for the 2024 tax year. Every rate used by the
// calculators lives here; the formulas never carry bare literals.
const (
	corporateRate2024 = 0.22

	zone1Rate2024  = 0.141
	zone1aRate2024 = 0.106
	zone2Rate2024  = 0.106
	zone3Rate2024  = 0.064
	zone4Rate2024  = 0.051
	zone4aRate2024 = 0.079
	zone5Rate2024  = 0.0

	personalRate2024 = 0.22

	bracket1Threshold2024 = 208_050.0
	bracket1Rate2024      = 0.017
	bracket2Threshold2024 = 292_850.0
	bracket2Rate2024      = 0.040
	bracket3Threshold2024 = 670_000.0
	bracket3Rate2024      = 0.136
	bracket4Threshold2024 = 937_900.0
	bracket4Rate2024      = 0.166
	bracket5Threshold2024 = 1_350_000.0
	bracket5Rate2024      = 0.176

	employeeRate2024       = 0.078
	employeeLowerBound2024 = 69_650.0

	grossUpFactor2024 = 1.72

	minimumDeductionRate2024  = 0.46
	minimumDeductionFloor2024 = 4_000.0
	minimumDeductionCap2024   = 104_450.0

	personalAllowance2024 = 88_250.0

	shareAllowanceRate2024 = 0.032

	maxProfitBound2024 = 1_000_000_000.0
)

// Year2024 builds the rate table for the 2024 tax year.
func Year2024() *Table {
	return &Table{
		Year:          2024,
		CorporateRate: corporateRate2024,
		EmployerZones: map[string]float64{
			"1":  zone1Rate2024,
			"1a": zone1aRate2024,
			"2":  zone2Rate2024,
			"3":  zone3Rate2024,
			"4":  zone4Rate2024,
			"4a": zone4aRate2024,
			"5":  zone5Rate2024,
		},
		PersonalRate: personalRate2024,
		Brackets: []Bracket{
			{Threshold: bracket1Threshold2024, Rate: bracket1Rate2024},
			{Threshold: bracket2Threshold2024, Rate: bracket2Rate2024},
			{Threshold: bracket3Threshold2024, Rate: bracket3Rate2024},
			{Threshold: bracket4Threshold2024, Rate: bracket4Rate2024},
			{Threshold: bracket5Threshold2024, Rate: bracket5Rate2024},
		},
		EmployeeRate:       employeeRate2024,
		EmployeeLowerBound: employeeLowerBound2024,
		GrossUpFactor:      grossUpFactor2024,
		MinimumDeduction: MinimumDeductionRule{
			Rate:  minimumDeductionRate2024,
			Floor: minimumDeductionFloor2024,
			Cap:   minimumDeductionCap2024,
		},
		PersonalAllowance:  personalAllowance2024,
		ShareAllowanceRate: shareAllowanceRate2024,
		MaxProfit:          maxProfitBound2024,
	}
}

// ForYear returns the validated rate table for the given tax year.
// Unknown years are a configuration error.
func ForYear(year int) (*Table, error) {
	var table *Table
	switch year {
	case 2024:
		table = Year2024()
	default:
		return nil, fmt.Errorf("no rate table for tax year %d", year)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("rate table for %d is invalid: %w", year, err)
	}
	return table, nil
}
