package calc

import (
	"fmt"

	"github.com/mkleiva/uttak/api/internal/models"
	"github.com/mkleiva/uttak/api/internal/rates"
)

// Breakpoints lists, for one zone, the budget levels at which the
// marginal tax on one more krone of salary changes: the employee
// contribution cliff and every bracket threshold. Each gross-salary
// threshold maps to the budget that reaches it, threshold times
// (1 + aga). The flat dividend rates are reported next to them since
// that is what a blend decision trades against.
func Breakpoints(table *rates.Table, zone string) (*models.BreakpointReport, error) {
	aga, ok := table.ZoneRate(zone)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}

	budgetFor := func(gross float64) float64 {
		return gross * (1 + aga)
	}

	points := []models.Breakpoint{
		{
			GrossSalary:  table.EmployeeLowerBound,
			Budget:       models.RoundKrone(budgetFor(table.EmployeeLowerBound)),
			MarginalRate: models.RoundRate(table.EmployeeRate),
			Description:  "employee contribution starts (cliff on the full salary)",
		},
	}
	for i, bracket := range table.Brackets {
		marginal := bracket.Rate + table.EmployeeRate + table.PersonalRate
		points = append(points, models.Breakpoint{
			GrossSalary:  bracket.Threshold,
			Budget:       models.RoundKrone(budgetFor(bracket.Threshold)),
			MarginalRate: models.RoundRate(marginal),
			Description:  fmt.Sprintf("bracket %d begins at %.1f%%", i+1, bracket.Rate*100),
		})
	}

	return &models.BreakpointReport{
		Zone:                  zone,
		AgaRate:               aga,
		Breakpoints:           points,
		DividendEffectiveRate: models.RoundRate(table.DividendEffectiveRate()),
		CombinedDividendRate:  models.RoundRate(table.CombinedDividendRate()),
	}, nil
}
