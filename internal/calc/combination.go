package calc

import (
	"fmt"

	"github.com/mkleiva/uttak/api/internal/models"
	"github.com/mkleiva/uttak/api/internal/rates"
)

// CombinationScenario splits the retention-adjusted budget into a
// salary portion and a dividend portion at the given ratio and runs
// both sides. The shareholder allowance is not applied in this path:
// it is a whole-portfolio amount, and spreading it per slice would
// double-count it across ratios.
func CombinationScenario(table *rates.Table, profit float64, zone string, salaryRatio float64, opts Options) (*models.ScenarioResult, error) {
	if salaryRatio < 0 || salaryRatio > 100 {
		return nil, fmt.Errorf("%w: got %v", ErrRatioOutOfRange, salaryRatio)
	}
	if profit < 0 {
		return nil, fmt.Errorf("%w: profit %v", ErrNegativeAmount, profit)
	}

	retained := opts.retainedAmount(profit)
	budget := profit - retained
	salaryPortion := budget * salaryRatio / 100
	dividendPortion := budget - salaryPortion

	gross, err := MaxGrossSalary(table, salaryPortion, zone, opts.IncludePension, opts.pensionRate())
	if err != nil {
		return nil, err
	}
	employeeContribution := EmployeeContribution(table, gross.GrossSalary)
	bracketTax := BracketTax(table, gross.GrossSalary)
	incomeTax := IncomeTax(table, gross.GrossSalary)
	personalTax := employeeContribution + bracketTax + incomeTax
	netSalary := gross.GrossSalary - personalTax

	corporateTax := CorporateTax(table, dividendPortion)
	distributable := dividendPortion - corporateTax
	dividendTax := DividendTax(table, distributable, 0)
	netDividend := distributable - dividendTax.Tax

	corporateTaxOnRetained := retained * table.CorporateRate
	retainedNet := retained - corporateTaxOnRetained

	netPayout := netSalary + netDividend
	totalTax := gross.EmployerContribution + gross.EmployerContributionOnPension +
		personalTax + corporateTax + dividendTax.Tax + corporateTaxOnRetained
	effectiveRate := 0.0
	if profit > 0 {
		effectiveRate = totalTax / profit
	}

	steps := []models.CalculationStep{}
	step := func(description string, amount float64) {
		steps = append(steps, models.CalculationStep{
			Seq:         len(steps) + 1,
			Description: description,
			Amount:      models.RoundKrone(amount),
		})
	}
	if retained > 0 {
		step("Profit retained in company before extraction", retained)
	}
	step(fmt.Sprintf("Salary portion of budget (%.0f%%)", salaryRatio), salaryPortion)
	step("Dividend portion of budget", dividendPortion)
	step(fmt.Sprintf("Gross salary reachable from salary portion (zone %s)", zone), gross.GrossSalary)
	step("Employer contribution on gross salary", gross.EmployerContribution)
	step("Personal tax on salary", personalTax)
	step("Net salary", netSalary)
	step("Corporate tax on dividend portion", corporateTax)
	step("Dividend tax on distributable amount", dividendTax.Tax)
	step("Net dividend", netDividend)
	if retained > 0 {
		step("Corporate tax on retained profit", corporateTaxOnRetained)
	}

	assumptions := []string{
		fmt.Sprintf("rate table for tax year %d", table.Year),
		"shareholder allowance is not applied per blend slice",
	}

	return &models.ScenarioResult{
		ScenarioType: models.ScenarioCombination,
		Company: models.CompanyBreakdown{
			Profit:                        models.RoundKrone(profit),
			ExtractableBudget:             models.RoundKrone(budget),
			GrossSalary:                   models.RoundKrone(gross.GrossSalary),
			EmployerContribution:          models.RoundKrone(gross.EmployerContribution),
			PensionContribution:           models.RoundKrone(gross.PensionContribution),
			EmployerContributionOnPension: models.RoundKrone(gross.EmployerContributionOnPension),
			CorporateTax:                  models.RoundKrone(corporateTax + corporateTaxOnRetained),
			DividendDistributed:           models.RoundKrone(distributable),
			RetainedGross:                 models.RoundKrone(retained),
		},
		Personal: models.PersonalBreakdown{
			GrossSalary:          models.RoundKrone(gross.GrossSalary),
			EmployeeContribution: models.RoundKrone(employeeContribution),
			BracketTax:           models.RoundKrone(bracketTax),
			MinimumDeduction:     models.RoundKrone(MinimumDeduction(table, gross.GrossSalary)),
			IncomeTax:            models.RoundKrone(incomeTax),
			TotalSalaryTax:       models.RoundKrone(personalTax),
			NetSalary:            models.RoundKrone(netSalary),
			DividendReceived:     models.RoundKrone(distributable),
			DividendTax:          models.RoundKrone(dividendTax.Tax),
			NetDividend:          models.RoundKrone(netDividend),
		},
		TaxSummary: models.TaxSummary{
			EmployerContribution: models.RoundKrone(gross.EmployerContribution + gross.EmployerContributionOnPension),
			PersonalSalaryTax:    models.RoundKrone(personalTax),
			CorporateTax:         models.RoundKrone(corporateTax + corporateTaxOnRetained),
			DividendTax:          models.RoundKrone(dividendTax.Tax),
			Total:                models.RoundKrone(totalTax),
		},
		Final: models.FinalResult{
			NetPrivatePayout:  models.RoundKrone(netPayout),
			TotalTaxPaid:      models.RoundKrone(totalTax),
			EffectiveTaxRate:  models.RoundRate(effectiveRate),
			RetainedInCompany: models.RoundKrone(retainedNet),
			PensionSaved:      models.RoundKrone(gross.PensionContribution),
		},
		Steps:       steps,
		Assumptions: assumptions,
	}, nil
}
