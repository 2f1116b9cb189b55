package calc

import (
	"fmt"
	"math"

	"github.com/mkleiva/uttak/api/internal/models"
	"github.com/mkleiva/uttak/api/internal/rates"
)

// GrossSalaryResult is the solution of the budget equation: the gross
// salary plus every payroll cost it drags along exactly consumes the
// budget.
type GrossSalaryResult struct {
	GrossSalary                   float64
	EmployerContribution          float64
	PensionContribution           float64
	EmployerContributionOnPension float64
}

// MaxGrossSalary solves for the gross salary S reachable from a
// budget:
//
//	budget = S + aga*S + p*S + aga*p*S
//
// where aga is the zone's employer contribution rate and p the
// optional pension rate. An unknown zone is a hard error, never a
// default; silently picking a zone would misstate geography-based tax.
func MaxGrossSalary(table *rates.Table, budget float64, zone string, includePension bool, pensionRate float64) (GrossSalaryResult, error) {
	if budget < 0 {
		return GrossSalaryResult{}, fmt.Errorf("%w: budget %v", ErrNegativeAmount, budget)
	}
	aga, ok := table.ZoneRate(zone)
	if !ok {
		return GrossSalaryResult{}, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}

	p := 0.0
	if includePension {
		p = pensionRate
	}
	gross := budget / (1 + aga + p*(1+aga))

	return GrossSalaryResult{
		GrossSalary:                   gross,
		EmployerContribution:          gross * aga,
		PensionContribution:           gross * p,
		EmployerContributionOnPension: gross * p * aga,
	}, nil
}

// BracketTax accumulates the progressive bracket tax on a gross
// salary in marginal slices: each bracket taxes only the income
// between its own threshold and the next one. Income below the first
// threshold pays nothing, and crossing a threshold never taxes income
// already below it, so one more krone of salary never lowers net pay.
func BracketTax(table *rates.Table, grossSalary float64) float64 {
	tax := 0.0
	for i, bracket := range table.Brackets {
		if grossSalary <= bracket.Threshold {
			break
		}
		sliceTop := grossSalary
		if i+1 < len(table.Brackets) && table.Brackets[i+1].Threshold < sliceTop {
			sliceTop = table.Brackets[i+1].Threshold
		}
		tax += (sliceTop - bracket.Threshold) * bracket.Rate
	}
	return tax
}

// EmployeeContribution is the flat social contribution on the full
// gross salary once it exceeds the lower bound. Unlike the bracket
// tax this is a cliff: one krone over the bound taxes the whole
// salary.
func EmployeeContribution(table *rates.Table, grossSalary float64) float64 {
	if grossSalary <= table.EmployeeLowerBound {
		return 0
	}
	return grossSalary * table.EmployeeRate
}

// MinimumDeduction clamps rate-of-salary between the rule's floor and
// cap, and never exceeds the salary it is deducted from.
func MinimumDeduction(table *rates.Table, grossSalary float64) float64 {
	d := grossSalary * table.MinimumDeduction.Rate
	d = math.Max(d, table.MinimumDeduction.Floor)
	d = math.Min(d, table.MinimumDeduction.Cap)
	return math.Min(d, grossSalary)
}

// IncomeTax is the flat personal rate on gross salary less the
// minimum deduction and the personal allowance, floored at zero.
func IncomeTax(table *rates.Table, grossSalary float64) float64 {
	taxable := grossSalary - MinimumDeduction(table, grossSalary) - table.PersonalAllowance
	if taxable < 0 {
		return 0
	}
	return taxable * table.PersonalRate
}

// SalaryScenario computes the full all-salary extraction of a profit.
func SalaryScenario(table *rates.Table, profit float64, zone string, opts Options) (*models.ScenarioResult, error) {
	if profit < 0 {
		return nil, fmt.Errorf("%w: profit %v", ErrNegativeAmount, profit)
	}

	retained := opts.retainedAmount(profit)
	budget := profit - retained

	gross, err := MaxGrossSalary(table, budget, zone, opts.IncludePension, opts.pensionRate())
	if err != nil {
		return nil, err
	}

	employeeContribution := EmployeeContribution(table, gross.GrossSalary)
	bracketTax := BracketTax(table, gross.GrossSalary)
	minimumDeduction := MinimumDeduction(table, gross.GrossSalary)
	incomeTax := IncomeTax(table, gross.GrossSalary)
	personalTax := employeeContribution + bracketTax + incomeTax
	netSalary := gross.GrossSalary - personalTax

	corporateTaxOnRetained := retained * table.CorporateRate
	retainedNet := retained - corporateTaxOnRetained

	totalTax := gross.EmployerContribution + gross.EmployerContributionOnPension +
		personalTax + corporateTaxOnRetained
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
	step("Extractable budget", budget)
	step(fmt.Sprintf("Gross salary reachable from budget (zone %s)", zone), gross.GrossSalary)
	step("Employer contribution on gross salary", gross.EmployerContribution)
	if opts.IncludePension {
		step("Pension contribution on gross salary", gross.PensionContribution)
		step("Employer contribution on pension", gross.EmployerContributionOnPension)
	}
	step("Employee social contribution", employeeContribution)
	step("Bracket tax", bracketTax)
	step("Minimum deduction", minimumDeduction)
	step("Income tax after deductions", incomeTax)
	step("Net salary after personal tax", netSalary)
	if retained > 0 {
		step("Corporate tax on retained profit", corporateTaxOnRetained)
	}

	assumptions := []string{
		fmt.Sprintf("rate table for tax year %d", table.Year),
		"salary and employer contribution are fully deductible against corporate profit",
	}
	if opts.IncludePension {
		assumptions = append(assumptions,
			fmt.Sprintf("occupational pension at %.1f%% of gross salary", opts.PensionRate*100))
	}

	return &models.ScenarioResult{
		ScenarioType: models.ScenarioSalary,
		Company: models.CompanyBreakdown{
			Profit:                        models.RoundKrone(profit),
			ExtractableBudget:             models.RoundKrone(budget),
			GrossSalary:                   models.RoundKrone(gross.GrossSalary),
			EmployerContribution:          models.RoundKrone(gross.EmployerContribution),
			PensionContribution:           models.RoundKrone(gross.PensionContribution),
			EmployerContributionOnPension: models.RoundKrone(gross.EmployerContributionOnPension),
			CorporateTax:                  models.RoundKrone(corporateTaxOnRetained),
			RetainedGross:                 models.RoundKrone(retained),
		},
		Personal: models.PersonalBreakdown{
			GrossSalary:          models.RoundKrone(gross.GrossSalary),
			EmployeeContribution: models.RoundKrone(employeeContribution),
			BracketTax:           models.RoundKrone(bracketTax),
			MinimumDeduction:     models.RoundKrone(minimumDeduction),
			IncomeTax:            models.RoundKrone(incomeTax),
			TotalSalaryTax:       models.RoundKrone(personalTax),
			NetSalary:            models.RoundKrone(netSalary),
		},
		TaxSummary: models.TaxSummary{
			EmployerContribution: models.RoundKrone(gross.EmployerContribution + gross.EmployerContributionOnPension),
			PersonalSalaryTax:    models.RoundKrone(personalTax),
			CorporateTax:         models.RoundKrone(corporateTaxOnRetained),
			Total:                models.RoundKrone(totalTax),
		},
		Final: models.FinalResult{
			NetPrivatePayout:  models.RoundKrone(netSalary),
			TotalTaxPaid:      models.RoundKrone(totalTax),
			EffectiveTaxRate:  models.RoundRate(effectiveRate),
			RetainedInCompany: models.RoundKrone(retainedNet),
			PensionSaved:      models.RoundKrone(gross.PensionContribution),
		},
		Steps:       steps,
		Assumptions: assumptions,
	}, nil
}
