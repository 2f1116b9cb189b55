package calc

import (
	"fmt"
	"math"

	"github.com/mkleiva/uttak/api/internal/models"
	"github.com/mkleiva/uttak/api/internal/rates"
)

// CorporateTax is the flat corporate tax on a profit. Trivial, but
// every downstream dividend number depends on profit after it.
func CorporateTax(table *rates.Table, profit float64) float64 {
	return profit * table.CorporateRate
}

// ShareholderAllowance is the tax-free dividend amount earned on the
// shareholder's cost basis. No cost basis, no allowance.
func ShareholderAllowance(table *rates.Table, costBasis float64) float64 {
	if costBasis <= 0 {
		return 0
	}
	return costBasis * table.ShareAllowanceRate
}

// DividendTaxResult breaks down the personal tax on a dividend. The
// actual EffectiveRate sinks below the NominalMaxRate as soon as an
// allowance applies; both answer different questions and both are
// reported.
type DividendTaxResult struct {
	Taxable        float64
	GrossedUp      float64
	Tax            float64
	EffectiveRate  float64
	NominalMaxRate float64
}

// DividendTax computes the grossed-up personal tax on a dividend
// after subtracting the allowance.
func DividendTax(table *rates.Table, dividendAmount, allowance float64) DividendTaxResult {
	taxable := math.Max(0, dividendAmount-allowance)
	grossedUp := taxable * table.GrossUpFactor
	tax := grossedUp * table.PersonalRate

	effective := 0.0
	if dividendAmount > 0 {
		effective = tax / dividendAmount
	}
	return DividendTaxResult{
		Taxable:        taxable,
		GrossedUp:      grossedUp,
		Tax:            tax,
		EffectiveRate:  effective,
		NominalMaxRate: table.DividendEffectiveRate(),
	}
}

// DividendScenario computes the full all-dividend extraction of a
// profit. Corporate tax is charged on the whole profit, retained
// earnings included; the retained slice is a gross profit slice that
// stays in the company net of its share of that tax, so retention
// means the same thing here as in the salary and combination
// scenarios.
func DividendScenario(table *rates.Table, profit float64, opts Options) (*models.ScenarioResult, error) {
	if profit < 0 {
		return nil, fmt.Errorf("%w: profit %v", ErrNegativeAmount, profit)
	}

	corporateTax := CorporateTax(table, profit)
	retained := opts.retainedAmount(profit)
	retainedNet := retained - CorporateTax(table, retained)
	distributable := (profit - retained) - CorporateTax(table, profit-retained)

	allowance := math.Min(ShareholderAllowance(table, opts.ShareCostBasis), distributable)
	dividendTax := DividendTax(table, distributable, allowance)
	netDividend := distributable - dividendTax.Tax

	totalTax := corporateTax + dividendTax.Tax
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
	step("Corporate tax on full profit", corporateTax)
	if retained > 0 {
		step("Profit retained in company before corporate tax", retained)
		step("Retained in company after corporate tax", retainedNet)
	}
	step("Distributable dividend", distributable)
	if allowance > 0 {
		step("Shareholder allowance on cost basis", allowance)
	}
	step("Taxable dividend after allowance", dividendTax.Taxable)
	step(fmt.Sprintf("Grossed-up dividend (factor %.2f)", table.GrossUpFactor), dividendTax.GrossedUp)
	step("Dividend tax", dividendTax.Tax)
	step("Net dividend", netDividend)

	assumptions := []string{
		fmt.Sprintf("rate table for tax year %d", table.Year),
		"dividends are paid from profit after corporate tax",
	}
	if opts.ShareCostBasis > 0 {
		assumptions = append(assumptions,
			fmt.Sprintf("shareholder allowance computed on a cost basis of %.0f", opts.ShareCostBasis))
	}

	return &models.ScenarioResult{
		ScenarioType: models.ScenarioDividend,
		Company: models.CompanyBreakdown{
			Profit:              models.RoundKrone(profit),
			ExtractableBudget:   models.RoundKrone(profit - retained),
			CorporateTax:        models.RoundKrone(corporateTax),
			DividendDistributed: models.RoundKrone(distributable),
			RetainedGross:       models.RoundKrone(retained),
		},
		Personal: models.PersonalBreakdown{
			DividendReceived:     models.RoundKrone(distributable),
			ShareholderAllowance: models.RoundKrone(allowance),
			DividendTax:          models.RoundKrone(dividendTax.Tax),
			NetDividend:          models.RoundKrone(netDividend),
		},
		TaxSummary: models.TaxSummary{
			CorporateTax: models.RoundKrone(corporateTax),
			DividendTax:  models.RoundKrone(dividendTax.Tax),
			Total:        models.RoundKrone(totalTax),
		},
		Final: models.FinalResult{
			NetPrivatePayout:  models.RoundKrone(netDividend),
			TotalTaxPaid:      models.RoundKrone(totalTax),
			EffectiveTaxRate:  models.RoundRate(effectiveRate),
			RetainedInCompany: models.RoundKrone(retainedNet),
			PensionSaved:      0,
		},
		Steps:       steps,
		Assumptions: assumptions,
	}, nil
}
