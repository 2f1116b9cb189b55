package rates

import (
	"fmt"
	"sort"
)

// Bracket is one step of the progressive bracket tax. Income above
// Threshold (up to the next bracket's threshold) is taxed at Rate.
type Bracket struct {
	Threshold float64
	Rate      float64
}

// MinimumDeductionRule describes the standard deduction: Rate of gross
// salary, clamped between Floor and Cap.
type MinimumDeductionRule struct {
	Rate  float64
	Floor float64
	Cap   float64
}

// Table holds every rate, threshold and limit for one tax year.
// It is built once at startup, validated, and never mutated; all
// calculators receive it by reference and treat it as read-only.
type Table struct {
	Year int

	// CorporateRate is the flat tax on company profit.
	CorporateRate float64

	// EmployerZones maps a geographic zone id to its employer
	// contribution rate. A zero rate is a valid zone.
	EmployerZones map[string]float64

	// PersonalRate is the flat tax on ordinary personal income.
	PersonalRate float64

	// Brackets is the progressive bracket tax table, ordered by
	// strictly increasing threshold. The first threshold is above
	// zero, so low salaries pay no bracket tax at all.
	Brackets []Bracket

	// EmployeeRate applies to the full gross salary once it exceeds
	// EmployeeLowerBound. Below the bound the contribution is zero;
	// this is a cliff, not a marginal slice.
	EmployeeRate       float64
	EmployeeLowerBound float64

	// GrossUpFactor scales taxable dividends before PersonalRate is
	// applied. Always above 1.
	GrossUpFactor float64

	MinimumDeduction  MinimumDeductionRule
	PersonalAllowance float64

	// ShareAllowanceRate is applied to the shareholder's cost basis
	// to produce the tax-free dividend allowance.
	ShareAllowanceRate float64

	// MaxProfit is the upper sanity bound accepted by input
	// validation, not a legal limit.
	MaxProfit float64
}

// ZoneRate returns the employer contribution rate for a zone.
// The second return is false for a zone the table does not know.
func (t *Table) ZoneRate(zone string) (float64, bool) {
	rate, ok := t.EmployerZones[zone]
	return rate, ok
}

// ZoneIDs returns every known zone id in sorted order.
func (t *Table) ZoneIDs() []string {
	ids := make([]string, 0, len(t.EmployerZones))
	for id := range t.EmployerZones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DividendEffectiveRate is the nominal maximum personal tax rate on a
// dividend: gross-up factor times the flat personal rate. The actual
// effective rate is lower whenever a shareholder allowance applies.
func (t *Table) DividendEffectiveRate() float64 {
	return t.GrossUpFactor * t.PersonalRate
}

// CombinedDividendRate is the total tax on a krone of profit that is
// paid out as dividend: corporate tax first, then dividend tax on the
// remainder.
func (t *Table) CombinedDividendRate() float64 {
	return t.CorporateRate + (1-t.CorporateRate)*t.DividendEffectiveRate()
}

// Validate checks the table for configuration gaps. A failure here is
// a deployment error and the process must not start.
func (t *Table) Validate() error {
	if t.Year == 0 {
		return fmt.Errorf("rate table has no year")
	}
	if t.CorporateRate < 0 || t.CorporateRate >= 1 {
		return fmt.Errorf("corporate rate %v outside [0,1)", t.CorporateRate)
	}
	if len(t.EmployerZones) == 0 {
		return fmt.Errorf("rate table for %d has no employer zones", t.Year)
	}
	for zone, rate := range t.EmployerZones {
		if rate < 0 || rate >= 1 {
			return fmt.Errorf("zone %q has rate %v outside [0,1)", zone, rate)
		}
	}
	if t.PersonalRate < 0 || t.PersonalRate >= 1 {
		return fmt.Errorf("personal rate %v outside [0,1)", t.PersonalRate)
	}
	if len(t.Brackets) == 0 {
		return fmt.Errorf("rate table for %d has no brackets", t.Year)
	}
	if t.Brackets[0].Threshold <= 0 {
		return fmt.Errorf("first bracket threshold must be above zero, got %v", t.Brackets[0].Threshold)
	}
	for i := 1; i < len(t.Brackets); i++ {
		if t.Brackets[i].Threshold <= t.Brackets[i-1].Threshold {
			return fmt.Errorf("bracket thresholds must be strictly increasing: %v after %v",
				t.Brackets[i].Threshold, t.Brackets[i-1].Threshold)
		}
	}
	for _, b := range t.Brackets {
		if b.Rate < 0 || b.Rate >= 1 {
			return fmt.Errorf("bracket rate %v outside [0,1)", b.Rate)
		}
	}
	if t.GrossUpFactor <= 1 {
		return fmt.Errorf("gross-up factor must exceed 1, got %v", t.GrossUpFactor)
	}
	if t.MinimumDeduction.Floor > t.MinimumDeduction.Cap {
		return fmt.Errorf("minimum deduction floor %v above cap %v",
			t.MinimumDeduction.Floor, t.MinimumDeduction.Cap)
	}
	if t.MaxProfit <= 0 {
		return fmt.Errorf("max profit bound must be positive, got %v", t.MaxProfit)
	}
	return nil
}
