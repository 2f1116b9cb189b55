package models

import "math"

// Scenario type identifiers used across results, history and comparisons.
const (
	ScenarioSalary      = "salary"
	ScenarioDividend    = "dividend"
	ScenarioCombination = "combination"
	// ScenarioOptimization tags history rows written by the ratio
	// search rather than a single scenario calculation.
	ScenarioOptimization = "optimization"
)

// CalculationStep is one human-auditable line of a scenario's math,
// in the order the engine performed it.
type CalculationStep struct {
	Seq         int     `json:"seq"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// CompanyBreakdown holds the company-side numbers of a scenario.
// Fields that do not apply to a scenario type are zero.
type CompanyBreakdown struct {
	Profit                        float64 `json:"profit"`
	ExtractableBudget             float64 `json:"extractable_budget"`
	GrossSalary                   float64 `json:"gross_salary,omitempty"`
	EmployerContribution          float64 `json:"employer_contribution,omitempty"`
	PensionContribution           float64 `json:"pension_contribution,omitempty"`
	EmployerContributionOnPension float64 `json:"employer_contribution_on_pension,omitempty"`
	CorporateTax                  float64 `json:"corporate_tax,omitempty"`
	DividendDistributed           float64 `json:"dividend_distributed,omitempty"`
	RetainedGross                 float64 `json:"retained_gross,omitempty"`
}

// PersonalBreakdown holds the owner-side numbers of a scenario.
type PersonalBreakdown struct {
	GrossSalary          float64 `json:"gross_salary,omitempty"`
	EmployeeContribution float64 `json:"employee_contribution,omitempty"`
	BracketTax           float64 `json:"bracket_tax,omitempty"`
	MinimumDeduction     float64 `json:"minimum_deduction,omitempty"`
	IncomeTax            float64 `json:"income_tax,omitempty"`
	TotalSalaryTax       float64 `json:"total_salary_tax,omitempty"`
	NetSalary            float64 `json:"net_salary,omitempty"`
	DividendReceived     float64 `json:"dividend_received,omitempty"`
	ShareholderAllowance float64 `json:"shareholder_allowance,omitempty"`
	DividendTax          float64 `json:"dividend_tax,omitempty"`
	NetDividend          float64 `json:"net_dividend,omitempty"`
}

// TaxSummary totals every tax component of a scenario.
type TaxSummary struct {
	EmployerContribution float64 `json:"employer_contribution"`
	PersonalSalaryTax    float64 `json:"personal_salary_tax"`
	CorporateTax         float64 `json:"corporate_tax"`
	DividendTax          float64 `json:"dividend_tax"`
	Total                float64 `json:"total"`
}

// FinalResult is the bottom line of a scenario. The reconciliation
// invariant is NetPrivatePayout + TotalTaxPaid + RetainedInCompany +
// PensionSaved == Profit, within rounding tolerance; PensionSaved is
// zero unless a pension option was enabled.
type FinalResult struct {
	NetPrivatePayout  float64 `json:"net_private_payout"`
	TotalTaxPaid      float64 `json:"total_tax_paid"`
	EffectiveTaxRate  float64 `json:"effective_tax_rate"`
	RetainedInCompany float64 `json:"retained_in_company"`
	PensionSaved      float64 `json:"pension_saved"`
}

// ScenarioResult is the universal output shape of every calculator.
type ScenarioResult struct {
	ScenarioType string            `json:"scenario_type"`
	Company      CompanyBreakdown  `json:"company"`
	Personal     PersonalBreakdown `json:"personal"`
	TaxSummary   TaxSummary        `json:"tax_summary"`
	Final        FinalResult       `json:"final"`
	Steps        []CalculationStep `json:"steps"`
	Assumptions  []string          `json:"assumptions"`
}

// RoundKrone rounds a monetary amount to the nearest whole krone.
// Only values surfaced in a published result are rounded; calculator
// intermediates keep full precision.
func RoundKrone(amount float64) float64 {
	return math.Round(amount)
}

// RoundRate rounds a rate for publication to four decimals.
func RoundRate(rate float64) float64 {
	return math.Round(rate*10000) / 10000
}
