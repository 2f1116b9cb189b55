package models

// ComparisonRow is one ranked line of a scenario comparison. Rows are
// computed fresh on every comparison request and never persisted.
type ComparisonRow struct {
	Name                  string  `json:"name"`
	NetPayout             float64 `json:"net_payout"`
	TotalTax              float64 `json:"total_tax"`
	EffectiveRate         float64 `json:"effective_rate"`
	Retained              float64 `json:"retained"`
	Rank                  int     `json:"rank"`
	DifferenceFromBest    float64 `json:"difference_from_best"`
	DifferenceFromBestPct float64 `json:"difference_from_best_pct"`
}

// Comparison is a ranked table over a set of scenario results plus a
// template-generated recommendation for the winner.
type Comparison struct {
	Rows           []ComparisonRow `json:"rows"`
	Recommendation string          `json:"recommendation"`
}

// RatioEvaluation is one point of the optimizer's search trace.
type RatioEvaluation struct {
	SalaryRatio   int     `json:"salary_ratio"`
	NetPayout     float64 `json:"net_payout"`
	TotalTax      float64 `json:"total_tax"`
	EffectiveRate float64 `json:"effective_rate"`
	Skipped       bool    `json:"skipped,omitempty"`
}

// BaselineSaving reports how much the optimal blend gains over one of
// the named baseline ratios (0, 50 and 100).
type BaselineSaving struct {
	BaselineRatio int     `json:"baseline_ratio"`
	NetPayout     float64 `json:"net_payout"`
	Saving        float64 `json:"saving"`
}

// OptimizationResult is the full outcome of the ratio search.
type OptimizationResult struct {
	OptimalRatio    int               `json:"optimal_ratio"`
	OptimalScenario *ScenarioResult   `json:"optimal_scenario"`
	SearchResults   []RatioEvaluation `json:"search_results"`
	Comparison      Comparison        `json:"comparison"`
	Savings         []BaselineSaving  `json:"savings"`
	Analysis        string            `json:"analysis"`
}

// Breakpoint marks a budget level at which the marginal tax on one
// more krone of salary changes for a given zone.
type Breakpoint struct {
	GrossSalary  float64 `json:"gross_salary"`
	Budget       float64 `json:"budget"`
	MarginalRate float64 `json:"marginal_rate"`
	Description  string  `json:"description"`
}

// BreakpointReport lists the salary breakpoints of a zone next to the
// flat dividend rates, which is what a blend decision trades against.
type BreakpointReport struct {
	Zone                  string       `json:"zone"`
	AgaRate               float64      `json:"aga_rate"`
	Breakpoints           []Breakpoint `json:"breakpoints"`
	DividendEffectiveRate float64      `json:"dividend_effective_rate"`
	CombinedDividendRate  float64      `json:"combined_dividend_rate"`
}
