// Package validate is the gate in front of the calculation engine.
// Every raw request passes through Validate, which runs all field
// validators unconditionally and aggregates every error so a client
// can show all problems at once. Calculators only ever see the
// sanitized Input it produces.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mkleiva/uttak/api/internal/rates"
)

// Strategy names accepted in raw input.
const (
	StrategyAllSalary   = "all-salary"
	StrategyAllDividend = "all-dividend"
	StrategyCombination = "combination"
)

// Legal bounds for the occupational pension rate, as fractions.
const (
	MinPensionRate = 0.02
	MaxPensionRate = 0.07
)

// RawPension is the unvalidated pension option block.
type RawPension struct {
	Enabled bool `json:"enabled"`
	Rate    any  `json:"rate"`
}

// RawRetention is the unvalidated retention option block.
type RawRetention struct {
	Enabled    bool `json:"enabled"`
	Percentage any  `json:"percentage"`
}

// RawInput is the loosely-typed calculation request as it arrives off
// the wire. Numeric fields are `any` on purpose: numeric-looking
// strings coerce, everything else is an error, never a default.
type RawInput struct {
	Profit         any           `json:"profit"`
	Zone           any           `json:"zone"`
	Strategy       any           `json:"strategy"`
	SalaryRatio    any           `json:"salary_ratio"`
	Pension        *RawPension   `json:"pension"`
	Retention      *RawRetention `json:"retention"`
	ShareCostBasis any           `json:"share_cost_basis"`
}

// PensionSettings is the sanitized pension option. Rate is always the
// fractional form.
type PensionSettings struct {
	Enabled bool    `json:"enabled"`
	Rate    float64 `json:"rate"`
}

// RetentionSettings is the sanitized retention option.
type RetentionSettings struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
}

// Input is the sanitized calculation request. It is only ever
// produced by Validate and is consumed verbatim by the calculators.
type Input struct {
	Profit         float64           `json:"profit"`
	Zone           string            `json:"zone"`
	Strategy       string            `json:"strategy"`
	SalaryRatio    float64           `json:"salary_ratio"`
	Pension        PensionSettings   `json:"pension"`
	Retention      RetentionSettings `json:"retention"`
	ShareCostBasis float64           `json:"share_cost_basis"`
}

// FieldResult is the outcome of a single field validator.
type FieldResult struct {
	Valid  bool
	Value  float64
	Text   string
	Errors []string
}

// Result is the outcome of a full validation pass. Sanitized is nil
// whenever IsValid is false, and no calculation may proceed.
type Result struct {
	IsValid   bool     `json:"is_valid"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
	Sanitized *Input   `json:"sanitized_input"`
}

// parseNumber coerces a raw value into a float64. Accepts native
// numbers, json.Number, and numeric-looking strings. The second
// return is false for anything else, including nil. Non-finite
// values are rejected here: ParseFloat accepts "NaN" and "Inf", and
// NaN compares false against every range bound, so it would slip
// past every later check and poison the calculators.
func parseNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func invalid(msgs ...string) FieldResult {
	return FieldResult{Valid: false, Errors: msgs}
}

// Profit validates the profit field: required, numeric, non-negative
// and below the table's sanity bound.
func Profit(table *rates.Table, v any) FieldResult {
	if v == nil {
		return invalid("profit is required")
	}
	n, ok := parseNumber(v)
	if !ok {
		return invalid(fmt.Sprintf("profit must be a number, got %v", v))
	}
	if n < 0 {
		return invalid(fmt.Sprintf("profit must be non-negative, got %v", n))
	}
	if n > table.MaxProfit {
		return invalid(fmt.Sprintf("profit %v exceeds the supported maximum of %v", n, table.MaxProfit))
	}
	return FieldResult{Valid: true, Value: n}
}

// Zone validates the employer-contribution zone. The match against
// the rate table's zone set is exact and case-sensitive; guessing a
// zone would misstate geography-based tax.
func Zone(table *rates.Table, v any) FieldResult {
	s, ok := v.(string)
	if !ok || s == "" {
		return invalid("zone is required")
	}
	if _, known := table.ZoneRate(s); !known {
		return invalid(fmt.Sprintf("unknown zone %q, valid zones are %s",
			s, strings.Join(table.ZoneIDs(), ", ")))
	}
	return FieldResult{Valid: true, Text: s}
}

// Percentage validates a generic percentage field with inclusive
// [0,100] bounds.
func Percentage(v any, field string) FieldResult {
	n, ok := parseNumber(v)
	if !ok {
		return invalid(fmt.Sprintf("%s must be a number, got %v", field, v))
	}
	if n < 0 || n > 100 {
		return invalid(fmt.Sprintf("%s must be between 0 and 100, got %v", field, n))
	}
	return FieldResult{Valid: true, Value: n}
}

// Strategy validates the withdrawal strategy name.
func Strategy(v any) FieldResult {
	s, ok := v.(string)
	if !ok || s == "" {
		return invalid("strategy is required")
	}
	switch s {
	case StrategyAllSalary, StrategyAllDividend, StrategyCombination:
		return FieldResult{Valid: true, Text: s}
	default:
		return invalid(fmt.Sprintf("unknown strategy %q, must be one of %s, %s, %s",
			s, StrategyAllSalary, StrategyAllDividend, StrategyCombination))
	}
}

// PensionRate validates the pension rate in either of its two
// accepted units: fractional (0.02–0.07) or whole percentage (2–7).
// Values at or above 1 are read as whole percentages; the result is
// always normalized to the fractional form. Out-of-bounds values in
// either unit are rejected naming the 2%–7% legal window.
func PensionRate(v any) FieldResult {
	n, ok := parseNumber(v)
	if !ok {
		return invalid(fmt.Sprintf("pension rate must be a number, got %v", v))
	}
	rate := n
	if rate >= 1 {
		rate = rate / 100
	}
	if rate < MinPensionRate || rate > MaxPensionRate {
		return invalid(fmt.Sprintf("pension rate %v is outside the legal 2%%–7%% window", n))
	}
	return FieldResult{Valid: true, Value: rate}
}

// CostBasis validates the optional share cost basis. Absent means
// zero; present means numeric and non-negative.
func CostBasis(v any) FieldResult {
	if v == nil {
		return FieldResult{Valid: true, Value: 0}
	}
	n, ok := parseNumber(v)
	if !ok {
		return invalid(fmt.Sprintf("share cost basis must be a number, got %v", v))
	}
	if n < 0 {
		return invalid(fmt.Sprintf("share cost basis must be non-negative, got %v", n))
	}
	return FieldResult{Valid: true, Value: n}
}

// Validate runs every field validator against the raw input and
// aggregates all errors. It never short-circuits: a client gets the
// complete problem list in one pass.
func Validate(table *rates.Table, raw RawInput) Result {
	var errs, warnings []string
	input := Input{}

	profit := Profit(table, raw.Profit)
	errs = append(errs, profit.Errors...)
	if profit.Valid {
		input.Profit = profit.Value
		if profit.Value == 0 {
			warnings = append(warnings, "profit is zero; every scenario will pay out nothing")
		}
	}

	strategy := Strategy(raw.Strategy)
	errs = append(errs, strategy.Errors...)
	if strategy.Valid {
		input.Strategy = strategy.Text
	}

	// Zone is unconditionally validated when present. It is required
	// for every strategy except a pure dividend withdrawal.
	if raw.Zone != nil || input.Strategy != StrategyAllDividend {
		zone := Zone(table, raw.Zone)
		errs = append(errs, zone.Errors...)
		if zone.Valid {
			input.Zone = zone.Text
		}
	}

	if strategy.Valid && strategy.Text == StrategyCombination {
		if raw.SalaryRatio == nil {
			errs = append(errs, "salary_ratio is required for the combination strategy")
		} else {
			ratio := Percentage(raw.SalaryRatio, "salary_ratio")
			errs = append(errs, ratio.Errors...)
			if ratio.Valid {
				input.SalaryRatio = ratio.Value
			}
		}
	}

	// Missing optional blocks resolve to an explicit disabled state,
	// never an implicit guess.
	if raw.Pension != nil && raw.Pension.Enabled {
		rate := PensionRate(raw.Pension.Rate)
		errs = append(errs, rate.Errors...)
		if rate.Valid {
			input.Pension = PensionSettings{Enabled: true, Rate: rate.Value}
		}
		if strategy.Valid && strategy.Text == StrategyAllDividend {
			warnings = append(warnings, "pension has no effect on an all-dividend withdrawal")
		}
	}

	if raw.Retention != nil && raw.Retention.Enabled {
		pct := Percentage(raw.Retention.Percentage, "retention percentage")
		errs = append(errs, pct.Errors...)
		if pct.Valid {
			input.Retention = RetentionSettings{Enabled: true, Percentage: pct.Value}
		}
	}

	basis := CostBasis(raw.ShareCostBasis)
	errs = append(errs, basis.Errors...)
	if basis.Valid {
		input.ShareCostBasis = basis.Value
	}

	if len(errs) > 0 {
		return Result{IsValid: false, Errors: errs, Warnings: warnings}
	}
	return Result{IsValid: true, Errors: []string{}, Warnings: warnings, Sanitized: &input}
}
