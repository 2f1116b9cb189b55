// Package calc is the pure calculation and optimization engine. Every
// function is a deterministic function of (amounts, rate table,
// options) and touches no shared state, so any call is safe to run
// concurrently with any other.
package calc

import "errors"

// Engine-level errors. An unknown zone reaching this package means a
// caller bypassed validation; it propagates as a hard failure and is
// never defaulted away.
var (
	ErrUnknownZone      = errors.New("unknown employer contribution zone")
	ErrNegativeAmount   = errors.New("amount must be non-negative")
	ErrRatioOutOfRange  = errors.New("salary ratio must be between 0 and 100")
	ErrNoViableScenario = errors.New("no ratio produced a viable scenario")
)

// Options carries the optional settings shared by every scenario
// calculator. The zero value means: no pension, no retention, no
// share cost basis.
type Options struct {
	// IncludePension adds an occupational pension contribution of
	// PensionRate (fractional) on gross salary, plus the employer
	// contribution charged on it.
	IncludePension bool
	PensionRate    float64

	// RetainEarnings keeps RetentionPercentage percent of profit in
	// the company instead of extracting it. The retained slice still
	// pays corporate tax.
	RetainEarnings      bool
	RetentionPercentage float64

	// ShareCostBasis feeds the shareholder allowance in the pure
	// dividend scenario. The combination path deliberately ignores
	// it; the allowance is whole-portfolio and applying it per slice
	// would double-count across ratios.
	ShareCostBasis float64
}

// retainedAmount returns the gross profit slice kept in the company.
func (o Options) retainedAmount(profit float64) float64 {
	if !o.RetainEarnings {
		return 0
	}
	return profit * o.RetentionPercentage / 100
}

// pensionRate returns the effective fractional pension rate, zero
// when pension is disabled.
func (o Options) pensionRate() float64 {
	if !o.IncludePension {
		return 0
	}
	return o.PensionRate
}
