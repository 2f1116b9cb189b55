package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkleiva/uttak/api/internal/calc"
	"github.com/mkleiva/uttak/api/internal/logger"
	"github.com/mkleiva/uttak/api/internal/models"
	"github.com/mkleiva/uttak/api/internal/repository"
	"github.com/mkleiva/uttak/api/internal/rates"
	"github.com/mkleiva/uttak/api/internal/validate"
)

// Default blend ratio used when a comparison request does not name one.
const defaultComparisonRatio = 50

// ValidationFailedError carries the complete list of input problems.
// Handlers map it to a 400 response; it is the only service error
// that is the client's fault.
type ValidationFailedError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationFailedError) Error() string {
	return "input validation failed: " + strings.Join(e.Errors, "; ")
}

// ScenarioService is the orchestration boundary over the calculation
// engine: validate, calculate, record history.
type ScenarioService interface {
	// Salary computes the all-salary scenario for a raw request.
	Salary(ctx context.Context, raw validate.RawInput) (*models.ScenarioResult, []string, error)

	// Dividend computes the all-dividend scenario for a raw request.
	Dividend(ctx context.Context, raw validate.RawInput) (*models.ScenarioResult, []string, error)

	// Combination computes the blended scenario at the request's
	// salary ratio.
	Combination(ctx context.Context, raw validate.RawInput) (*models.ScenarioResult, []string, error)

	// Optimize searches the full ratio grid for the best blend.
	Optimize(ctx context.Context, raw validate.RawInput, step int) (*models.OptimizationResult, []string, error)

	// Compare ranks the pure strategies against a blend.
	Compare(ctx context.Context, raw validate.RawInput) (*models.Comparison, []string, error)

	// Breakpoints lists the marginal-rate change points for a zone.
	Breakpoints(zone string) (*models.BreakpointReport, error)

	// History returns the newest calculation records.
	History(ctx context.Context, limit int) ([]models.CalculationRecord, error)

	// RateTable exposes the active rate table.
	RateTable() *rates.Table
}

type scenarioService struct {
	table *rates.Table
	repo  repository.HistoryRepository
	log   *logger.Logger
}

// NewScenarioService creates a ScenarioService over the given rate
// table and history store.
func NewScenarioService(table *rates.Table, repo repository.HistoryRepository, log *logger.Logger) ScenarioService {
	return &scenarioService{table: table, repo: repo, log: log}
}

// sanitize runs the domain validator and converts a failure into a
// ValidationFailedError.
func (s *scenarioService) sanitize(raw validate.RawInput) (*validate.Input, []string, error) {
	result := validate.Validate(s.table, raw)
	if !result.IsValid {
		s.log.Warn("Input rejected by validation", map[string]interface{}{
			"errors": result.Errors,
		})
		return nil, result.Warnings, &ValidationFailedError{
			Errors:   result.Errors,
			Warnings: result.Warnings,
		}
	}
	return result.Sanitized, result.Warnings, nil
}

func optionsFrom(in *validate.Input) calc.Options {
	return calc.Options{
		IncludePension:      in.Pension.Enabled,
		PensionRate:         in.Pension.Rate,
		RetainEarnings:      in.Retention.Enabled,
		RetentionPercentage: in.Retention.Percentage,
		ShareCostBasis:      in.ShareCostBasis,
	}
}

// record writes a history row best-effort; a storage failure is
// logged and swallowed, it never fails the calculation.
func (s *scenarioService) record(ctx context.Context, record models.CalculationRecord) {
	if err := s.repo.Insert(ctx, &record); err != nil {
		s.log.Warn("Failed to record calculation history", map[string]interface{}{
			"scenario_type": record.ScenarioType,
			"error":         err.Error(),
		})
	}
}

func (s *scenarioService) Salary(ctx context.Context, raw validate.RawInput) (*models.ScenarioResult, []string, error) {
	if raw.Strategy == nil {
		raw.Strategy = validate.StrategyAllSalary
	}
	input, warnings, err := s.sanitize(raw)
	if err != nil {
		return nil, warnings, err
	}

	result, err := calc.SalaryScenario(s.table, input.Profit, input.Zone, optionsFrom(input))
	if err != nil {
		return nil, warnings, fmt.Errorf("salary scenario failed: %w", err)
	}

	s.log.Info("Salary scenario computed", map[string]interface{}{
		"profit":     input.Profit,
		"zone":       input.Zone,
		"net_payout": result.Final.NetPrivatePayout,
	})
	s.record(ctx, models.CalculationRecord{
		ScenarioType:  models.ScenarioSalary,
		Profit:        input.Profit,
		Zone:          input.Zone,
		NetPayout:     result.Final.NetPrivatePayout,
		TotalTax:      result.Final.TotalTaxPaid,
		EffectiveRate: result.Final.EffectiveTaxRate,
	})

	return result, warnings, nil
}

func (s *scenarioService) Dividend(ctx context.Context, raw validate.RawInput) (*models.ScenarioResult, []string, error) {
	if raw.Strategy == nil {
		raw.Strategy = validate.StrategyAllDividend
	}
	input, warnings, err := s.sanitize(raw)
	if err != nil {
		return nil, warnings, err
	}

	result, err := calc.DividendScenario(s.table, input.Profit, optionsFrom(input))
	if err != nil {
		return nil, warnings, fmt.Errorf("dividend scenario failed: %w", err)
	}

	s.log.Info("Dividend scenario computed", map[string]interface{}{
		"profit":     input.Profit,
		"net_payout": result.Final.NetPrivatePayout,
	})
	s.record(ctx, models.CalculationRecord{
		ScenarioType:  models.ScenarioDividend,
		Profit:        input.Profit,
		NetPayout:     result.Final.NetPrivatePayout,
		TotalTax:      result.Final.TotalTaxPaid,
		EffectiveRate: result.Final.EffectiveTaxRate,
	})

	return result, warnings, nil
}

func (s *scenarioService) Combination(ctx context.Context, raw validate.RawInput) (*models.ScenarioResult, []string, error) {
	if raw.Strategy == nil {
		raw.Strategy = validate.StrategyCombination
	}
	input, warnings, err := s.sanitize(raw)
	if err != nil {
		return nil, warnings, err
	}

	result, err := calc.CombinationScenario(s.table, input.Profit, input.Zone, input.SalaryRatio, optionsFrom(input))
	if err != nil {
		return nil, warnings, fmt.Errorf("combination scenario failed: %w", err)
	}

	s.log.Info("Combination scenario computed", map[string]interface{}{
		"profit":       input.Profit,
		"zone":         input.Zone,
		"salary_ratio": input.SalaryRatio,
		"net_payout":   result.Final.NetPrivatePayout,
	})
	s.record(ctx, models.CalculationRecord{
		ScenarioType:  models.ScenarioCombination,
		Profit:        input.Profit,
		Zone:          input.Zone,
		NetPayout:     result.Final.NetPrivatePayout,
		TotalTax:      result.Final.TotalTaxPaid,
		EffectiveRate: result.Final.EffectiveTaxRate,
	})

	return result, warnings, nil
}

func (s *scenarioService) Optimize(ctx context.Context, raw validate.RawInput, step int) (*models.OptimizationResult, []string, error) {
	// The search sweeps every ratio itself; a strategy or ratio in
	// the raw input is not needed and not required.
	if raw.Strategy == nil {
		raw.Strategy = validate.StrategyCombination
	}
	if raw.SalaryRatio == nil {
		raw.SalaryRatio = defaultComparisonRatio
	}
	input, warnings, err := s.sanitize(raw)
	if err != nil {
		return nil, warnings, err
	}

	result, err := calc.FindOptimalRatio(s.table, input.Profit, input.Zone, step, optionsFrom(input))
	if err != nil {
		return nil, warnings, fmt.Errorf("ratio optimization failed: %w", err)
	}

	s.log.Info("Optimal ratio found", map[string]interface{}{
		"profit":        input.Profit,
		"zone":          input.Zone,
		"optimal_ratio": result.OptimalRatio,
		"net_payout":    result.OptimalScenario.Final.NetPrivatePayout,
	})
	optimalRatio := result.OptimalRatio
	s.record(ctx, models.CalculationRecord{
		ScenarioType:  models.ScenarioOptimization,
		Profit:        input.Profit,
		Zone:          input.Zone,
		NetPayout:     result.OptimalScenario.Final.NetPrivatePayout,
		TotalTax:      result.OptimalScenario.Final.TotalTaxPaid,
		EffectiveRate: result.OptimalScenario.Final.EffectiveTaxRate,
		OptimalRatio:  &optimalRatio,
	})

	return result, warnings, nil
}

func (s *scenarioService) Compare(ctx context.Context, raw validate.RawInput) (*models.Comparison, []string, error) {
	if raw.Strategy == nil {
		raw.Strategy = validate.StrategyCombination
	}
	if raw.SalaryRatio == nil {
		raw.SalaryRatio = defaultComparisonRatio
	}
	input, warnings, err := s.sanitize(raw)
	if err != nil {
		return nil, warnings, err
	}
	opts := optionsFrom(input)

	salary, salaryErr := calc.SalaryScenario(s.table, input.Profit, input.Zone, opts)
	dividend, dividendErr := calc.DividendScenario(s.table, input.Profit, opts)
	blend, blendErr := calc.CombinationScenario(s.table, input.Profit, input.Zone, input.SalaryRatio, opts)

	comparison := calc.RankScenarios([]calc.NamedScenario{
		{Name: "All salary", Scenario: salary, Err: salaryErr},
		{Name: "All dividend", Scenario: dividend, Err: dividendErr},
		{Name: fmt.Sprintf("%.0f%% salary blend", input.SalaryRatio), Scenario: blend, Err: blendErr},
	})
	if len(comparison.Rows) == 0 {
		return nil, warnings, fmt.Errorf("comparison failed: no scenario could be computed")
	}

	s.log.Info("Scenarios compared", map[string]interface{}{
		"profit": input.Profit,
		"zone":   input.Zone,
		"winner": comparison.Rows[0].Name,
	})

	return &comparison, warnings, nil
}

func (s *scenarioService) Breakpoints(zone string) (*models.BreakpointReport, error) {
	report, err := calc.Breakpoints(s.table, zone)
	if err != nil {
		return nil, fmt.Errorf("breakpoint listing failed: %w", err)
	}
	return report, nil
}

func (s *scenarioService) History(ctx context.Context, limit int) ([]models.CalculationRecord, error) {
	records, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.log.Error("Failed to load calculation history", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, fmt.Errorf("failed to load calculation history: %w", err)
	}
	return records, nil
}

func (s *scenarioService) RateTable() *rates.Table {
	return s.table
}
