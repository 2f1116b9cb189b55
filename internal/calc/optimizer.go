package calc

import (
	"fmt"
	"sync"

	"github.com/mkleiva/uttak/api/internal/models"
	"github.com/mkleiva/uttak/api/internal/rates"
)

const (
	// DefaultStep scans every integer ratio.
	DefaultStep = 1

	optimizerWorkers = 8
)

// Baseline ratios reported next to every optimization.
var baselineRatios = []int{100, 50, 0}

// FindOptimalRatio evaluates CombinationScenario across the whole
// ratio grid 0..100 (inclusive, at the given step) and picks the
// ratio with the greatest net private payout. Evaluations fan out
// across workers, but results are collected by ratio index, so the
// tie-break stays first-seen-wins in ratio order no matter which
// worker finishes first: a later ratio with an equal payout never
// replaces the current best. A ratio whose scenario fails is skipped,
// not fatal.
func FindOptimalRatio(table *rates.Table, profit float64, zone string, step int, opts Options) (*models.OptimizationResult, error) {
	if step <= 0 {
		step = DefaultStep
	}

	var ratios []int
	for r := 0; r <= 100; r += step {
		ratios = append(ratios, r)
	}
	// Both endpoints belong to the search domain; a stride that does
	// not divide 100 must not step over the all-salary ratio.
	if ratios[len(ratios)-1] != 100 {
		ratios = append(ratios, 100)
	}

	scenarios := make([]*models.ScenarioResult, len(ratios))
	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < optimizerWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				s, err := CombinationScenario(table, profit, zone, float64(ratios[i]), opts)
				if err == nil {
					scenarios[i] = s
				}
			}
		}()
	}
	for i := range ratios {
		work <- i
	}
	close(work)
	wg.Wait()

	trace := make([]models.RatioEvaluation, len(ratios))
	bestIdx := -1
	for i, s := range scenarios {
		if s == nil {
			trace[i] = models.RatioEvaluation{SalaryRatio: ratios[i], Skipped: true}
			continue
		}
		trace[i] = models.RatioEvaluation{
			SalaryRatio:   ratios[i],
			NetPayout:     s.Final.NetPrivatePayout,
			TotalTax:      s.Final.TotalTaxPaid,
			EffectiveRate: s.Final.EffectiveTaxRate,
		}
		if bestIdx == -1 || s.Final.NetPrivatePayout > scenarios[bestIdx].Final.NetPrivatePayout {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return nil, fmt.Errorf("%w: profit %v, zone %q", ErrNoViableScenario, profit, zone)
	}

	optimal := scenarios[bestIdx]
	optimalRatio := ratios[bestIdx]

	var savings []models.BaselineSaving
	named := []NamedScenario{{
		Name:     fmt.Sprintf("Optimal blend (%d%% salary)", optimalRatio),
		Scenario: optimal,
	}}
	for _, baseline := range baselineRatios {
		s, err := CombinationScenario(table, profit, zone, float64(baseline), opts)
		named = append(named, NamedScenario{Name: baselineName(baseline), Scenario: s, Err: err})
		if err != nil {
			continue
		}
		savings = append(savings, models.BaselineSaving{
			BaselineRatio: baseline,
			NetPayout:     s.Final.NetPrivatePayout,
			Saving:        models.RoundKrone(optimal.Final.NetPrivatePayout - s.Final.NetPrivatePayout),
		})
	}

	return &models.OptimizationResult{
		OptimalRatio:    optimalRatio,
		OptimalScenario: optimal,
		SearchResults:   trace,
		Comparison:      RankScenarios(named),
		Savings:         savings,
		Analysis:        analysisText(optimalRatio, optimal, savings),
	}, nil
}

func baselineName(ratio int) string {
	switch ratio {
	case 100:
		return "All salary"
	case 0:
		return "All dividend"
	default:
		return fmt.Sprintf("%d%% salary", ratio)
	}
}

// analysisText is a template over the numbers; nothing here is
// computed beyond what the result already carries.
func analysisText(ratio int, optimal *models.ScenarioResult, savings []models.BaselineSaving) string {
	var vsWorst float64
	for _, s := range savings {
		if s.Saving > vsWorst {
			vsWorst = s.Saving
		}
	}
	switch {
	case ratio == 100:
		return fmt.Sprintf("Taking everything as salary maximizes the net payout at %.0f; "+
			"the best alternative leaves up to %.0f on the table.",
			optimal.Final.NetPrivatePayout, vsWorst)
	case ratio == 0:
		return fmt.Sprintf("Taking everything as dividend maximizes the net payout at %.0f; "+
			"the best alternative leaves up to %.0f on the table.",
			optimal.Final.NetPrivatePayout, vsWorst)
	default:
		return fmt.Sprintf("A blend of %d%% salary and %d%% dividend maximizes the net payout "+
			"at %.0f, up to %.0f more than the single-strategy baselines.",
			ratio, 100-ratio, optimal.Final.NetPrivatePayout, vsWorst)
	}
}
