package calc

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/mkleiva/uttak/api/internal/models"
)

// NamedScenario pairs a display name with a scenario outcome. A
// scenario that failed to build carries its error instead of a
// half-computed result.
type NamedScenario struct {
	Name     string
	Scenario *models.ScenarioResult
	Err      error
}

// RankScenarios builds the ranked comparison table over a set of
// named scenarios. Errored scenarios are dropped; the rest are sorted
// by net payout descending with a stable sort, so equal-payout
// scenarios keep their input order. Every row, the best included,
// reports its distance from the best payout.
func RankScenarios(scenarios []NamedScenario) models.Comparison {
	viable := lo.Filter(scenarios, func(s NamedScenario, _ int) bool {
		return s.Err == nil && s.Scenario != nil
	})
	if len(viable) == 0 {
		return models.Comparison{Rows: []models.ComparisonRow{}}
	}

	sort.SliceStable(viable, func(i, j int) bool {
		return viable[i].Scenario.Final.NetPrivatePayout > viable[j].Scenario.Final.NetPrivatePayout
	})

	best := viable[0].Scenario.Final.NetPrivatePayout
	rows := lo.Map(viable, func(s NamedScenario, i int) models.ComparisonRow {
		diff := best - s.Scenario.Final.NetPrivatePayout
		pct := 0.0
		if best != 0 {
			pct = models.RoundRate(diff / best)
		}
		return models.ComparisonRow{
			Name:                  s.Name,
			NetPayout:             s.Scenario.Final.NetPrivatePayout,
			TotalTax:              s.Scenario.Final.TotalTaxPaid,
			EffectiveRate:         s.Scenario.Final.EffectiveTaxRate,
			Retained:              s.Scenario.Final.RetainedInCompany,
			Rank:                  i + 1,
			DifferenceFromBest:    models.RoundKrone(diff),
			DifferenceFromBestPct: pct,
		}
	})

	return models.Comparison{
		Rows:           rows,
		Recommendation: recommendationText(viable[0]),
	}
}

func recommendationText(winner NamedScenario) string {
	switch winner.Scenario.ScenarioType {
	case models.ScenarioSalary:
		return fmt.Sprintf("%s keeps the most after tax. Salary carries employer and personal "+
			"contributions, but below the upper brackets it still beats the flat dividend rate.",
			winner.Name)
	case models.ScenarioDividend:
		return fmt.Sprintf("%s keeps the most after tax. At this profit level the combined "+
			"corporate and dividend rate undercuts the marginal tax on additional salary.",
			winner.Name)
	default:
		return fmt.Sprintf("%s keeps the most after tax. Filling the lower salary brackets "+
			"first and distributing the rest as dividend beats either pure strategy.",
			winner.Name)
	}
}
