package models

import (
	"time"

	"github.com/google/uuid"
)

// CalculationRecord is one row of the calculation history. History is
// best-effort audit data; failing to write it never fails a request.
type CalculationRecord struct {
	ID            uuid.UUID `json:"id"`
	ScenarioType  string    `json:"scenario_type"`
	Profit        float64   `json:"profit"`
	Zone          string    `json:"zone,omitempty"`
	NetPayout     float64   `json:"net_payout"`
	TotalTax      float64   `json:"total_tax"`
	EffectiveRate float64   `json:"effective_rate"`
	OptimalRatio  *int      `json:"optimal_ratio,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
