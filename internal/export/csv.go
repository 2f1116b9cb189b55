// Package export renders comparison tables for download. CSV writing
// uses the standard library encoder; the format is too small to
// justify a dependency.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/mkleiva/uttak/api/internal/models"
)

var comparisonHeader = []string{
	"rank", "name", "net_payout", "total_tax", "effective_rate",
	"retained", "difference_from_best",
}

// ComparisonCSV renders a ranked comparison as CSV, one row per
// scenario in rank order.
func ComparisonCSV(comparison *models.Comparison) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(comparisonHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range comparison.Rows {
		record := []string{
			fmt.Sprintf("%d", row.Rank),
			row.Name,
			fmt.Sprintf("%.0f", row.NetPayout),
			fmt.Sprintf("%.0f", row.TotalTax),
			fmt.Sprintf("%.4f", row.EffectiveRate),
			fmt.Sprintf("%.0f", row.Retained),
			fmt.Sprintf("%.0f", row.DifferenceFromBest),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
