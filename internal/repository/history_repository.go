package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkleiva/uttak/api/internal/database"
	"github.com/mkleiva/uttak/api/internal/models"
)

// Maximum number of history rows a single listing returns.
const maxHistoryResults = 100

// HistoryRepository persists and lists calculation records.
type HistoryRepository interface {
	// Insert stores one calculation record. The record's ID and
	// CreatedAt are assigned here.
	Insert(ctx context.Context, record *models.CalculationRecord) error

	// ListRecent returns the newest records, newest first. A limit
	// outside (0, maxHistoryResults] is clamped.
	ListRecent(ctx context.Context, limit int) ([]models.CalculationRecord, error)
}

type historyRepository struct {
	db *database.Database
}

// NewHistoryRepository creates a HistoryRepository backed by postgres.
func NewHistoryRepository(db *database.Database) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Insert(ctx context.Context, record *models.CalculationRecord) error {
	record.ID = uuid.New()

	query := `
		INSERT INTO calculation_history (
			id, scenario_type, profit, zone,
			net_payout, total_tax, effective_rate, optimal_ratio, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		record.ID,
		record.ScenarioType,
		record.Profit,
		record.Zone,
		record.NetPayout,
		record.TotalTax,
		record.EffectiveRate,
		record.OptimalRatio,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert calculation record: %w", err)
	}

	return nil
}

func (r *historyRepository) ListRecent(ctx context.Context, limit int) ([]models.CalculationRecord, error) {
	if limit <= 0 || limit > maxHistoryResults {
		limit = maxHistoryResults
	}

	query := `
		SELECT id, scenario_type, profit, zone,
			net_payout, total_tax, effective_rate, optimal_ratio, created_at
		FROM calculation_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculation history: %w", err)
	}
	defer rows.Close()

	records := []models.CalculationRecord{}
	for rows.Next() {
		var record models.CalculationRecord
		err := rows.Scan(
			&record.ID,
			&record.ScenarioType,
			&record.Profit,
			&record.Zone,
			&record.NetPayout,
			&record.TotalTax,
			&record.EffectiveRate,
			&record.OptimalRatio,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calculation records: %w", err)
	}

	return records, nil
}
