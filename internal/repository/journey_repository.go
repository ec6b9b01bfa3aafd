package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// JourneyRepository handles database operations for journeys
type JourneyRepository struct {
	db *sql.DB
}

// BulkCreate stores journeys
func (r *JourneyRepository) BulkCreate(ctx context.Context, journeys []models.Journey) error {
	rows := make([][]any, len(journeys))
	for i, j := range journeys {
		rows[i] = []any{j.Dataset, j.EntityID, j.LevID, j.ArvID, j.JourneyDistance, j.JourneyTime, j.JourneyAvgSpeed}
	}
	return bulkInsert(ctx, r.db, "journeys", []string{
		"dataset", "entity_id", "lev_id", "arv_id",
		"journey_distance", "journey_time", "journey_avg_speed",
	}, rows)
}

// List retrieves a dataset's journeys in creation order
func (r *JourneyRepository) List(ctx context.Context, dataset string, filter models.EntityFilter) ([]models.Journey, error) {
	query := `
		SELECT id, dataset, entity_id, lev_id, arv_id, journey_distance, journey_time, journey_avg_speed
		FROM journeys
		WHERE dataset = ?
	`
	args := []any{dataset}
	if filter.EntityID != nil {
		query += " AND entity_id = ?"
		args = append(args, *filter.EntityID)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	var journeys []models.Journey
	for rows.Next() {
		var j models.Journey
		err := rows.Scan(&j.ID, &j.Dataset, &j.EntityID, &j.LevID, &j.ArvID,
			&j.JourneyDistance, &j.JourneyTime, &j.JourneyAvgSpeed)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journey: %w", err)
		}
		journeys = append(journeys, j)
	}
	return journeys, rows.Err()
}
