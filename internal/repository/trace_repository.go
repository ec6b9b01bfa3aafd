package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// TraceRepository handles database operations for trace points
type TraceRepository struct {
	db *sql.DB
}

// BulkCreate stores a dataset's trace
func (r *TraceRepository) BulkCreate(ctx context.Context, points []models.TracePoint) error {
	rows := make([][]any, len(points))
	for i, p := range points {
		rows[i] = []any{p.Dataset, p.EntityID, p.X, p.Y, p.Z, p.Time, p.StayPointID}
	}
	return bulkInsert(ctx, r.db, "trace_points",
		[]string{"dataset", "entity_id", "x", "y", "z", "time", "sp_id"}, rows)
}

// ListByDataset retrieves a dataset's trace sorted by (entity, time)
func (r *TraceRepository) ListByDataset(ctx context.Context, dataset string) ([]models.TracePoint, error) {
	query := `
		SELECT dataset, entity_id, x, y, z, time, sp_id
		FROM trace_points
		WHERE dataset = ?
		ORDER BY entity_id, time, id
	`

	rows, err := r.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to query trace points: %w", err)
	}
	defer rows.Close()

	var points []models.TracePoint
	for rows.Next() {
		var p models.TracePoint
		if err := rows.Scan(&p.Dataset, &p.EntityID, &p.X, &p.Y, &p.Z, &p.Time, &p.StayPointID); err != nil {
			return nil, fmt.Errorf("failed to scan trace point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Count returns the number of stored trace points of a dataset
func (r *TraceRepository) Count(ctx context.Context, dataset string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trace_points WHERE dataset = ?", dataset).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trace points: %w", err)
	}
	return count, nil
}
