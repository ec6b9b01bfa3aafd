package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// QuadrantRepository handles database operations for quadrant entropy cells
type QuadrantRepository struct {
	db *sql.DB
}

// BulkCreate stores quadrant cells
func (r *QuadrantRepository) BulkCreate(ctx context.Context, cells []models.QuadrantCell) error {
	rows := make([][]any, len(cells))
	for i, c := range cells {
		rows[i] = []any{c.Dataset, c.EntityID, c.XIndex, c.YIndex, c.VisitCount, c.Entropy, c.SpatialCover}
	}
	return bulkInsert(ctx, r.db, "quadrant_cells", []string{
		"dataset", "entity_id", "x_index", "y_index", "visit_count", "entropy", "spatial_cover",
	}, rows)
}

// List retrieves a dataset's quadrant cells
func (r *QuadrantRepository) List(ctx context.Context, dataset string, filter models.QuadrantFilter) ([]models.QuadrantCell, error) {
	query := `
		SELECT id, dataset, entity_id, x_index, y_index, visit_count, entropy, spatial_cover
		FROM quadrant_cells
		WHERE dataset = ?
	`
	args := []any{dataset}
	switch {
	case filter.Global:
		query += " AND entity_id IS NULL"
	case filter.EntityID != nil:
		query += " AND entity_id = ?"
		args = append(args, *filter.EntityID)
	}
	query += " ORDER BY entity_id, x_index, y_index"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quadrant cells: %w", err)
	}
	defer rows.Close()

	var cells []models.QuadrantCell
	for rows.Next() {
		var c models.QuadrantCell
		err := rows.Scan(&c.ID, &c.Dataset, &c.EntityID, &c.XIndex, &c.YIndex, &c.VisitCount, &c.Entropy, &c.SpatialCover)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quadrant cell: %w", err)
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}
