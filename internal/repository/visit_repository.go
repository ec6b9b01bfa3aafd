package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// VisitRepository handles database operations for visits
type VisitRepository struct {
	db *sql.DB
}

// BulkCreate stores visits
func (r *VisitRepository) BulkCreate(ctx context.Context, visits []models.Visit) error {
	rows := make([][]any, len(visits))
	for i, v := range visits {
		rows[i] = []any{v.Dataset, v.EntityID, v.StayPointID, v.ArvTime, v.LevTime, v.VisitTime}
	}
	return bulkInsert(ctx, r.db, "visits",
		[]string{"dataset", "entity_id", "stay_point_id", "arv_time", "lev_time", "visit_time"}, rows)
}

// List retrieves a dataset's visits ordered by arrival time
func (r *VisitRepository) List(ctx context.Context, dataset string, filter models.EntityFilter) ([]models.Visit, error) {
	query := `
		SELECT id, dataset, entity_id, stay_point_id, arv_time, lev_time, visit_time
		FROM visits
		WHERE dataset = ?
	`
	args := []any{dataset}
	if filter.EntityID != nil {
		query += " AND entity_id = ?"
		args = append(args, *filter.EntityID)
	}
	query += " ORDER BY arv_time, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.Dataset, &v.EntityID, &v.StayPointID, &v.ArvTime, &v.LevTime, &v.VisitTime); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
