package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// StayPointRepository handles database operations for stay points
type StayPointRepository struct {
	db *sql.DB
}

// BulkCreate stores the stay points detected for a dataset
func (r *StayPointRepository) BulkCreate(ctx context.Context, points []models.StayPoint) error {
	rows := make([][]any, len(points))
	for i, sp := range points {
		rows[i] = []any{
			sp.Dataset, sp.StayPointID, sp.XCenter, sp.YCenter, sp.ZCenter,
			sp.NumVisits, sp.TotalVisitsTime, sp.Entropy, sp.ImportanceDegree,
		}
	}
	return bulkInsert(ctx, r.db, "stay_points", []string{
		"dataset", "stay_point_id", "x_center", "y_center", "z_center",
		"num_visits", "total_visits_time", "entropy", "importance_degree",
	}, rows)
}

// ListByDataset retrieves a dataset's stay points ordered by stay point id
func (r *StayPointRepository) ListByDataset(ctx context.Context, dataset string) ([]models.StayPoint, error) {
	query := `
		SELECT id, dataset, stay_point_id, x_center, y_center, z_center,
		       num_visits, total_visits_time, entropy, importance_degree
		FROM stay_points
		WHERE dataset = ?
		ORDER BY stay_point_id
	`

	rows, err := r.db.QueryContext(ctx, query, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to query stay points: %w", err)
	}
	defer rows.Close()

	var points []models.StayPoint
	for rows.Next() {
		var sp models.StayPoint
		err := rows.Scan(
			&sp.ID, &sp.Dataset, &sp.StayPointID,
			&sp.XCenter, &sp.YCenter, &sp.ZCenter,
			&sp.NumVisits, &sp.TotalVisitsTime,
			&sp.Entropy, &sp.ImportanceDegree,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stay point: %w", err)
		}
		points = append(points, sp)
	}
	return points, rows.Err()
}

// UpdateScores writes the entropy and importance degree of each stay point
func (r *StayPointRepository) UpdateScores(ctx context.Context, points []models.StayPoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE stay_points
		SET entropy = ?, importance_degree = ?
		WHERE dataset = ? AND stay_point_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare stay point update: %w", err)
	}
	defer stmt.Close()

	for _, sp := range points {
		res, err := stmt.ExecContext(ctx, sp.Entropy, sp.ImportanceDegree, sp.Dataset, sp.StayPointID)
		if err != nil {
			return fmt.Errorf("failed to update stay point %d: %w", sp.StayPointID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("stay point %d of %q: %w", sp.StayPointID, sp.Dataset, ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stay point update: %w", err)
	}
	return nil
}
