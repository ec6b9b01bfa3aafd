package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// MetricsRepository handles database operations for per-entity metrics
type MetricsRepository struct {
	db *sql.DB
}

var metricsColumns = []string{
	"dataset", "label", "entity_id",
	"travel_time", "travel_distance", "travel_avg_speed",
	"x_center", "y_center", "z_center", "radius_of_gyration",
	"avg_direction_angle", "angle_variation_coefficient", "occupied_quadrants",
	"num_stay_points_visits", "avg_time_visit", "visit_time_variation_coefficient",
	"num_journeys", "avg_journey_time", "avg_journey_distance", "avg_journey_avg_speed",
	"total_contact_time", "num_contacts", "avg_contact_time",
}

// metricsFields returns pointers to m's fields in metricsColumns order. The
// same slice serves as Scan destinations and as Exec arguments.
func metricsFields(m *models.EntityMetrics) []any {
	return []any{
		&m.Dataset, &m.Label, &m.EntityID,
		&m.TravelTime, &m.TravelDistance, &m.TravelAvgSpeed,
		&m.XCenter, &m.YCenter, &m.ZCenter, &m.RadiusOfGyration,
		&m.AvgDirectionAngle, &m.AngleVariationCoefficient, &m.OccupiedQuadrants,
		&m.NumStayPointsVisits, &m.AvgTimeVisit, &m.VisitTimeVariationCoefficient,
		&m.NumJourneys, &m.AvgJourneyTime, &m.AvgJourneyDistance, &m.AvgJourneyAvgSpeed,
		&m.TotalContactTime, &m.NumContacts, &m.AvgContactTime,
	}
}

// Create inserts a metrics row and sets its ID
func (r *MetricsRepository) Create(ctx context.Context, m *models.EntityMetrics) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(metricsColumns)), ", ")
	query := fmt.Sprintf("INSERT INTO entity_metrics (%s) VALUES (%s)", strings.Join(metricsColumns, ", "), placeholders)

	result, err := r.db.ExecContext(ctx, query, metricsFields(m)...)
	if err != nil {
		return fmt.Errorf("failed to create entity metrics: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	m.ID = id
	return nil
}

// Update overwrites every metric of an existing row
func (r *MetricsRepository) Update(ctx context.Context, m *models.EntityMetrics) error {
	sets := make([]string, len(metricsColumns))
	for i, c := range metricsColumns {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE entity_metrics SET %s WHERE dataset = ? AND entity_id = ?", strings.Join(sets, ", "))

	args := append(metricsFields(m), m.Dataset, m.EntityID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update entity metrics: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("metrics of entity %d in %q: %w", m.EntityID, m.Dataset, ErrNotFound)
	}
	return nil
}

// FindByEntity returns the metrics row of an entity, or nil if there is none
func (r *MetricsRepository) FindByEntity(ctx context.Context, dataset string, entityID int64) (*models.EntityMetrics, error) {
	query := fmt.Sprintf("SELECT id, %s FROM entity_metrics WHERE dataset = ? AND entity_id = ?", strings.Join(metricsColumns, ", "))

	m := &models.EntityMetrics{}
	dest := append([]any{&m.ID}, metricsFields(m)...)
	err := r.db.QueryRowContext(ctx, query, dataset, entityID).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity metrics: %w", err)
	}
	return m, nil
}

// List retrieves a dataset's metrics rows ordered by entity id
func (r *MetricsRepository) List(ctx context.Context, dataset string, filter models.EntityFilter) ([]models.EntityMetrics, error) {
	query := fmt.Sprintf("SELECT id, %s FROM entity_metrics WHERE dataset = ?", strings.Join(metricsColumns, ", "))
	args := []any{dataset}
	if filter.EntityID != nil {
		query += " AND entity_id = ?"
		args = append(args, *filter.EntityID)
	}
	query += " ORDER BY entity_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity metrics: %w", err)
	}
	defer rows.Close()

	var out []models.EntityMetrics
	for rows.Next() {
		var m models.EntityMetrics
		if err := rows.Scan(append([]any{&m.ID}, metricsFields(&m)...)...); err != nil {
			return nil, fmt.Errorf("failed to scan entity metrics: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GlobalMetricsRepository handles database operations for dataset roll-ups
type GlobalMetricsRepository struct {
	db *sql.DB
}

var globalColumns = []string{
	"dataset", "label",
	"avg_travel_time", "avg_travel_distance", "avg_travel_avg_speed",
	"avg_x_center", "avg_y_center", "avg_z_center", "avg_radius_of_gyration", "total_spatial_cover",
	"num_stay_points", "avg_stay_points_visits_per_entity", "num_stay_points_visits", "avg_stay_point_entropy",
	"avg_quadrant_entropy", "num_contacts",
	"num_journeys", "avg_journey_time", "avg_journey_distance", "avg_journey_avg_speed",
	"mobility_profile", "trajectory_correlation", "speed_variation_coefficient", "visit_time_variation_coefficient",
	"created_at",
}

func globalFields(g *models.GlobalMetrics) []any {
	return []any{
		&g.Dataset, &g.Label,
		&g.AvgTravelTime, &g.AvgTravelDistance, &g.AvgTravelAvgSpeed,
		&g.AvgXCenter, &g.AvgYCenter, &g.AvgZCenter, &g.AvgRadiusOfGyration, &g.TotalSpatialCover,
		&g.NumStayPoints, &g.AvgStayPointsVisitsPerEntity, &g.NumStayPointsVisits, &g.AvgStayPointEntropy,
		&g.AvgQuadrantEntropy, &g.NumContacts,
		&g.NumJourneys, &g.AvgJourneyTime, &g.AvgJourneyDistance, &g.AvgJourneyAvgSpeed,
		&g.MobilityProfile, &g.TrajectoryCorrelation, &g.SpeedVariationCoefficient, &g.VisitTimeVariationCoefficient,
		&g.CreatedAt,
	}
}

// Upsert creates or replaces the roll-up of a dataset
func (r *GlobalMetricsRepository) Upsert(ctx context.Context, g *models.GlobalMetrics) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(globalColumns)), ", ")
	query := fmt.Sprintf("INSERT OR REPLACE INTO global_metrics (%s) VALUES (%s)", strings.Join(globalColumns, ", "), placeholders)

	if _, err := r.db.ExecContext(ctx, query, globalFields(g)...); err != nil {
		return fmt.Errorf("failed to save global metrics: %w", err)
	}
	return nil
}

// Get retrieves the roll-up of a dataset
func (r *GlobalMetricsRepository) Get(ctx context.Context, dataset string) (*models.GlobalMetrics, error) {
	query := fmt.Sprintf("SELECT %s FROM global_metrics WHERE dataset = ?", strings.Join(globalColumns, ", "))

	g := &models.GlobalMetrics{}
	err := r.db.QueryRowContext(ctx, query, dataset).Scan(globalFields(g)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("global metrics of %q: %w", dataset, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get global metrics: %w", err)
	}
	return g, nil
}
