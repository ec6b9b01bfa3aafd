package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/mobility-metrics-go/internal/models"
)

// ConfigRepository stores the parameters each dataset was processed with
type ConfigRepository struct {
	db *sql.DB
}

const configColumns = `dataset, label, distance_threshold, time_threshold, radius_threshold,
	contact_time_threshold, skip_contact_detection, quadrant_parts, is_geographical, created_at`

// Save creates or replaces the configuration of a dataset
func (r *ConfigRepository) Save(ctx context.Context, p models.Params) error {
	query := `INSERT OR REPLACE INTO dataset_configs (` + configColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.DatasetName,
		p.Label,
		p.DistanceThreshold,
		p.TimeThreshold,
		p.RadiusThreshold,
		p.ContactTimeThreshold,
		p.SkipContactDetection,
		p.QuadrantParts,
		p.IsGeographicalCoordinates,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save dataset config: %w", err)
	}
	return nil
}

// Get retrieves the configuration of a dataset
func (r *ConfigRepository) Get(ctx context.Context, dataset string) (*models.DatasetConfig, error) {
	query := `SELECT ` + configColumns + ` FROM dataset_configs WHERE dataset = ?`

	cfg, err := scanConfig(r.db.QueryRowContext(ctx, query, dataset))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %q: %w", dataset, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset config: %w", err)
	}
	return cfg, nil
}

// List returns every stored dataset configuration, newest first
func (r *ConfigRepository) List(ctx context.Context) ([]models.DatasetConfig, error) {
	query := `SELECT ` + configColumns + ` FROM dataset_configs ORDER BY created_at DESC, dataset`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset configs: %w", err)
	}
	defer rows.Close()

	var configs []models.DatasetConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset config: %w", err)
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*models.DatasetConfig, error) {
	var cfg models.DatasetConfig
	err := row.Scan(
		&cfg.DatasetName,
		&cfg.Label,
		&cfg.DistanceThreshold,
		&cfg.TimeThreshold,
		&cfg.RadiusThreshold,
		&cfg.ContactTimeThreshold,
		&cfg.SkipContactDetection,
		&cfg.QuadrantParts,
		&cfg.IsGeographicalCoordinates,
		&cfg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
