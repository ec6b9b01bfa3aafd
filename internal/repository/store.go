package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a required record does not exist
var ErrNotFound = errors.New("record not found")

// datasetTables lists every table keyed by dataset that a reprocess clears
var datasetTables = []string{
	"trace_points",
	"stay_points",
	"visits",
	"journeys",
	"contacts",
	"quadrant_cells",
	"entity_metrics",
	"global_metrics",
	"dataset_configs",
}

// Store groups the repositories of every entity kind over one database
type Store struct {
	db *sql.DB

	Configs    *ConfigRepository
	Traces     *TraceRepository
	StayPoints *StayPointRepository
	Visits     *VisitRepository
	Journeys   *JourneyRepository
	Contacts   *ContactRepository
	Quadrants  *QuadrantRepository
	Metrics    *MetricsRepository
	Global     *GlobalMetricsRepository
	Runs       *RunRepository
}

// NewStore creates a store over db
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:         db,
		Configs:    &ConfigRepository{db: db},
		Traces:     &TraceRepository{db: db},
		StayPoints: &StayPointRepository{db: db},
		Visits:     &VisitRepository{db: db},
		Journeys:   &JourneyRepository{db: db},
		Contacts:   &ContactRepository{db: db},
		Quadrants:  &QuadrantRepository{db: db},
		Metrics:    &MetricsRepository{db: db},
		Global:     &GlobalMetricsRepository{db: db},
		Runs:       &RunRepository{db: db},
	}
}

// DB returns the underlying database
func (s *Store) DB() *sql.DB {
	return s.db
}

// DeleteDataset removes every stored row of a dataset except its run history
func (s *Store) DeleteDataset(ctx context.Context, dataset string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range datasetTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE dataset = ?", dataset); err != nil {
			return fmt.Errorf("failed to delete %s rows: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset deletion: %w", err)
	}
	return nil
}
