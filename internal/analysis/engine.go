package analysis

import (
	"context"
	"errors"
	"sort"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"go.uber.org/zap"
)

// ErrMissingMetrics is returned when a stage references an entity that has
// no metrics row
var ErrMissingMetrics = errors.New("entity metrics not found")

// Stage is one step of the processing pipeline
type Stage interface {
	// Name identifies the stage in logs and run progress
	Name() string

	// Run executes the stage over the dataset, persisting its results
	Run(ctx context.Context, ds *Dataset) error
}

// BaseStage provides common functionality for all stages
type BaseStage struct {
	Store  *repository.Store
	Logger *zap.Logger
	name   string
}

// NewBaseStage creates a base stage whose logger is named after the stage
func NewBaseStage(store *repository.Store, logger *zap.Logger, name string) BaseStage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseStage{
		Store:  store,
		Logger: logger.Named(name),
		name:   name,
	}
}

// Name returns the stage name
func (s BaseStage) Name() string {
	return s.name
}

// Dataset is the in-memory state of one pipeline run. Stages fill in the
// derived collections in order.
type Dataset struct {
	Params models.Params
	RunID  string

	// Points is sorted by (entity, time); tracks are windows into it so stay
	// point markers written through a track land here too.
	Points []models.TracePoint

	entities []int64
	tracks   map[int64][]models.TracePoint

	Metrics    map[int64]*models.EntityMetrics
	StayPoints []models.StayPoint
	Visits     []models.Visit
	Journeys   []models.Journey
	Contacts   []models.Contact
	Quadrants  []models.QuadrantCell
	Global     *models.GlobalMetrics
}

// NewDataset groups normalized points by entity
func NewDataset(params models.Params, points []models.TracePoint) *Dataset {
	sorted := make([]models.TracePoint, len(points))
	copy(sorted, points)
	for i := range sorted {
		sorted[i].Dataset = params.DatasetName
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EntityID != sorted[j].EntityID {
			return sorted[i].EntityID < sorted[j].EntityID
		}
		return sorted[i].Time < sorted[j].Time
	})

	ds := &Dataset{
		Params:  params,
		Points:  sorted,
		tracks:  make(map[int64][]models.TracePoint),
		Metrics: make(map[int64]*models.EntityMetrics),
	}

	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].EntityID == sorted[start].EntityID {
			continue
		}
		id := sorted[start].EntityID
		ds.entities = append(ds.entities, id)
		ds.tracks[id] = sorted[start:i:i]
		start = i
	}

	return ds
}

// Name returns the dataset name
func (d *Dataset) Name() string {
	return d.Params.DatasetName
}

// Entities returns the entity ids in ascending order
func (d *Dataset) Entities() []int64 {
	return d.entities
}

// Track returns an entity's time-sorted trace
func (d *Dataset) Track(entityID int64) []models.TracePoint {
	return d.tracks[entityID]
}

// DefaultStages returns the pipeline stages in execution order
func DefaultStages(store *repository.Store, logger *zap.Logger, workers int) []Stage {
	return []Stage{
		NewIngestStage(store, logger),
		NewEntityMetricsStage(store, logger, workers, DefaultExtractors()...),
		NewStayPointStage(store, logger),
		NewStayPointEntropyStage(store, logger),
		NewContactStage(store, logger),
		NewQuadrantStage(store, logger),
		NewVisitTimeVariationStage(store, logger),
		NewGlobalMetricsStage(store, logger),
	}
}
