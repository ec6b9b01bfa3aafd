package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jengzang/mobility-metrics-go/internal/analysis"
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"github.com/jengzang/mobility-metrics-go/internal/stats"
	"go.uber.org/zap"
)

// SubmitRequest is a dataset upload: its parameters and its trace
type SubmitRequest struct {
	Params models.Params     `json:"params"`
	Points []models.TraceRow `json:"points"`
}

// DatasetSummary is a compact view of a processed dataset
type DatasetSummary struct {
	Config                 *models.DatasetConfig `json:"config"`
	Global                 *models.GlobalMetrics `json:"global"`
	Entities               int                   `json:"entities"`
	TracePoints            int                   `json:"trace_points"`
	MedianTravelDistance   float64               `json:"median_travel_distance"`
	MedianRadiusOfGyration float64               `json:"median_radius_of_gyration"`
	P90TravelAvgSpeed      float64               `json:"p90_travel_avg_speed"`
}

// DatasetService handles dataset processing and result queries
type DatasetService struct {
	store    *repository.Store
	pipeline *analysis.Pipeline
	cache    *lru.Cache[string, *models.GlobalMetrics]
	defaults models.Params
	logger   *zap.Logger

	// SQLite has a single writer, so pipelines run one at a time
	runMu sync.Mutex
	wg    sync.WaitGroup
}

// NewDatasetService creates a dataset service. Zero valued parameters of
// submitted datasets are taken from defaults.
func NewDatasetService(store *repository.Store, pipeline *analysis.Pipeline, defaults models.Params, cacheSize int, logger *zap.Logger) (*DatasetService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, *models.GlobalMetrics](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create global metrics cache: %w", err)
	}
	return &DatasetService{
		store:    store,
		pipeline: pipeline,
		cache:    cache,
		defaults: defaults,
		logger:   logger.Named("dataset_service"),
	}, nil
}

// applyDefaults fills the unset thresholds of p
func (s *DatasetService) applyDefaults(p models.Params) models.Params {
	if p.DistanceThreshold == 0 {
		p.DistanceThreshold = s.defaults.DistanceThreshold
	}
	if p.TimeThreshold == 0 {
		p.TimeThreshold = s.defaults.TimeThreshold
	}
	if p.RadiusThreshold == 0 {
		p.RadiusThreshold = s.defaults.RadiusThreshold
	}
	if p.ContactTimeThreshold == 0 {
		p.ContactTimeThreshold = s.defaults.ContactTimeThreshold
	}
	if p.QuadrantParts == 0 {
		p.QuadrantParts = s.defaults.QuadrantParts
	}
	return p
}

// prepare validates a request and registers a pending run for it
func (s *DatasetService) prepare(ctx context.Context, req SubmitRequest) (*analysis.Dataset, *models.ProcessingRun, error) {
	params := s.applyDefaults(req.Params)
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	ds := analysis.NewDataset(params, models.NormalizeTrace(params.DatasetName, req.Points))
	run := &models.ProcessingRun{
		ID:            uuid.NewString(),
		Dataset:       params.DatasetName,
		Status:        models.RunStatusPending,
		TotalPoints:   len(ds.Points),
		TotalEntities: len(ds.Entities()),
	}
	if err := s.store.Runs.Create(ctx, run); err != nil {
		return nil, nil, err
	}
	ds.RunID = run.ID
	return ds, run, nil
}

// Submit validates a dataset and processes it in the background. The
// returned run can be polled for progress.
func (s *DatasetService) Submit(ctx context.Context, req SubmitRequest) (*models.ProcessingRun, error) {
	ds, run, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.execute(context.WithoutCancel(ctx), ds); err != nil {
			s.logger.Error("dataset processing failed",
				zap.String("dataset", ds.Name()),
				zap.String("run_id", ds.RunID),
				zap.Error(err))
		}
	}()

	return run, nil
}

// Process validates and processes a dataset synchronously
func (s *DatasetService) Process(ctx context.Context, req SubmitRequest) (*models.ProcessingRun, *models.GlobalMetrics, error) {
	ds, run, err := s.prepare(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if err := s.execute(ctx, ds); err != nil {
		return nil, nil, err
	}

	run, err = s.store.Runs.GetByID(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, ds.Global, nil
}

func (s *DatasetService) execute(ctx context.Context, ds *analysis.Dataset) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.cache.Remove(ds.Name())
	err := s.pipeline.Run(ctx, ds)
	s.cache.Remove(ds.Name())
	return err
}

// Wait blocks until every background run has finished
func (s *DatasetService) Wait() {
	s.wg.Wait()
}

// GetRun retrieves a processing run
func (s *DatasetService) GetRun(ctx context.Context, id string) (*models.ProcessingRun, error) {
	return s.store.Runs.GetByID(ctx, id)
}

// ListRuns retrieves processing runs, newest first
func (s *DatasetService) ListRuns(ctx context.Context, filter models.RunFilter) ([]models.ProcessingRun, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.Runs.List(ctx, filter)
}

// ListDatasets returns the configuration of every processed dataset
func (s *DatasetService) ListDatasets(ctx context.Context) ([]models.DatasetConfig, error) {
	return s.store.Configs.List(ctx)
}

// GetConfig returns a dataset's stored parameters
func (s *DatasetService) GetConfig(ctx context.Context, name string) (*models.DatasetConfig, error) {
	return s.store.Configs.Get(ctx, name)
}

// GetGlobal returns a dataset's global metrics
func (s *DatasetService) GetGlobal(ctx context.Context, name string) (*models.GlobalMetrics, error) {
	if g, ok := s.cache.Get(name); ok {
		return g, nil
	}

	g, err := s.store.Global.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Add(name, g)
	return g, nil
}

// ListMetrics returns a dataset's per-entity metrics
func (s *DatasetService) ListMetrics(ctx context.Context, name string, filter models.EntityFilter) ([]models.EntityMetrics, error) {
	if err := s.requireDataset(ctx, name); err != nil {
		return nil, err
	}
	if filter.EntityID != nil {
		m, err := s.store.Metrics.FindByEntity(ctx, name, *filter.EntityID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("entity %d of %q: %w", *filter.EntityID, name, repository.ErrNotFound)
		}
		return []models.EntityMetrics{*m}, nil
	}
	return s.store.Metrics.List(ctx, name, filter)
}

// ListStayPoints returns a dataset's stay points
func (s *DatasetService) ListStayPoints(ctx context.Context, name string) ([]models.StayPoint, error) {
	if err := s.requireDataset(ctx, name); err != nil {
		return nil, err
	}
	return s.store.StayPoints.ListByDataset(ctx, name)
}

// ListVisits returns a dataset's visits
func (s *DatasetService) ListVisits(ctx context.Context, name string, filter models.EntityFilter) ([]models.Visit, error) {
	if err := s.requireDataset(ctx, name); err != nil {
		return nil, err
	}
	return s.store.Visits.List(ctx, name, filter)
}

// ListJourneys returns a dataset's journeys
func (s *DatasetService) ListJourneys(ctx context.Context, name string, filter models.EntityFilter) ([]models.Journey, error) {
	if err := s.requireDataset(ctx, name); err != nil {
		return nil, err
	}
	return s.store.Journeys.List(ctx, name, filter)
}

// ListContacts returns a dataset's contacts
func (s *DatasetService) ListContacts(ctx context.Context, name string, filter models.EntityFilter) ([]models.Contact, error) {
	if err := s.requireDataset(ctx, name); err != nil {
		return nil, err
	}
	return s.store.Contacts.List(ctx, name, filter)
}

// ListQuadrants returns a dataset's quadrant cells
func (s *DatasetService) ListQuadrants(ctx context.Context, name string, filter models.QuadrantFilter) ([]models.QuadrantCell, error) {
	if err := s.requireDataset(ctx, name); err != nil {
		return nil, err
	}
	return s.store.Quadrants.List(ctx, name, filter)
}

// DeleteDataset removes a dataset and its results
func (s *DatasetService) DeleteDataset(ctx context.Context, name string) error {
	if err := s.requireDataset(ctx, name); err != nil {
		return err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := s.store.DeleteDataset(ctx, name); err != nil {
		return err
	}
	s.cache.Remove(name)
	s.logger.Info("dataset deleted", zap.String("dataset", name))
	return nil
}

// Summary describes a processed dataset
func (s *DatasetService) Summary(ctx context.Context, name string) (*DatasetSummary, error) {
	cfg, err := s.store.Configs.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	global, err := s.GetGlobal(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	metrics, err := s.store.Metrics.List(ctx, name, models.EntityFilter{})
	if err != nil {
		return nil, err
	}
	points, err := s.store.Traces.Count(ctx, name)
	if err != nil {
		return nil, err
	}

	distances := make([]float64, len(metrics))
	gyrations := make([]float64, len(metrics))
	speeds := make([]float64, len(metrics))
	for i, m := range metrics {
		distances[i] = m.TravelDistance
		gyrations[i] = m.RadiusOfGyration
		speeds[i] = m.TravelAvgSpeed
	}

	return &DatasetSummary{
		Config:                 cfg,
		Global:                 global,
		Entities:               len(metrics),
		TracePoints:            points,
		MedianTravelDistance:   stats.Median(distances),
		MedianRadiusOfGyration: stats.Median(gyrations),
		P90TravelAvgSpeed:      stats.Percentile(speeds, 90),
	}, nil
}

func (s *DatasetService) requireDataset(ctx context.Context, name string) error {
	_, err := s.store.Configs.Get(ctx, name)
	return err
}
