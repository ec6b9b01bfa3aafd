package analysis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stage names
const (
	StageIngest             = "ingest"
	StageEntityMetrics      = "entity_metrics"
	StageStayPoints         = "stay_points"
	StageStayPointEntropy   = "stay_point_entropy"
	StageContacts           = "contacts"
	StageQuadrants          = "quadrant_entropy"
	StageVisitTimeVariation = "visit_time_variation"
	StageGlobalMetrics      = "global_metrics"
)

// IngestStage clears any earlier results of the dataset and stores its
// configuration
type IngestStage struct {
	BaseStage
}

func NewIngestStage(store *repository.Store, logger *zap.Logger) *IngestStage {
	return &IngestStage{BaseStage: NewBaseStage(store, logger, StageIngest)}
}

func (s *IngestStage) Run(ctx context.Context, ds *Dataset) error {
	if err := s.Store.DeleteDataset(ctx, ds.Name()); err != nil {
		return err
	}
	if err := s.Store.Configs.Save(ctx, ds.Params); err != nil {
		return err
	}
	s.Logger.Info("dataset ingested",
		zap.String("dataset", ds.Name()),
		zap.Int("points", len(ds.Points)),
		zap.Int("entities", len(ds.Entities())))
	return nil
}

// EntityMetricsStage runs the extractors for every entity in parallel and
// creates the metrics rows
type EntityMetricsStage struct {
	BaseStage
	workers    int
	extractors []Extractor
}

func NewEntityMetricsStage(store *repository.Store, logger *zap.Logger, workers int, extractors ...Extractor) *EntityMetricsStage {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	return &EntityMetricsStage{
		BaseStage:  NewBaseStage(store, logger, StageEntityMetrics),
		workers:    workers,
		extractors: extractors,
	}
}

func (s *EntityMetricsStage) Run(ctx context.Context, ds *Dataset) error {
	entities := ds.Entities()
	results := make([]*models.EntityMetrics, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range entities {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ExtractEntityMetrics(ds.Params, id, ds.Track(id), s.extractors...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, m := range results {
		if err := s.Store.Metrics.Create(ctx, m); err != nil {
			return err
		}
		ds.Metrics[m.EntityID] = m
	}

	s.Logger.Info("entity metrics extracted",
		zap.Int("entities", len(results)),
		zap.Int("workers", s.workers))
	return nil
}

// StayPointStage detects stay points and visits entity by entity in
// ascending id order, then reconstructs journeys around the visits
type StayPointStage struct {
	BaseStage
}

func NewStayPointStage(store *repository.Store, logger *zap.Logger) *StayPointStage {
	return &StayPointStage{BaseStage: NewBaseStage(store, logger, StageStayPoints)}
}

func (s *StayPointStage) Run(ctx context.Context, ds *Dataset) error {
	reg := NewStayRegistry(ds.Params)
	ds.Visits = nil
	ds.Journeys = nil

	for _, id := range ds.Entities() {
		track := ds.Track(id)
		visits := DetectStayPoints(track, ds.Params, reg)
		journeys, summary := ReconstructJourneys(track, visits, ds.Params.IsGeographicalCoordinates)
		ds.Visits = append(ds.Visits, visits...)
		ds.Journeys = append(ds.Journeys, journeys...)

		m, ok := ds.Metrics[id]
		if !ok {
			return fmt.Errorf("%w: entity %d", ErrMissingMetrics, id)
		}
		ApplyVisits(m, visits)
		ApplyJourneys(m, summary)
	}
	ds.StayPoints = reg.StayPoints()

	if err := s.Store.Traces.BulkCreate(ctx, ds.Points); err != nil {
		return err
	}
	if err := s.Store.StayPoints.BulkCreate(ctx, ds.StayPoints); err != nil {
		return err
	}
	if err := s.Store.Visits.BulkCreate(ctx, ds.Visits); err != nil {
		return err
	}
	if err := s.Store.Journeys.BulkCreate(ctx, ds.Journeys); err != nil {
		return err
	}
	for _, id := range ds.Entities() {
		if err := s.Store.Metrics.Update(ctx, ds.Metrics[id]); err != nil {
			return err
		}
	}

	s.Logger.Info("stay points detected",
		zap.Int("stay_points", len(ds.StayPoints)),
		zap.Int("visits", len(ds.Visits)),
		zap.Int("journeys", len(ds.Journeys)))
	return nil
}

// StayPointEntropyStage scores the stored stay points with their entropy and
// importance degree
type StayPointEntropyStage struct {
	BaseStage
}

func NewStayPointEntropyStage(store *repository.Store, logger *zap.Logger) *StayPointEntropyStage {
	return &StayPointEntropyStage{BaseStage: NewBaseStage(store, logger, StageStayPointEntropy)}
}

func (s *StayPointEntropyStage) Run(ctx context.Context, ds *Dataset) error {
	points, err := s.Store.StayPoints.ListByDataset(ctx, ds.Name())
	if err != nil {
		return err
	}

	StayPointEntropy(points)
	ImportanceDegree(points)

	if err := s.Store.StayPoints.UpdateScores(ctx, points); err != nil {
		return err
	}
	ds.StayPoints = points

	s.Logger.Info("stay points scored", zap.Int("stay_points", len(points)))
	return nil
}

// ContactStage detects contacts between entities and rolls them up into the
// entity metrics. It does nothing when contact detection is disabled.
type ContactStage struct {
	BaseStage
}

func NewContactStage(store *repository.Store, logger *zap.Logger) *ContactStage {
	return &ContactStage{BaseStage: NewBaseStage(store, logger, StageContacts)}
}

func (s *ContactStage) Run(ctx context.Context, ds *Dataset) error {
	if ds.Params.SkipContactDetection {
		s.Logger.Info("contact detection skipped", zap.String("dataset", ds.Name()))
		return nil
	}

	start := time.Now()
	proximities := DetectProximities(ds.Points, ds.Params.RadiusThreshold, ds.Params.IsGeographicalCoordinates)
	ds.Contacts = StitchContacts(ds.Name(), proximities, ds.Params.ContactTimeThreshold)

	if err := s.Store.Contacts.BulkCreate(ctx, ds.Contacts); err != nil {
		return err
	}

	touched, err := RollUpContacts(ds.Contacts, ds.Metrics)
	if err != nil {
		return err
	}
	for _, id := range touched {
		if err := s.Store.Metrics.Update(ctx, ds.Metrics[id]); err != nil {
			return err
		}
	}

	s.Logger.Info("contacts detected",
		zap.Int("proximities", len(proximities)),
		zap.Int("contacts", len(ds.Contacts)),
		zap.Int("entities", len(touched)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// QuadrantStage computes the quadrant entropy of the whole dataset and of
// every entity over its own bounding box
type QuadrantStage struct {
	BaseStage
}

func NewQuadrantStage(store *repository.Store, logger *zap.Logger) *QuadrantStage {
	return &QuadrantStage{BaseStage: NewBaseStage(store, logger, StageQuadrants)}
}

func (s *QuadrantStage) Run(ctx context.Context, ds *Dataset) error {
	parts := ds.Params.QuadrantParts
	cells := QuadrantEntropy(ds.Name(), nil, models.Positions(ds.Points), parts)

	for _, id := range ds.Entities() {
		entityID := id
		entityCells := QuadrantEntropy(ds.Name(), &entityID, models.Positions(ds.Track(id)), parts)
		cells = append(cells, entityCells...)

		m, ok := ds.Metrics[id]
		if !ok {
			return fmt.Errorf("%w: entity %d", ErrMissingMetrics, id)
		}
		m.OccupiedQuadrants = len(entityCells)
		if err := s.Store.Metrics.Update(ctx, m); err != nil {
			return err
		}
	}

	if err := s.Store.Quadrants.BulkCreate(ctx, cells); err != nil {
		return err
	}
	ds.Quadrants = cells

	s.Logger.Info("quadrant entropy computed", zap.Int("cells", len(cells)), zap.Int("parts", parts))
	return nil
}

// VisitTimeVariationStage computes each entity's visit time variation
// coefficient from its stored visits
type VisitTimeVariationStage struct {
	BaseStage
}

func NewVisitTimeVariationStage(store *repository.Store, logger *zap.Logger) *VisitTimeVariationStage {
	return &VisitTimeVariationStage{BaseStage: NewBaseStage(store, logger, StageVisitTimeVariation)}
}

func (s *VisitTimeVariationStage) Run(ctx context.Context, ds *Dataset) error {
	for _, id := range ds.Entities() {
		m, ok := ds.Metrics[id]
		if !ok {
			return fmt.Errorf("%w: entity %d", ErrMissingMetrics, id)
		}
		entityID := id
		visits, err := s.Store.Visits.List(ctx, ds.Name(), models.EntityFilter{EntityID: &entityID})
		if err != nil {
			return err
		}
		m.VisitTimeVariationCoefficient = VisitTimeVariation(visits, m.AvgTimeVisit)
		if err := s.Store.Metrics.Update(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// GlobalMetricsStage rolls the stored per-entity results up into the
// dataset's global metrics
type GlobalMetricsStage struct {
	BaseStage
}

func NewGlobalMetricsStage(store *repository.Store, logger *zap.Logger) *GlobalMetricsStage {
	return &GlobalMetricsStage{BaseStage: NewBaseStage(store, logger, StageGlobalMetrics)}
}

func (s *GlobalMetricsStage) Run(ctx context.Context, ds *Dataset) error {
	name := ds.Name()

	entityAgg, err := s.Store.Aggregate(ctx, "entity_metrics", name,
		repository.Aggregation{Func: repository.Avg, Column: "travel_time"},
		repository.Aggregation{Func: repository.Avg, Column: "travel_distance"},
		repository.Aggregation{Func: repository.Avg, Column: "travel_avg_speed"},
		repository.Aggregation{Func: repository.Avg, Column: "x_center"},
		repository.Aggregation{Func: repository.Avg, Column: "y_center"},
		repository.Aggregation{Func: repository.Avg, Column: "z_center"},
		repository.Aggregation{Func: repository.Avg, Column: "radius_of_gyration"},
		repository.Aggregation{Func: repository.Sum, Column: "num_journeys"},
		repository.Aggregation{Func: repository.Avg, Column: "avg_journey_time"},
		repository.Aggregation{Func: repository.Avg, Column: "avg_journey_distance"},
		repository.Aggregation{Func: repository.Avg, Column: "avg_journey_avg_speed"},
		repository.Aggregation{Func: repository.Avg, Column: "num_stay_points_visits"},
	)
	if err != nil {
		return err
	}

	stayAgg, err := s.Store.Aggregate(ctx, "stay_points", name,
		repository.Aggregation{Func: repository.Count, Column: "*", Alias: "count"},
		repository.Aggregation{Func: repository.Sum, Column: "num_visits"},
		repository.Aggregation{Func: repository.Avg, Column: "entropy"},
	)
	if err != nil {
		return err
	}

	quadrantAgg, err := s.Store.Aggregate(ctx, "quadrant_cells", name,
		repository.Aggregation{Func: repository.Avg, Column: "entropy"},
	)
	if err != nil {
		return err
	}

	contactAgg, err := s.Store.Aggregate(ctx, "contacts", name,
		repository.Aggregation{Func: repository.Count, Column: "*", Alias: "count"},
	)
	if err != nil {
		return err
	}

	metrics, err := s.Store.Metrics.List(ctx, name, models.EntityFilter{})
	if err != nil {
		return err
	}

	tracks := make([][]models.TracePoint, 0, len(ds.Entities()))
	for _, id := range ds.Entities() {
		tracks = append(tracks, ds.Track(id))
	}

	var spatialCover int
	for _, c := range ds.Quadrants {
		if c.EntityID == nil {
			spatialCover = c.SpatialCover
			break
		}
	}

	g := &models.GlobalMetrics{
		Dataset: name,
		Label:   ds.Params.Label,

		AvgTravelTime:     entityAgg["avg_travel_time"],
		AvgTravelDistance: entityAgg["avg_travel_distance"],
		AvgTravelAvgSpeed: entityAgg["avg_travel_avg_speed"],

		AvgXCenter:          entityAgg["avg_x_center"],
		AvgYCenter:          entityAgg["avg_y_center"],
		AvgZCenter:          entityAgg["avg_z_center"],
		AvgRadiusOfGyration: entityAgg["avg_radius_of_gyration"],
		TotalSpatialCover:   spatialCover,

		NumStayPoints:                int(stayAgg["count"]),
		AvgStayPointsVisitsPerEntity: entityAgg["avg_num_stay_points_visits"],
		NumStayPointsVisits:          int(stayAgg["sum_num_visits"]),
		AvgStayPointEntropy:          stayAgg["avg_entropy"],

		AvgQuadrantEntropy: quadrantAgg["avg_entropy"],

		NumContacts: int(contactAgg["count"]),

		NumJourneys:        int(entityAgg["sum_num_journeys"]),
		AvgJourneyTime:     entityAgg["avg_avg_journey_time"],
		AvgJourneyDistance: entityAgg["avg_avg_journey_distance"],
		AvgJourneyAvgSpeed: entityAgg["avg_avg_journey_avg_speed"],

		MobilityProfile:               MobilityProfile(metrics),
		TrajectoryCorrelation:         TrajectoryCorrelation(tracks),
		SpeedVariationCoefficient:     SpeedVariationCoefficient(metrics),
		VisitTimeVariationCoefficient: MeanVisitTimeVariation(metrics),

		CreatedAt: time.Now().Unix(),
	}

	if err := s.Store.Global.Upsert(ctx, g); err != nil {
		return err
	}
	ds.Global = g

	s.Logger.Info("global metrics computed",
		zap.Int("entities", len(metrics)),
		zap.Int("stay_points", g.NumStayPoints),
		zap.Int("contacts", g.NumContacts),
		zap.Float64("mobility_profile", g.MobilityProfile))
	return nil
}
