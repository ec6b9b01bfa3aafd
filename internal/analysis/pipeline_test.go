package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/jengzang/mobility-metrics-go/internal/database"
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	conn, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, database.Migrate(conn, zaptest.NewLogger(t)))
	return repository.NewStore(conn)
}

func createRun(t *testing.T, store *repository.Store, id, dataset string) {
	t.Helper()
	require.NoError(t, store.Runs.Create(context.Background(), &models.ProcessingRun{
		ID:      id,
		Dataset: dataset,
		Status:  models.RunStatusPending,
	}))
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pipeline := NewPipeline(store, zaptest.NewLogger(t), 2)

	assert.Equal(t, []string{
		StageIngest, StageEntityMetrics, StageStayPoints, StageStayPointEntropy,
		StageContacts, StageQuadrants, StageVisitTimeVariation, StageGlobalMetrics,
	}, pipeline.Stages())

	createRun(t, store, "run-1", "test")
	ds := NewDataset(testParams(), threeEntityTrace())
	ds.RunID = "run-1"
	require.NoError(t, pipeline.Run(ctx, ds))

	run, err := store.Runs.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 100, run.ProgressPercent)
	assert.Equal(t, StageGlobalMetrics, run.Stage)

	cfg, err := store.Configs.Get(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, testParams(), cfg.Params)

	trace, err := store.Traces.ListByDataset(ctx, "test")
	require.NoError(t, err)
	require.Len(t, trace, 9)
	assert.Equal(t, int64(1), trace[0].StayPointID)
	assert.Equal(t, int64(2), trace[8].StayPointID)

	points, err := store.StayPoints.ListByDataset(ctx, "test")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 2, points[0].NumVisits)
	assert.Equal(t, 20.0, points[0].TotalVisitsTime)
	assert.Equal(t, 1, points[1].NumVisits)
	require.NotNil(t, points[0].ImportanceDegree)
	assert.InDelta(t, 1.0, *points[0].ImportanceDegree, 1e-12)

	contacts, err := store.Contacts.List(ctx, "test", models.EntityFilter{})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, 10.0, contacts[0].ContactTime)

	journeys, err := store.Journeys.List(ctx, "test", models.EntityFilter{})
	require.NoError(t, err)
	assert.Empty(t, journeys)

	m1, err := store.Metrics.FindByEntity(ctx, "test", 1)
	require.NoError(t, err)
	require.NotNil(t, m1)
	assert.Equal(t, 1, m1.NumContacts)
	assert.Equal(t, 10.0, m1.AvgContactTime)
	assert.Equal(t, 1, m1.NumStayPointsVisits)
	assert.Equal(t, 10.0, m1.AvgTimeVisit)
	assert.Equal(t, 1, m1.OccupiedQuadrants)
	assert.Equal(t, 10.0, m1.TravelTime)

	m3, err := store.Metrics.FindByEntity(ctx, "test", 3)
	require.NoError(t, err)
	assert.Zero(t, m3.NumContacts)

	cells, err := store.Quadrants.List(ctx, "test", models.QuadrantFilter{Global: true})
	require.NoError(t, err)
	assert.Len(t, cells, 2)

	global, err := store.Global.Get(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, "unit", global.Label)
	assert.Equal(t, 2, global.NumStayPoints)
	assert.Equal(t, 3, global.NumStayPointsVisits)
	assert.Equal(t, 1, global.NumContacts)
	assert.Equal(t, 0, global.NumJourneys)
	assert.Equal(t, 2, global.TotalSpatialCover)
	assert.Equal(t, 1.0, global.AvgStayPointsVisitsPerEntity)
	assert.InDelta(t, 10.0, global.AvgTravelTime, 1e-12)
	assert.Zero(t, global.TrajectoryCorrelation)
	assert.Equal(t, ds.Global.MobilityProfile, global.MobilityProfile)
}

func TestPipeline_ReprocessReplacesRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pipeline := NewPipeline(store, zaptest.NewLogger(t), 1)

	for i := 0; i < 2; i++ {
		require.NoError(t, pipeline.Run(ctx, NewDataset(testParams(), threeEntityTrace())))
	}

	points, err := store.StayPoints.ListByDataset(ctx, "test")
	require.NoError(t, err)
	assert.Len(t, points, 2)

	metrics, err := store.Metrics.List(ctx, "test", models.EntityFilter{})
	require.NoError(t, err)
	assert.Len(t, metrics, 3)

	contacts, err := store.Contacts.List(ctx, "test", models.EntityFilter{})
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestPipeline_SkipContactDetection(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	params := testParams()
	params.SkipContactDetection = true
	require.NoError(t, NewPipeline(store, zaptest.NewLogger(t), 2).Run(ctx, NewDataset(params, threeEntityTrace())))

	contacts, err := store.Contacts.List(ctx, "test", models.EntityFilter{})
	require.NoError(t, err)
	assert.Empty(t, contacts)

	global, err := store.Global.Get(ctx, "test")
	require.NoError(t, err)
	assert.Zero(t, global.NumContacts)
}

func TestPipeline_EmptyDataset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ds := NewDataset(testParams(), nil)
	require.NoError(t, NewPipeline(store, zaptest.NewLogger(t), 2).Run(ctx, ds))

	global, err := store.Global.Get(ctx, "test")
	require.NoError(t, err)
	assert.Zero(t, global.NumStayPoints)
	assert.Zero(t, global.MobilityProfile)
	assert.Zero(t, global.AvgTravelTime)
}

func TestPipeline_InvalidParams(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	createRun(t, store, "run-bad", "test")

	params := testParams()
	params.DistanceThreshold = 0
	ds := NewDataset(params, threeEntityTrace())
	ds.RunID = "run-bad"

	err := NewPipeline(store, zaptest.NewLogger(t), 2).Run(ctx, ds)
	require.ErrorIs(t, err, models.ErrInvalidParams)

	run, err := store.Runs.GetByID(ctx, "run-bad")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "distance_threshold")

	_, err = store.Configs.Get(ctx, "test")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type failingStage struct{ BaseStage }

func (failingStage) Run(context.Context, *Dataset) error { return errors.New("boom") }

func TestPipeline_StageFailureMarksRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	createRun(t, store, "run-fail", "test")

	logger := zaptest.NewLogger(t)
	pipeline := NewPipeline(store, logger, 1,
		NewIngestStage(store, logger),
		failingStage{NewBaseStage(store, logger, "explode")},
		NewGlobalMetricsStage(store, logger),
	)

	ds := NewDataset(testParams(), threeEntityTrace())
	ds.RunID = "run-fail"
	err := pipeline.Run(ctx, ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage explode failed")

	run, err := store.Runs.GetByID(ctx, "run-fail")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Equal(t, "explode", run.Stage)
	assert.Contains(t, run.ErrorMessage, "boom")

	_, err = store.Global.Get(ctx, "test")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStages_MissingMetrics(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name  string
		stage Stage
	}{
		{"quadrants", NewQuadrantStage(store, logger)},
		{"visit time variation", NewVisitTimeVariationStage(store, logger)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := NewDataset(testParams(), threeEntityTrace())
			ds.Metrics = map[int64]*models.EntityMetrics{}

			err := tt.stage.Run(ctx, ds)
			require.ErrorIs(t, err, ErrMissingMetrics)
			assert.Contains(t, err.Error(), "entity 1")
		})
	}
}
