package analysis

import (
	"testing"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() models.Params {
	return models.Params{
		DatasetName:          "test",
		Label:                "unit",
		DistanceThreshold:    5,
		TimeThreshold:        10,
		RadiusThreshold:      3,
		ContactTimeThreshold: 10,
		QuadrantParts:        4,
	}
}

func pt(id int64, x, y, t float64) models.TracePoint {
	return models.TracePoint{Dataset: "test", EntityID: id, X: x, Y: y, Time: t}
}

// twoStayTrack sits at (0,0), moves along the x axis and sits at (60,0)
func twoStayTrack(id int64) []models.TracePoint {
	return []models.TracePoint{
		pt(id, 0, 0, 0), pt(id, 0, 0, 10), pt(id, 0, 0, 20),
		pt(id, 20, 0, 30), pt(id, 40, 0, 40),
		pt(id, 60, 0, 50), pt(id, 60, 0, 60), pt(id, 60, 0, 70),
	}
}

func TestDetectStayPoints_SingleStay(t *testing.T) {
	t.Parallel()

	params := testParams()
	track := []models.TracePoint{
		pt(1, 0, 0, 0), pt(1, 1, 0, 5), pt(1, 0, 1, 10), pt(1, 1, 1, 15), pt(1, 0.5, 0.5, 20),
	}

	reg := NewStayRegistry(params)
	visits := DetectStayPoints(track, params, reg)

	require.Len(t, visits, 1)
	require.Equal(t, 1, reg.Len())

	sp := reg.StayPoints()[0]
	assert.Equal(t, int64(1), sp.StayPointID)
	assert.Equal(t, 1, sp.NumVisits)
	assert.Equal(t, 20.0, sp.TotalVisitsTime)
	assert.Equal(t, 0.5, sp.XCenter)
	assert.Equal(t, 0.5, sp.YCenter)

	assert.Equal(t, models.Visit{
		Dataset: "test", EntityID: 1, StayPointID: 1, ArvTime: 0, LevTime: 20, VisitTime: 20,
	}, visits[0])

	for _, p := range track {
		assert.Equal(t, int64(1), p.StayPointID)
	}

	journeys, summary := ReconstructJourneys(track, visits, false)
	assert.Empty(t, journeys)
	assert.Equal(t, models.JourneySummary{}, summary)
}

func TestDetectStayPoints_TwoStays(t *testing.T) {
	t.Parallel()

	params := testParams()
	track := twoStayTrack(1)

	reg := NewStayRegistry(params)
	visits := DetectStayPoints(track, params, reg)

	require.Len(t, visits, 2)
	assert.Equal(t, int64(1), visits[0].StayPointID)
	assert.Equal(t, int64(2), visits[1].StayPointID)
	assert.Equal(t, 50.0, visits[1].ArvTime)
	assert.Equal(t, 70.0, visits[1].LevTime)

	markers := make([]int64, len(track))
	for i, p := range track {
		markers[i] = p.StayPointID
	}
	assert.Equal(t, []int64{1, 1, 1, 0, 0, 2, 2, 2}, markers)

	centers := reg.StayPoints()
	assert.Equal(t, spatial.Point{X: 0, Y: 0}, centers[0].Center())
	assert.Equal(t, spatial.Point{X: 60, Y: 0}, centers[1].Center())
}

func TestDetectStayPoints_ShortWindowsDoNotQualify(t *testing.T) {
	t.Parallel()

	params := testParams()
	params.TimeThreshold = 100

	reg := NewStayRegistry(params)
	visits := DetectStayPoints(twoStayTrack(1), params, reg)

	assert.Empty(t, visits)
	assert.Zero(t, reg.Len())
}

func TestDetectStayPoints_TooShortTrace(t *testing.T) {
	t.Parallel()

	params := testParams()
	reg := NewStayRegistry(params)

	assert.Nil(t, DetectStayPoints(nil, params, reg))

	single := []models.TracePoint{pt(1, 0, 0, 0)}
	single[0].StayPointID = 9
	assert.Nil(t, DetectStayPoints(single, params, reg))
	assert.Zero(t, single[0].StayPointID)
	assert.Zero(t, reg.Len())
}

func TestDetectStayPoints_SharedAcrossEntities(t *testing.T) {
	t.Parallel()

	params := testParams()
	reg := NewStayRegistry(params)

	first := []models.TracePoint{pt(1, 0, 0, 0), pt(1, 0, 0, 30)}
	second := []models.TracePoint{pt(2, 1, 1, 100), pt(2, 1, 1, 115)}

	DetectStayPoints(first, params, reg)
	visits := DetectStayPoints(second, params, reg)

	require.Len(t, visits, 1)
	assert.Equal(t, int64(1), visits[0].StayPointID)
	assert.Equal(t, int64(2), visits[0].EntityID)

	require.Equal(t, 1, reg.Len())
	sp := reg.StayPoints()[0]
	assert.Equal(t, 2, sp.NumVisits)
	assert.Equal(t, 45.0, sp.TotalVisitsTime)
	// The center is fixed by the first visit
	assert.Equal(t, spatial.Point{X: 0, Y: 0}, sp.Center())
}

func TestStayRegistry_FirstCreatedMatchWins(t *testing.T) {
	t.Parallel()

	reg := NewStayRegistry(testParams())

	m1, _ := reg.Match(1, spatial.Point{X: 0}, 0, 10, 2)
	m2, _ := reg.Match(1, spatial.Point{X: 6}, 20, 30, 4)
	assert.True(t, m1.Created)
	assert.True(t, m2.Created)
	assert.Equal(t, int64(2), m2.StayPointID)

	m3, visit := reg.Match(2, spatial.Point{X: 3}, 40, 55, 7)
	assert.False(t, m3.Created)
	assert.Equal(t, int64(1), m3.StayPointID)
	assert.Equal(t, 7, m3.EndIndex)
	assert.Equal(t, 15.0, m3.Duration)
	assert.Equal(t, 15.0, visit.VisitTime)
	assert.Equal(t, 2, reg.Len())
}

func TestDetectStayPoints_IdempotentOnCentroids(t *testing.T) {
	t.Parallel()

	params := testParams()
	reg := NewStayRegistry(params)
	DetectStayPoints(twoStayTrack(1), params, reg)
	first := reg.StayPoints()

	// One stationary pair of samples per emitted centroid
	var centroids []models.TracePoint
	for i, sp := range first {
		base := float64(i) * 100
		centroids = append(centroids,
			pt(1, sp.XCenter, sp.YCenter, base),
			pt(1, sp.XCenter, sp.YCenter, base+params.TimeThreshold))
	}

	again := NewStayRegistry(params)
	DetectStayPoints(centroids, params, again)

	second := again.StayPoints()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Center(), second[i].Center())
	}
}
