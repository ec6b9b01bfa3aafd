package analysis

import (
	"testing"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructJourneys_BetweenVisits(t *testing.T) {
	t.Parallel()

	params := testParams()
	track := twoStayTrack(1)
	visits := DetectStayPoints(track, params, NewStayRegistry(params))

	journeys, summary := ReconstructJourneys(track, visits, false)

	require.Len(t, journeys, 1)
	j := journeys[0]
	assert.Equal(t, int64(1), j.EntityID)
	assert.Equal(t, int64(1), j.LevID)
	assert.Equal(t, int64(2), j.ArvID)
	assert.Equal(t, 60.0, j.JourneyDistance)
	assert.Equal(t, 30.0, j.JourneyTime)
	assert.Equal(t, 2.0, j.JourneyAvgSpeed)

	assert.Equal(t, models.JourneySummary{
		NumJourneys:        1,
		AvgJourneyTime:     30,
		AvgJourneyDistance: 60,
		AvgJourneyAvgSpeed: 2,
	}, summary)
}

func TestReconstructJourneys_LeadingAndTrailing(t *testing.T) {
	t.Parallel()

	params := testParams()
	track := []models.TracePoint{
		pt(1, -30, 0, 0), pt(1, -10, 0, 10),
		pt(1, 0, 0, 20), pt(1, 0, 0, 40),
		pt(1, 10, 0, 50), pt(1, 30, 0, 60),
	}
	visits := DetectStayPoints(track, params, NewStayRegistry(params))
	require.Len(t, visits, 1)

	journeys, summary := ReconstructJourneys(track, visits, false)
	require.Len(t, journeys, 2)

	assert.Equal(t, int64(0), journeys[0].LevID)
	assert.Equal(t, int64(1), journeys[0].ArvID)
	assert.Equal(t, 30.0, journeys[0].JourneyDistance)
	assert.Equal(t, 20.0, journeys[0].JourneyTime)

	assert.Equal(t, int64(1), journeys[1].LevID)
	assert.Equal(t, int64(0), journeys[1].ArvID)
	assert.Equal(t, 30.0, journeys[1].JourneyDistance)

	assert.Equal(t, 2, summary.NumJourneys)
	assert.Equal(t, 30.0, summary.AvgJourneyDistance)
}

func TestReconstructJourneys_NoVisits(t *testing.T) {
	t.Parallel()

	journeys, summary := ReconstructJourneys(twoStayTrack(1), nil, false)
	assert.Empty(t, journeys)
	assert.Zero(t, summary.NumJourneys)
}

func TestReconstructJourneys_ZeroDurationWindow(t *testing.T) {
	t.Parallel()

	track := []models.TracePoint{pt(1, 0, 0, 0), pt(1, 5, 0, 0), pt(1, 5, 0, 10)}
	visits := []models.Visit{{EntityID: 1, StayPointID: 1, ArvTime: 0, LevTime: 0}}

	// The window before the visit is [0, 0] and holds two points
	journeys, _ := ReconstructJourneys(track, visits, false)
	require.NotEmpty(t, journeys)
	assert.Equal(t, 0.0, journeys[0].JourneyTime)
	assert.Equal(t, 0.0, journeys[0].JourneyAvgSpeed)
	assert.Equal(t, 5.0, journeys[0].JourneyDistance)
}

func TestReconstructJourneys_DistanceBoundedByTravel(t *testing.T) {
	t.Parallel()

	params := testParams()
	tracks := [][]models.TracePoint{
		twoStayTrack(1),
		{
			pt(2, -30, 0, 0), pt(2, -10, 0, 10),
			pt(2, 0, 0, 20), pt(2, 0, 0, 40),
			pt(2, 10, 0, 50), pt(2, 30, 0, 60),
		},
		{
			pt(3, 0, 0, 0), pt(3, 0, 1, 15), pt(3, 50, 50, 20),
			pt(3, 51, 50, 40), pt(3, 90, 10, 45), pt(3, 90, 11, 70),
		},
	}

	for _, track := range tracks {
		visits := DetectStayPoints(track, params, NewStayRegistry(params))
		journeys, _ := ReconstructJourneys(track, visits, false)

		var sum float64
		for _, j := range journeys {
			sum += j.JourneyDistance
		}
		total := spatial.PathLength(models.Positions(track), false)
		assert.LessOrEqual(t, sum, total+1e-9, "entity %d", track[0].EntityID)
	}
}
