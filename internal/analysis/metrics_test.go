package analysis

import (
	"math"
	"testing"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/stats"
	"github.com/stretchr/testify/assert"
)

func TestExtractEntityMetrics(t *testing.T) {
	t.Parallel()

	params := testParams()
	track := []models.TracePoint{pt(4, 0, 0, 0), pt(4, 3, 4, 10), pt(4, 3, 8, 20)}

	m := ExtractEntityMetrics(params, 4, track, DefaultExtractors()...)

	assert.Equal(t, "test", m.Dataset)
	assert.Equal(t, "unit", m.Label)
	assert.Equal(t, int64(4), m.EntityID)

	assert.Equal(t, 20.0, m.TravelTime)
	assert.Equal(t, 9.0, m.TravelDistance)
	assert.Equal(t, 0.45, m.TravelAvgSpeed)

	assert.Equal(t, 2.0, m.XCenter)
	assert.Equal(t, 4.0, m.YCenter)
	assert.Equal(t, 0.0, m.ZCenter)
	assert.InDelta(t, math.Sqrt(38.0/3), m.RadiusOfGyration, 1e-5)

	first := math.Atan2(4, 3) * 180 / math.Pi
	avg := stats.Round((first+90)/2, 5)
	assert.Equal(t, avg, m.AvgDirectionAngle)
	std := math.Sqrt((math.Pow(first-avg, 2) + math.Pow(90-avg, 2)) / 2)
	assert.InDelta(t, std/avg, m.AngleVariationCoefficient, 1e-9)
}

func TestExtractEntityMetrics_Degenerate(t *testing.T) {
	t.Parallel()

	params := testParams()

	empty := ExtractEntityMetrics(params, 1, nil, DefaultExtractors()...)
	assert.Zero(t, empty.TravelTime)
	assert.Zero(t, empty.RadiusOfGyration)

	single := ExtractEntityMetrics(params, 1, []models.TracePoint{pt(1, 5, 5, 30)}, DefaultExtractors()...)
	assert.Zero(t, single.TravelTime)
	assert.Zero(t, single.TravelAvgSpeed)
	assert.Zero(t, single.AvgDirectionAngle)
	assert.Zero(t, single.AngleVariationCoefficient)
	assert.Equal(t, 5.0, single.XCenter)

	stationary := ExtractEntityMetrics(params, 1, []models.TracePoint{pt(1, 5, 5, 0), pt(1, 5, 5, 0)}, DefaultExtractors()...)
	assert.Zero(t, stationary.TravelAvgSpeed)
}

func TestApplyVisitsAndVariation(t *testing.T) {
	t.Parallel()

	m := &models.EntityMetrics{}
	ApplyVisits(m, nil)
	assert.Zero(t, m.NumStayPointsVisits)
	assert.Zero(t, m.AvgTimeVisit)
	assert.Zero(t, VisitTimeVariation(nil, 0))

	visits := []models.Visit{{VisitTime: 10}, {VisitTime: 30}}
	ApplyVisits(m, visits)
	assert.Equal(t, 2, m.NumStayPointsVisits)
	assert.Equal(t, 20.0, m.AvgTimeVisit)
	assert.InDelta(t, 0.5, VisitTimeVariation(visits, m.AvgTimeVisit), 1e-12)

	ApplyJourneys(m, models.JourneySummary{NumJourneys: 3, AvgJourneyTime: 4, AvgJourneyDistance: 5, AvgJourneyAvgSpeed: 6})
	assert.Equal(t, 3, m.NumJourneys)
	assert.Equal(t, 6.0, m.AvgJourneyAvgSpeed)
}
