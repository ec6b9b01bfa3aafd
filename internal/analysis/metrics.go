package analysis

import (
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
	"github.com/jengzang/mobility-metrics-go/internal/stats"
)

// Extractor computes a group of per-entity metrics from an entity's track.
// Extractors only write their own fields so they can run in any order.
type Extractor interface {
	Name() string
	Extract(track []models.TracePoint, params models.Params, m *models.EntityMetrics)
}

// DefaultExtractors returns the extractors run for every entity
func DefaultExtractors() []Extractor {
	return []Extractor{
		TravelExtractor{},
		CenterExtractor{},
		GyrationExtractor{},
		DirectionExtractor{},
	}
}

// ExtractEntityMetrics runs the extractors over one entity's track
func ExtractEntityMetrics(params models.Params, entityID int64, track []models.TracePoint, extractors ...Extractor) *models.EntityMetrics {
	m := &models.EntityMetrics{
		Dataset:  params.DatasetName,
		Label:    params.Label,
		EntityID: entityID,
	}
	if len(track) == 0 {
		return m
	}
	for _, e := range extractors {
		e.Extract(track, params, m)
	}
	return m
}

// TravelExtractor computes total travel time, distance and average speed
type TravelExtractor struct{}

func (TravelExtractor) Name() string { return "travel" }

func (TravelExtractor) Extract(track []models.TracePoint, params models.Params, m *models.EntityMetrics) {
	m.TravelTime = track[len(track)-1].Time - track[0].Time
	m.TravelDistance = stats.Round(spatial.PathLength(models.Positions(track), params.IsGeographicalCoordinates), 5)
	m.TravelAvgSpeed = stats.Round(stats.SafeDiv(m.TravelDistance, m.TravelTime), 5)
}

// CenterExtractor computes the center of mass
type CenterExtractor struct{}

func (CenterExtractor) Name() string { return "center_of_mass" }

func (CenterExtractor) Extract(track []models.TracePoint, _ models.Params, m *models.EntityMetrics) {
	c := spatial.CenterOfMass(models.Positions(track))
	m.XCenter = stats.Round(c.X, 5)
	m.YCenter = stats.Round(c.Y, 5)
	m.ZCenter = stats.Round(c.Z, 5)
}

// GyrationExtractor computes the radius of gyration around the center of mass
type GyrationExtractor struct{}

func (GyrationExtractor) Name() string { return "radius_of_gyration" }

func (GyrationExtractor) Extract(track []models.TracePoint, params models.Params, m *models.EntityMetrics) {
	points := models.Positions(track)
	center := spatial.CenterOfMass(points)
	m.RadiusOfGyration = stats.Round(spatial.RadiusOfGyration(points, center, params.IsGeographicalCoordinates), 5)
}

// DirectionExtractor computes the mean azimuth between consecutive points and
// its coefficient of variation
type DirectionExtractor struct{}

func (DirectionExtractor) Name() string { return "direction" }

func (DirectionExtractor) Extract(track []models.TracePoint, params models.Params, m *models.EntityMetrics) {
	angles := DirectionAngles(track, params.IsGeographicalCoordinates)
	if len(angles) == 0 {
		return
	}
	m.AvgDirectionAngle = stats.Round(stats.Mean(angles), 5)
	m.AngleVariationCoefficient = stats.SafeDiv(stats.StdDevAbout(angles, m.AvgDirectionAngle), m.AvgDirectionAngle)
}

// DirectionAngles returns the azimuth of every consecutive pair of points
func DirectionAngles(track []models.TracePoint, geographic bool) []float64 {
	if len(track) < 2 {
		return nil
	}
	angles := make([]float64, len(track)-1)
	for i := 1; i < len(track); i++ {
		angles[i-1], _ = spatial.DirectionAngle(track[i-1].Position(), track[i].Position(), geographic)
	}
	return angles
}

// ApplyVisits sets the stay point visit count and average visit time
func ApplyVisits(m *models.EntityMetrics, visits []models.Visit) {
	m.NumStayPointsVisits = len(visits)
	m.AvgTimeVisit = 0
	if len(visits) == 0 {
		return
	}
	var total float64
	for _, v := range visits {
		total += v.VisitTime
	}
	m.AvgTimeVisit = total / float64(len(visits))
}

// ApplyJourneys copies a journey summary into the metrics
func ApplyJourneys(m *models.EntityMetrics, s models.JourneySummary) {
	m.NumJourneys = s.NumJourneys
	m.AvgJourneyTime = s.AvgJourneyTime
	m.AvgJourneyDistance = s.AvgJourneyDistance
	m.AvgJourneyAvgSpeed = s.AvgJourneyAvgSpeed
}

// VisitTimeVariation is the population standard deviation of visit times
// around the entity's average visit time, divided by that average
func VisitTimeVariation(visits []models.Visit, avgTimeVisit float64) float64 {
	if len(visits) == 0 || avgTimeVisit == 0 {
		return 0
	}
	times := make([]float64, len(visits))
	for i, v := range visits {
		times[i] = v.VisitTime
	}
	return stats.StdDevAbout(times, avgTimeVisit) / avgTimeVisit
}
