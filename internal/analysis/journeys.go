package analysis

import (
	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/spatial"
	"github.com/jengzang/mobility-metrics-go/internal/stats"
)

// timeWindow is an inclusive time interval of a track
type timeWindow struct {
	start, end float64
}

// journeyWindows returns the movement intervals around an entity's visits:
// before the first arrival, between each departure and the next arrival, and
// after the last departure. No visits means no journeys.
func journeyWindows(track []models.TracePoint, visits []models.Visit) []timeWindow {
	if len(visits) == 0 || len(track) == 0 {
		return nil
	}

	windows := make([]timeWindow, 0, len(visits)+1)
	windows = append(windows, timeWindow{track[0].Time, visits[0].ArvTime})
	for i := 0; i+1 < len(visits); i++ {
		windows = append(windows, timeWindow{visits[i].LevTime, visits[i+1].ArvTime})
	}
	windows = append(windows, timeWindow{visits[len(visits)-1].LevTime, track[len(track)-1].Time})
	return windows
}

// ReconstructJourneys builds the journeys of one entity from its track and
// its visits ordered by arrival. Windows with fewer than two points are
// skipped.
func ReconstructJourneys(track []models.TracePoint, visits []models.Visit, geographic bool) ([]models.Journey, models.JourneySummary) {
	var journeys []models.Journey

	for _, w := range journeyWindows(track, visits) {
		var segment []models.TracePoint
		for _, p := range track {
			if p.Time >= w.start && p.Time <= w.end {
				segment = append(segment, p)
			}
		}
		if len(segment) < 2 {
			continue
		}

		first, last := segment[0], segment[len(segment)-1]
		distance := spatial.PathLength(models.Positions(segment), geographic)
		elapsed := last.Time - first.Time
		if elapsed <= 0 {
			elapsed = 0
		}

		journeys = append(journeys, models.Journey{
			Dataset:         first.Dataset,
			EntityID:        first.EntityID,
			LevID:           first.StayPointID,
			ArvID:           last.StayPointID,
			JourneyDistance: distance,
			JourneyTime:     elapsed,
			JourneyAvgSpeed: stats.SafeDiv(distance, elapsed),
		})
	}

	return journeys, SummarizeJourneys(journeys)
}

// SummarizeJourneys counts journeys and averages their time, distance and speed
func SummarizeJourneys(journeys []models.Journey) models.JourneySummary {
	if len(journeys) == 0 {
		return models.JourneySummary{}
	}

	times := make([]float64, len(journeys))
	distances := make([]float64, len(journeys))
	speeds := make([]float64, len(journeys))
	for i, j := range journeys {
		times[i] = j.JourneyTime
		distances[i] = j.JourneyDistance
		speeds[i] = j.JourneyAvgSpeed
	}

	return models.JourneySummary{
		NumJourneys:        len(journeys),
		AvgJourneyTime:     stats.Mean(times),
		AvgJourneyDistance: stats.Mean(distances),
		AvgJourneyAvgSpeed: stats.Mean(speeds),
	}
}
