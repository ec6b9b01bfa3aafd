package analysis

import (
	"math"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/jengzang/mobility-metrics-go/internal/stats"
)

// Minimum resampled trajectory length
const minCorrelationPoints = 20

// TrajectoryCorrelation measures how alike the entities' paths are. Every
// track is resampled to a common length, flattened to (x, y) vectors and
// compared pairwise by cosine similarity. The result is 1 minus the spread
// of the pairwise distances, or 0 when fewer than two tracks are long enough.
func TrajectoryCorrelation(tracks [][]models.TracePoint) float64 {
	if len(tracks) < 2 {
		return 0
	}

	shortest := math.MaxInt
	for _, t := range tracks {
		if len(t) < shortest {
			shortest = len(t)
		}
	}
	target := int(0.8 * float64(shortest))
	if target < minCorrelationPoints {
		target = minCorrelationPoints
	}

	var vectors [][]float64
	for _, t := range tracks {
		if len(t) < target {
			continue
		}
		vectors = append(vectors, resample(t, target))
	}
	if len(vectors) < 2 {
		return 0
	}

	distances := stats.UpperTriangle(len(vectors), func(i, j int) float64 {
		return 1 - stats.CosineSimilarity(vectors[i], vectors[j])
	})
	return 1 - stats.PopStdDev(distances)
}

// resample picks n evenly spaced points of track and flattens their (x, y)
// coordinates
func resample(track []models.TracePoint, n int) []float64 {
	out := make([]float64, 0, 2*n)
	if n == 1 {
		return append(out, track[0].X, track[0].Y)
	}
	for i := 0; i < n; i++ {
		p := track[i*(len(track)-1)/(n-1)]
		out = append(out, p.X, p.Y)
	}
	return out
}

// SpeedVariationCoefficient is the coefficient of variation of the
// entities' average travel speeds
func SpeedVariationCoefficient(metrics []models.EntityMetrics) float64 {
	speeds := make([]float64, len(metrics))
	for i, m := range metrics {
		speeds[i] = m.TravelAvgSpeed
	}
	return stats.Round(stats.CoefficientOfVariation(speeds), 5)
}

// MobilityProfile summarizes the population in one score. Each entity's
// feature vector is min-max normalized within itself, the vectors are
// averaged element-wise and the averages are averaged again.
func MobilityProfile(metrics []models.EntityMetrics) float64 {
	if len(metrics) == 0 {
		return 0
	}

	var mean []float64
	for _, m := range metrics {
		normalized := stats.Normalize(m.ProfileVector())
		if mean == nil {
			mean = make([]float64, len(normalized))
		}
		for i, v := range normalized {
			mean[i] += v / float64(len(metrics))
		}
	}
	return stats.Round(stats.Mean(mean), 4)
}

// MeanVisitTimeVariation averages the entities' visit time variation
// coefficients
func MeanVisitTimeVariation(metrics []models.EntityMetrics) float64 {
	values := make([]float64, len(metrics))
	for i, m := range metrics {
		values[i] = m.VisitTimeVariationCoefficient
	}
	return stats.Mean(values)
}
