package stats

import (
	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity returns the cosine of the angle between two equal length
// vectors. A zero vector has similarity 0 with everything.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}

	return floats.Dot(a, b) / (normA * normB)
}

// UpperTriangle returns the pairwise values f(i, j) for every i < j
func UpperTriangle(n int, f func(i, j int) float64) []float64 {
	if n < 2 {
		return nil
	}

	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, f(i, j))
		}
	}
	return out
}
