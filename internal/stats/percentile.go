package stats

import (
	mstats "github.com/montanaflynn/stats"
)

// Median returns the median value, or 0 for an empty slice
func Median(values []float64) float64 {
	m, err := mstats.Median(values)
	if err != nil {
		return 0
	}
	return m
}

// Percentile returns the p-th percentile (0-100), or 0 for an empty slice
func Percentile(values []float64, p float64) float64 {
	v, err := mstats.Percentile(values, p)
	if err != nil {
		return 0
	}
	return v
}
