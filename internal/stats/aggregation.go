package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values.
// An empty slice has mean 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Sum returns the sum of the values
func Sum(values []float64) float64 {
	return floats.Sum(values)
}

// PopStdDev calculates the population standard deviation (divides by n)
func PopStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopStdDev(values, nil)
}

// StdDevAbout calculates the population standard deviation of values around
// an externally supplied center instead of their own mean.
func StdDevAbout(values []float64, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(stat.MomentAbout(2, values, center, nil))
}

// CoefficientOfVariation calculates the coefficient of variation
// (population stddev / mean). Returns 0 for an empty population or a zero mean.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return PopStdDev(values) / mean
}

// MinMax returns the smallest and largest value, or zeros for an empty slice
func MinMax(values []float64) (float64, float64) {
	min, err := mstats.Min(values)
	if err != nil {
		return 0, 0
	}
	max, err := mstats.Max(values)
	if err != nil {
		return 0, 0
	}
	return min, max
}

// Normalize normalizes values to [0, 1] range. When every value is equal
// the result is all zeros.
func Normalize(values []float64) []float64 {
	result := make([]float64, len(values))
	min, max := MinMax(values)
	rangeVal := max - min
	if rangeVal == 0 {
		return result
	}

	for i, v := range values {
		result[i] = (v - min) / rangeVal
	}
	return result
}

// Round rounds half away from zero to the given number of decimal places
func Round(value float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(value*pow) / pow
}

// SafeDiv returns num/den, or 0 when den is 0
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
