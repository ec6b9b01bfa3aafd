package stats

import (
	"math"
)

// EntropyTerm returns the contribution -p*log2(p) of a single outcome.
// Non-positive probabilities and certain outcomes contribute nothing.
func EntropyTerm(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p * math.Log2(p)
}

// ShannonEntropy calculates the Shannon entropy of a distribution
// values: frequency counts or probabilities
// Returns entropy in bits (log base 2)
func ShannonEntropy(values []float64) float64 {
	total := Sum(values)
	if total == 0 {
		return 0
	}

	var entropy float64
	for _, v := range values {
		entropy += EntropyTerm(v / total)
	}
	return entropy
}
