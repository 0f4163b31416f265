// Package simplex has small helpers for working with discrete
// probability vectors.
package simplex

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Normalize returns a copy of v rescaled to sum to 1.
// The result is all NaN if v sums to zero.
func Normalize(v []float64) []float64 {
	total := floats.Sum(v)
	result := make([]float64, len(v))
	for i, x := range v {
		result[i] = x / total
	}

	return result
}

// ArgMax returns the largest value in vs and its index.
// Ties resolve to the lowest index so callers get a deterministic answer.
func ArgMax(vs []float64) (float64, int) {
	best := -math.MaxFloat64
	bestIdx := 0
	for i, v := range vs {
		if v > best {
			best = v
			bestIdx = i
		}
	}

	return best, bestIdx
}

// Uniform draws n values independently and uniformly from [0, 1).
// The result is not normalized.
func Uniform(rng *rand.Rand, n int) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = rng.Float64()
	}

	return result
}

// IsStochastic reports whether v has finite non-negative entries
// summing to 1 within tol.
func IsStochastic(v []float64, tol float64) bool {
	for _, x := range v {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return math.Abs(floats.Sum(v)-1) <= tol
}

// IsNonNegative reports whether every entry of v is finite and >= 0.
func IsNonNegative(v []float64) bool {
	for _, x := range v {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}
