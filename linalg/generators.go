package linalg

import (
	"math"
	"math/rand/v2"
)

// Zero is a GeneratorFunc producing an all-zero matrix.
func Zero(i, j int) float64 { return 0 }

// Unity is a GeneratorFunc producing an all-ones matrix.
func Unity(i, j int) float64 { return 1 }

// Uniform returns a GeneratorFunc drawing from [lo, hi) using rng.
func Uniform(lo, hi float64, rng *rand.Rand) GeneratorFunc {
	return func(i, j int) float64 {
		return lo + (hi-lo)*rng.Float64()
	}
}

// AbsGaussian returns a GeneratorFunc drawing the absolute value of a
// normal variate with the given mean and standard deviation. Useful as a
// non-negative random initializer with occasional near-zero entries.
func AbsGaussian(mean, stddev float64, rng *rand.Rand) GeneratorFunc {
	return func(i, j int) float64 {
		return math.Abs(rng.NormFloat64()*stddev + mean)
	}
}
