// Package randomization provides the sampling helpers used by trial
// simulation: plausible reaction times and draws from a valid response set.
package randomization

import (
	"math/rand"
)

// SampleExGaussian draws from an ex-Gaussian distribution (normal plus
// exponential), the standard shape for synthetic reaction times. rate is
// the exponential's lambda. With positive set, non-positive draws are
// rejected and resampled.
func SampleExGaussian(r *rand.Rand, mean, sd, rate float64, positive bool) float64 {
	for {
		v := normFloat64(r)*sd + mean + expFloat64(r)/rate
		if !positive || v > 0 {
			return v
		}
	}
}

// Pick returns a uniformly drawn element of list.
func Pick(r *rand.Rand, list []string) string {
	return list[intn(r, len(list))]
}

// Letter returns a uniformly drawn lowercase letter a-z.
func Letter(r *rand.Rand) string {
	return string(rune('a' + intn(r, 26)))
}

// nil r falls back to the shared global source, matching how the rest of
// the codebase uses math/rand when determinism is not needed.

func normFloat64(r *rand.Rand) float64 {
	if r == nil {
		return rand.NormFloat64()
	}
	return r.NormFloat64()
}

func expFloat64(r *rand.Rand) float64 {
	if r == nil {
		return rand.ExpFloat64()
	}
	return r.ExpFloat64()
}

func intn(r *rand.Rand, n int) int {
	if r == nil {
		return rand.Intn(n)
	}
	return r.Intn(n)
}
