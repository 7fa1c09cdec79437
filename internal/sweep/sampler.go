package sweep

import (
	"fmt"
	"math"
	"math/rand"
)

// LogSampler draws parameter vectors uniformly in log10 space between
// per-parameter exponent bounds, returning linear-space values.
type LogSampler struct {
	low  []float64
	high []float64
	rng  *rand.Rand
}

// NewLogSampler builds a sampler over the given base-10 exponent bounds.
// The same seed always yields the same sample sequence.
func NewLogSampler(low, high []float64, seed int64) (*LogSampler, error) {
	if len(low) == 0 {
		return nil, fmt.Errorf("no parameter bounds given")
	}
	if len(low) != len(high) {
		return nil, fmt.Errorf("bounds length mismatch: %d low vs %d high", len(low), len(high))
	}
	for i := range low {
		if math.IsNaN(low[i]) || math.IsNaN(high[i]) {
			return nil, fmt.Errorf("parameter %d: bound is NaN", i)
		}
		if low[i] > high[i] {
			return nil, fmt.Errorf("parameter %d: low bound %g exceeds high bound %g", i, low[i], high[i])
		}
	}
	return &LogSampler{
		low:  append([]float64(nil), low...),
		high: append([]float64(nil), high...),
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// Dim returns the number of parameters per sample.
func (s *LogSampler) Dim() int { return len(s.low) }

// Sample draws n parameter vectors. Each entry is 10^u with u uniform
// on [low, high] for that parameter.
func (s *LogSampler) Sample(n int) [][]float64 {
	samples := make([][]float64, n)
	for i := range samples {
		p := make([]float64, len(s.low))
		for j := range p {
			u := s.low[j] + s.rng.Float64()*(s.high[j]-s.low[j])
			p[j] = math.Pow(10, u)
		}
		samples[i] = p
	}
	return samples
}
