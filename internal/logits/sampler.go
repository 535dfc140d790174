package logits

import (
	"math"
	"math/rand"

	"github.com/samcharles93/wordrnn/internal/model"
)

// SampleFromDistribution draws an index from a probability distribution.
// A uniform value d in [0,1) is drawn and the index returned is the first
// whose cumulative probability reaches d. Zero-probability entries are
// never returned, even for d == 0.
//
// When rounding leaves the total just short of d, the last non-zero entry
// is returned as long as the total is within Tolerance of 1. Any other
// distribution that never reaches d is rejected with a DistributionError;
// callers should treat that as a model bug.
func SampleFromDistribution(distribution []float64, rng *rand.Rand) (int, error) {
	d := rng.Float64()
	return pick(distribution, d)
}

// Tolerance is the accepted deviation of a distribution's total from 1.
const Tolerance = 1e-5

func pick(distribution []float64, d float64) (int, error) {
	var sum float64
	last := -1
	for i, p := range distribution {
		if p <= 0 {
			continue
		}
		sum += p
		last = i
		if sum >= d {
			return i, nil
		}
	}
	if last >= 0 && math.Abs(sum-1) <= Tolerance {
		return last, nil
	}
	return 0, model.DistributionError{Draw: d, Sum: sum}
}

// Sampler draws token indices from model output distributions.
type Sampler struct {
	rng         *rand.Rand
	temperature float64
	buf         []float64
}

// NewSampler returns a sampler drawing from rng. A temperature of 1 (or <= 0)
// samples the distribution as given; other values sharpen or flatten it.
func NewSampler(rng *rand.Rand, temperature float64) *Sampler {
	if temperature <= 0 {
		temperature = 1
	}
	return &Sampler{rng: rng, temperature: temperature}
}

// Sample draws one index from distribution.
func (s *Sampler) Sample(distribution []float64) (int, error) {
	if s.temperature == 1 {
		return SampleFromDistribution(distribution, s.rng)
	}
	if cap(s.buf) < len(distribution) {
		s.buf = make([]float64, len(distribution))
	}
	scaled := s.buf[:len(distribution)]
	if err := Reweight(scaled, distribution, s.temperature); err != nil {
		return 0, err
	}
	return SampleFromDistribution(scaled, s.rng)
}

// Reweight writes p^(1/temperature), renormalised, into dst.
func Reweight(dst, distribution []float64, temperature float64) error {
	inv := 1 / temperature
	var sum float64
	for i, p := range distribution {
		if p < 0 || math.IsNaN(p) {
			return model.DistributionError{Draw: math.NaN(), Sum: p}
		}
		dst[i] = math.Pow(p, inv)
		sum += dst[i]
	}
	if sum == 0 || math.IsInf(sum, 0) {
		return model.DistributionError{Draw: math.NaN(), Sum: sum}
	}
	for i := range dst {
		dst[i] /= sum
	}
	return nil
}

// Softmax writes the softmax of logits into dst, subtracting the maximum
// for numerical stability.
func Softmax(dst, logits []float32) {
	if len(logits) == 0 {
		return
	}
	maxv := logits[0]
	for _, v := range logits[1:] {
		if v > maxv {
			maxv = v
		}
	}
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxv))
		dst[i] = float32(e)
		sum += e
	}
	inv := float32(1 / sum)
	for i := range dst[:len(logits)] {
		dst[i] *= inv
	}
}
