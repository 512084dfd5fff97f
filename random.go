package clausebank

import (
	"math"
	"math/rand/v2"
)

// RandomSource is the explicit PRNG object threaded through every feedback
// call rather than relying on global generator state. It backs three
// distinct consumers that must share one stream for reproducibility:
// feedback masks, the uniform choice of matching patch in ClauseEval's
// Feedback mode, and the uniform choice among candidate offending literals
// in FeedbackIII.
type RandomSource struct {
	r *rand.Rand
}

// NewRandomSource builds a deterministic, reproducible generator from seed.
// Two RandomSource values built from the same seed draw identical streams.
func NewRandomSource(seed uint64) *RandomSource {
	return &RandomSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// UniformIntn returns a uniform random int in [0, n). n must be positive.
func (s *RandomSource) UniformIntn(n int) int {
	return s.r.IntN(n)
}

// Float64 returns a uniform random float64 in [0, 1), used for the
// per-clause update_p Bernoulli gate and FeedbackIII's 1-1/d gate.
func (s *RandomSource) Float64() float64 {
	return s.r.Float64()
}

// FeedbackMask fills dst[0:chunks] with a feedback-to-TA mask: each of the
// features literals is included with probability about 1/specificity, but
// not independently. The active count is drawn from a normal approximation of
// Binomial(features, 1/specificity), clamped to [0, features], then that many
// distinct literal indices are chosen by rejection sampling.
func (s *RandomSource) FeedbackMask(dst []uint32, features, chunks int, specificity float64) {
	for k := 0; k < chunks; k++ {
		dst[k] = 0
	}

	p := 1.0 / specificity
	mean := float64(features) * p
	variance := mean * (1 - p)
	if variance < 0 {
		variance = 0
	}
	active := int(mean + s.r.NormFloat64()*math.Sqrt(variance))
	if active > features {
		active = features
	}
	if active < 0 {
		active = 0
	}

	for active > 0 {
		f := s.r.IntN(features)
		for dst[f/WordBits]&(1<<uint(f%WordBits)) != 0 {
			f = s.r.IntN(features)
		}
		dst[f/WordBits] |= 1 << uint(f%WordBits)
		active--
	}
}
