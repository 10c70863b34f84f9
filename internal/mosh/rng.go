package mosh

import (
	"encoding/binary"
	"math/rand/v2"
)

// Source is the random stream the engine draws every decision from.
//
// Implementations must be deterministic: the same seed and the same sequence
// of calls yield the same results on every platform.
type Source interface {
	// Uniform returns an integer in [low, high]. high < low is treated as
	// high == low.
	Uniform(low, high int) int

	// Bernoulli returns true with probability p.
	Bernoulli(p float64) bool
}

// SourceFunc builds a Source from a seed.
type SourceFunc func(seed uint64) Source

// chachaSource is a ChaCha8 keystream keyed by the expanded 64-bit seed.
type chachaSource struct {
	r *rand.Rand
}

// NewSource returns the ChaCha8-backed Source for seed.
func NewSource(seed uint64) Source {
	return &chachaSource{r: rand.New(rand.NewChaCha8(expandSeed(seed)))}
}

// Uniform always consumes from the stream, even for a single-value range.
// Bounded draws use rejection sampling, so a call may take more than one
// 64-bit value.
func (s *chachaSource) Uniform(low, high int) int {
	if high < low {
		high = low
	}
	return low + int(s.r.Uint64N(uint64(high-low)+1))
}

// Bernoulli consumes nothing for p <= 0 or p >= 1.
func (s *chachaSource) Bernoulli(p float64) bool {
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return s.r.Float64() < p
}

// expandSeed stretches a 64-bit seed into a ChaCha8 key with splitmix64.
func expandSeed(seed uint64) [32]byte {
	var key [32]byte
	state := seed
	for i := 0; i < 4; i++ {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31
		binary.LittleEndian.PutUint64(key[i*8:], z)
	}
	return key
}
