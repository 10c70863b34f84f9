package mosh

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
)

// TestSeed is the seed NewSeed assigns while test mode is on.
const TestSeed uint64 = 901_042_006

var testMode atomic.Bool

// SetTestMode makes NewSeed return TestSeed instead of a random seed, so
// golden-output tests stay reproducible.
func SetTestMode(on bool) {
	testMode.Store(on)
}

// Options controls a single mosh run.
//
// Probabilities are in [0, 1]. Pixelation 0 and 1 both disable the
// pixelation pass.
type Options struct {
	// MinRate is the minimum number of chunks to mosh.
	MinRate uint16 `json:"min_rate" yaml:"min_rate"`

	// MaxRate is the maximum number of chunks to mosh. Values below MinRate
	// are treated as MinRate.
	MaxRate uint16 `json:"max_rate" yaml:"max_rate"`

	// Pixelation is the block size of the pixelation pass.
	Pixelation uint8 `json:"pixelation" yaml:"pixelation"`

	// LineShift is the chance of rotating the lines of a chunk.
	LineShift float64 `json:"line_shift" yaml:"line_shift"`

	// Reverse is the chance of reversing the lines of a chunk.
	Reverse float64 `json:"reverse" yaml:"reverse"`

	// Flip is the chance of reversing a whole chunk.
	Flip float64 `json:"flip" yaml:"flip"`

	// ChannelSwap is the chance of swapping two channels in a chunk.
	ChannelSwap float64 `json:"channel_swap" yaml:"channel_swap"`

	// ChannelShift is the chance of shifting one channel along the lines
	// of a chunk.
	ChannelShift float64 `json:"channel_shift" yaml:"channel_shift"`

	// Seed fully determines the random decisions of a run.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultOptions returns the reference options with a fresh seed.
func DefaultOptions() Options {
	o := Options{
		MinRate:      1,
		MaxRate:      7,
		Pixelation:   10,
		LineShift:    0.3,
		Reverse:      0.3,
		Flip:         0.3,
		ChannelSwap:  0.3,
		ChannelShift: 0.3,
	}
	o.NewSeed()
	return o
}

// NewSeed assigns a fresh random seed, or TestSeed in test mode.
func (o *Options) NewSeed() {
	if testMode.Load() {
		o.Seed = TestSeed
		return
	}
	o.Seed = rand.Uint64()
}

// EffectiveMaxRate returns max(MinRate, MaxRate).
func (o *Options) EffectiveMaxRate() uint16 {
	return max(o.MinRate, o.MaxRate)
}

// Validate reports out-of-range probabilities.
func (o *Options) Validate() error {
	probs := []struct {
		name string
		p    float64
	}{
		{"line_shift", o.LineShift},
		{"reverse", o.Reverse},
		{"flip", o.Flip},
		{"channel_swap", o.ChannelSwap},
		{"channel_shift", o.ChannelShift},
	}

	for _, pr := range probs {
		if math.IsNaN(pr.p) || pr.p < 0 || pr.p > 1 {
			return fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidParameters, pr.name, pr.p)
		}
	}
	return nil
}
