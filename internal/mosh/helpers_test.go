package mosh

import (
	"testing"
)

// scriptedSource replays fixed draws regardless of the requested range or
// probability. Running out of draws fails the test.
type scriptedSource struct {
	t     *testing.T
	ints  []int
	bools []bool
}

func (s *scriptedSource) Uniform(low, high int) int {
	s.t.Helper()
	if len(s.ints) == 0 {
		s.t.Fatalf("scripted source: unexpected Uniform(%d, %d)", low, high)
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *scriptedSource) Bernoulli(p float64) bool {
	s.t.Helper()
	if len(s.bools) == 0 {
		s.t.Fatalf("scripted source: unexpected Bernoulli(%v)", p)
	}
	v := s.bools[0]
	s.bools = s.bools[1:]
	return v
}

// call is one recorded Source call.
type call struct {
	kind      string
	low, high int
}

// recordingSource forwards to an inner Source and records every call.
type recordingSource struct {
	inner Source
	calls []call
}

func (s *recordingSource) Uniform(low, high int) int {
	s.calls = append(s.calls, call{"uniform", low, high})
	return s.inner.Uniform(low, high)
}

func (s *recordingSource) Bernoulli(p float64) bool {
	s.calls = append(s.calls, call{kind: "bernoulli"})
	return s.inner.Bernoulli(p)
}

// newTestImage returns the metadata and a patterned buffer for a w x h image.
func newTestImage(w, h int, ct ColorType) (ImageMeta, []byte) {
	meta := ImageMeta{
		Width:     uint32(w),
		Height:    uint32(h),
		ColorType: ct,
		BitDepth:  8,
		LineSize:  w * ct.Channels(),
	}
	buf := make([]byte, meta.BufferSize())
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	return meta, buf
}

// quietOptions disables every effect and pixelation.
func quietOptions(seed uint64) Options {
	return Options{MinRate: 1, MaxRate: 1, Pixelation: 1, Seed: seed}
}
