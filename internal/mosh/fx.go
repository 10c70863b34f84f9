package mosh

import (
	"fmt"
	"slices"
)

// ChunkEffect mutates a run of whole scanlines in place.
type ChunkEffect interface {
	Apply(chunk []byte)
	fmt.Stringer
	chunkEffect()
}

// LineEffect mutates a single scanline in place.
type LineEffect interface {
	Apply(line []byte)
	fmt.Stringer
	lineEffect()
}

// ChannelSwap exchanges channels A and B of every pixel in a chunk. A == B
// leaves the chunk unchanged.
type ChannelSwap struct {
	A, B     int
	Channels int
}

func (e ChannelSwap) Apply(chunk []byte) {
	pixels := len(chunk) / e.Channels
	for i := 0; i < pixels; i++ {
		a := i*e.Channels + e.A
		b := i*e.Channels + e.B
		chunk[a], chunk[b] = chunk[b], chunk[a]
	}
}

func (e ChannelSwap) String() string {
	return fmt.Sprintf("channel-swap(%d<->%d)", e.A, e.B)
}

// Flip reverses the byte order of a whole chunk. Channel bytes inside each
// pixel are reversed too.
type Flip struct{}

func (Flip) Apply(chunk []byte) { slices.Reverse(chunk) }

func (Flip) String() string { return "flip" }

// ChannelShift pulls every pixel's Channel byte from (Channel+1)*Amount
// bytes further along the line. Indices wrap modulo the line length and
// are allowed to land on other channels. Bytes are copied, not exchanged,
// so a shift can duplicate values and drop others.
type ChannelShift struct {
	Amount   int
	Channel  int
	Channels int
}

func (e ChannelShift) Apply(line []byte) {
	n := len(line)
	if n == 0 {
		return
	}
	pixels := n / e.Channels
	offset := (e.Channel + 1) * e.Amount
	for i := 0; i < pixels; i++ {
		base := i*e.Channels + e.Channel
		line[base%n] = line[(base+offset)%n]
	}
}

func (e ChannelShift) String() string {
	return fmt.Sprintf("channel-shift(ch=%d,amount=%d)", e.Channel, e.Amount)
}

// Shift rotates a line left by Amount bytes.
type Shift struct {
	Amount int
}

func (e Shift) Apply(line []byte) {
	n := len(line)
	if n == 0 {
		return
	}
	k := e.Amount % n
	if k == 0 {
		return
	}
	slices.Reverse(line[:k])
	slices.Reverse(line[k:])
	slices.Reverse(line)
}

func (e Shift) String() string {
	return fmt.Sprintf("shift(%d)", e.Amount)
}

// Reverse reverses the byte order of a line.
type Reverse struct{}

func (Reverse) Apply(line []byte) { slices.Reverse(line) }

func (Reverse) String() string { return "reverse" }

func (ChannelSwap) chunkEffect() {}
func (Flip) chunkEffect()        {}

func (ChannelShift) lineEffect() {}
func (Shift) lineEffect()        {}
func (Reverse) lineEffect()      {}
