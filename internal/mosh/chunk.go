package mosh

import (
	"strings"
)

// Plan is the outcome of the random draws for one chunk iteration.
type Plan struct {
	// FirstLine is the first scanline of the chunk.
	FirstLine int

	// LastLine is one past the last scanline of the chunk. It equals
	// FirstLine for an empty chunk.
	LastLine int

	// Lines are applied in order to every line of the chunk.
	Lines []LineEffect

	// Chunk effects are applied in order to the whole chunk, after Lines.
	Chunk []ChunkEffect
}

// String summarises the plan for debug logs.
func (p Plan) String() string {
	var names []string
	for _, e := range p.Lines {
		names = append(names, e.String())
	}
	for _, e := range p.Chunk {
		names = append(names, e.String())
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// planChunk draws one chunk iteration from src. lineCount and lineSize must
// be positive.
func planChunk(src Source, o *Options, lineCount, lineSize, channels int) Plan {
	firstLine := src.Uniform(0, lineCount-1)
	chunkSize := src.Uniform(0, lineCount-1) / 2
	lastLine := min(firstLine+chunkSize, lineCount)

	reverse := src.Bernoulli(o.Reverse)
	flip := src.Bernoulli(o.Flip)

	var shift, channelShift LineEffect
	var channelSwap ChunkEffect

	if src.Bernoulli(o.LineShift) {
		shift = Shift{Amount: src.Uniform(0, lineSize-1)}
	}

	if src.Bernoulli(o.ChannelShift) {
		amount := src.Uniform(0, lineSize-1) / channels
		channel := src.Uniform(0, channels-1)
		channelShift = ChannelShift{Amount: amount, Channel: channel, Channels: channels}
	}

	if src.Bernoulli(o.ChannelSwap) {
		a := src.Uniform(0, channels-1)
		b := src.Uniform(0, channels-1)
		channelSwap = ChannelSwap{A: a, B: b, Channels: channels}
	}

	p := Plan{FirstLine: firstLine, LastLine: lastLine}

	if channelShift != nil {
		p.Lines = append(p.Lines, channelShift)
	}
	if shift != nil {
		p.Lines = append(p.Lines, shift)
	}
	if reverse {
		p.Lines = append(p.Lines, Reverse{})
	}

	if channelSwap != nil {
		p.Chunk = append(p.Chunk, channelSwap)
	}
	if flip {
		p.Chunk = append(p.Chunk, Flip{})
	}

	return p
}

// Apply runs the plan's effects on buf in place.
func (p Plan) Apply(buf []byte, lineSize int) {
	for line := p.FirstLine; line < p.LastLine; line++ {
		start := line * lineSize
		l := buf[start : start+lineSize]
		for _, e := range p.Lines {
			e.Apply(l)
		}
	}

	chunk := buf[p.FirstLine*lineSize : p.LastLine*lineSize]
	for _, e := range p.Chunk {
		e.Apply(chunk)
	}
}
