// Package mosh implements the glitch engine: seeded, reproducible byte-level
// corruption of decoded scanline data followed by an optional pixelation pass.
//
// The engine works on a flat pixel buffer laid out the way a PNG decoder
// emits it: Height scanlines of LineSize bytes each, one byte per channel.
// It never parses or encodes image containers; see package pngio for that.
//
// # Determinism
//
// Every random decision is drawn from a Source seeded with Options.Seed, in
// a fixed order. Two runs with the same buffer, metadata and options produce
// byte-identical output. The draw order of a single chunk iteration is:
//
//  1. first line, chunk size
//  2. reverse flag, flip flag
//  3. line shift flag (+ shift amount)
//  4. channel shift flag (+ amount, channel)
//  5. channel swap flag (+ both channels)
//
// and the application order is channel shift, line shift, reverse on every
// line of the chunk, then channel swap and flip on the whole chunk.
//
// # Buffers
//
// An Engine keeps the decoded original untouched and clones it into a
// working buffer at the start of every Mosh call, so results never
// accumulate across calls with different seeds.
//
// # Thread Safety
//
// An Engine must not be used by more than one goroutine at a time. Run
// independent engines to mosh in parallel.
package mosh
