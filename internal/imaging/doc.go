// Package imaging holds the image-side helpers around the mosh engine: a
// cache of decoded originals, preview rendering, before/after comparison
// and dominant color extraction.
//
// Images are kept in the scanline form produced by pngio so they can be
// handed to the engine without conversion. Conversion to Go image types
// happens only when something has to be drawn or measured.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are shared between
// callers and must be treated as read-only; the engine copies its input
// before mutating anything.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward, matching the scanline order of the
// underlying buffers.
package imaging
