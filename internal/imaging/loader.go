package imaging

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/ironsheep/pixelmosh/internal/mosh"
	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// ImageCache provides thread-safe caching of decoded PNG originals.
//
// The cache stores *pngio.Image values keyed by the path they were loaded
// from. Once an image is loaded, subsequent Load calls for the same path
// return the cached copy without touching the file system.
//
// Cached images remain in memory until explicitly removed via Evict or
// Clear.
//
//	cache := imaging.NewImageCache(afero.NewOsFs())
//	img, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    return err
//	}
//	e, err := mosh.New(img.Meta, img.Pix)
type ImageCache struct {
	fs     afero.Fs
	mu     sync.RWMutex
	images map[string]*pngio.Image
}

// NewImageCache creates an empty cache reading through fs.
func NewImageCache(fs afero.Fs) *ImageCache {
	return &ImageCache{
		fs:     fs,
		images: make(map[string]*pngio.Image),
	}
}

// Fs returns the file system the cache reads from.
func (c *ImageCache) Fs() afero.Fs {
	return c.fs
}

// Load retrieves an image from the cache or decodes it from the file system.
//
// The image is cached using the exact path string provided. Different paths
// to the same file (relative vs absolute) result in separate entries.
// Errors from pngio keep their sentinel so callers can test for
// pngio.ErrDecoding.
func (c *ImageCache) Load(path string) (*pngio.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := pngio.ReadFile(c.fs, path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*pngio.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. After eviction
// the next Load for this path reads the file again.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded PNG.
type ImageInfo struct {
	// Path is the path the image was loaded from.
	Path string `json:"path"`

	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// ColorType is the PNG color type name, e.g. "rgb" or "indexed".
	ColorType string `json:"color_type"`

	// BitDepth is the bit depth per channel. Always 8 for decodable files.
	BitDepth int `json:"bit_depth"`

	// Channels is the number of bytes per pixel.
	Channels int `json:"channels"`

	// LineSize is the number of bytes per scanline.
	LineSize int `json:"line_size"`

	// HasAlpha indicates whether the image has an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// Moshable is false for color types the engine rejects (Indexed).
	Moshable bool `json:"moshable"`

	// FileSize is the on-disk size in human-readable form, e.g. "12.50KB".
	FileSize string `json:"file_size"`

	// FileSizeBytes is the on-disk size in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache (if not already cached) and
// describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := cache.fs.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat file")
	}

	ct := img.Meta.ColorType
	return &ImageInfo{
		Path:          path,
		Width:         int(img.Meta.Width),
		Height:        int(img.Meta.Height),
		ColorType:     ct.String(),
		BitDepth:      int(img.Meta.BitDepth),
		Channels:      ct.Channels(),
		LineSize:      img.Meta.LineSize,
		HasAlpha:      ct == mosh.GrayscaleAlpha || ct == mosh.RGBA,
		Moshable:      ct != mosh.Indexed,
		FileSize:      bytesize.New(float64(stat.Size())).String(),
		FileSizeBytes: stat.Size(),
	}, nil
}

// IsPNGPath reports whether path has a .png extension, ignoring case.
func IsPNGPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".png")
}
