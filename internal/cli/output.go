package cli

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPath returns the file name for image index (0-based) of a batch.
// Single images keep name; batches get a three-digit suffix. ".png" is
// appended when missing.
func OutputPath(name string, index, batch int) string {
	base := name
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".png") {
		base = strings.TrimSuffix(base, ext)
	}
	if batch > 1 {
		return fmt.Sprintf("%s-%03d.png", base, index+1)
	}
	return base + ".png"
}
