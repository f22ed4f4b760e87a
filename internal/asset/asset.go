// Package asset provides image decoding for base images and layer sources.
package asset

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "golang.org/x/image/tiff"
)

// Asset is a decoded raster source.
type Asset struct {
	Path   string
	Image  image.Image
	Width  int
	Height int
}

// Load decodes the image at path. On failure no partial asset exists; the
// caller's state is untouched.
func Load(path string) (*Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return &Asset{
		Path:   path,
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Loader serializes overlapping asynchronous loads: each Load supersedes the
// previous one, and only the most recently issued load's completion is
// delivered. The engine itself has no request-generation guard, so this is
// where stale in-flight decodes get dropped.
type Loader struct {
	gen atomic.Uint64
}

// Load decodes path on a background goroutine and calls done with the result
// unless a newer Load was issued meanwhile. done runs on the decoding
// goroutine; UI callers must hop back to their event loop themselves.
func (l *Loader) Load(path string, done func(*Asset, error)) {
	id := l.gen.Add(1)
	go func() {
		a, err := Load(path)
		if l.gen.Load() != id {
			return // superseded by a newer load
		}
		done(a, err)
	}()
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
