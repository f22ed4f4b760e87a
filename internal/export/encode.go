package export

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"
)

// Format is the output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Request describes one export: encoding, JPEG quality in [0, 1], and the
// resolution multiplier relative to the canvas size.
type Request struct {
	Format  Format
	Quality float64
	Scale   float64
}

// Encode writes the rendered image in the requested format.
func Encode(w io.Writer, img image.Image, req Request) error {
	switch req.Format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		q := int(math.Round(req.Quality * 100))
		if q < 1 {
			q = 1
		}
		if q > 100 {
			q = 100
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	default:
		return fmt.Errorf("unsupported export format %q", req.Format)
	}
}
