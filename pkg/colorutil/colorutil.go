// Package colorutil provides shared color utilities for the photomark
// application: hex color parsing for layer props and a few fixed colors used
// by the renderer and exporter.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Common colors used throughout the application.
var (
	Black       = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.NRGBA{}
	Selection   = color.NRGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xC0}
)

// ParseHex parses "#rgb", "#rrggbb", or "#rrggbbaa". An empty string parses
// to fully transparent, matching the "no background" convention in layer
// props.
func ParseHex(s string) (color.NRGBA, error) {
	if s == "" {
		return Transparent, nil
	}
	h := strings.TrimPrefix(s, "#")
	switch len(h) {
	case 3:
		r, err1 := hexNibble(h[0])
		g, err2 := hexNibble(h[1])
		b, err3 := hexNibble(h[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return Transparent, fmt.Errorf("invalid hex color %q", s)
		}
		return color.NRGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, nil
	case 6, 8:
		var vals [4]uint8
		vals[3] = 255
		for i := 0; i < len(h)/2; i++ {
			hi, err1 := hexNibble(h[2*i])
			lo, err2 := hexNibble(h[2*i+1])
			if err1 != nil || err2 != nil {
				return Transparent, fmt.Errorf("invalid hex color %q", s)
			}
			vals[i] = hi<<4 | lo
		}
		return color.NRGBA{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, nil
	default:
		return Transparent, fmt.Errorf("invalid hex color %q", s)
	}
}

// HexOr parses s, falling back to the given color on any parse error.
func HexOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		return fallback
	}
	return c
}

// WithOpacity scales the alpha channel of c by opacity in [0, 1].
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A) * opacity)
	return c
}

func hexNibble(b byte) (uint8, error) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', nil
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, nil
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit %q", b)
}
