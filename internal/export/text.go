package export

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// loadFace builds a font face at the given pixel size. Family mapping is
// best-effort onto the bundled Go fonts; anything unrecognized falls back to
// the regular face.
func loadFace(family string, size float64) (font.Face, error) {
	ttf := goregular.TTF
	switch strings.ToLower(family) {
	case "monospace", "mono":
		ttf = gomono.TTF
	}

	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}

func measure(face font.Face, s string) (width, ascent, descent float64) {
	adv := font.MeasureString(face, s)
	m := face.Metrics()
	return fromFixed(adv), fromFixed(m.Ascent), fromFixed(m.Descent)
}

func drawString(out *image.RGBA, face font.Face, s string, x, baseline float64, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)},
	}
	d.DrawString(s)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
