// Package export rasterizes an editing session to an encoded image. The
// engine supplies the authoritative layer and canvas state; this package
// composites visible layers back-to-front at the requested resolution and
// encodes the result.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"photomark/internal/asset"
	"photomark/internal/editor"
	"photomark/pkg/colorutil"
	"photomark/pkg/geometry"
)

// Render composites the session into an RGBA raster, scaled by req.Scale.
// Decode failures of any referenced source surface as an error; the output
// is never partially committed.
func Render(e *editor.Engine, req Request) (*image.RGBA, error) {
	canvas := e.CanvasSize()
	if canvas.Empty() {
		return nil, fmt.Errorf("export: canvas has no size")
	}
	scale := req.Scale
	if scale <= 0 {
		scale = 1
	}

	w := int(math.Round(canvas.Width * scale))
	h := int(math.Round(canvas.Height * scale))
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(colorutil.White), image.Point{}, draw.Src)

	if base := e.Image(); base != nil && base.Data != nil {
		full := geometry.RectOf(0, 0, canvas.Width, canvas.Height).Scaled(scale)
		drawRaster(out, base.Data, full, 0, 1.0)
	}

	for _, l := range e.Layers() {
		if !l.Visible {
			continue
		}
		if err := drawLayer(out, l, canvas, scale); err != nil {
			return nil, fmt.Errorf("export: layer %q: %w", l.Name, err)
		}
	}
	return out, nil
}

// drawLayer dispatches on the props variant. The switch is exhaustive over
// the closed set; a new variant without a case panics.
func drawLayer(out *image.RGBA, l *editor.Layer, canvas geometry.Size, scale float64) error {
	switch p := l.Props.(type) {
	case *editor.ImageProps:
		return drawSourced(out, p.Src, geometry.RectOf(p.X, p.Y, p.Width, p.Height), p.Rotation, p.Opacity, scale, false)
	case *editor.WatermarkProps:
		return drawSourced(out, p.Src, geometry.RectOf(p.X, p.Y, p.Width, p.Height), p.Rotation, p.Opacity, scale, true)
	case *editor.TextProps:
		return drawText(out, p, scale)
	case *editor.FrameProps:
		drawFrame(out, p, canvas, scale)
		return nil
	case *editor.CollageProps:
		return drawCollage(out, p, canvas, scale)
	default:
		panic("export: unknown layer props variant")
	}
}

// drawSourced loads src and draws it into rect. For watermarks a zero
// width/height means the source's natural size, anchored so that rect's
// (x, y) is the raster center.
func drawSourced(out *image.RGBA, src string, rect geometry.Rect, rotation, opacity, scale float64, centered bool) error {
	if src == "" {
		return nil
	}
	a, err := asset.Load(src)
	if err != nil {
		return err
	}
	if rect.Width <= 0 {
		rect.Width = float64(a.Width)
	}
	if rect.Height <= 0 {
		rect.Height = float64(a.Height)
	}
	if centered {
		rect.X -= rect.Width / 2
		rect.Y -= rect.Height / 2
	}
	drawRaster(out, a.Image, rect.Scaled(scale), rotation, opacity)
	return nil
}

// drawRaster composites src into the destination rect (already in output
// pixels) with rotation about the rect center and uniform opacity.
func drawRaster(out *image.RGBA, src image.Image, rect geometry.Rect, rotation, opacity float64) {
	if rect.Width <= 0 || rect.Height <= 0 || opacity <= 0 {
		return
	}

	if rotation == 0 {
		scaled := image.NewRGBA(image.Rect(0, 0, int(math.Round(rect.Width)), int(math.Round(rect.Height))))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Over, nil)
		target := image.Rect(int(math.Round(rect.X)), int(math.Round(rect.Y)),
			int(math.Round(rect.X+rect.Width)), int(math.Round(rect.Y+rect.Height)))
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
		draw.DrawMask(out, target, scaled, image.Point{}, mask, image.Point{}, draw.Over)
		return
	}

	srcBounds := src.Bounds()
	srcW := float64(srcBounds.Dx())
	srcH := float64(srcBounds.Dy())
	forward := layerTransform(rect, srcW, srcH, rotation)
	inv := invert(forward)
	if inv == nil {
		return
	}

	// Inverse mapping over the transformed bounding box, nearest sampling.
	bbox := destBounds(forward, srcW, srcH)
	x0 := clampInt(int(math.Floor(bbox.X)), 0, out.Bounds().Dx())
	y0 := clampInt(int(math.Floor(bbox.Y)), 0, out.Bounds().Dy())
	x1 := clampInt(int(math.Ceil(bbox.X+bbox.Width)), 0, out.Bounds().Dx())
	y1 := clampInt(int(math.Ceil(bbox.Y+bbox.Height)), 0, out.Bounds().Dy())

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sx, sy := apply(inv, float64(x)+0.5, float64(y)+0.5)
			px := srcBounds.Min.X + int(sx)
			py := srcBounds.Min.Y + int(sy)
			if sx < 0 || sy < 0 || px >= srcBounds.Max.X || py >= srcBounds.Max.Y {
				continue
			}
			blendPixel(out, x, y, src.At(px, py), opacity)
		}
	}
}

// drawText renders the string centered on (x, y), with an optional
// background pad behind it.
func drawText(out *image.RGBA, p *editor.TextProps, scale float64) error {
	if p.Text == "" {
		return nil
	}
	face, err := loadFace(p.FontFamily, p.FontSize*scale)
	if err != nil {
		return err
	}
	defer face.Close()

	fg := colorutil.WithOpacity(colorutil.HexOr(p.Color, colorutil.Black), p.Opacity)
	width, ascent, descent := measure(face, p.Text)
	cx := p.X * scale
	cy := p.Y * scale
	left := cx - width/2
	top := cy - (ascent+descent)/2

	if p.Background != "" {
		bg := colorutil.WithOpacity(colorutil.HexOr(p.Background, colorutil.Transparent), p.Opacity)
		pad := 4 * scale
		fillRect(out, geometry.RectOf(left-pad, top-pad, width+2*pad, ascent+descent+2*pad), bg)
	}

	drawString(out, face, p.Text, left, top+ascent, fg)
	return nil
}

// drawFrame strokes a border band inset at each canvas edge.
func drawFrame(out *image.RGBA, p *editor.FrameProps, canvas geometry.Size, scale float64) {
	bw := p.BorderWidth * scale
	if bw <= 0 {
		return
	}
	c := colorutil.WithOpacity(colorutil.HexOr(p.Color, colorutil.Black), p.Opacity)
	w := canvas.Width * scale
	h := canvas.Height * scale

	bands := []geometry.Rect{
		{X: 0, Y: 0, Width: w, Height: bw},          // top
		{X: 0, Y: h - bw, Width: w, Height: bw},     // bottom
		{X: 0, Y: bw, Width: bw, Height: h - 2*bw},  // left
		{X: w - bw, Y: bw, Width: bw, Height: h - 2*bw}, // right
	}
	for i, band := range bands {
		if p.Style == editor.FrameDashed {
			horizontal := i < 2
			fillDashed(out, band, c, 3*bw, horizontal)
		} else {
			fillRect(out, band, c)
		}
	}
}

// drawCollage lays the source images out in a rows×cols grid with uniform
// gaps, stretched to fill each cell. Empty cells keep the background color.
func drawCollage(out *image.RGBA, p *editor.CollageProps, canvas geometry.Size, scale float64) error {
	rows, cols := p.Rows, p.Cols
	if rows < 1 || cols < 1 {
		return fmt.Errorf("collage grid %dx%d is invalid", rows, cols)
	}
	bg := colorutil.WithOpacity(colorutil.HexOr(p.Background, colorutil.White), p.Opacity)
	fillRect(out, geometry.RectOf(0, 0, canvas.Width, canvas.Height).Scaled(scale), bg)

	gap := p.Gap
	cellW := (canvas.Width - gap*float64(cols+1)) / float64(cols)
	cellH := (canvas.Height - gap*float64(rows+1)) / float64(rows)
	if cellW <= 0 || cellH <= 0 {
		return fmt.Errorf("collage gap %.0f leaves no room for cells", gap)
	}

	for i, src := range p.Images {
		if i >= rows*cols {
			break
		}
		if src == "" {
			continue
		}
		a, err := asset.Load(src)
		if err != nil {
			return err
		}
		row := i / cols
		col := i % cols
		cell := geometry.RectOf(
			gap+float64(col)*(cellW+gap),
			gap+float64(row)*(cellH+gap),
			cellW, cellH,
		)
		drawRaster(out, a.Image, cell.Scaled(scale), 0, p.Opacity)
	}
	return nil
}

func fillRect(out *image.RGBA, r geometry.Rect, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	target := image.Rect(int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height)))
	draw.Draw(out, target, image.NewUniform(c), image.Point{}, draw.Over)
}

func fillDashed(out *image.RGBA, band geometry.Rect, c color.NRGBA, dash float64, horizontal bool) {
	if dash <= 0 {
		fillRect(out, band, c)
		return
	}
	if horizontal {
		for x := band.X; x < band.X+band.Width; x += 2 * dash {
			seg := math.Min(dash, band.X+band.Width-x)
			fillRect(out, geometry.RectOf(x, band.Y, seg, band.Height), c)
		}
		return
	}
	for y := band.Y; y < band.Y+band.Height; y += 2 * dash {
		seg := math.Min(dash, band.Y+band.Height-y)
		fillRect(out, geometry.RectOf(band.X, y, band.Width, seg), c)
	}
}

// blendPixel alpha-composites a single source sample over the output.
func blendPixel(out *image.RGBA, x, y int, src color.Color, opacity float64) {
	sr, sg, sb, sa := src.RGBA()
	alpha := float64(sa) / 0xffff * opacity
	if alpha <= 0.001 {
		return
	}
	if alpha >= 0.999 {
		out.Set(x, y, src)
		return
	}
	dr, dg, db, _ := out.At(x, y).RGBA()
	inv := 1 - alpha
	out.Set(x, y, color.RGBA{
		R: uint8(float64(sr>>8)*alpha + float64(dr>>8)*inv),
		G: uint8(float64(sg>>8)*alpha + float64(dg>>8)*inv),
		B: uint8(float64(sb>>8)*alpha + float64(db>>8)*inv),
		A: 255,
	})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
