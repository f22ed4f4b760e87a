package canvas

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"

	"photomark/internal/asset"
	"photomark/internal/editor"
	"photomark/pkg/colorutil"
	"photomark/pkg/geometry"
)

// layerNode is the surface-side representation of one layer. It is the
// handle the reconciler tracks: the node survives every property update, and
// only its fyne objects are mutated (or, for collages, regenerated behind
// it).
type layerNode struct {
	objects []fyne.CanvasObject
	bounds  geometry.Rect // unzoomed canvas coordinates
	movable bool
	locked  bool

	layer *editor.Layer // last applied state, for zoom-only relayout

	// Natural-size cache for image sources, keyed by path.
	naturalSrc  string
	naturalSize geometry.Size
}

func newLayerNode(l *editor.Layer) *layerNode {
	n := &layerNode{}
	switch l.Props.(type) {
	case *editor.ImageProps, *editor.WatermarkProps:
		img := &fynecanvas.Image{FillMode: fynecanvas.ImageFillStretch}
		n.objects = []fyne.CanvasObject{img}
		n.movable = true
	case *editor.TextProps:
		n.objects = []fyne.CanvasObject{fynecanvas.NewText("", color.Black)}
		n.movable = true
	case *editor.FrameProps:
		n.objects = []fyne.CanvasObject{
			fynecanvas.NewRectangle(color.Black),
			fynecanvas.NewRectangle(color.Black),
			fynecanvas.NewRectangle(color.Black),
			fynecanvas.NewRectangle(color.Black),
		}
	case *editor.CollageProps:
		// Objects are regenerated on every update; the grid shape can change.
	default:
		panic(fmt.Sprintf("canvas: unknown layer props %T", l.Props))
	}
	return n
}

// update applies the layer state to the node's fyne objects. Positions and
// sizes are in output pixels, so everything is scaled by zoom here.
func (n *layerNode) update(l *editor.Layer, canvas geometry.Size, zoom float64) {
	n.layer = l
	n.locked = l.Locked

	switch p := l.Props.(type) {
	case *editor.ImageProps:
		n.bounds = geometry.RectOf(p.X, p.Y, p.Width, p.Height)
		n.updateImage(n.objects[0].(*fynecanvas.Image), p.Src, p.Opacity, zoom)
	case *editor.WatermarkProps:
		n.bounds = n.watermarkBounds(p)
		n.updateImage(n.objects[0].(*fynecanvas.Image), p.Src, p.Opacity, zoom)
	case *editor.TextProps:
		n.updateText(n.objects[0].(*fynecanvas.Text), p, zoom)
	case *editor.FrameProps:
		n.bounds = geometry.RectOf(0, 0, canvas.Width, canvas.Height)
		n.updateFrame(p, canvas, zoom)
	case *editor.CollageProps:
		n.bounds = geometry.RectOf(0, 0, canvas.Width, canvas.Height)
		n.updateCollage(p, canvas, zoom)
	default:
		panic(fmt.Sprintf("canvas: unknown layer props %T", l.Props))
	}

	if !l.Visible {
		for _, o := range n.objects {
			o.Hide()
		}
		return
	}
	for _, o := range n.objects {
		o.Show()
	}
}

// watermarkBounds resolves the zero-size-means-natural convention and the
// center anchoring of image watermarks.
func (n *layerNode) watermarkBounds(p *editor.WatermarkProps) geometry.Rect {
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		natural := n.natural(p.Src)
		if w <= 0 {
			w = natural.Width
		}
		if h <= 0 {
			h = natural.Height
		}
	}
	return geometry.RectOf(p.X-w/2, p.Y-h/2, w, h)
}

// natural returns the source's decoded pixel size, cached per path.
func (n *layerNode) natural(src string) geometry.Size {
	if src == n.naturalSrc && !n.naturalSize.Empty() {
		return n.naturalSize
	}
	n.naturalSrc = src
	n.naturalSize = geometry.Sz(100, 100)
	if a, err := asset.Load(src); err == nil {
		n.naturalSize = geometry.Sz(float64(a.Width), float64(a.Height))
	}
	return n.naturalSize
}

func (n *layerNode) updateImage(img *fynecanvas.Image, src string, opacity, zoom float64) {
	if img.File != src {
		img.File = src
	}
	img.Translucency = 1 - clamp01(opacity)
	place(img, n.bounds.Scaled(zoom))
	img.Refresh()
}

func (n *layerNode) updateText(txt *fynecanvas.Text, p *editor.TextProps, zoom float64) {
	txt.Text = p.Text
	txt.TextSize = float32(p.FontSize * zoom)
	txt.Color = colorutil.WithOpacity(colorutil.HexOr(p.Color, colorutil.Black), p.Opacity)

	// Text is anchored at its center point.
	min := txt.MinSize()
	w := float64(min.Width) / zoom
	h := float64(min.Height) / zoom
	n.bounds = geometry.RectOf(p.X-w/2, p.Y-h/2, w, h)
	place(txt, n.bounds.Scaled(zoom))
	txt.Refresh()
}

func (n *layerNode) updateFrame(p *editor.FrameProps, canvas geometry.Size, zoom float64) {
	c := colorutil.WithOpacity(colorutil.HexOr(p.Color, colorutil.Black), p.Opacity)
	bw := p.BorderWidth
	w, h := canvas.Width, canvas.Height

	bands := []geometry.Rect{
		{X: 0, Y: 0, Width: w, Height: bw},
		{X: 0, Y: h - bw, Width: w, Height: bw},
		{X: 0, Y: bw, Width: bw, Height: h - 2*bw},
		{X: w - bw, Y: bw, Width: bw, Height: h - 2*bw},
	}
	for i, band := range bands {
		rect := n.objects[i].(*fynecanvas.Rectangle)
		rect.FillColor = c
		place(rect, band.Scaled(zoom))
		rect.Refresh()
	}
}

// updateCollage regenerates the background and cell images. The node itself
// is stable; only its object list changes shape.
func (n *layerNode) updateCollage(p *editor.CollageProps, canvas geometry.Size, zoom float64) {
	bg := fynecanvas.NewRectangle(colorutil.WithOpacity(colorutil.HexOr(p.Background, colorutil.White), p.Opacity))
	place(bg, n.bounds.Scaled(zoom))
	objects := []fyne.CanvasObject{bg}

	rows, cols := p.Rows, p.Cols
	if rows >= 1 && cols >= 1 {
		gap := p.Gap
		cellW := (canvas.Width - gap*float64(cols+1)) / float64(cols)
		cellH := (canvas.Height - gap*float64(rows+1)) / float64(rows)
		if cellW > 0 && cellH > 0 {
			for i, src := range p.Images {
				if i >= rows*cols || src == "" {
					continue
				}
				img := &fynecanvas.Image{File: src, FillMode: fynecanvas.ImageFillStretch}
				img.Translucency = 1 - clamp01(p.Opacity)
				cell := geometry.RectOf(
					gap+float64(i%cols)*(cellW+gap),
					gap+float64(i/cols)*(cellH+gap),
					cellW, cellH,
				)
				place(img, cell.Scaled(zoom))
				objects = append(objects, img)
			}
		}
	}
	n.objects = objects
}

func place(o fyne.CanvasObject, r geometry.Rect) {
	o.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	o.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
