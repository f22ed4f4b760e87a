// Package canvas provides the interactive editing canvas: a retained-mode
// fyne scene driven by the render reconciler, with pan, zoom, tap-select,
// and drag-move.
package canvas

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"photomark/internal/editor"
	"photomark/internal/render"
	"photomark/pkg/colorutil"
	"photomark/pkg/geometry"
)

const zoomStep = 1.25

// EditCanvas displays the layer stack and forwards gestures to the engine
// through the reconciler. It implements render.Surface: layer state flows
// engine → reconciler → here, and only finished gestures flow back.
type EditCanvas struct {
	widget.BaseWidget

	engine *editor.Engine
	rec    *render.Reconciler

	background *fynecanvas.Rectangle
	baseImage  *fynecanvas.Image
	selection  *selectionBox
	nodes      []*layerNode // back-to-front

	inner   *fyne.Container
	content *editContent
	scroll  *zoomScroll

	dragNode *layerNode
}

// NewEditCanvas creates the canvas and subscribes it to the engine.
func NewEditCanvas(engine *editor.Engine) *EditCanvas {
	ec := &EditCanvas{
		engine:     engine,
		background: fynecanvas.NewRectangle(colorutil.White),
		baseImage:  &fynecanvas.Image{FillMode: fynecanvas.ImageFillStretch},
		selection:  newSelectionBox(),
	}
	ec.inner = container.NewWithoutLayout(ec.background, ec.baseImage, ec.selection.object())
	ec.content = newEditContent(ec)
	ec.scroll = newZoomScroll(ec.content, ec)
	ec.ExtendBaseWidget(ec)

	ec.rec = render.New(engine, ec)

	engine.On(editor.EventImageChanged, func(interface{}) { ec.reloadBaseImage() })
	engine.On(editor.EventZoomChanged, func(interface{}) { ec.relayout() })
	engine.On(editor.EventSelectionChanged, func(interface{}) { ec.updateSelection() })

	ec.reloadBaseImage()
	ec.relayout()
	return ec
}

// Container returns the scrollable canvas for embedding in layouts.
func (ec *EditCanvas) Container() fyne.CanvasObject {
	return ec.scroll
}

// Reconciler exposes the reconciler for collaborators that resolve handles.
func (ec *EditCanvas) Reconciler() *render.Reconciler {
	return ec.rec
}

// Create implements render.Surface.
func (ec *EditCanvas) Create(l *editor.Layer) render.Handle {
	n := newLayerNode(l)
	n.update(l, ec.engine.CanvasSize(), ec.engine.Zoom())
	return n
}

// Update implements render.Surface. The node is mutated in place.
func (ec *EditCanvas) Update(h render.Handle, l *editor.Layer) {
	h.(*layerNode).update(l, ec.engine.CanvasSize(), ec.engine.Zoom())
}

// Remove implements render.Surface. The object list is rebuilt on the
// Restack that follows every reconcile pass.
func (ec *EditCanvas) Remove(h render.Handle) {
	if ec.dragNode == h {
		ec.dragNode = nil
	}
}

// Restack implements render.Surface: handles arrive back-to-front.
func (ec *EditCanvas) Restack(handles []render.Handle) {
	ec.nodes = ec.nodes[:0]
	for _, h := range handles {
		ec.nodes = append(ec.nodes, h.(*layerNode))
	}
	ec.rebuildObjects()
	ec.updateSelection()
}

// ZoomIn increases the zoom level.
func (ec *EditCanvas) ZoomIn() {
	ec.engine.SetZoom(ec.engine.Zoom() * zoomStep)
}

// ZoomOut decreases the zoom level.
func (ec *EditCanvas) ZoomOut() {
	ec.engine.SetZoom(ec.engine.Zoom() / zoomStep)
}

// FitToWindow adjusts zoom so the whole canvas fits the visible area.
func (ec *EditCanvas) FitToWindow() {
	size := ec.engine.CanvasSize()
	if size.Empty() {
		return
	}
	view := ec.scroll.Size()
	if view.Width <= 0 || view.Height <= 0 {
		return
	}
	zoomX := float64(view.Width) / size.Width
	zoomY := float64(view.Height) / size.Height
	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}
	ec.engine.SetZoom(zoom * 0.95)
}

// CreateRenderer implements fyne.Widget.
func (ec *EditCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ec.scroll)
}

func (ec *EditCanvas) rebuildObjects() {
	objs := []fyne.CanvasObject{ec.background, ec.baseImage}
	for _, n := range ec.nodes {
		objs = append(objs, n.objects...)
	}
	objs = append(objs, ec.selection.object())
	ec.inner.Objects = objs
	ec.inner.Refresh()
}

func (ec *EditCanvas) reloadBaseImage() {
	if base := ec.engine.Image(); base != nil && base.Data != nil {
		ec.baseImage.Image = base.Data
		ec.baseImage.Show()
	} else {
		ec.baseImage.Image = nil
		ec.baseImage.Hide()
	}
	ec.relayout()
}

// relayout repositions everything for the current canvas size and zoom.
func (ec *EditCanvas) relayout() {
	size := ec.engine.CanvasSize()
	zoom := ec.engine.Zoom()
	full := geometry.RectOf(0, 0, size.Width, size.Height).Scaled(zoom)

	place(ec.background, full)
	place(ec.baseImage, full)
	ec.background.Refresh()
	ec.baseImage.Refresh()

	for _, n := range ec.nodes {
		if n.layer != nil {
			n.update(n.layer, size, zoom)
		}
	}
	ec.content.setContentSize(fyne.NewSize(float32(full.Width), float32(full.Height)))
	ec.updateSelection()
}

func (ec *EditCanvas) updateSelection() {
	id := ec.engine.ActiveLayerID()
	if id == "" || ec.rec == nil {
		ec.selection.hide()
		return
	}
	h, ok := ec.rec.HandleFor(id)
	if !ok {
		ec.selection.hide()
		return
	}
	n := h.(*layerNode)
	if n.layer == nil || !n.layer.Visible {
		ec.selection.hide()
		return
	}
	ec.selection.show(n.bounds.Scaled(ec.engine.Zoom()))
}

// nodeAt hit-tests front-to-back in unzoomed canvas coordinates.
func (ec *EditCanvas) nodeAt(p geometry.Point) *layerNode {
	for i := len(ec.nodes) - 1; i >= 0; i-- {
		n := ec.nodes[i]
		if n.layer == nil || !n.layer.Visible {
			continue
		}
		if n.bounds.Contains(p) {
			return n
		}
	}
	return nil
}

func (ec *EditCanvas) tapped(pos fyne.Position) {
	p := ec.toCanvas(pos)
	if n := ec.nodeAt(p); n != nil {
		ec.rec.SelectHandle(n)
		return
	}
	ec.rec.ClearSelection()
}

func (ec *EditCanvas) dragged(ev *fyne.DragEvent) {
	if ec.dragNode == nil {
		n := ec.nodeAt(ec.toCanvas(ev.Position))
		if n == nil || !n.movable || n.locked {
			return
		}
		ec.dragNode = n
		ec.rec.SelectHandle(n)
	}

	zoom := ec.engine.Zoom()
	n := ec.dragNode
	n.bounds.X += float64(ev.Dragged.DX) / zoom
	n.bounds.Y += float64(ev.Dragged.DY) / zoom
	for _, o := range n.objects {
		o.Move(fyne.NewPos(float32(n.bounds.X*zoom), float32(n.bounds.Y*zoom)))
	}
	ec.selection.show(n.bounds.Scaled(zoom))
}

// dragEnd commits the finished move as a single history entry. The patch
// coordinates follow the layer's own convention: text and image watermarks
// are anchored at their center.
func (ec *EditCanvas) dragEnd() {
	n := ec.dragNode
	ec.dragNode = nil
	if n == nil || n.layer == nil {
		return
	}
	ec.rec.CommitTransform(n, commitRect(n), rotationOf(n.layer))
}

func commitRect(n *layerNode) geometry.Rect {
	b := n.bounds
	switch n.layer.Props.(type) {
	case *editor.TextProps, *editor.WatermarkProps:
		c := b.Center()
		return geometry.RectOf(c.X, c.Y, b.Width, b.Height)
	default:
		return b
	}
}

func rotationOf(l *editor.Layer) float64 {
	switch p := l.Props.(type) {
	case *editor.ImageProps:
		return p.Rotation
	case *editor.TextProps:
		return p.Rotation
	case *editor.WatermarkProps:
		return p.Rotation
	default:
		return 0
	}
}

func (ec *EditCanvas) toCanvas(pos fyne.Position) geometry.Point {
	zoom := ec.engine.Zoom()
	return geometry.Pt(float64(pos.X)/zoom, float64(pos.Y)/zoom)
}

// zoomScroll wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *EditCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *EditCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// editContent hosts the layer objects and receives mouse events.
type editContent struct {
	widget.BaseWidget
	canvas  *EditCanvas
	minSize fyne.Size
}

func newEditContent(ec *EditCanvas) *editContent {
	c := &editContent{canvas: ec, minSize: fyne.NewSize(400, 300)}
	c.ExtendBaseWidget(c)
	return c
}

func (c *editContent) setContentSize(size fyne.Size) {
	c.minSize = size
	c.Resize(size)
	c.Refresh()
}

func (c *editContent) MinSize() fyne.Size {
	return c.minSize
}

func (c *editContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.canvas.inner)
}

func (c *editContent) Tapped(ev *fyne.PointEvent) {
	size := c.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}
	c.canvas.tapped(ev.Position)
}

func (c *editContent) Dragged(ev *fyne.DragEvent) {
	c.canvas.dragged(ev)
}

func (c *editContent) DragEnd() {
	c.canvas.dragEnd()
}

func (c *editContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		c.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		c.canvas.ZoomOut()
	}
}
