package canvas

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"

	"photomark/pkg/colorutil"
	"photomark/pkg/geometry"
)

// selectionBox is the outline drawn around the active layer's render object.
type selectionBox struct {
	rect *fynecanvas.Rectangle
}

func newSelectionBox() *selectionBox {
	r := fynecanvas.NewRectangle(colorutil.Transparent)
	r.StrokeColor = colorutil.Selection
	r.StrokeWidth = 2
	r.Hide()
	return &selectionBox{rect: r}
}

func (s *selectionBox) object() fyne.CanvasObject {
	return s.rect
}

// show outlines the given bounds, already in output pixels.
func (s *selectionBox) show(bounds geometry.Rect) {
	place(s.rect, bounds)
	s.rect.Show()
	s.rect.Refresh()
}

func (s *selectionBox) hide() {
	s.rect.Hide()
}
