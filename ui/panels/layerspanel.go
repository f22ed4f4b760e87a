// Package panels provides the side panel widgets: the layer list and the
// property sheet for the active layer.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"photomark/internal/editor"
)

// LayersPanel lists the layer stack, topmost first, with per-layer
// visibility toggles and stack reordering controls.
type LayersPanel struct {
	engine *editor.Engine

	list   *widget.List
	layers []*editor.Layer // display order: front-to-back
	box    fyne.CanvasObject
}

// NewLayersPanel creates the panel and subscribes it to the engine.
func NewLayersPanel(engine *editor.Engine) *LayersPanel {
	lp := &LayersPanel{engine: engine}

	lp.list = widget.NewList(
		func() int { return len(lp.layers) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil,
				widget.NewButtonWithIcon("", theme.VisibilityIcon(), nil),
				nil,
				widget.NewLabel(""),
			)
		},
		func(i widget.ListItemID, item fyne.CanvasObject) {
			lp.updateItem(i, item)
		},
	)
	lp.list.OnSelected = func(i widget.ListItemID) {
		if i >= 0 && i < len(lp.layers) {
			lp.engine.SetActiveLayer(lp.layers[i].ID)
		}
	}

	upBtn := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() {
		if id := lp.engine.ActiveLayerID(); id != "" {
			lp.engine.MoveLayer(id, editor.MoveUp)
		}
	})
	downBtn := widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() {
		if id := lp.engine.ActiveLayerID(); id != "" {
			lp.engine.MoveLayer(id, editor.MoveDown)
		}
	})
	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		if id := lp.engine.ActiveLayerID(); id != "" {
			lp.engine.DeleteLayer(id)
		}
	})
	controls := container.NewHBox(upBtn, downBtn, deleteBtn)

	lp.box = container.NewBorder(
		widget.NewLabel("Layers"),
		controls,
		nil, nil,
		lp.list,
	)

	engine.On(editor.EventLayersChanged, func(interface{}) { lp.refresh() })
	engine.On(editor.EventSelectionChanged, func(interface{}) { lp.syncSelection() })

	lp.refresh()
	return lp
}

// Container returns the panel for embedding in layouts.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.box
}

func (lp *LayersPanel) updateItem(i widget.ListItemID, item fyne.CanvasObject) {
	if i < 0 || i >= len(lp.layers) {
		return
	}
	l := lp.layers[i]
	border := item.(*fyne.Container)
	for _, o := range border.Objects {
		switch w := o.(type) {
		case *widget.Label:
			w.SetText(l.Name)
		case *widget.Button:
			if l.Visible {
				w.SetIcon(theme.VisibilityIcon())
			} else {
				w.SetIcon(theme.VisibilityOffIcon())
			}
			id := l.ID
			w.OnTapped = func() {
				lp.engine.ToggleLayerVisibility(id)
			}
		}
	}
}

// refresh reloads the layer stack. The engine's stack is back-to-front; the
// list shows the topmost layer first.
func (lp *LayersPanel) refresh() {
	stack := lp.engine.Layers()
	lp.layers = lp.layers[:0]
	for i := len(stack) - 1; i >= 0; i-- {
		lp.layers = append(lp.layers, stack[i])
	}
	lp.list.Refresh()
	lp.syncSelection()
}

func (lp *LayersPanel) syncSelection() {
	id := lp.engine.ActiveLayerID()
	if id == "" {
		lp.list.UnselectAll()
		return
	}
	for i, l := range lp.layers {
		if l.ID == id {
			lp.list.Select(i)
			return
		}
	}
	lp.list.UnselectAll()
}
