package panels

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"photomark/internal/editor"
)

// PropertySheet edits the active layer's properties. Edits apply live
// through UpdateLayer; a finished control gesture commits one history entry.
type PropertySheet struct {
	engine *editor.Engine

	box     *fyne.Container
	content *fyne.Container
}

// NewPropertySheet creates the sheet and subscribes it to the engine.
func NewPropertySheet(engine *editor.Engine) *PropertySheet {
	ps := &PropertySheet{
		engine:  engine,
		content: container.NewVBox(),
	}
	ps.box = container.NewBorder(widget.NewLabel("Properties"), nil, nil, nil,
		container.NewVScroll(ps.content))

	engine.On(editor.EventSelectionChanged, func(interface{}) { ps.rebuild() })
	engine.On(editor.EventLayersChanged, func(interface{}) { ps.rebuild() })

	ps.rebuild()
	return ps
}

// Container returns the sheet for embedding in layouts.
func (ps *PropertySheet) Container() fyne.CanvasObject {
	return ps.box
}

func (ps *PropertySheet) rebuild() {
	ps.content.Objects = nil
	defer ps.content.Refresh()

	layer := ps.engine.ActiveLayer()
	if layer == nil {
		ps.content.Add(widget.NewLabel("No layer selected"))
		return
	}
	id := layer.ID

	ps.content.Add(widget.NewLabelWithStyle(layer.Name, fyne.TextAlignLeading,
		fyne.TextStyle{Bold: true}))

	switch p := layer.Props.(type) {
	case *editor.TextProps:
		ps.addTextEntry(id, "Text", p.Text, func(s string) editor.Patch {
			return editor.Patch{Text: editor.Str(s)}
		})
		ps.addFloatEntry(id, "Font size", p.FontSize, func(v float64) editor.Patch {
			return editor.Patch{FontSize: editor.Float(v)}
		})
		ps.addTextEntry(id, "Color", p.Color, func(s string) editor.Patch {
			return editor.Patch{Color: editor.Str(s)}
		})
		ps.addTextEntry(id, "Background", p.Background, func(s string) editor.Patch {
			return editor.Patch{Background: editor.Str(s)}
		})
		ps.addFloatEntry(id, "Rotation", p.Rotation, func(v float64) editor.Patch {
			return editor.Patch{Rotation: editor.Float(v)}
		})
		ps.addOpacitySlider(id, p.Opacity)
	case *editor.ImageProps:
		ps.addFloatEntry(id, "X", p.X, func(v float64) editor.Patch {
			return editor.Patch{X: editor.Float(v)}
		})
		ps.addFloatEntry(id, "Y", p.Y, func(v float64) editor.Patch {
			return editor.Patch{Y: editor.Float(v)}
		})
		ps.addFloatEntry(id, "Width", p.Width, func(v float64) editor.Patch {
			return editor.Patch{Width: editor.Float(v)}
		})
		ps.addFloatEntry(id, "Height", p.Height, func(v float64) editor.Patch {
			return editor.Patch{Height: editor.Float(v)}
		})
		ps.addFloatEntry(id, "Rotation", p.Rotation, func(v float64) editor.Patch {
			return editor.Patch{Rotation: editor.Float(v)}
		})
		ps.addOpacitySlider(id, p.Opacity)
	case *editor.WatermarkProps:
		ps.addFloatEntry(id, "X", p.X, func(v float64) editor.Patch {
			return editor.Patch{X: editor.Float(v)}
		})
		ps.addFloatEntry(id, "Y", p.Y, func(v float64) editor.Patch {
			return editor.Patch{Y: editor.Float(v)}
		})
		ps.addFloatEntry(id, "Rotation", p.Rotation, func(v float64) editor.Patch {
			return editor.Patch{Rotation: editor.Float(v)}
		})
		ps.addOpacitySlider(id, p.Opacity)
	case *editor.FrameProps:
		ps.addStyleSelect(id, p.Style)
		ps.addFloatEntry(id, "Border width", p.BorderWidth, func(v float64) editor.Patch {
			return editor.Patch{BorderWidth: editor.Float(v)}
		})
		ps.addTextEntry(id, "Color", p.Color, func(s string) editor.Patch {
			return editor.Patch{Color: editor.Str(s)}
		})
		ps.addOpacitySlider(id, p.Opacity)
	case *editor.CollageProps:
		ps.addIntEntry(id, "Rows", p.Rows, func(v int) editor.Patch {
			return editor.Patch{Rows: editor.Int(v)}
		})
		ps.addIntEntry(id, "Cols", p.Cols, func(v int) editor.Patch {
			return editor.Patch{Cols: editor.Int(v)}
		})
		ps.addFloatEntry(id, "Gap", p.Gap, func(v float64) editor.Patch {
			return editor.Patch{Gap: editor.Float(v)}
		})
		ps.addTextEntry(id, "Background", p.Background, func(s string) editor.Patch {
			return editor.Patch{Background: editor.Str(s)}
		})
		ps.addOpacitySlider(id, p.Opacity)
	}
}

func (ps *PropertySheet) apply(id string, patch editor.Patch) {
	ps.engine.UpdateLayer(id, patch)
	ps.engine.Commit()
}

func (ps *PropertySheet) addTextEntry(id, label, value string, patch func(string) editor.Patch) {
	entry := widget.NewEntry()
	entry.SetText(value)
	entry.OnSubmitted = func(s string) {
		ps.apply(id, patch(s))
	}
	ps.addRow(label, entry)
}

func (ps *PropertySheet) addFloatEntry(id, label string, value float64, patch func(float64) editor.Patch) {
	entry := widget.NewEntry()
	entry.SetText(strconv.FormatFloat(value, 'f', -1, 64))
	entry.OnSubmitted = func(s string) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			entry.SetText(strconv.FormatFloat(value, 'f', -1, 64))
			return
		}
		ps.apply(id, patch(v))
	}
	ps.addRow(label, entry)
}

func (ps *PropertySheet) addIntEntry(id, label string, value int, patch func(int) editor.Patch) {
	entry := widget.NewEntry()
	entry.SetText(strconv.Itoa(value))
	entry.OnSubmitted = func(s string) {
		v, err := strconv.Atoi(s)
		if err != nil {
			entry.SetText(strconv.Itoa(value))
			return
		}
		ps.apply(id, patch(v))
	}
	ps.addRow(label, entry)
}

// addOpacitySlider previews opacity changes live and commits once when the
// drag ends.
func (ps *PropertySheet) addOpacitySlider(id string, value float64) {
	slider := widget.NewSlider(0, 1)
	slider.Step = 0.01
	slider.Value = value
	slider.OnChanged = func(v float64) {
		ps.engine.UpdateLayer(id, editor.Patch{Opacity: editor.Float(v)})
	}
	slider.OnChangeEnded = func(v float64) {
		ps.engine.UpdateLayer(id, editor.Patch{Opacity: editor.Float(v)})
		ps.engine.Commit()
	}
	ps.addRow("Opacity", slider)
}

func (ps *PropertySheet) addStyleSelect(id, value string) {
	sel := widget.NewSelect([]string{editor.FrameSolid, editor.FrameDashed}, func(s string) {
		if s != value {
			ps.apply(id, editor.Patch{Style: editor.Str(s)})
		}
	})
	// Assign directly so the initial value does not fire the callback.
	sel.Selected = value
	ps.addRow("Style", sel)
}

func (ps *PropertySheet) addRow(label string, control fyne.CanvasObject) {
	ps.content.Add(container.NewBorder(nil, nil, widget.NewLabel(label), nil, control))
}
