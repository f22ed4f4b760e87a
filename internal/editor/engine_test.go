package editor

import (
	"image"
	"reflect"
	"testing"

	"photomark/pkg/geometry"
)

func newTestEngine() *Engine {
	e := NewEngine()
	e.SetImage(BaseImage{Src: "test.png"}, 800, 600)
	return e
}

func TestSetZoomClamps(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below minimum", 0.05, 0.1},
		{"above maximum", 10, 5},
		{"in range", 2, 2},
		{"at minimum", 0.1, 0.1},
		{"at maximum", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			e.SetZoom(tt.in)
			if got := e.Zoom(); got != tt.want {
				t.Errorf("SetZoom(%v): zoom = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnchorResolve(t *testing.T) {
	canvas := geometry.Sz(800, 600)
	tests := []struct {
		anchor Anchor
		want   geometry.Point
	}{
		{AnchorTopLeft, geometry.Pt(20, 20)},
		{AnchorTopCenter, geometry.Pt(400, 20)},
		{AnchorTopRight, geometry.Pt(780, 20)},
		{AnchorMiddleLeft, geometry.Pt(20, 300)},
		{AnchorMiddleCenter, geometry.Pt(400, 300)},
		{AnchorMiddleRight, geometry.Pt(780, 300)},
		{AnchorBottomLeft, geometry.Pt(20, 580)},
		{AnchorBottomCenter, geometry.Pt(400, 580)},
		{AnchorBottomRight, geometry.Pt(780, 580)},
		{Anchor("bogus"), geometry.Pt(780, 580)}, // falls back to bottomRight
	}
	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			if got := tt.anchor.Resolve(canvas); got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.anchor, got, tt.want)
			}
		})
	}
}

func TestAddTextWatermarkAnchors(t *testing.T) {
	tests := []struct {
		anchor Anchor
		wantX  float64
		wantY  float64
	}{
		{AnchorTopLeft, 20, 20},
		{AnchorBottomRight, 780, 580},
		{AnchorMiddleCenter, 400, 300},
	}
	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			e := newTestEngine()
			l := e.AddTextWatermark("x", tt.anchor, Patch{})
			p := l.Props.(*TextProps)
			if p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("position = (%v, %v), want (%v, %v)", p.X, p.Y, tt.wantX, tt.wantY)
			}
			if p.Text != "x" {
				t.Errorf("text = %q, want %q", p.Text, "x")
			}
		})
	}
}

func TestAddTextWatermarkOverridesWin(t *testing.T) {
	e := newTestEngine()
	l := e.AddTextWatermark("x", AnchorTopLeft, Patch{X: Float(123)})
	p := l.Props.(*TextProps)
	if p.X != 123 {
		t.Errorf("override X = %v, want 123", p.X)
	}
	if p.Y != 20 {
		t.Errorf("anchor Y = %v, want 20", p.Y)
	}
}

func TestMoveLayer(t *testing.T) {
	e := newTestEngine()
	first := e.AddTextWatermark("one", AnchorTopLeft, Patch{})
	second := e.AddTextWatermark("two", AnchorTopLeft, Patch{})

	e.MoveLayer(first.ID, MoveUp)
	if got := names(e.Layers()); !reflect.DeepEqual(got, []string{"Text 2", "Text 1"}) {
		t.Fatalf("after MoveUp: %v, want [Text 2 Text 1]", got)
	}

	// First layer (now second.ID at index 0) cannot move further down.
	before := names(e.Layers())
	e.MoveLayer(second.ID, MoveDown)
	if got := names(e.Layers()); !reflect.DeepEqual(got, before) {
		t.Fatalf("MoveDown at back bound must be a no-op, got %v", got)
	}

	e.MoveLayer("no-such-id", MoveUp)
	if got := names(e.Layers()); !reflect.DeepEqual(got, before) {
		t.Fatalf("moving unknown id must be a no-op, got %v", got)
	}
}

func TestDeleteScenario(t *testing.T) {
	e := NewEngine()
	e.SetImage(BaseImage{Src: "img.png"}, 800, 600)
	frame := e.AddFrame(Patch{BorderWidth: Float(20)})
	e.DeleteLayer(frame.ID)

	if len(e.Layers()) != 0 {
		t.Fatalf("layers = %d, want 0", len(e.Layers()))
	}
	if got := e.history.Len(); got != 3 {
		t.Fatalf("history entries = %d, want 3", got)
	}
	if !e.CanUndo() {
		t.Fatal("CanUndo = false, want true")
	}
	if e.CanRedo() {
		t.Fatal("CanRedo = true, want false")
	}
}

func TestActiveLayerInvariant(t *testing.T) {
	e := newTestEngine()
	check := func(step string) {
		t.Helper()
		id := e.ActiveLayerID()
		if id == "" {
			return
		}
		if e.Layer(id) == nil {
			t.Fatalf("%s: active id %q does not refer to an existing layer", step, id)
		}
	}

	a := e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	check("add a")
	b := e.AddFrame(Patch{})
	check("add b")
	e.UpdateLayer(a.ID, Patch{X: Float(5)})
	check("update a")
	e.DeleteLayer(b.ID)
	check("delete active b")
	e.DeleteLayer(a.ID)
	check("delete last layer")
	if e.ActiveLayerID() != "" {
		t.Fatal("active id must clear when the layer set empties")
	}
}

func TestDeleteActiveFallsBackToFirst(t *testing.T) {
	e := newTestEngine()
	first := e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	second := e.AddFrame(Patch{})
	e.SetActiveLayer(second.ID)

	e.DeleteLayer(second.ID)
	if got := e.ActiveLayerID(); got != first.ID {
		t.Fatalf("active after delete = %q, want first layer %q", got, first.ID)
	}
}

func TestAutoNaming(t *testing.T) {
	e := newTestEngine()
	t1 := e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	t2 := e.AddTextWatermark("b", AnchorTopLeft, Patch{})
	f1 := e.AddFrame(Patch{})
	if t1.Name != "Text 1" || t2.Name != "Text 2" || f1.Name != "Frame 1" {
		t.Fatalf("names = %q, %q, %q", t1.Name, t2.Name, f1.Name)
	}

	// Numbers count existing layers of the kind; deletion does not renumber.
	e.DeleteLayer(t1.ID)
	t3 := e.AddTextWatermark("c", AnchorTopLeft, Patch{})
	if t3.Name != "Text 2" {
		t.Fatalf("name after delete = %q, want %q", t3.Name, "Text 2")
	}
}

func TestUpdateLayerDoesNotCapture(t *testing.T) {
	e := newTestEngine()
	l := e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	before := e.history.Len()

	e.UpdateLayer(l.ID, Patch{X: Float(1)})
	e.UpdateLayer(l.ID, Patch{X: Float(2)})
	e.UpdateLayer(l.ID, Patch{X: Float(3)})
	if got := e.history.Len(); got != before {
		t.Fatalf("history grew to %d during interactive updates, want %d", got, before)
	}

	e.Commit()
	if got := e.history.Len(); got != before+1 {
		t.Fatalf("history after commit = %d, want %d", got, before+1)
	}
}

func TestUpdateLayerPreservesUnspecifiedFields(t *testing.T) {
	e := newTestEngine()
	l := e.AddTextWatermark("hello", AnchorMiddleCenter, Patch{})

	e.UpdateLayer(l.ID, Patch{X: Float(42)})
	p := e.Layer(l.ID).Props.(*TextProps)
	if p.X != 42 {
		t.Errorf("X = %v, want 42", p.X)
	}
	if p.Text != "hello" || p.FontSize != 24 || p.Color != "#000000" || p.Opacity != 0.8 {
		t.Errorf("unspecified fields changed: %+v", p)
	}
}

func TestUpdateLayerUnknownIDNoop(t *testing.T) {
	e := newTestEngine()
	e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	before := e.Layers()

	e.UpdateLayer("stale-id", Patch{X: Float(99)})
	if !reflect.DeepEqual(names(before), names(e.Layers())) {
		t.Fatal("updating an unknown id must be a no-op")
	}
}

func TestUndoRedoRestoresLayers(t *testing.T) {
	e := newTestEngine()
	e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	e.AddFrame(Patch{BorderWidth: Float(12)})

	before := cloneLayers(e.Layers())
	e.Undo()
	if len(e.Layers()) != 1 {
		t.Fatalf("after undo: %d layers, want 1", len(e.Layers()))
	}
	e.Redo()

	after := e.Layers()
	if len(after) != len(before) {
		t.Fatalf("after redo: %d layers, want %d", len(after), len(before))
	}
	for i := range before {
		if !reflect.DeepEqual(before[i], after[i]) {
			t.Fatalf("layer %d differs after undo+redo:\n got %+v\nwant %+v", i, after[i], before[i])
		}
	}
}

func TestUndoClearsSelection(t *testing.T) {
	e := newTestEngine()
	e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	e.AddFrame(Patch{})
	if e.ActiveLayerID() == "" {
		t.Fatal("add must select the new layer")
	}

	e.Undo()
	if got := e.ActiveLayerID(); got != "" {
		t.Fatalf("selection after undo = %q, want cleared", got)
	}
}

func TestSetActiveLayerUnknownIDNoop(t *testing.T) {
	e := newTestEngine()
	l := e.AddTextWatermark("a", AnchorTopLeft, Patch{})

	e.SetActiveLayer("no-such-id")
	if got := e.ActiveLayerID(); got != l.ID {
		t.Fatalf("active = %q, want %q (unknown id must not clear selection)", got, l.ID)
	}

	e.SetActiveLayer("")
	if got := e.ActiveLayerID(); got != "" {
		t.Fatalf("active = %q, want cleared", got)
	}
}

func TestSetImageResetsSession(t *testing.T) {
	e := newTestEngine()
	e.AddTextWatermark("a", AnchorTopLeft, Patch{})
	e.AddFrame(Patch{})
	e.SetZoom(3)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	e.SetImage(BaseImage{Src: "new.png", Data: img}, 1024, 768)

	if len(e.Layers()) != 0 {
		t.Fatal("loading a new image must discard layers")
	}
	if e.ActiveLayerID() != "" {
		t.Fatal("loading a new image must clear selection")
	}
	if got := e.history.Len(); got != 1 {
		t.Fatalf("history after SetImage = %d entries, want 1 (the initial capture)", got)
	}
	if e.CanUndo() {
		t.Fatal("nothing to undo right after SetImage")
	}
	if got := e.CanvasSize(); got != geometry.Sz(1024, 768) {
		t.Fatalf("canvas = %v, want 1024×768", got)
	}
	if got := e.OriginalSize(); got != geometry.Sz(1024, 768) {
		t.Fatalf("original size = %v, want 1024×768", got)
	}
}

func TestClearResetsToNoImageState(t *testing.T) {
	e := newTestEngine()
	e.AddCollage(Patch{})
	e.SetZoom(2)

	e.Clear()
	if e.Image() != nil {
		t.Fatal("image must be absent after clear")
	}
	if len(e.Layers()) != 0 || e.ActiveLayerID() != "" {
		t.Fatal("layers and selection must be empty after clear")
	}
	if got := e.CanvasSize(); got != geometry.Sz(800, 600) {
		t.Fatalf("canvas = %v, want default 800×600", got)
	}
	if e.Zoom() != 1.0 {
		t.Fatalf("zoom = %v, want 1.0", e.Zoom())
	}
	if e.CanUndo() || e.CanRedo() {
		t.Fatal("history must be empty after clear")
	}
}

func TestToggleLayerVisibility(t *testing.T) {
	e := newTestEngine()
	l := e.AddFrame(Patch{})
	before := e.history.Len()

	e.ToggleLayerVisibility(l.ID)
	if e.Layer(l.ID).Visible {
		t.Fatal("layer should be hidden after toggle")
	}
	if got := e.history.Len(); got != before+1 {
		t.Fatalf("toggle must capture history: len = %d, want %d", got, before+1)
	}

	e.ToggleLayerVisibility("no-such-id")
	if got := e.history.Len(); got != before+1 {
		t.Fatal("toggling an unknown id must be a no-op")
	}
}

func TestLoadFromTemplateClonesInput(t *testing.T) {
	e := newTestEngine()
	incoming := stackOf("tpl a", "tpl b")
	e.LoadFromTemplate(incoming)

	if got := names(e.Layers()); !reflect.DeepEqual(got, []string{"tpl a", "tpl b"}) {
		t.Fatalf("layers = %v", got)
	}
	if got := e.ActiveLayerID(); got != e.Layers()[0].ID {
		t.Fatalf("active = %q, want the first layer", got)
	}

	// The engine must not alias the caller's layers.
	incoming[0].Props.(*TextProps).Text = "scribbled"
	if got := e.Layers()[0].Props.(*TextProps).Text; got == "scribbled" {
		t.Fatal("engine layers alias the template input")
	}
}

func TestEngineEvents(t *testing.T) {
	e := newTestEngine()
	var layerEvents, selectionEvents int
	e.On(EventLayersChanged, func(interface{}) { layerEvents++ })
	e.On(EventSelectionChanged, func(interface{}) { selectionEvents++ })

	l := e.AddFrame(Patch{})
	if layerEvents != 1 || selectionEvents != 1 {
		t.Fatalf("after add: layers=%d selection=%d, want 1 and 1", layerEvents, selectionEvents)
	}

	e.UpdateLayer(l.ID, Patch{BorderWidth: Float(5)})
	if layerEvents != 2 {
		t.Fatalf("update must notify layer observers, got %d", layerEvents)
	}

	e.SetActiveLayer("")
	if selectionEvents != 2 {
		t.Fatalf("selection change must notify, got %d", selectionEvents)
	}
}
