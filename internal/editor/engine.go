package editor

import (
	"fmt"
	"image"
	"sync"

	"photomark/pkg/geometry"
)

const (
	minZoom = 0.1
	maxZoom = 5.0

	defaultCanvasWidth  = 800
	defaultCanvasHeight = 600
)

// EventType identifies engine state-change events.
type EventType int

const (
	EventImageChanged EventType = iota
	EventLayersChanged
	EventSelectionChanged
	EventZoomChanged
	EventHistoryChanged
)

// EventListener is called when an event occurs. Listeners run synchronously
// on the caller's goroutine, after the engine has released its lock, so they
// may re-read engine state freely.
type EventListener func(data interface{})

// BaseImage is the session's base raster. Data may be nil when the caller
// supplied dimensions only (headless use); Src identifies the origin.
type BaseImage struct {
	Src  string
	Data image.Image
}

// MoveDirection selects a stacking-order move for MoveLayer.
type MoveDirection int

const (
	MoveUp   MoveDirection = iota // toward the front (higher index)
	MoveDown                      // toward the back (lower index)
)

// Engine is the single authority over one editing session: base image,
// canvas size, the ordered layer stack (back to front), selection, zoom, and
// the undo/redo history. Every mutation funnels through its operations so
// history stays consistent. Collaborators receive the instance explicitly;
// there is no package-level session.
type Engine struct {
	mu sync.RWMutex

	img          *BaseImage
	originalSize geometry.Size
	canvasSize   geometry.Size
	layers       []*Layer
	activeID     string // "" means no selection
	zoom         float64
	history      *History

	listeners map[EventType][]EventListener
}

// NewEngine creates an engine in the initial no-image state.
func NewEngine() *Engine {
	return &Engine{
		canvasSize: geometry.Sz(defaultCanvasWidth, defaultCanvasHeight),
		zoom:       1.0,
		history:    NewHistory(),
		listeners:  make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (e *Engine) On(event EventType, listener EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (e *Engine) Emit(event EventType, data interface{}) {
	e.mu.RLock()
	listeners := e.listeners[event]
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetImage loads a new base image, sizing both the original and canvas
// dimensions from it. All layers, the selection, and the history are
// discarded unconditionally, then one initial capture records the empty
// layer state so it remains reachable by undo.
func (e *Engine) SetImage(img BaseImage, width, height float64) {
	e.mu.Lock()
	e.img = &img
	e.originalSize = geometry.Sz(width, height)
	e.canvasSize = geometry.Sz(width, height)
	e.layers = nil
	e.activeID = ""
	e.history = NewHistory()
	e.history.Capture(e.layers)
	e.mu.Unlock()

	e.Emit(EventImageChanged, img.Src)
	e.Emit(EventLayersChanged, nil)
	e.Emit(EventSelectionChanged, "")
	e.Emit(EventHistoryChanged, nil)
}

// AddImageLayer appends a new image layer, selects it, and captures history.
func (e *Engine) AddImageLayer(overrides Patch) *Layer {
	e.mu.Lock()
	layer := NewLayer(KindImage, e.nextName(KindImage), e.canvasSize, overrides)
	e.appendLayer(layer)
	e.mu.Unlock()

	e.emitLayerAdded(layer)
	return layer
}

// AddTextWatermark appends a text layer positioned on the anchor grid,
// selects it, and captures history. Overrides win over the resolved anchor
// coordinate.
func (e *Engine) AddTextWatermark(text string, pos Anchor, overrides Patch) *Layer {
	e.mu.Lock()
	at := pos.Resolve(e.canvasSize)
	layer := NewLayer(KindText, e.nextName(KindText), e.canvasSize, Patch{
		Text: Str(text),
		X:    Float(at.X),
		Y:    Float(at.Y),
	})
	overrides.Apply(layer.Props)
	e.appendLayer(layer)
	e.mu.Unlock()

	e.emitLayerAdded(layer)
	return layer
}

// AddFrame appends a frame layer, selects it, and captures history.
func (e *Engine) AddFrame(overrides Patch) *Layer {
	e.mu.Lock()
	layer := NewLayer(KindFrame, e.nextName(KindFrame), e.canvasSize, overrides)
	e.appendLayer(layer)
	e.mu.Unlock()

	e.emitLayerAdded(layer)
	return layer
}

// AddCollage appends a collage layer, selects it, and captures history.
func (e *Engine) AddCollage(overrides Patch) *Layer {
	e.mu.Lock()
	layer := NewLayer(KindCollage, e.nextName(KindCollage), e.canvasSize, overrides)
	e.appendLayer(layer)
	e.mu.Unlock()

	e.emitLayerAdded(layer)
	return layer
}

// AddImageWatermark appends an image watermark layer with the given source,
// positioned on the anchor grid, selects it, and captures history.
func (e *Engine) AddImageWatermark(src string, pos Anchor, overrides Patch) *Layer {
	e.mu.Lock()
	at := pos.Resolve(e.canvasSize)
	layer := NewLayer(KindImageWatermark, e.nextName(KindImageWatermark), e.canvasSize, Patch{
		Src: Str(src),
		X:   Float(at.X),
		Y:   Float(at.Y),
	})
	overrides.Apply(layer.Props)
	e.appendLayer(layer)
	e.mu.Unlock()

	e.emitLayerAdded(layer)
	return layer
}

// UpdateLayer merges the patch into the matching layer's props in place.
// Unknown ids are a silent no-op: callers frequently act on stale ids during
// UI transitions. UpdateLayer never captures history itself — interactive
// callers patch freely during a gesture and call Commit once at the end.
func (e *Engine) UpdateLayer(id string, patch Patch) {
	e.mu.Lock()
	layer := e.findLayer(id)
	if layer == nil {
		e.mu.Unlock()
		return
	}
	patch.Apply(layer.Props)
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
}

// Commit captures the current layer state into history. It pairs with
// UpdateLayer: one commit per finished gesture, not one per intermediate
// slider value.
func (e *Engine) Commit() {
	e.mu.Lock()
	e.history.Capture(e.layers)
	e.mu.Unlock()

	e.Emit(EventHistoryChanged, nil)
}

// DeleteLayer removes the matching layer and captures history. If it was
// active, selection falls back to the first remaining layer, or none.
// Unknown ids are a silent no-op.
func (e *Engine) DeleteLayer(id string) {
	e.mu.Lock()
	idx := e.findLayerIndex(id)
	if idx < 0 {
		e.mu.Unlock()
		return
	}
	e.layers = append(e.layers[:idx], e.layers[idx+1:]...)
	selectionChanged := false
	if e.activeID == id {
		if len(e.layers) > 0 {
			e.activeID = e.layers[0].ID
		} else {
			e.activeID = ""
		}
		selectionChanged = true
	}
	active := e.activeID
	e.history.Capture(e.layers)
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
	if selectionChanged {
		e.Emit(EventSelectionChanged, active)
	}
	e.Emit(EventHistoryChanged, nil)
}

// ToggleLayerVisibility flips the matching layer's visibility and captures
// history. Unknown ids are a silent no-op.
func (e *Engine) ToggleLayerVisibility(id string) {
	e.mu.Lock()
	layer := e.findLayer(id)
	if layer == nil {
		e.mu.Unlock()
		return
	}
	layer.Visible = !layer.Visible
	e.history.Capture(e.layers)
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
	e.Emit(EventHistoryChanged, nil)
}

// MoveLayer swaps the matching layer with its stacking neighbor: up moves
// toward the front, down toward the back. Out-of-bounds moves and unknown
// ids are silent no-ops; history is captured only on a successful swap.
func (e *Engine) MoveLayer(id string, dir MoveDirection) {
	e.mu.Lock()
	idx := e.findLayerIndex(id)
	if idx < 0 {
		e.mu.Unlock()
		return
	}
	target := idx + 1
	if dir == MoveDown {
		target = idx - 1
	}
	if target < 0 || target >= len(e.layers) {
		e.mu.Unlock()
		return
	}
	e.layers[idx], e.layers[target] = e.layers[target], e.layers[idx]
	e.history.Capture(e.layers)
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
	e.Emit(EventHistoryChanged, nil)
}

// SetActiveLayer changes the selection. Pass "" to clear it. Selecting an id
// not in the layer set is a silent no-op, preserving the invariant that the
// active id always refers to an existing layer. Selection never touches
// history.
func (e *Engine) SetActiveLayer(id string) {
	e.mu.Lock()
	if id != "" && e.findLayer(id) == nil {
		e.mu.Unlock()
		return
	}
	e.activeID = id
	e.mu.Unlock()

	e.Emit(EventSelectionChanged, id)
}

// SetZoom clamps the zoom factor to [0.1, 5.0]. Pure view state, no history.
func (e *Engine) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	e.mu.Lock()
	e.zoom = zoom
	e.mu.Unlock()

	e.Emit(EventZoomChanged, zoom)
}

// Undo replaces the layer stack with the previous snapshot and clears the
// selection. Selection is deliberately not restored by undo. No-op when
// nothing is undoable.
func (e *Engine) Undo() {
	e.mu.Lock()
	layers := e.history.Undo()
	if layers == nil {
		e.mu.Unlock()
		return
	}
	e.layers = layers
	e.activeID = ""
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
	e.Emit(EventSelectionChanged, "")
	e.Emit(EventHistoryChanged, nil)
}

// Redo replaces the layer stack with the next snapshot and clears the
// selection. No-op when nothing is redoable.
func (e *Engine) Redo() {
	e.mu.Lock()
	layers := e.history.Redo()
	if layers == nil {
		e.mu.Unlock()
		return
	}
	e.layers = layers
	e.activeID = ""
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
	e.Emit(EventSelectionChanged, "")
	e.Emit(EventHistoryChanged, nil)
}

// Clear resets the session to the initial no-image state with the default
// 800×600 canvas.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.img = nil
	e.originalSize = geometry.Size{}
	e.canvasSize = geometry.Sz(defaultCanvasWidth, defaultCanvasHeight)
	e.layers = nil
	e.activeID = ""
	e.zoom = 1.0
	e.history = NewHistory()
	e.mu.Unlock()

	e.Emit(EventImageChanged, "")
	e.Emit(EventLayersChanged, nil)
	e.Emit(EventSelectionChanged, "")
	e.Emit(EventZoomChanged, 1.0)
	e.Emit(EventHistoryChanged, nil)
}

// LoadFromTemplate replaces the layer stack wholesale with the supplied
// layers (already validated by the template collaborator), selects the first
// one, and captures history once. The incoming layers are cloned so the
// template stays reusable.
func (e *Engine) LoadFromTemplate(layers []*Layer) {
	e.mu.Lock()
	e.layers = cloneLayers(layers)
	if len(e.layers) > 0 {
		e.activeID = e.layers[0].ID
	} else {
		e.activeID = ""
	}
	active := e.activeID
	e.history.Capture(e.layers)
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
	e.Emit(EventSelectionChanged, active)
	e.Emit(EventHistoryChanged, nil)
}

// SetCanvasSize resizes the canvas independently of the image. Used by the
// template collaborator, which owns canvas sizing on template load.
func (e *Engine) SetCanvasSize(width, height float64) {
	e.mu.Lock()
	e.canvasSize = geometry.Sz(width, height)
	e.mu.Unlock()

	e.Emit(EventLayersChanged, nil)
}

// Image returns the base image, or nil when none is loaded.
func (e *Engine) Image() *BaseImage {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.img
}

// OriginalSize returns the base image's natural dimensions.
func (e *Engine) OriginalSize() geometry.Size {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.originalSize
}

// CanvasSize returns the current canvas dimensions.
func (e *Engine) CanvasSize() geometry.Size {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.canvasSize
}

// Layers returns the layer stack in back-to-front order. The slice is a
// copy; the layers themselves are live and must not be mutated outside
// engine operations.
func (e *Engine) Layers() []*Layer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Layer, len(e.layers))
	copy(out, e.layers)
	return out
}

// Layer returns the layer with the given id, or nil.
func (e *Engine) Layer(id string) *Layer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.findLayer(id)
}

// ActiveLayerID returns the selected layer's id, or "" when none.
func (e *Engine) ActiveLayerID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeID
}

// ActiveLayer returns the selected layer, or nil when none.
func (e *Engine) ActiveLayer() *Layer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.activeID == "" {
		return nil
	}
	return e.findLayer(e.activeID)
}

// Zoom returns the current zoom factor.
func (e *Engine) Zoom() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.zoom
}

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanRedo()
}

// appendLayer adds the layer, selects it, and captures history.
// Caller holds the lock.
func (e *Engine) appendLayer(layer *Layer) {
	e.layers = append(e.layers, layer)
	e.activeID = layer.ID
	e.history.Capture(e.layers)
}

// nextName generates "<Label> <N>" where N counts existing layers of the
// kind plus one. Numbers are not compacted after deletions.
// Caller holds the lock.
func (e *Engine) nextName(kind Kind) string {
	n := 1
	for _, l := range e.layers {
		if l.Kind == kind {
			n++
		}
	}
	return fmt.Sprintf("%s %d", kind.Label(), n)
}

func (e *Engine) findLayer(id string) *Layer {
	for _, l := range e.layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (e *Engine) findLayerIndex(id string) int {
	for i, l := range e.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) emitLayerAdded(layer *Layer) {
	e.Emit(EventLayersChanged, nil)
	e.Emit(EventSelectionChanged, layer.ID)
	e.Emit(EventHistoryChanged, nil)
}
