// Package render keeps an external retained-mode rendering surface in sync
// with the engine's layer stack. The engine knows nothing about the surface;
// the reconciler subscribes to engine events, diffs the layer set against
// the surface's object graph, and forwards user gestures from the surface
// back into engine operations.
package render

import (
	"sync"

	"photomark/internal/editor"
	"photomark/pkg/geometry"
)

// Handle is an opaque, comparable token a Surface issues for one logical
// layer. A surface may materialize several primitives behind a single handle
// (a collage does); removal and selection always operate on the handle.
type Handle interface{}

// Surface is the retained-mode scene graph being driven. Update must mutate
// the existing render object in place, never destroy and recreate it, so
// surface-side identity (selection handles, caches) survives property edits.
// Layer order in Restack is back-to-front.
type Surface interface {
	Create(l *editor.Layer) Handle
	Update(h Handle, l *editor.Layer)
	Remove(h Handle)
	Restack(handles []Handle)
}

// Reconciler owns the bidirectional id↔handle association and the diffing
// loop. Engine notifications may arrive from any goroutine (asset decodes
// complete off the event loop), so the maps and coalescing flags are
// mutex-guarded; the reconciling flag guarantees at most one reconcile pass
// runs at a time, and the lock is never held across Surface calls, so a
// surface may call back into the reconciler mid-pass.
type Reconciler struct {
	engine  *editor.Engine
	surface Surface

	mu       sync.Mutex
	byID     map[string]Handle
	byHandle map[Handle]string

	reconciling bool
	pending     bool
}

// New wires a reconciler to the engine's layer notifications and performs an
// initial sync.
func New(engine *editor.Engine, surface Surface) *Reconciler {
	r := &Reconciler{
		engine:   engine,
		surface:  surface,
		byID:     make(map[string]Handle),
		byHandle: make(map[Handle]string),
	}
	engine.On(editor.EventLayersChanged, func(interface{}) {
		r.Sync()
	})
	r.Sync()
	return r
}

// Sync reconciles the surface with the current layer stack. Notifications
// that arrive while a reconcile pass is running are coalesced: only the
// latest state is applied, stale intermediates are skipped entirely.
func (r *Reconciler) Sync() {
	r.mu.Lock()
	if r.reconciling {
		r.pending = true
		r.mu.Unlock()
		return
	}
	r.reconciling = true
	r.mu.Unlock()

	for {
		r.mu.Lock()
		r.pending = false
		r.mu.Unlock()

		r.reconcile(r.engine.Layers())

		r.mu.Lock()
		if !r.pending {
			r.reconciling = false
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}

func (r *Reconciler) reconcile(layers []*editor.Layer) {
	seen := make(map[string]bool, len(layers))
	order := make([]Handle, 0, len(layers))

	for _, l := range layers {
		r.mu.Lock()
		h, ok := r.byID[l.ID]
		r.mu.Unlock()
		if !ok {
			h = r.surface.Create(l)
			r.mu.Lock()
			r.byID[l.ID] = h
			r.byHandle[h] = l.ID
			r.mu.Unlock()
		} else {
			r.surface.Update(h, l)
		}
		seen[l.ID] = true
		order = append(order, h)
	}

	r.mu.Lock()
	var stale []Handle
	for id, h := range r.byID {
		if seen[id] {
			continue
		}
		stale = append(stale, h)
		delete(r.byID, id)
		delete(r.byHandle, h)
	}
	r.mu.Unlock()

	for _, h := range stale {
		r.surface.Remove(h)
	}
	r.surface.Restack(order)
}

// LayerID resolves a surface handle back to its layer id.
func (r *Reconciler) LayerID(h Handle) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byHandle[h]
	return id, ok
}

// HandleFor returns the surface handle for a layer id.
func (r *Reconciler) HandleFor(id string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	return h, ok
}

// SelectHandle reports a user-initiated selection of a render object. The
// handle is resolved to its layer id and forwarded to the engine; handles
// from already-removed objects are dropped.
func (r *Reconciler) SelectHandle(h Handle) {
	if id, ok := r.LayerID(h); ok {
		r.engine.SetActiveLayer(id)
	}
}

// ClearSelection reports a tap on empty surface space.
func (r *Reconciler) ClearSelection() {
	r.engine.SetActiveLayer("")
}

// CommitTransform reports a finished user move/resize/rotate gesture for a
// render object. This is the only path by which the renderer writes back
// into engine state; it patches the layer and commits one history entry.
func (r *Reconciler) CommitTransform(h Handle, bounds geometry.Rect, rotation float64) {
	id, ok := r.LayerID(h)
	if !ok {
		return
	}
	r.engine.UpdateLayer(id, editor.Patch{
		X:        editor.Float(bounds.X),
		Y:        editor.Float(bounds.Y),
		Width:    editor.Float(bounds.Width),
		Height:   editor.Float(bounds.Height),
		Rotation: editor.Float(rotation),
	})
	r.engine.Commit()
}
