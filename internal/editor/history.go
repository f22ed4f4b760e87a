package editor

import "time"

// historyLimit bounds how many snapshots are retained. When full, the oldest
// snapshot is evicted; very old undo states become unreachable, a deliberate
// bounded-memory trade-off.
const historyLimit = 50

// Snapshot is an immutable deep copy of the layer stack at one point in
// time. It never aliases live layers.
type Snapshot struct {
	Layers []*Layer
	Taken  time.Time
}

// History is a linear, bounded undo/redo log of layer-set snapshots.
type History struct {
	snapshots []Snapshot
	index     int // cursor into snapshots, -1 when empty
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{index: -1}
}

// Capture appends a deep copy of layers as the new current snapshot. If the
// cursor is not at the end (a prior undo happened), the redoable tail is
// discarded first: redo history is lost once an edit diverges. At capacity
// the oldest snapshot is evicted and the cursor stays on the newest entry.
func (h *History) Capture(layers []*Layer) {
	if h.index < len(h.snapshots)-1 {
		h.snapshots = h.snapshots[:h.index+1]
	}
	h.snapshots = append(h.snapshots, Snapshot{
		Layers: cloneLayers(layers),
		Taken:  time.Now(),
	})
	if len(h.snapshots) > historyLimit {
		h.snapshots = h.snapshots[1:]
	} else {
		h.index++
	}
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool {
	return h.index < len(h.snapshots)-1
}

// Undo moves the cursor back one snapshot and returns a deep copy of it.
// Returns nil without moving when undo is unavailable.
func (h *History) Undo() []*Layer {
	if !h.CanUndo() {
		return nil
	}
	h.index--
	return cloneLayers(h.snapshots[h.index].Layers)
}

// Redo moves the cursor forward one snapshot and returns a deep copy of it.
// Returns nil without moving when redo is unavailable.
func (h *History) Redo() []*Layer {
	if !h.CanRedo() {
		return nil
	}
	h.index++
	return cloneLayers(h.snapshots[h.index].Layers)
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Index returns the cursor position, -1 when empty.
func (h *History) Index() int {
	return h.index
}

func cloneLayers(layers []*Layer) []*Layer {
	out := make([]*Layer, len(layers))
	for i, l := range layers {
		out[i] = l.Clone()
	}
	return out
}
