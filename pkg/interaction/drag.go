package interaction

import (
	"math"

	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
	"github.com/slatecanvas/slate/pkg/history"
)

// dragState is the per-gesture bookkeeping shared by the single- and
// multi-selection drag engines.
type dragState struct {
	active     bool
	startWorld geom.Point
	ids        []string
	initial    map[string]geom.Point
	sizes      map[string]geom.Size
	local      map[string]geom.Point
	wasDragged bool
}

func (d *dragState) begin(p Pointer, blocks []board.Block, overlay *Overlay) bool {
	// Right/middle buttons belong to context menus and pan; a second touch
	// point means pinch.
	if p.Buttons != ButtonPrimary || p.Touches > 1 || len(blocks) == 0 {
		return false
	}
	d.active = true
	d.wasDragged = false
	d.startWorld = p.World
	d.ids = d.ids[:0]
	d.initial = make(map[string]geom.Point, len(blocks))
	d.sizes = make(map[string]geom.Size, len(blocks))
	d.local = make(map[string]geom.Point, len(blocks))
	for _, b := range blocks {
		d.ids = append(d.ids, b.ID)
		d.initial[b.ID] = b.Position()
		d.sizes[b.ID] = geom.Size{W: b.Width, H: b.Height}
		d.local[b.ID] = b.Position()
	}
	overlay.Begin()
	return true
}

func (d *dragState) update(p Pointer, overlay *Overlay) {
	if !d.active {
		return
	}
	delta := p.World.Sub(d.startWorld)
	if math.Abs(delta.X) > DragThreshold || math.Abs(delta.Y) > DragThreshold {
		d.wasDragged = true
	}
	for _, id := range d.ids {
		pos := d.initial[id].Add(delta)
		d.local[id] = pos
		size := d.sizes[id]
		overlay.Set(id, geom.Rect(pos.X, pos.Y, size.W, size.H))
	}
}

// end emits a move command when any block moved beyond the threshold on
// either axis; sub-threshold gestures are discarded as clicks.
func (d *dragState) end(overlay *Overlay) (*history.Move, bool) {
	if !d.active {
		return nil, false
	}
	d.active = false

	moved := false
	for _, id := range d.ids {
		dx := math.Abs(d.local[id].X - d.initial[id].X)
		dy := math.Abs(d.local[id].Y - d.initial[id].Y)
		if dx > DragThreshold || dy > DragThreshold {
			moved = true
			break
		}
	}
	if !moved {
		overlay.Drop()
		return nil, false
	}

	cmd := &history.Move{
		IDs: append([]string(nil), d.ids...),
		Old: make([]geom.Point, len(d.ids)),
		New: make([]geom.Point, len(d.ids)),
	}
	for i, id := range d.ids {
		cmd.Old[i] = d.initial[id]
		cmd.New[i] = d.local[id]
	}
	overlay.Settle()
	return cmd, true
}

func (d *dragState) cancel(overlay *Overlay) {
	if !d.active {
		return
	}
	d.active = false
	d.wasDragged = false
	overlay.Drop()
}

// Drag moves a single block. The caller uses it whenever the pressed block
// was not already part of the selection, so pressing a fresh block never
// drags an unrelated multi-selection along.
type Drag struct {
	state   dragState
	overlay *Overlay
	moves   Coalescer
}

// NewDrag returns an idle single-block drag engine.
func NewDrag() *Drag {
	return &Drag{overlay: NewOverlay()}
}

// Overlay exposes the engine's local-position overlay for rendering and
// store reconciliation.
func (d *Drag) Overlay() *Overlay {
	return d.overlay
}

// Active reports whether a gesture is in flight.
func (d *Drag) Active() bool {
	return d.state.active
}

// WasDragged reports whether the current or just-ended gesture moved at all,
// which the selection controller uses to suppress click semantics.
func (d *Drag) WasDragged() bool {
	return d.state.wasDragged
}

// Begin starts dragging one block. It rejects non-primary buttons and
// multi-touch.
func (d *Drag) Begin(p Pointer, block board.Block) bool {
	return d.state.begin(p, []board.Block{block}, d.overlay)
}

// Update buffers a pointer sample; the geometry is recomputed on Flush.
func (d *Drag) Update(p Pointer) {
	if d.state.active {
		d.moves.Offer(p)
	}
}

// Flush applies the newest buffered sample. Call once per animation frame.
func (d *Drag) Flush() {
	d.moves.Flush(func(p Pointer) { d.state.update(p, d.overlay) })
}

// End finishes the gesture, returning a move command when the displacement
// crossed the threshold.
func (d *Drag) End() (*history.Move, bool) {
	d.moves.Cancel()
	return d.state.end(d.overlay)
}

// Cancel aborts the gesture without committing, e.g. when a second finger
// lands and the interaction becomes a pinch.
func (d *Drag) Cancel() {
	d.moves.Cancel()
	d.state.cancel(d.overlay)
}

// MultiDrag moves every block of the current selection with one gesture.
type MultiDrag struct {
	state   dragState
	overlay *Overlay
	moves   Coalescer
}

// NewMultiDrag returns an idle multi-selection drag engine.
func NewMultiDrag() *MultiDrag {
	return &MultiDrag{overlay: NewOverlay()}
}

// Overlay exposes the engine's local-position overlay.
func (d *MultiDrag) Overlay() *Overlay {
	return d.overlay
}

// Active reports whether a gesture is in flight.
func (d *MultiDrag) Active() bool {
	return d.state.active
}

// WasDragged reports whether the current or just-ended gesture moved.
func (d *MultiDrag) WasDragged() bool {
	return d.state.wasDragged
}

// Begin snapshots every selected block's position and starts the gesture.
func (d *MultiDrag) Begin(p Pointer, blocks []board.Block) bool {
	return d.state.begin(p, blocks, d.overlay)
}

// Update buffers a pointer sample for the next Flush.
func (d *MultiDrag) Update(p Pointer) {
	if d.state.active {
		d.moves.Offer(p)
	}
}

// Flush applies the newest buffered sample.
func (d *MultiDrag) Flush() {
	d.moves.Flush(func(p Pointer) { d.state.update(p, d.overlay) })
}

// End finishes the gesture. The move command carries old and new positions
// for every dragged block.
func (d *MultiDrag) End() (*history.Move, bool) {
	d.moves.Cancel()
	return d.state.end(d.overlay)
}

// Cancel aborts without committing.
func (d *MultiDrag) Cancel() {
	d.moves.Cancel()
	d.state.cancel(d.overlay)
}
