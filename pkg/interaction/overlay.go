package interaction

import (
	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
)

// OverlayPhase names the states of the optimistic-overlay machine.
type OverlayPhase int

const (
	// OverlayIdle: no gesture, render straight from the store.
	OverlayIdle OverlayPhase = iota
	// OverlayActive: a gesture is in flight, render overlay bounds for the
	// touched blocks.
	OverlayActive
	// OverlaySettling: the gesture committed a command; keep rendering the
	// overlay until the store reports matching values, so the block does not
	// snap back for a frame while the mutation propagates.
	OverlaySettling
)

// Overlay is the visual-only copy of block bounds shown during a gesture.
// The settle transition is driven by store observation, not timers: the
// canvas calls Reconcile from its store subscription, and the overlay clears
// itself once store and overlay agree within epsilon.
type Overlay struct {
	phase  OverlayPhase
	bounds map[string]geom.Bounds
}

// NewOverlay returns an idle overlay.
func NewOverlay() *Overlay {
	return &Overlay{bounds: make(map[string]geom.Bounds)}
}

// Phase returns the current machine state.
func (o *Overlay) Phase() OverlayPhase {
	return o.phase
}

// Begin enters the active phase, dropping any stale entries.
func (o *Overlay) Begin() {
	o.phase = OverlayActive
	clear(o.bounds)
}

// Set records the live bounds for one block.
func (o *Overlay) Set(id string, b geom.Bounds) {
	o.bounds[id] = b
}

// Get returns the overlay bounds for a block, if the overlay currently
// overrides it.
func (o *Overlay) Get(id string) (geom.Bounds, bool) {
	if o.phase == OverlayIdle {
		return geom.Bounds{}, false
	}
	b, ok := o.bounds[id]
	return b, ok
}

// Settle moves from active to settling after a command was emitted. The
// overlay keeps answering Get until Reconcile observes convergence.
func (o *Overlay) Settle() {
	if o.phase == OverlayActive {
		o.phase = OverlaySettling
	}
}

// Drop clears the overlay immediately, used when a gesture ends below the
// displacement threshold (nothing was committed, the store never moved).
func (o *Overlay) Drop() {
	o.phase = OverlayIdle
	clear(o.bounds)
}

// Reconcile compares overlay entries against the store and returns to idle
// once every overridden block matches within epsilon. Blocks that vanished
// from the store count as converged.
func (o *Overlay) Reconcile(st *board.Store) {
	if o.phase != OverlaySettling {
		return
	}
	for id, want := range o.bounds {
		b, ok := st.Get(id)
		if !ok {
			continue
		}
		if !b.Bounds().Near(want, geom.Eps) {
			return
		}
	}
	o.Drop()
}
