// Package history implements the whiteboard's reversible command layer and
// its bounded linear undo/redo log.
//
// Commands capture their "before" data at construction time and receive the
// block store by explicit injection, so the layer is testable without any
// process-wide state and several boards can keep independent histories.
package history

import (
	"fmt"
	"time"

	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
)

// MergeWindow is the maximum spacing between two content updates that still
// coalesce into one history entry.
const MergeWindow = time.Second

// Command is one reversible mutation of a block store. Revert must restore
// exactly the state Apply observed; if the store was mutated by something
// else in between, the result is out of contract.
type Command interface {
	Apply(st *board.Store) error
	Revert(st *board.Store) error
	Name() string
}

// Create inserts one block.
type Create struct {
	Block board.Block
}

func (c *Create) Apply(st *board.Store) error {
	return st.Create(c.Block)
}

func (c *Create) Revert(st *board.Store) error {
	st.Delete([]string{c.Block.ID})
	return nil
}

func (c *Create) Name() string { return "create" }

// Delete removes a batch of blocks. The full block data is captured at
// construction so revert can recreate them; stored images referenced by
// deleted blocks are intentionally left alone.
type Delete struct {
	Blocks []board.Block
}

// NewDelete snapshots the identified blocks from the store. Unknown ids are
// dropped from the batch.
func NewDelete(st *board.Store, ids []string) *Delete {
	return &Delete{Blocks: st.GetMany(ids)}
}

func (d *Delete) Apply(st *board.Store) error {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.ID
	}
	st.Delete(ids)
	return nil
}

func (d *Delete) Revert(st *board.Store) error {
	for i, b := range d.Blocks {
		if err := st.Create(b); err != nil {
			// Remove the blocks already restored so the entry stays atomic.
			restored := make([]string, i)
			for j := 0; j < i; j++ {
				restored[j] = d.Blocks[j].ID
			}
			st.Delete(restored)
			return fmt.Errorf("restore deleted block: %w", err)
		}
	}
	return nil
}

func (d *Delete) Name() string { return "delete" }

// Move repositions one or more blocks, e.g. at the end of a drag gesture.
type Move struct {
	IDs []string
	Old []geom.Point
	New []geom.Point
}

func (m *Move) Apply(st *board.Store) error {
	for i, id := range m.IDs {
		if err := st.SetPosition(id, m.New[i].X, m.New[i].Y); err != nil {
			// A block can vanish mid-gesture, e.g. deleted while a drag is
			// in flight. Roll back the members already moved so a failed
			// apply leaves no unrecorded mutation behind.
			for j := i - 1; j >= 0; j-- {
				_ = st.SetPosition(m.IDs[j], m.Old[j].X, m.Old[j].Y)
			}
			return err
		}
	}
	return nil
}

func (m *Move) Revert(st *board.Store) error {
	for i, id := range m.IDs {
		if err := st.SetPosition(id, m.Old[i].X, m.Old[i].Y); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = st.SetPosition(m.IDs[j], m.New[j].X, m.New[j].Y)
			}
			return err
		}
	}
	return nil
}

func (m *Move) Name() string { return "move" }

// Resize replaces a block's bounds, e.g. at the end of a resize gesture.
type Resize struct {
	ID  string
	Old geom.Bounds
	New geom.Bounds
}

func (r *Resize) Apply(st *board.Store) error {
	return st.SetBounds(r.ID, r.New)
}

func (r *Resize) Revert(st *board.Store) error {
	return st.SetBounds(r.ID, r.Old)
}

func (r *Resize) Name() string { return "resize" }

// UpdateContent replaces the HTML payload of a text or chat block. Rapid
// successive updates to the same block merge into one entry.
type UpdateContent struct {
	ID  string
	Old string
	New string
	At  time.Time
}

func (u *UpdateContent) Apply(st *board.Store) error {
	return st.SetContent(u.ID, u.New)
}

func (u *UpdateContent) Revert(st *board.Store) error {
	return st.SetContent(u.ID, u.Old)
}

func (u *UpdateContent) Name() string { return "update-content" }

// Composite bundles sub-commands that apply in order and revert in reverse
// order as one atomic history entry, e.g. "duplicate N blocks". Composites
// never merge.
type Composite struct {
	Subs []Command
}

func (c *Composite) Apply(st *board.Store) error {
	for i, sub := range c.Subs {
		if err := sub.Apply(st); err != nil {
			// Roll back the members already applied so the entry stays atomic.
			for j := i - 1; j >= 0; j-- {
				_ = c.Subs[j].Revert(st)
			}
			return err
		}
	}
	return nil
}

func (c *Composite) Revert(st *board.Store) error {
	for i := len(c.Subs) - 1; i >= 0; i-- {
		if err := c.Subs[i].Revert(st); err != nil {
			return err
		}
	}
	return nil
}

func (c *Composite) Name() string { return "composite" }

// tryMerge coalesces next into prev when both are content updates on the
// same block and next landed within MergeWindow of prev. The merged entry
// keeps prev's before-state and next's after-state, so one undo restores the
// content from before the first edit.
func tryMerge(prev, next Command) (Command, bool) {
	p, ok := prev.(*UpdateContent)
	if !ok {
		return nil, false
	}
	n, ok := next.(*UpdateContent)
	if !ok {
		return nil, false
	}
	if p.ID != n.ID {
		return nil, false
	}
	if n.At.Sub(p.At) > MergeWindow || n.At.Before(p.At) {
		return nil, false
	}
	return &UpdateContent{ID: p.ID, Old: p.Old, New: n.New, At: n.At}, true
}
