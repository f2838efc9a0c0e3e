package board

import (
	"fmt"

	"github.com/slatecanvas/slate/pkg/geom"
)

// Store is the authoritative block mapping for one open board.
//
// Mutations apply synchronously: a read issued right after a write observes
// the new state. Every committed mutation notifies subscribers, which is how
// gesture overlays detect convergence and how the autosaver schedules writes.
//
// Store is confined to the UI event loop and is not goroutine safe.
type Store struct {
	blocks map[string]Block
	order  []string // insertion order, doubles as z-order

	subs []func()
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{blocks: make(map[string]Block)}
}

// Subscribe registers a change listener invoked after every committed
// mutation.
func (s *Store) Subscribe(fn func()) {
	s.subs = append(s.subs, fn)
}

// Get returns a copy of the block with the given id.
func (s *Store) Get(id string) (Block, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

// GetMany returns copies of the identified blocks, skipping unknown ids.
func (s *Store) GetMany(ids []string) []Block {
	out := make([]Block, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.blocks[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// All returns every block in z-order (oldest first).
func (s *Store) All() []Block {
	out := make([]Block, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.blocks[id])
	}
	return out
}

// Len returns the number of blocks.
func (s *Store) Len() int {
	return len(s.blocks)
}

// Create inserts a block. Ids are never reused within a board's lifetime;
// inserting an existing id is a programming error and is rejected.
func (s *Store) Create(b Block) error {
	if b.ID == "" {
		return fmt.Errorf("create block: empty id")
	}
	if _, exists := s.blocks[b.ID]; exists {
		return fmt.Errorf("create block: id %s already present", b.ID)
	}
	b.clampSize()
	s.blocks[b.ID] = b
	s.order = append(s.order, b.ID)
	s.notify()
	return nil
}

// Delete removes the identified blocks. Unknown ids are ignored so a batch
// delete is idempotent.
func (s *Store) Delete(ids []string) {
	changed := false
	for _, id := range ids {
		if _, ok := s.blocks[id]; !ok {
			continue
		}
		delete(s.blocks, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		changed = true
	}
	if changed {
		s.notify()
	}
}

// SetPosition moves a block to a new world position.
func (s *Store) SetPosition(id string, x, y float64) error {
	b, ok := s.blocks[id]
	if !ok {
		return fmt.Errorf("set position: unknown block %s", id)
	}
	b.X, b.Y = x, y
	s.blocks[id] = b
	s.notify()
	return nil
}

// SetBounds moves and resizes a block. The size is clamped to the type's
// minimums before committing.
func (s *Store) SetBounds(id string, bounds geom.Bounds) error {
	b, ok := s.blocks[id]
	if !ok {
		return fmt.Errorf("set bounds: unknown block %s", id)
	}
	b.X, b.Y = bounds.X, bounds.Y
	b.Width, b.Height = bounds.W, bounds.H
	b.clampSize()
	s.blocks[id] = b
	s.notify()
	return nil
}

// SetContent replaces the HTML payload of a text or chat block.
func (s *Store) SetContent(id, content string) error {
	b, ok := s.blocks[id]
	if !ok {
		return fmt.Errorf("set content: unknown block %s", id)
	}
	b.Content = content
	s.blocks[id] = b
	s.notify()
	return nil
}

// Replace swaps the full block set, preserving the given order. Used when
// loading a board from storage or restoring an import.
func (s *Store) Replace(blocks []Block) {
	s.blocks = make(map[string]Block, len(blocks))
	s.order = s.order[:0]
	for _, b := range blocks {
		b.clampSize()
		s.blocks[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	s.notify()
}

func (s *Store) notify() {
	for _, fn := range s.subs {
		fn()
	}
}
