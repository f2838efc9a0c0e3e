package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/slatecanvas/slate/pkg/board"
	"github.com/slatecanvas/slate/pkg/geom"
)

func newStoreWithBlocks(t *testing.T, n int) (*board.Store, []board.Block) {
	t.Helper()
	st := board.NewStore()
	blocks := make([]board.Block, n)
	for i := range blocks {
		blocks[i] = board.NewTextBlock(float64(i)*100, 0, fmt.Sprintf("block %d", i))
		if err := st.Create(blocks[i]); err != nil {
			t.Fatalf("seed block: %v", err)
		}
	}
	return st, blocks
}

func snapshot(st *board.Store) map[string]board.Block {
	out := make(map[string]board.Block, st.Len())
	for _, b := range st.All() {
		out[b.ID] = b
	}
	return out
}

func sameState(a, b map[string]board.Block) bool {
	if len(a) != len(b) {
		return false
	}
	for id, blk := range a {
		if b[id] != blk {
			return false
		}
	}
	return true
}

func TestUndoRedoRoundTrip(t *testing.T) {
	st, blocks := newStoreWithBlocks(t, 2)
	before := snapshot(st)
	h := New()

	extra := board.NewTextBlock(500, 500, "extra")
	cmds := []Command{
		&Create{Block: extra},
		&Move{
			IDs: []string{blocks[0].ID},
			Old: []geom.Point{blocks[0].Position()},
			New: []geom.Point{geom.Pt(250, 40)},
		},
		&Resize{
			ID:  blocks[1].ID,
			Old: blocks[1].Bounds(),
			New: geom.Rect(100, 0, 420, 180),
		},
		&UpdateContent{ID: blocks[0].ID, Old: "block 0", New: "edited", At: time.Now()},
		&Composite{Subs: []Command{
			&Create{Block: board.NewChatBlock(800, 0)},
			&Create{Block: board.NewChatBlock(800, 300)},
		}},
	}

	for _, cmd := range cmds {
		if err := h.Execute(st, cmd); err != nil {
			t.Fatalf("execute %s: %v", cmd.Name(), err)
		}
	}

	for i := 0; i < len(cmds); i++ {
		if err := h.Undo(st); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}

	if !sameState(before, snapshot(st)) {
		t.Fatal("store state differs after full undo")
	}
	if h.CanUndo() {
		t.Fatal("CanUndo after full undo")
	}
}

func TestMoveVanishedBlockLeavesStoreUntouched(t *testing.T) {
	st, blocks := newStoreWithBlocks(t, 2)
	h := New()

	// A delete can land while a drag is in flight; the gesture then emits
	// a move naming a block that no longer exists.
	st.Delete([]string{blocks[1].ID})
	before := snapshot(st)

	err := h.Execute(st, &Move{
		IDs: []string{blocks[0].ID, blocks[1].ID},
		Old: []geom.Point{blocks[0].Position(), blocks[1].Position()},
		New: []geom.Point{geom.Pt(500, 500), geom.Pt(600, 500)},
	})
	if err == nil {
		t.Fatal("expected error moving a vanished block")
	}
	if !sameState(before, snapshot(st)) {
		t.Fatal("failed move mutated the store")
	}
	if h.CanUndo() || h.Len() != 0 {
		t.Fatalf("failed move was recorded: len = %d", h.Len())
	}
}

func TestDeleteRevertRollsBackOnCollision(t *testing.T) {
	st, blocks := newStoreWithBlocks(t, 2)
	h := New()

	if err := h.Execute(st, NewDelete(st, []string{blocks[0].ID, blocks[1].ID})); err != nil {
		t.Fatalf("execute delete: %v", err)
	}
	// Reoccupy one of the ids so the revert collides partway through.
	if err := st.Create(blocks[1]); err != nil {
		t.Fatalf("reoccupy id: %v", err)
	}
	before := snapshot(st)

	if err := h.Undo(st); err == nil {
		t.Fatal("expected error restoring a colliding block")
	}
	if !sameState(before, snapshot(st)) {
		t.Fatal("failed revert left a partial restore behind")
	}
}

func TestCompositeUndoRedo(t *testing.T) {
	st, _ := newStoreWithBlocks(t, 1)
	h := New()

	subs := make([]Command, 3)
	ids := make([]string, 3)
	for i := range subs {
		b := board.NewTextBlock(float64(i)*50, 200, "dup")
		ids[i] = b.ID
		subs[i] = &Create{Block: b}
	}

	if err := h.Execute(st, &Composite{Subs: subs}); err != nil {
		t.Fatalf("execute composite: %v", err)
	}
	if h.Len() != 1 {
		t.Fatalf("composite produced %d entries, want 1", h.Len())
	}
	if st.Len() != 4 {
		t.Fatalf("store has %d blocks, want 4", st.Len())
	}

	if err := h.Undo(st); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if st.Len() != 1 {
		t.Fatalf("single undo left %d blocks, want 1", st.Len())
	}

	if err := h.Redo(st); err != nil {
		t.Fatalf("redo: %v", err)
	}
	for i, id := range ids {
		b, ok := st.Get(id)
		if !ok {
			t.Fatalf("block %d missing after redo", i)
		}
		if b.X != float64(i)*50 || b.Y != 200 {
			t.Fatalf("block %d restored at %v,%v", i, b.X, b.Y)
		}
	}
}

func TestContentMergeWithinWindow(t *testing.T) {
	st, blocks := newStoreWithBlocks(t, 1)
	h := New()
	id := blocks[0].ID
	base := time.Now()

	first := &UpdateContent{ID: id, Old: "block 0", New: "draft", At: base}
	second := &UpdateContent{ID: id, Old: "draft", New: "final", At: base.Add(400 * time.Millisecond)}

	if err := h.Execute(st, first); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := h.Execute(st, second); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if h.Len() != 1 {
		t.Fatalf("len = %d, want 1 merged entry", h.Len())
	}
	if err := h.Undo(st); err != nil {
		t.Fatalf("undo: %v", err)
	}
	b, _ := st.Get(id)
	if b.Content != "block 0" {
		t.Fatalf("undo restored %q, want content from before the first edit", b.Content)
	}
}

func TestContentMergeBeyondWindow(t *testing.T) {
	st, blocks := newStoreWithBlocks(t, 1)
	h := New()
	id := blocks[0].ID
	base := time.Now()

	if err := h.Execute(st, &UpdateContent{ID: id, Old: "block 0", New: "draft", At: base}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := h.Execute(st, &UpdateContent{ID: id, Old: "draft", New: "final", At: base.Add(MergeWindow + time.Millisecond)}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2 separate entries", h.Len())
	}
}

func TestContentMergeDifferentBlocks(t *testing.T) {
	st, blocks := newStoreWithBlocks(t, 2)
	h := New()
	base := time.Now()

	_ = h.Execute(st, &UpdateContent{ID: blocks[0].ID, Old: "block 0", New: "a", At: base})
	_ = h.Execute(st, &UpdateContent{ID: blocks[1].ID, Old: "block 1", New: "b", At: base.Add(time.Millisecond)})

	if h.Len() != 2 {
		t.Fatalf("updates on different blocks merged: len = %d", h.Len())
	}
}

func TestHistoryBoundEviction(t *testing.T) {
	st := board.NewStore()
	const maxSize = 5
	const extra = 3
	h := NewWithSize(maxSize)

	for i := 0; i < maxSize+extra; i++ {
		if err := h.Execute(st, &Create{Block: board.NewTextBlock(float64(i), 0, "")}); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
	}

	if h.Len() != maxSize {
		t.Fatalf("len = %d, want %d", h.Len(), maxSize)
	}

	undos := 0
	for h.CanUndo() {
		if err := h.Undo(st); err != nil {
			t.Fatalf("undo: %v", err)
		}
		undos++
	}
	if undos != maxSize {
		t.Fatalf("undid %d entries, want %d", undos, maxSize)
	}
	// The evicted creations remain applied; only the bounded tail reverted.
	if st.Len() != extra {
		t.Fatalf("store has %d blocks, want the %d unrecoverable ones", st.Len(), extra)
	}
}

func TestExecuteTruncatesRedoTail(t *testing.T) {
	st, blocks := newStoreWithBlocks(t, 1)
	h := New()
	id := blocks[0].ID

	_ = h.Execute(st, &Move{IDs: []string{id}, Old: []geom.Point{geom.Pt(0, 0)}, New: []geom.Point{geom.Pt(10, 0)}})
	_ = h.Execute(st, &Move{IDs: []string{id}, Old: []geom.Point{geom.Pt(10, 0)}, New: []geom.Point{geom.Pt(20, 0)}})
	_ = h.Undo(st)

	if !h.CanRedo() {
		t.Fatal("expected redo available")
	}
	_ = h.Execute(st, &Move{IDs: []string{id}, Old: []geom.Point{geom.Pt(10, 0)}, New: []geom.Point{geom.Pt(99, 0)}})
	if h.CanRedo() {
		t.Fatal("redo tail survived a new execute")
	}
	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2", h.Len())
	}
}

// reentrantCommand calls back into the history from its own Apply.
type reentrantCommand struct {
	h     *History
	st    *board.Store
	inner error
}

func (r *reentrantCommand) Apply(st *board.Store) error {
	r.inner = r.h.Execute(r.st, &Create{Block: board.NewTextBlock(0, 0, "nested")})
	return nil
}

func (r *reentrantCommand) Revert(st *board.Store) error { return nil }
func (r *reentrantCommand) Name() string                 { return "reentrant" }

func TestReentrantExecuteRejected(t *testing.T) {
	st := board.NewStore()
	h := New()

	cmd := &reentrantCommand{h: h, st: st}
	if err := h.Execute(st, cmd); err != nil {
		t.Fatalf("outer execute: %v", err)
	}
	if cmd.inner != ErrBusy {
		t.Fatalf("nested execute returned %v, want ErrBusy", cmd.inner)
	}
	if h.Len() != 1 {
		t.Fatalf("len = %d, nested command must not be recorded", h.Len())
	}
}

func TestAddWithoutExecute(t *testing.T) {
	st := board.NewStore()
	h := New()

	// Simulate an AI flow that already wrote to the store directly.
	b := board.NewTextBlock(50, 50, "generated")
	if err := st.Create(b); err != nil {
		t.Fatalf("create: %v", err)
	}
	h.AddWithoutExecute(&Create{Block: b})

	if !h.CanUndo() {
		t.Fatal("recorded command not undoable")
	}
	if err := h.Undo(st); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if st.Len() != 0 {
		t.Fatal("undo of recorded command did not remove block")
	}
}

func TestUndoEmptyIsNoop(t *testing.T) {
	st := board.NewStore()
	h := New()
	if err := h.Undo(st); err != nil {
		t.Fatalf("undo on empty history: %v", err)
	}
	if err := h.Redo(st); err != nil {
		t.Fatalf("redo on empty history: %v", err)
	}
}

func TestClear(t *testing.T) {
	st := board.NewStore()
	h := New()
	_ = h.Execute(st, &Create{Block: board.NewTextBlock(0, 0, "")})
	h.Clear()
	if h.CanUndo() || h.CanRedo() || h.Len() != 0 {
		t.Fatal("history not empty after Clear")
	}
}
