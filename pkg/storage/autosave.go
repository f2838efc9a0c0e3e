package storage

import (
	"log"
	"sync"
	"time"

	"github.com/slatecanvas/slate/pkg/board"
)

// AutosaveDelay is how long the autosaver waits after the last store
// mutation before flushing to disk.
const AutosaveDelay = 750 * time.Millisecond

// Autosaver watches a board store and writes its contents to the board
// repository after a quiet period. Saves are best effort: a failed flush
// is logged and retried on the next mutation, never surfaced to the UI.
//
// Mark must run on the store's goroutine; it snapshots the blocks there
// so the timer goroutine never touches the store itself.
type Autosaver struct {
	repo    *BoardRepo
	store   *board.Store
	boardID string
	delay   time.Duration

	mu      sync.Mutex
	pending []board.Block
	timer   *time.Timer
	closed  bool
}

// NewAutosaver wires an autosaver to the store. The caller must
// subscribe it: store.Subscribe(a.Mark).
func NewAutosaver(repo *BoardRepo, store *board.Store, boardID string) *Autosaver {
	return &Autosaver{
		repo:    repo,
		store:   store,
		boardID: boardID,
		delay:   AutosaveDelay,
	}
}

// Mark snapshots the store and (re)starts the debounce timer.
func (a *Autosaver) Mark() {
	snapshot := a.store.All()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = snapshot
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.flush)
}

// Close cancels any pending timer and flushes the last snapshot.
// Call it from the store's goroutine during shutdown.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.mu.Unlock()
	return a.repo.ReplaceBlocks(a.boardID, a.store.All())
}

func (a *Autosaver) flush() {
	a.mu.Lock()
	snapshot := a.pending
	a.pending = nil
	closed := a.closed
	a.mu.Unlock()
	if closed || snapshot == nil {
		return
	}
	if err := a.repo.ReplaceBlocks(a.boardID, snapshot); err != nil {
		log.Printf("autosave: %v", err)
	}
}
