package history

import (
	"errors"

	"github.com/slatecanvas/slate/pkg/board"
)

// DefaultMaxSize bounds the history log; the oldest entry is evicted once
// the bound is exceeded.
const DefaultMaxSize = 50

// ErrBusy is returned when Execute, Undo, or Redo is called while another
// command is still applying. UI call sites drop it (the attempt becomes a
// silent no-op); tests assert on it.
var ErrBusy = errors.New("history: command already executing")

// History is a linear, single-branch undo/redo log for one board session.
// It lives in memory only and is cleared on board switch.
//
// cursor indexes the last applied entry; -1 means empty or fully undone.
type History struct {
	entries   []Command
	cursor    int
	maxSize   int
	executing bool
}

// New returns an empty history with the default bound.
func New() *History {
	return NewWithSize(DefaultMaxSize)
}

// NewWithSize returns an empty history bounded to maxSize entries.
func NewWithSize(maxSize int) *History {
	if maxSize < 1 {
		maxSize = 1
	}
	return &History{cursor: -1, maxSize: maxSize}
}

// Len returns the number of entries currently in the log.
func (h *History) Len() int {
	return len(h.entries)
}

// CanUndo reports whether an entry is available to undo.
func (h *History) CanUndo() bool {
	return h.cursor >= 0
}

// CanRedo reports whether a previously undone entry can be reapplied.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Execute applies cmd against the store and records it. Any redo tail is
// truncated first; the command then either merges into the previous entry
// or appends as a new one, evicting the oldest entry past the bound.
func (h *History) Execute(st *board.Store, cmd Command) error {
	if h.executing {
		return ErrBusy
	}
	h.executing = true
	defer func() { h.executing = false }()

	if err := cmd.Apply(st); err != nil {
		return err
	}
	h.record(cmd, true)
	return nil
}

// AddWithoutExecute records a command whose effect already happened outside
// the command layer (e.g. an AI insertion), making it undoable without
// re-running it.
func (h *History) AddWithoutExecute(cmd Command) {
	h.record(cmd, false)
}

func (h *History) record(cmd Command, allowMerge bool) {
	// Executing a new command discards the redo branch.
	h.entries = h.entries[:h.cursor+1]

	if allowMerge && h.cursor >= 0 {
		if merged, ok := tryMerge(h.entries[h.cursor], cmd); ok {
			h.entries[h.cursor] = merged
			return
		}
	}

	h.entries = append(h.entries, cmd)
	h.cursor++

	if len(h.entries) > h.maxSize {
		h.entries = h.entries[1:]
		h.cursor--
	}
}

// Undo reverts the entry at the cursor. Calling with nothing to undo is a
// no-op.
func (h *History) Undo(st *board.Store) error {
	if h.executing {
		return ErrBusy
	}
	if h.cursor < 0 {
		return nil
	}
	h.executing = true
	defer func() { h.executing = false }()

	if err := h.entries[h.cursor].Revert(st); err != nil {
		return err
	}
	h.cursor--
	return nil
}

// Redo reapplies the entry just past the cursor. Calling with nothing to
// redo is a no-op.
func (h *History) Redo(st *board.Store) error {
	if h.executing {
		return ErrBusy
	}
	if h.cursor >= len(h.entries)-1 {
		return nil
	}
	h.executing = true
	defer func() { h.executing = false }()

	if err := h.entries[h.cursor+1].Apply(st); err != nil {
		return err
	}
	h.cursor++
	return nil
}

// Clear drops every entry, used when switching boards.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = -1
}
