package ui

import (
	"fmt"
	"sync"
	"time"
)

// StateSnapshot captures a copy of the state data for rendering without
// requiring the UI to hold locks while laying out widgets.
type StateSnapshot struct {
	BoardID   string
	BoardName string

	Status    string
	LastError error
	Busy      bool

	DarkMode       bool
	LogPaneVisible bool

	Logs []string

	LastUpdated time.Time
}

// AppState tracks mutable state shared between the Gio event loop and
// background goroutines (autosave, AI requests).
type AppState struct {
	mu sync.RWMutex

	boardID   string
	boardName string

	status    string
	lastError error
	busy      bool

	darkMode       bool
	logPaneVisible bool

	logs     []string
	logLimit int

	lastUpdated time.Time

	invalidate func()
}

// NewState returns a baseline AppState with safe defaults.
func NewState() *AppState {
	return &AppState{
		boardName:   "Untitled",
		status:      "Ready",
		logLimit:    200,
		lastUpdated: time.Now(),
	}
}

// OnChange registers the window invalidation hook called after every
// state mutation from a background goroutine.
func (s *AppState) OnChange(fn func()) {
	s.mu.Lock()
	s.invalidate = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the mutable state for rendering.
func (s *AppState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]string, len(s.logs))
	copy(logs, s.logs)

	return StateSnapshot{
		BoardID:        s.boardID,
		BoardName:      s.boardName,
		Status:         s.status,
		LastError:      s.lastError,
		Busy:           s.busy,
		DarkMode:       s.darkMode,
		LogPaneVisible: s.logPaneVisible,
		Logs:           logs,
		LastUpdated:    s.lastUpdated,
	}
}

// SetBoard records the open board.
func (s *AppState) SetBoard(id, name string) {
	s.mu.Lock()
	s.boardID = id
	s.boardName = name
	s.touch()
	s.mu.Unlock()
}

// BoardID returns the open board's id.
func (s *AppState) BoardID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boardID
}

// SetStatus updates the status bar text.
func (s *AppState) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.touch()
	s.mu.Unlock()
}

// SetBusy flags a background operation in flight.
func (s *AppState) SetBusy(busy bool) {
	s.mu.Lock()
	s.busy = busy
	s.touch()
	s.mu.Unlock()
}

// SetError records the last error and mirrors it in the status bar.
func (s *AppState) SetError(err error) {
	s.mu.Lock()
	s.lastError = err
	if err != nil {
		s.status = err.Error()
	}
	s.touch()
	s.mu.Unlock()
}

// SetDarkMode switches the theme.
func (s *AppState) SetDarkMode(dark bool) {
	s.mu.Lock()
	s.darkMode = dark
	s.touch()
	s.mu.Unlock()
}

// SetLogPaneVisible toggles the log pane.
func (s *AppState) SetLogPaneVisible(visible bool) {
	s.mu.Lock()
	s.logPaneVisible = visible
	s.touch()
	s.mu.Unlock()
}

// Logf appends a formatted line to the bounded log ring.
func (s *AppState) Logf(format string, args ...any) {
	s.mu.Lock()
	line := fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	s.logs = append(s.logs, line)
	if len(s.logs) > s.logLimit {
		s.logs = s.logs[len(s.logs)-s.logLimit:]
	}
	s.touch()
	s.mu.Unlock()
}

// touch must be called with the lock held.
func (s *AppState) touch() {
	s.lastUpdated = time.Now()
	if s.invalidate != nil {
		s.invalidate()
	}
}
