package interaction

// ClickAction is the selection controller's verdict for a pointer release.
type ClickAction int

const (
	// ClickNone: the release ended a drag or resize; click semantics are
	// suppressed.
	ClickNone ClickAction = iota
	// ClickSelect: the block became (or stays) selected.
	ClickSelect
	// ClickEdit: the block was already selected when the press landed, so a
	// plain click enters edit mode.
	ClickEdit
)

// Selection tracks which blocks are selected and disambiguates clicks from
// gesture ends. The "was selected before this press" fact is captured
// synchronously at pointer down because by release time the selection may
// already have changed.
type Selection struct {
	selected map[string]struct{}

	pressID          string
	pressWasSelected bool
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{selected: make(map[string]struct{})}
}

// IsSelected reports whether the block is in the selection.
func (s *Selection) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// IDs returns the selected block ids in unspecified order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	return out
}

// Count returns the selection size.
func (s *Selection) Count() int {
	return len(s.selected)
}

// Clear empties the selection, e.g. on a background click.
func (s *Selection) Clear() {
	clear(s.selected)
}

// Set replaces the selection with exactly one block.
func (s *Selection) Set(id string) {
	clear(s.selected)
	s.selected[id] = struct{}{}
}

// Add grows the selection.
func (s *Selection) Add(id string) {
	s.selected[id] = struct{}{}
}

// Toggle flips one block's membership, used for shift-click.
func (s *Selection) Toggle(id string) {
	if s.IsSelected(id) {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
}

// OnPress records the press target and applies immediate selection rules:
// pressing an unselected block replaces the selection (or toggles it in
// additive mode) before any drag starts.
//
// It returns whether the block was selected before this press. The caller
// starts a multi-drag only in that case, so pressing a fresh block never
// drags an unrelated selection along.
func (s *Selection) OnPress(id string, additive bool) (wasSelected bool) {
	s.pressID = id
	s.pressWasSelected = s.IsSelected(id)
	if additive {
		s.Toggle(id)
	} else if !s.pressWasSelected {
		s.Set(id)
	}
	return s.pressWasSelected
}

// OnRelease resolves the release on the pressed block. A release that ends
// a drag or resize never counts as a click.
func (s *Selection) OnRelease(id string, wasDragged, wasResized bool) ClickAction {
	if id != s.pressID {
		return ClickNone
	}
	if wasDragged || wasResized {
		return ClickNone
	}
	if s.pressWasSelected {
		return ClickEdit
	}
	return ClickSelect
}
