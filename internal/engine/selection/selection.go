package selection

import "fmt"

// Position is a location in a document, in the host's native text units.
// Line and Char are both 0-indexed; Char counts units within the line.
type Position struct {
	Line int
	Char int
}

// Before returns true if p is strictly before other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Char < other.Char
}

// After returns true if p is strictly after other in document order.
func (p Position) After(other Position) bool {
	return other.Before(p)
}

// Compare returns -1, 0, or 1 as p is before, equal to, or after other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Before(other):
		return -1
	case p.After(other):
		return 1
	default:
		return 0
	}
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Line, p.Char)
}

// Selection represents a directed range of document text.
// Anchor is where the selection started; Active is the cursor position.
// When Anchor == Active, this represents a cursor with no extent.
// Selection is an immutable value type.
type Selection struct {
	Anchor Position // Where selection started
	Active Position // Current cursor position (where typing occurs)
}

// New creates a selection from anchor to active.
func New(anchor, active Position) Selection {
	return Selection{Anchor: anchor, Active: active}
}

// Cursor creates a selection representing just a cursor (no extent).
func Cursor(pos Position) Selection {
	return Selection{Anchor: pos, Active: pos}
}

// IsEmpty returns true if the selection has no extent (just a cursor).
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// IsReversed returns true if the selection extends backward (active before anchor).
func (s Selection) IsReversed() bool {
	return s.Active.Before(s.Anchor)
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Position {
	if s.IsReversed() {
		return s.Active
	}
	return s.Anchor
}

// End returns the upper bound of the selection.
func (s Selection) End() Position {
	if s.IsReversed() {
		return s.Anchor
	}
	return s.Active
}

// Flip returns a selection with anchor and active swapped.
func (s Selection) Flip() Selection {
	return Selection{Anchor: s.Active, Active: s.Anchor}
}

// Collapse collapses the selection to a cursor at the active position.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Active, Active: s.Active}
}

// Extend returns a new selection with the active end moved to pos.
// The anchor remains fixed.
func (s Selection) Extend(pos Position) Selection {
	return Selection{Anchor: s.Anchor, Active: pos}
}

// Contains returns true if pos is within [Start, End).
// For empty selections (cursors), this always returns false.
func (s Selection) Contains(pos Position) bool {
	return !pos.Before(s.Start()) && pos.Before(s.End())
}

// Equals returns true if two selections have the same anchor and active.
func (s Selection) Equals(other Selection) bool {
	return s.Anchor == other.Anchor && s.Active == other.Active
}

// SameRange returns true if two selections cover the same range,
// regardless of direction.
func (s Selection) SameRange(other Selection) bool {
	return s.Start() == other.Start() && s.End() == other.End()
}

// String returns a string representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor%s", s.Active)
	}
	dir := "→"
	if s.IsReversed() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%s%s%s)", s.Anchor, dir, s.Active)
}
