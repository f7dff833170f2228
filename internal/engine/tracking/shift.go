package tracking

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/modaledit/internal/engine/selection"
)

// LineShifter is the default position-shift arithmetic: it moves positions
// at or after an edit by the edit's line and unit delta. Positions inside
// the edited range clamp to the edit start.
type LineShifter struct{}

// Shift implements Shifter.
func (LineShifter) Shift(sel selection.Selection, change Change) selection.Selection {
	return selection.Selection{
		Anchor: shiftPosition(sel.Anchor, change),
		Active: shiftPosition(sel.Active, change),
	}
}

func shiftPosition(pos selection.Position, change Change) selection.Position {
	if pos.Before(change.Start) {
		return pos
	}
	if pos.Before(change.End) {
		return change.Start
	}

	newEnd := endOfInsert(change.Start, change.NewText)
	lineDelta := newEnd.Line - change.End.Line

	out := selection.Position{Line: pos.Line + lineDelta, Char: pos.Char}
	if pos.Line == change.End.Line {
		out.Char = newEnd.Char + (pos.Char - change.End.Char)
	}
	return out
}

// endOfInsert returns the position just past text inserted at start.
func endOfInsert(start selection.Position, text string) selection.Position {
	if text == "" {
		return start
	}
	lines := strings.Split(text, "\n")
	last := utf8.RuneCountInString(lines[len(lines)-1])
	if len(lines) == 1 {
		return selection.Position{Line: start.Line, Char: start.Char + last}
	}
	return selection.Position{Line: start.Line + len(lines) - 1, Char: last}
}
