package selection

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Document provides the read-only text access the normalizer needs.
// Positions use the host's native units; offsets are absolute unit
// offsets from the start of the document, counting one unit per line break.
type Document interface {
	// LineCount returns the number of lines. A document always has at
	// least one line; an empty document has one line of length zero.
	LineCount() int

	// Line returns the text of the given line, without the line break.
	Line(line int) string

	// LineLength returns the length of the given line in position units.
	LineLength(line int) int

	// OffsetAt converts a position to an absolute unit offset.
	OffsetAt(pos Position) int

	// PositionAt converts an absolute unit offset back to a position.
	PositionAt(offset int) Position
}

// Normalizer corrects selections to the shape required by modes with a
// block-style caret: every selection non-empty, spanning at least one
// character or line break, with one-unit selections in canonical forward
// orientation.
//
// The caller decides whether normalization applies at all (insert mode and
// the allow-empty-selections preference disable it); Normalize itself is
// unconditional.
type Normalizer struct{}

// NewNormalizer creates a selection normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize returns a selection set in which every correctable selection
// satisfies the caret-shape invariant. Selections already compliant are
// passed through untouched. When no selection needs correction the input
// slice is returned as-is with no allocation.
func (n *Normalizer) Normalize(doc Document, sels []Selection) []Selection {
	var out []Selection
	for i, sel := range sels {
		fixed, changed := n.normalizeOne(doc, sel)
		if changed && out == nil {
			out = make([]Selection, len(sels))
			copy(out, sels)
		}
		if out != nil {
			out[i] = fixed
		}
	}
	if out == nil {
		return sels
	}
	return out
}

// normalizeOne evaluates a single selection against the invariant.
// Returns the corrected selection and whether a correction was made.
func (n *Normalizer) normalizeOne(doc Document, sel Selection) (Selection, bool) {
	// A one-unit reversed selection flips to its canonical forward form.
	// This happens naturally after certain backward motions.
	if sel.IsReversed() && n.isOneUnitReversed(doc, sel) {
		return sel.Flip(), true
	}

	// Non-empty selections are already caret-shaped or larger.
	if !sel.IsEmpty() {
		return sel, false
	}

	pos := sel.Active
	lastLine := doc.LineCount() - 1
	atEOL := pos.Char >= doc.LineLength(pos.Line)

	if atEOL && pos.Line < lastLine {
		// Extend forward over the line break.
		return Selection{Anchor: pos, Active: Position{Line: pos.Line + 1, Char: 0}}, true
	}

	if atEOL {
		// End of the last line: nothing ahead to cover.
		return n.extendBackward(doc, pos)
	}

	// Mid-line: extend forward by one character. The grapheme step keeps
	// combining marks and wide sequences inside a single selected unit.
	next, ok := n.advance(doc, pos)
	if !ok {
		return n.extendBackward(doc, pos)
	}
	return Selection{Anchor: pos, Active: next}, true
}

// isOneUnitReversed reports whether a reversed selection spans exactly one
// character on a single line, or exactly one line break.
func (n *Normalizer) isOneUnitReversed(doc Document, sel Selection) bool {
	a, c := sel.Anchor, sel.Active
	if a.Line == c.Line && a.Char == c.Char+1 {
		return true
	}
	// One line break backward: anchor at column 0 of the next line, active
	// at the end of its own line.
	return a.Line == c.Line+1 && a.Char == 0 && c.Char == doc.LineLength(c.Line)
}

// extendBackward covers the unit before pos, keeping the cursor at pos.
// A position with nothing before it (the zero-length document case) is
// left empty; callers must tolerate that.
func (n *Normalizer) extendBackward(doc Document, pos Position) (Selection, bool) {
	off := doc.OffsetAt(pos)
	if off == 0 {
		return Cursor(pos), false
	}
	return Selection{Anchor: doc.PositionAt(off - 1), Active: pos}, true
}

// advance returns the position one text unit forward of pos on the same
// line, stepping over a full grapheme cluster. Returns false when there is
// no content ahead.
func (n *Normalizer) advance(doc Document, pos Position) (Position, bool) {
	line := doc.Line(pos.Line)
	rest := sliceFromUnit(line, pos.Char)
	if rest == "" {
		return pos, false
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
	width := utf8.RuneCountInString(cluster)
	if width == 0 {
		return pos, false
	}
	return Position{Line: pos.Line, Char: pos.Char + width}, true
}

// sliceFromUnit returns the tail of s starting at the given unit index.
func sliceFromUnit(s string, unit int) string {
	if unit <= 0 {
		return s
	}
	i := 0
	for b := range s {
		if i == unit {
			return s[b:]
		}
		i++
	}
	return ""
}
