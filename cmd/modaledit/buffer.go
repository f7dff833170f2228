package main

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/modaledit/internal/engine/selection"
	"github.com/dshills/modaledit/internal/engine/tracking"
	"github.com/dshills/modaledit/internal/host"
)

// demoDocument is an in-memory line buffer implementing host.Document.
// Positions use rune units, matching what the engine expects.
type demoDocument struct {
	id    host.DocumentID
	lang  string
	lines []string
}

func newDemoDocument(id, lang, text string) *demoDocument {
	return &demoDocument{
		id:    host.DocumentID(id),
		lang:  lang,
		lines: strings.Split(text, "\n"),
	}
}

func (d *demoDocument) ID() host.DocumentID { return d.id }
func (d *demoDocument) LanguageID() string  { return d.lang }
func (d *demoDocument) LineCount() int      { return len(d.lines) }
func (d *demoDocument) Line(i int) string   { return d.lines[i] }

func (d *demoDocument) LineLength(i int) int {
	return utf8.RuneCountInString(d.lines[i])
}

func (d *demoDocument) OffsetAt(pos selection.Position) int {
	off := 0
	for i := 0; i < pos.Line && i < len(d.lines); i++ {
		off += utf8.RuneCountInString(d.lines[i]) + 1
	}
	return off + pos.Char
}

func (d *demoDocument) PositionAt(offset int) selection.Position {
	for i, line := range d.lines {
		n := utf8.RuneCountInString(line)
		if offset <= n {
			return selection.Position{Line: i, Char: offset}
		}
		offset -= n + 1
	}
	last := len(d.lines) - 1
	return selection.Position{Line: last, Char: utf8.RuneCountInString(d.lines[last])}
}

// clamp snaps a position onto the document.
func (d *demoDocument) clamp(pos selection.Position) selection.Position {
	if pos.Line < 0 {
		return selection.Position{}
	}
	if pos.Line >= len(d.lines) {
		pos.Line = len(d.lines) - 1
	}
	if pos.Char < 0 {
		pos.Char = 0
	}
	if n := d.LineLength(pos.Line); pos.Char > n {
		pos.Char = n
	}
	return pos
}

// insert places text at a position and returns the change for selection
// tracking. Text may contain newlines.
func (d *demoDocument) insert(pos selection.Position, text string) tracking.Change {
	pos = d.clamp(pos)
	line := d.lines[pos.Line]
	runes := []rune(line)
	head, tail := string(runes[:pos.Char]), string(runes[pos.Char:])

	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		d.lines[pos.Line] = head + text + tail
	} else {
		inserted := make([]string, 0, len(d.lines)+len(parts)-1)
		inserted = append(inserted, d.lines[:pos.Line]...)
		inserted = append(inserted, head+parts[0])
		inserted = append(inserted, parts[1:len(parts)-1]...)
		inserted = append(inserted, parts[len(parts)-1]+tail)
		inserted = append(inserted, d.lines[pos.Line+1:]...)
		d.lines = inserted
	}

	return tracking.Change{Start: pos, End: pos, NewText: text}
}

// deleteRange removes the text between two positions and returns the
// change for selection tracking.
func (d *demoDocument) deleteRange(start, end selection.Position) tracking.Change {
	start = d.clamp(start)
	end = d.clamp(end)
	if end.Before(start) {
		start, end = end, start
	}

	headRunes := []rune(d.lines[start.Line])
	tailRunes := []rune(d.lines[end.Line])
	head := string(headRunes[:start.Char])
	tail := string(tailRunes[end.Char:])

	merged := make([]string, 0, len(d.lines))
	merged = append(merged, d.lines[:start.Line]...)
	merged = append(merged, head+tail)
	merged = append(merged, d.lines[end.Line+1:]...)
	d.lines = merged

	return tracking.Change{Start: start, End: end, NewText: ""}
}
