package mode

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dshills/modaledit/internal/engine/selection"
	"github.com/dshills/modaledit/internal/host"
)

// fakeDoc implements host.Document over a string with rune units.
type fakeDoc struct {
	id    host.DocumentID
	lang  string
	lines []string
}

func newFakeDoc(id, text string) *fakeDoc {
	return &fakeDoc{id: host.DocumentID(id), lang: "plaintext", lines: strings.Split(text, "\n")}
}

func (d *fakeDoc) ID() host.DocumentID { return d.id }
func (d *fakeDoc) LanguageID() string  { return d.lang }
func (d *fakeDoc) LineCount() int      { return len(d.lines) }
func (d *fakeDoc) Line(i int) string   { return d.lines[i] }
func (d *fakeDoc) LineLength(i int) int {
	return utf8.RuneCountInString(d.lines[i])
}

func (d *fakeDoc) OffsetAt(pos selection.Position) int {
	off := 0
	for i := 0; i < pos.Line; i++ {
		off += utf8.RuneCountInString(d.lines[i]) + 1
	}
	return off + pos.Char
}

func (d *fakeDoc) PositionAt(offset int) selection.Position {
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

// fakeSurface records every engine write for assertions.
type fakeSurface struct {
	doc        *fakeDoc
	sels       []selection.Selection
	applied    map[string]int
	cleared    map[string]int
	cursor     host.CursorStyle
	cursorSets int
	lineNums   host.LineNumberStyle
}

func newFakeSurface(doc *fakeDoc) *fakeSurface {
	return &fakeSurface{
		doc:     doc,
		sels:    []selection.Selection{selection.Cursor(selection.Position{})},
		applied: make(map[string]int),
		cleared: make(map[string]int),
	}
}

func (s *fakeSurface) Document() host.Document              { return s.doc }
func (s *fakeSurface) Selections() []selection.Selection    { return s.sels }
func (s *fakeSurface) SetSelections(v []selection.Selection) { s.sels = v }
func (s *fakeSurface) SetCursorStyle(style host.CursorStyle) {
	s.cursor = style
	s.cursorSets++
}
func (s *fakeSurface) SetLineNumbers(style host.LineNumberStyle) { s.lineNums = style }
func (s *fakeSurface) ApplyDecoration(key string, dec host.Decoration, sels []selection.Selection) {
	s.applied[key]++
}
func (s *fakeSurface) ClearDecoration(key string) { s.cleared[key]++ }

// fakeHost routes engine output into recording fields.
type fakeHost struct {
	active             *fakeSurface
	visible            []*fakeSurface
	status             string
	statusSets         int
	contexts           map[string]string
	cursorDefault      host.CursorStyle
	lineNumbersDefault host.LineNumberStyle
	separators         string
}

func (h *fakeHost) ActiveSurface() host.Surface {
	if h.active == nil {
		return nil
	}
	return h.active
}

func (h *fakeHost) VisibleSurfaces() []host.Surface {
	out := make([]host.Surface, len(h.visible))
	for i, s := range h.visible {
		out[i] = s
	}
	return out
}

func (h *fakeHost) SetStatus(text string) {
	h.status = text
	h.statusSets++
}

func (h *fakeHost) SetContext(key, value string) {
	if h.contexts == nil {
		h.contexts = make(map[string]string)
	}
	h.contexts[key] = value
}

func (h *fakeHost) DefaultCursorStyle() host.CursorStyle     { return h.cursorDefault }
func (h *fakeHost) DefaultLineNumbers() host.LineNumberStyle { return h.lineNumbersDefault }
func (h *fakeHost) WordSeparators(string) string             { return h.separators }

func newTestManager(h *fakeHost, opts ...ManagerOption) *Manager {
	normal := NewConfig()
	normal.SetCursorStyle(CursorBlock)
	normal.SetLineHighlight("#336699")
	insert := NewConfig()
	insert.SetCursorStyle(CursorLine)
	return NewManager(h, normal, insert, opts...)
}

func TestSetModeRepeatIsNoop(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	h := &fakeHost{active: surface}
	m := newTestManager(h)

	m.SetMode(surface, ModeInsert)
	applies := surface.applied[ModeInsert.DecorationKey()]
	statusSets := h.statusSets

	m.SetMode(surface, ModeInsert)

	if surface.applied[ModeInsert.DecorationKey()] != applies {
		t.Error("repeated SetMode recomputed decorations")
	}
	if h.statusSets != statusSets {
		t.Error("repeated SetMode updated status")
	}
}

func TestSetModeSwapsDecorations(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	h := &fakeHost{active: surface}
	m := newTestManager(h)

	m.SetMode(surface, ModeNormal)
	if surface.applied[ModeNormal.DecorationKey()] != 1 {
		t.Errorf("normal decoration applied %d times", surface.applied[ModeNormal.DecorationKey()])
	}
	if surface.cleared[ModeInsert.DecorationKey()] == 0 {
		t.Error("insert decoration not cleared on entering normal")
	}

	m.SetMode(surface, ModeInsert)
	if surface.cleared[ModeNormal.DecorationKey()] == 0 {
		t.Error("normal decoration not cleared on entering insert")
	}
	// Insert has no highlight configured: its own key is cleared, not applied.
	if surface.applied[ModeInsert.DecorationKey()] != 0 {
		t.Error("insert decoration applied despite empty highlight")
	}
}

func TestSetModeAppliesStyles(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	h := &fakeHost{active: surface, lineNumbersDefault: host.LineNumbersRelative}
	m := newTestManager(h)

	m.SetMode(surface, ModeNormal)

	if surface.cursor != host.CursorBlock {
		t.Errorf("cursor = %v, want block", surface.cursor)
	}
	// Normal's line numbers inherit the host default.
	if surface.lineNums != host.LineNumbersRelative {
		t.Errorf("line numbers = %v, want relative", surface.lineNums)
	}
	if h.status != ModeNormal.StatusText() {
		t.Errorf("status = %q", h.status)
	}
	if h.contexts["mode"] != "normal" {
		t.Errorf("context mode = %q", h.contexts["mode"])
	}
}

func TestSetModeInactiveSurfaceSkipsStatus(t *testing.T) {
	docA := newFakeDoc("a", "hello")
	docB := newFakeDoc("b", "other")
	surfaceA := newFakeSurface(docA)
	surfaceB := newFakeSurface(docB)
	h := &fakeHost{active: surfaceA}
	m := newTestManager(h)

	m.SetMode(surfaceB, ModeInsert)

	if h.statusSets != 0 {
		t.Error("status updated for an inactive surface")
	}
}

type recordingDisposable struct {
	disposed int
}

func (d *recordingDisposable) Dispose() { d.disposed++ }

func TestLeavingAwaitingDisposesPending(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	h := &fakeHost{active: surface}
	m := newTestManager(h)

	m.SetMode(surface, ModeAwaiting)
	pending := &recordingDisposable{}
	m.SetPending(doc.ID(), pending)

	m.SetMode(surface, ModeNormal)

	if pending.disposed != 1 {
		t.Errorf("pending disposed %d times, want 1", pending.disposed)
	}
}

func TestForgetDisposesPending(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	h := &fakeHost{active: surface}
	m := newTestManager(h)

	m.SetMode(surface, ModeAwaiting)
	pending := &recordingDisposable{}
	m.SetPending(doc.ID(), pending)

	m.Forget(doc.ID())

	if pending.disposed != 1 {
		t.Errorf("pending disposed %d times, want 1", pending.disposed)
	}
	if m.ModeFor(doc.ID()) != ModeNormal {
		t.Error("forgotten document should read as normal")
	}
}

func TestEnteringNormalNormalizesSelections(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	surface.sels = []selection.Selection{selection.Cursor(selection.Position{Line: 0, Char: 1})}
	h := &fakeHost{active: surface}
	m := newTestManager(h, WithAllowEmpty(func() bool { return false }))

	m.SetMode(surface, ModeNormal)

	want := selection.New(selection.Position{Line: 0, Char: 1}, selection.Position{Line: 0, Char: 2})
	if len(surface.sels) != 1 || !surface.sels[0].Equals(want) {
		t.Errorf("selections after entering normal = %v, want %v", surface.sels, want)
	}
}

func TestEnteringInsertSkipsNormalization(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	empty := selection.Cursor(selection.Position{Line: 0, Char: 1})
	surface.sels = []selection.Selection{empty}
	h := &fakeHost{active: surface}
	m := newTestManager(h, WithAllowEmpty(func() bool { return false }))

	m.SetMode(surface, ModeInsert)

	if !surface.sels[0].Equals(empty) {
		t.Errorf("insert mode modified selections: %v", surface.sels)
	}
}

func TestActiveMode(t *testing.T) {
	h := &fakeHost{}
	m := newTestManager(h)

	if got := m.ActiveMode(); got != ModeDisabled {
		t.Errorf("ActiveMode() with no surface = %v, want disabled", got)
	}

	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	h.active = surface

	if got := m.ActiveMode(); got != ModeNormal {
		t.Errorf("ActiveMode() untracked = %v, want normal", got)
	}

	m.SetMode(surface, ModeInsert)
	if got := m.ActiveMode(); got != ModeInsert {
		t.Errorf("ActiveMode() = %v, want insert", got)
	}
}

func TestReset(t *testing.T) {
	doc := newFakeDoc("a", "hello")
	surface := newFakeSurface(doc)
	h := &fakeHost{active: surface}
	m := newTestManager(h)

	m.SetMode(surface, ModeInsert)
	m.Reset()

	if got := m.ModeFor(doc.ID()); got != ModeNormal {
		t.Errorf("mode after Reset = %v, want normal default", got)
	}
	if len(m.Tracked()) != 0 {
		t.Errorf("Tracked() after Reset = %v", m.Tracked())
	}
}
