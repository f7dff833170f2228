package app

import (
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dshills/modaledit/internal/config"
	"github.com/dshills/modaledit/internal/engine/selection"
	"github.com/dshills/modaledit/internal/engine/tracking"
	"github.com/dshills/modaledit/internal/event"
	"github.com/dshills/modaledit/internal/host"
	"github.com/dshills/modaledit/internal/mode"
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

// fakeSurface records every engine write. Like a real host it echoes
// engine-initiated selection writes back as events. The debounce path
// writes from a timer goroutine, so access is mutex-guarded.
type fakeSurface struct {
	mu       sync.Mutex
	doc      *fakeDoc
	hub      *event.Hub
	sels     []selection.Selection
	selSets  int
	applied  map[string]int
	cleared  map[string]int
	cursor   host.CursorStyle
	lineNums host.LineNumberStyle
}

func newFakeSurface(doc *fakeDoc) *fakeSurface {
	return &fakeSurface{
		doc:     doc,
		sels:    []selection.Selection{selection.Cursor(selection.Position{})},
		applied: make(map[string]int),
		cleared: make(map[string]int),
	}
}

func (s *fakeSurface) Document() host.Document { return s.doc }

func (s *fakeSurface) Selections() []selection.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sels
}

func (s *fakeSurface) SetSelections(v []selection.Selection) {
	s.mu.Lock()
	s.sels = v
	s.selSets++
	hub := s.hub
	s.mu.Unlock()

	if hub != nil {
		hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
			Surface:    s,
			Selections: v,
			Origin:     event.OriginCommand,
		})
	}
}

func (s *fakeSurface) selectionWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selSets
}

func (s *fakeSurface) setSels(v []selection.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sels = v
}

func (s *fakeSurface) SetCursorStyle(style host.CursorStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = style
}

func (s *fakeSurface) SetLineNumbers(style host.LineNumberStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lineNums = style
}

func (s *fakeSurface) ApplyDecoration(key string, dec host.Decoration, sels []selection.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied[key]++
}

func (s *fakeSurface) ClearDecoration(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared[key]++
}

// fakeHost routes engine output into recording fields.
type fakeHost struct {
	active             *fakeSurface
	visible            []*fakeSurface
	status             string
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

func (h *fakeHost) SetStatus(text string) { h.status = text }

func (h *fakeHost) SetContext(key, value string) {
	if h.contexts == nil {
		h.contexts = make(map[string]string)
	}
	h.contexts[key] = value
}

func (h *fakeHost) DefaultCursorStyle() host.CursorStyle     { return h.cursorDefault }
func (h *fakeHost) DefaultLineNumbers() host.LineNumberStyle { return h.lineNumbersDefault }
func (h *fakeHost) WordSeparators(string) string             { return h.separators }

func strictSettings() config.Settings {
	s := config.Default()
	s.AllowEmptySelections = false
	s.Normal.LineHighlight = "#336699"
	s.Normal.CursorStyle = "block"
	return s
}

type testRig struct {
	host    *fakeHost
	surface *fakeSurface
	hub     *event.Hub
	store   *config.Store
	engine  *Engine
}

func newTestRig(t *testing.T, text string, settings config.Settings, opts ...Option) *testRig {
	t.Helper()
	doc := newFakeDoc("doc-1", text)
	surface := newFakeSurface(doc)
	h := &fakeHost{active: surface, visible: []*fakeSurface{surface}}
	hub := event.NewHub()
	surface.hub = hub
	store := config.NewStore(settings)
	e := New(h, hub, store, opts...)
	e.Start()
	t.Cleanup(e.Disable)
	return &testRig{host: h, surface: surface, hub: hub, store: store, engine: e}
}

func TestStartEntersNormalOnVisibleSurfaces(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())

	if !rig.engine.Enabled() {
		t.Fatal("engine not enabled after Start")
	}
	if got := rig.engine.Manager().ModeFor("doc-1"); got != mode.ModeNormal {
		t.Errorf("mode = %v, want normal", got)
	}
	if rig.host.status != mode.ModeNormal.StatusText() {
		t.Errorf("status = %q", rig.host.status)
	}
}

func TestDisableRevertsSurfaces(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())
	rig.host.lineNumbersDefault = host.LineNumbersRelative

	rig.engine.Disable()

	if rig.engine.Enabled() {
		t.Fatal("engine still enabled")
	}
	if rig.surface.lineNums != host.LineNumbersRelative {
		t.Errorf("line numbers = %v, want host default", rig.surface.lineNums)
	}
	if rig.surface.cleared[mode.ModeNormal.DecorationKey()] == 0 {
		t.Error("normal decoration not cleared on disable")
	}
	if rig.host.contexts["mode"] != "disabled" {
		t.Errorf("context mode = %q", rig.host.contexts["mode"])
	}
	if got := rig.hub.HandlerCount(event.TopicSelectionChanged); got != 0 {
		t.Errorf("selection handler count after disable = %d", got)
	}
}

func TestToggleRoundTripsThroughSettings(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())

	rig.engine.Toggle()
	if rig.engine.Enabled() {
		t.Fatal("engine enabled after toggle off")
	}
	if rig.store.Current().Enabled {
		t.Error("settings still report enabled")
	}

	rig.engine.Toggle()
	if !rig.engine.Enabled() {
		t.Fatal("engine disabled after toggle on")
	}
}

func TestTogglePersistsEnabledFlag(t *testing.T) {
	var wrote []bool
	rig := newTestRig(t, "hello", strictSettings(),
		WithToggleWriter(func(enabled bool) error {
			wrote = append(wrote, enabled)
			return nil
		}),
	)

	rig.engine.Toggle()
	rig.engine.Toggle()

	if len(wrote) != 2 || wrote[0] || !wrote[1] {
		t.Errorf("persisted values = %v, want [false true]", wrote)
	}
}

func TestCommandSelectionChangeNormalizesSynchronously(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())

	empty := []selection.Selection{selection.Cursor(selection.Position{Line: 0, Char: 1})}
	rig.surface.setSels(empty)
	rig.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
		Surface:    rig.surface,
		Selections: empty,
		Origin:     event.OriginCommand,
	})

	want := selection.New(selection.Position{Line: 0, Char: 1}, selection.Position{Line: 0, Char: 2})
	got := rig.surface.Selections()
	if len(got) != 1 || !got[0].Equals(want) {
		t.Errorf("selections = %v, want %v", got, want)
	}
}

func TestNormalizationWriteSuppressesItsOwnEcho(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())
	writes := rig.surface.selectionWrites()
	suppressed := rig.engine.Metrics().Snapshot().SuppressedEvents

	empty := []selection.Selection{selection.Cursor(selection.Position{Line: 0, Char: 1})}
	rig.surface.setSels(empty)
	rig.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
		Surface:    rig.surface,
		Selections: empty,
		Origin:     event.OriginCommand,
	})

	// One write for the repair; its echo must not trigger a second one.
	if got := rig.surface.selectionWrites(); got != writes+1 {
		t.Errorf("selection writes = %d, want %d", got, writes+1)
	}
	if got := rig.engine.Metrics().Snapshot().SuppressedEvents; got != suppressed+1 {
		t.Errorf("suppressed events = %d, want %d", got, suppressed+1)
	}

	// An already-normalized selection set causes no further write.
	rig.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
		Surface:    rig.surface,
		Selections: rig.surface.Selections(),
		Origin:     event.OriginCommand,
	})
	if got := rig.surface.selectionWrites(); got != writes+1 {
		t.Errorf("selection writes after repeat = %d, want %d", got, writes+1)
	}
}

func TestPointerSelectionChangesCoalesce(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings(), WithDebounceDelay(20*time.Millisecond))
	writes := rig.surface.selectionWrites()

	for char := 1; char <= 3; char++ {
		empty := []selection.Selection{selection.Cursor(selection.Position{Line: 0, Char: char})}
		rig.surface.setSels(empty)
		rig.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
			Surface:    rig.surface,
			Selections: empty,
			Origin:     event.OriginPointer,
		})
	}

	if rig.surface.selectionWrites() != writes {
		t.Fatal("pointer change normalized before debounce settled")
	}

	deadline := time.Now().Add(time.Second)
	for rig.surface.selectionWrites() == writes && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := rig.surface.selectionWrites(); got != writes+1 {
		t.Fatalf("selection writes = %d, want %d", got, writes+1)
	}
	want := selection.New(selection.Position{Line: 0, Char: 3}, selection.Position{Line: 0, Char: 4})
	got := rig.surface.Selections()
	if len(got) != 1 || !got[0].Equals(want) {
		t.Errorf("selections = %v, want %v", got, want)
	}
	if rig.engine.Metrics().Snapshot().CoalescedEvents != 2 {
		t.Errorf("coalesced events = %d, want 2", rig.engine.Metrics().Snapshot().CoalescedEvents)
	}
}

func TestSelectionChangeLeavesAwaiting(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())
	rig.engine.Manager().SetMode(rig.surface, mode.ModeAwaiting)

	sels := []selection.Selection{selection.New(selection.Position{}, selection.Position{Line: 0, Char: 1})}
	rig.surface.setSels(sels)
	rig.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
		Surface:    rig.surface,
		Selections: sels,
		Origin:     event.OriginCommand,
	})

	if got := rig.engine.Manager().ModeFor("doc-1"); got != mode.ModeNormal {
		t.Errorf("mode = %v, want normal after selection movement", got)
	}
}

func TestInsertModeSkipsNormalization(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())
	rig.engine.Manager().SetMode(rig.surface, mode.ModeInsert)

	empty := selection.Cursor(selection.Position{Line: 0, Char: 1})
	rig.surface.setSels([]selection.Selection{empty})
	rig.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
		Surface:    rig.surface,
		Selections: rig.surface.Selections(),
		Origin:     event.OriginCommand,
	})

	if !rig.surface.Selections()[0].Equals(empty) {
		t.Errorf("insert mode selection modified: %v", rig.surface.Selections())
	}
}

func TestDocumentChangeShiftsSavedSelections(t *testing.T) {
	rig := newTestRig(t, "alpha\nbeta\ngamma", strictSettings())

	saved := selection.New(selection.Position{Line: 2, Char: 0}, selection.Position{Line: 2, Char: 5})
	handle := rig.engine.SaveSelection("doc-1", saved)

	rig.hub.Publish(event.TopicDocumentChanged, event.DocumentChanged{
		Document: rig.surface.doc,
		Changes: []tracking.Change{{
			Start:   selection.Position{Line: 0, Char: 5},
			End:     selection.Position{Line: 0, Char: 5},
			NewText: "\ninserted",
		}},
	})

	got, ok := rig.engine.SavedSelection("doc-1", handle)
	if !ok {
		t.Fatal("saved selection lost")
	}
	want := selection.New(selection.Position{Line: 3, Char: 0}, selection.Position{Line: 3, Char: 5})
	if !got.Equals(want) {
		t.Errorf("shifted selection = %v, want %v", got, want)
	}
}

func TestDocumentClosedReleasesState(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())

	handle := rig.engine.SaveSelection("doc-1", selection.New(selection.Position{}, selection.Position{Line: 0, Char: 1}))
	rig.hub.Publish(event.TopicDocumentClosed, event.DocumentClosed{ID: "doc-1"})

	if _, ok := rig.engine.SavedSelection("doc-1", handle); ok {
		t.Error("saved selection survived document close")
	}
	if len(rig.engine.Manager().Tracked()) != 0 {
		t.Errorf("tracked documents after close: %v", rig.engine.Manager().Tracked())
	}
}

func TestActiveSurfaceChangeMaterializesNormal(t *testing.T) {
	rig := newTestRig(t, "hello", strictSettings())

	doc := newFakeDoc("doc-2", "world")
	surface := newFakeSurface(doc)
	surface.hub = rig.hub
	rig.host.active = surface
	rig.host.visible = append(rig.host.visible, surface)

	rig.hub.Publish(event.TopicActiveSurfaceChanged, event.ActiveSurfaceChanged{Surface: surface})

	if got := rig.engine.Manager().ModeFor("doc-2"); got != mode.ModeNormal {
		t.Errorf("mode = %v, want normal", got)
	}
	if surface.applied[mode.ModeNormal.DecorationKey()] == 0 {
		t.Error("decoration not applied to newly focused surface")
	}
}

func TestConfigChangeReloadsThroughStore(t *testing.T) {
	next := strictSettings()
	next.Insert.CursorStyle = "underline"

	rig := newTestRig(t, "hello", strictSettings(),
		WithReloader(func() (config.Settings, error) { return next, nil }),
	)
	rig.engine.Manager().SetMode(rig.surface, mode.ModeInsert)

	rig.hub.Publish(event.TopicConfigChanged, event.ConfigChanged{Keys: []string{"insert.cursorStyle"}})

	if rig.surface.cursor != host.CursorUnderline {
		t.Errorf("cursor = %v, want underline after reload", rig.surface.cursor)
	}
	if rig.engine.Metrics().Snapshot().ConfigReloads != 1 {
		t.Error("config reload not counted")
	}
}

func TestDisallowingEmptySelectionsNormalizesVisible(t *testing.T) {
	permissive := strictSettings()
	permissive.AllowEmptySelections = true
	rig := newTestRig(t, "hello", permissive)

	rig.surface.setSels([]selection.Selection{selection.Cursor(selection.Position{Line: 0, Char: 1})})

	next := rig.store.Current()
	next.AllowEmptySelections = false
	rig.store.Replace(next)

	want := selection.New(selection.Position{Line: 0, Char: 1}, selection.Position{Line: 0, Char: 2})
	got := rig.surface.Selections()
	if len(got) != 1 || !got[0].Equals(want) {
		t.Errorf("selections = %v, want %v", got, want)
	}
}
