package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/modaledit/internal/app"
	"github.com/dshills/modaledit/internal/engine/charclass"
	"github.com/dshills/modaledit/internal/engine/selection"
	"github.com/dshills/modaledit/internal/engine/tracking"
	"github.com/dshills/modaledit/internal/event"
	"github.com/dshills/modaledit/internal/host"
	"github.com/dshills/modaledit/internal/mode"
)

// themeColors resolves the symbolic decoration names the demo theme knows.
var themeColors = map[string]string{
	"editor.lineHighlightBackground": "#2a2d3a",
	"editor.selectionBackground":     "#44475a",
}

type appliedDecoration struct {
	dec  host.Decoration
	sels []selection.Selection
}

// demoSurface is the single editor view of the demo. It records the
// styles the engine writes back and renders them on the next frame.
type demoSurface struct {
	hst      *demoHost
	doc      *demoDocument
	sels     []selection.Selection
	cursor   host.CursorStyle
	lineNums host.LineNumberStyle
	decs     map[string]appliedDecoration
}

func (s *demoSurface) Document() host.Document           { return s.doc }
func (s *demoSurface) Selections() []selection.Selection { return s.sels }

// SetSelections mirrors a real host: the engine's write comes back as a
// selection-changed event, which the engine suppresses.
func (s *demoSurface) SetSelections(sels []selection.Selection) {
	s.sels = sels
	if s.hst.hub != nil {
		s.hst.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
			Surface:    s,
			Selections: sels,
			Origin:     event.OriginCommand,
		})
	}
	s.hst.wake()
}

func (s *demoSurface) SetCursorStyle(style host.CursorStyle) {
	s.cursor = style
	s.hst.wake()
}

func (s *demoSurface) SetLineNumbers(style host.LineNumberStyle) {
	s.lineNums = style
	s.hst.wake()
}

func (s *demoSurface) ApplyDecoration(key string, dec host.Decoration, sels []selection.Selection) {
	s.decs[key] = appliedDecoration{dec: dec, sels: sels}
	s.hst.wake()
}

func (s *demoSurface) ClearDecoration(key string) {
	delete(s.decs, key)
	s.hst.wake()
}

// active returns the position driving cursor display and motions.
func (s *demoSurface) active() selection.Position {
	if len(s.sels) == 0 {
		return selection.Position{}
	}
	return s.sels[len(s.sels)-1].Active
}

// demoHost implements host.Host over a tcell screen with one surface.
type demoHost struct {
	screen   tcell.Screen
	surface  *demoSurface
	hub      *event.Hub
	status   string
	contexts map[string]string
	quitting bool
	dragging bool
	top      int // first visible line
}

func newDemoHost(text, lang string) (*demoHost, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	h := &demoHost{
		screen:   screen,
		contexts: make(map[string]string),
	}
	doc := newDemoDocument("demo:buffer", lang, text)
	h.surface = &demoSurface{
		hst:  h,
		doc:  doc,
		sels: []selection.Selection{selection.Cursor(selection.Position{})},
		decs: make(map[string]appliedDecoration),
	}
	return h, nil
}

func (h *demoHost) ActiveSurface() host.Surface { return h.surface }

func (h *demoHost) VisibleSurfaces() []host.Surface {
	return []host.Surface{h.surface}
}

func (h *demoHost) SetStatus(text string) {
	h.status = text
	h.wake()
}

func (h *demoHost) SetContext(key, value string) {
	h.contexts[key] = value
}

func (h *demoHost) DefaultCursorStyle() host.CursorStyle { return host.CursorLine }

func (h *demoHost) DefaultLineNumbers() host.LineNumberStyle { return host.LineNumbersOn }

func (h *demoHost) WordSeparators(string) string { return "" }

// Post runs fn on the event loop goroutine.
func (h *demoHost) Post(fn func()) {
	_ = h.screen.PostEvent(tcell.NewEventInterrupt(fn))
}

// wake schedules a repaint without any other work.
func (h *demoHost) wake() {
	_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (h *demoHost) Quit() {
	h.Post(func() { h.quitting = true })
}

func (h *demoHost) Close() {
	h.screen.Fini()
}

// Run drives the event loop until quit.
func (h *demoHost) Run(engine *app.Engine) error {
	h.render(engine)
	for !h.quitting {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventInterrupt:
			if fn, ok := ev.Data().(func()); ok && fn != nil {
				fn()
			}
		case *tcell.EventResize:
			h.screen.Sync()
		case *tcell.EventKey:
			h.handleKey(engine, ev)
		case *tcell.EventMouse:
			h.handleMouse(engine, ev)
		}
		h.render(engine)
	}
	return nil
}

func (h *demoHost) handleKey(engine *app.Engine, ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		h.quitting = true
		return
	}
	if ev.Key() == tcell.KeyF2 {
		engine.Toggle()
		return
	}

	current := mode.ModeInsert
	if engine.Enabled() {
		current = engine.Manager().ModeFor(h.surface.doc.ID())
	}

	if current == mode.ModeInsert {
		h.handleInsertKey(engine, ev)
		return
	}
	h.handleNormalKey(engine, ev)
}

func (h *demoHost) handleNormalKey(engine *app.Engine, ev *tcell.EventKey) {
	doc := h.surface.doc
	pos := h.surface.active()

	if ev.Key() == tcell.KeyEscape {
		engine.Manager().SetMode(h.surface, mode.ModeNormal)
		return
	}
	if ev.Key() != tcell.KeyRune {
		return
	}

	switch ev.Rune() {
	case 'q':
		h.quitting = true
	case 'i':
		engine.Manager().SetMode(h.surface, mode.ModeInsert)
	case 'h':
		h.moveCursor(doc.clamp(selection.Position{Line: pos.Line, Char: pos.Char - 1}))
	case 'l':
		h.moveCursor(doc.clamp(selection.Position{Line: pos.Line, Char: pos.Char + 1}))
	case 'k':
		h.moveCursor(doc.clamp(selection.Position{Line: pos.Line - 1, Char: pos.Char}))
	case 'j':
		h.moveCursor(doc.clamp(selection.Position{Line: pos.Line + 1, Char: pos.Char}))
	case 'w':
		seps := engine.WordSeparators(doc)
		next := charclass.NextBoundary(doc.Line(pos.Line), pos.Char, seps)
		if next == pos.Char && pos.Line+1 < doc.LineCount() {
			h.moveCursor(selection.Position{Line: pos.Line + 1, Char: 0})
			return
		}
		h.moveCursor(selection.Position{Line: pos.Line, Char: next})
	case 'b':
		seps := engine.WordSeparators(doc)
		if pos.Char == 0 && pos.Line > 0 {
			h.moveCursor(selection.Position{Line: pos.Line - 1, Char: doc.LineLength(pos.Line - 1)})
			return
		}
		h.moveCursor(selection.Position{Line: pos.Line, Char: charclass.PrevBoundary(doc.Line(pos.Line), pos.Char, seps)})
	case 'x':
		if len(h.surface.sels) == 0 {
			return
		}
		sel := h.surface.sels[0]
		if sel.IsEmpty() {
			return
		}
		change := doc.deleteRange(sel.Start(), sel.End())
		h.publishEdit(change)
		h.moveCursor(doc.clamp(sel.Start()))
	}
}

func (h *demoHost) handleInsertKey(engine *app.Engine, ev *tcell.EventKey) {
	doc := h.surface.doc
	pos := doc.clamp(h.surface.active())

	switch ev.Key() {
	case tcell.KeyEscape:
		if engine.Enabled() {
			engine.Manager().SetMode(h.surface, mode.ModeNormal)
		}
	case tcell.KeyEnter:
		h.publishEdit(doc.insert(pos, "\n"))
		h.moveCursor(selection.Position{Line: pos.Line + 1, Char: 0})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if pos.Char > 0 {
			start := selection.Position{Line: pos.Line, Char: pos.Char - 1}
			h.publishEdit(doc.deleteRange(start, pos))
			h.moveCursor(start)
			return
		}
		if pos.Line > 0 {
			start := selection.Position{Line: pos.Line - 1, Char: doc.LineLength(pos.Line - 1)}
			h.publishEdit(doc.deleteRange(start, pos))
			h.moveCursor(start)
		}
	case tcell.KeyRune:
		h.publishEdit(doc.insert(pos, string(ev.Rune())))
		h.moveCursor(selection.Position{Line: pos.Line, Char: pos.Char + 1})
	}
}

func (h *demoHost) handleMouse(engine *app.Engine, ev *tcell.EventMouse) {
	x, y := ev.Position()
	pos := h.positionAtCell(x, y)
	if pos == nil {
		return
	}

	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		var sel selection.Selection
		if h.dragging && len(h.surface.sels) > 0 {
			sel = selection.New(h.surface.sels[0].Anchor, *pos)
		} else {
			sel = selection.Cursor(*pos)
		}
		h.dragging = true
		h.surface.sels = []selection.Selection{sel}
		h.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
			Surface:    h.surface,
			Selections: h.surface.sels,
			Origin:     event.OriginPointer,
		})
	case h.dragging:
		h.dragging = false
	}
}

// moveCursor collapses the selection to a cursor at pos and publishes
// the change as command-driven.
func (h *demoHost) moveCursor(pos selection.Position) {
	h.surface.sels = []selection.Selection{selection.Cursor(pos)}
	h.hub.Publish(event.TopicSelectionChanged, event.SelectionChanged{
		Surface:    h.surface,
		Selections: h.surface.sels,
		Origin:     event.OriginCommand,
	})
}

func (h *demoHost) publishEdit(change tracking.Change) {
	h.hub.Publish(event.TopicDocumentChanged, event.DocumentChanged{
		Document: h.surface.doc,
		Changes:  []tracking.Change{change},
	})
}

// positionAtCell maps a screen cell to a document position, or nil when
// the cell is outside the text area.
func (h *demoHost) positionAtCell(x, y int) *selection.Position {
	doc := h.surface.doc
	line := h.top + y
	if line < 0 || line >= doc.LineCount() {
		return nil
	}
	gutter := h.gutterWidth()
	if x < gutter {
		x = gutter
	}

	col := gutter
	char := 0
	for _, r := range doc.Line(line) {
		w := runewidth.RuneWidth(r)
		if col+w > x {
			break
		}
		col += w
		char++
	}
	pos := doc.clamp(selection.Position{Line: line, Char: char})
	return &pos
}

func (h *demoHost) gutterWidth() int {
	if h.surface.lineNums == host.LineNumbersOff {
		return 0
	}
	return len(fmt.Sprintf("%d", h.surface.doc.LineCount())) + 1
}

func (h *demoHost) render(engine *app.Engine) {
	screen := h.screen
	screen.Clear()

	width, height := screen.Size()
	doc := h.surface.doc
	active := h.surface.active()
	h.scrollTo(active.Line, height-1)

	lineBG := h.decorationBackgrounds()
	gutter := h.gutterWidth()

	for row := 0; row < height-1; row++ {
		line := h.top + row
		if line >= doc.LineCount() {
			break
		}

		style := tcell.StyleDefault
		if bg, ok := lineBG[line]; ok {
			style = style.Background(bg)
		}

		h.drawGutter(row, line, active.Line, gutter)

		col := gutter
		for _, r := range doc.Line(line) {
			if col >= width {
				break
			}
			screen.SetContent(col, row, r, nil, style)
			col += runewidth.RuneWidth(r)
		}
		// Extend the highlight across the whole line.
		if _, ok := lineBG[line]; ok {
			for ; col < width; col++ {
				screen.SetContent(col, row, ' ', nil, style)
			}
		}
	}

	h.drawStatus(engine, width, height-1)
	h.placeCursor(active, gutter, height-1)
	screen.Show()
}

func (h *demoHost) scrollTo(line, viewHeight int) {
	if viewHeight < 1 {
		return
	}
	if line < h.top {
		h.top = line
	}
	if line >= h.top+viewHeight {
		h.top = line - viewHeight + 1
	}
}

func (h *demoHost) drawGutter(row, line, activeLine, gutter int) {
	if gutter == 0 {
		return
	}
	var label string
	switch h.surface.lineNums {
	case host.LineNumbersRelative:
		if line == activeLine {
			label = fmt.Sprintf("%d", line+1)
		} else {
			label = fmt.Sprintf("%d", abs(line-activeLine))
		}
	case host.LineNumbersInterval:
		if line == activeLine || (line+1)%10 == 0 {
			label = fmt.Sprintf("%d", line+1)
		}
	default:
		label = fmt.Sprintf("%d", line+1)
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	if line == activeLine {
		style = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	}
	for i, r := range fmt.Sprintf("%*s ", gutter-1, label) {
		h.screen.SetContent(i, row, r, nil, style)
	}
}

func (h *demoHost) drawStatus(engine *app.Engine, width, row int) {
	text := h.status
	if !engine.Enabled() {
		text = "modal editing off (F2 to enable)"
	}
	snap := engine.Metrics().Snapshot()
	right := fmt.Sprintf("fixes %d  %s ", snap.Normalizations, h.contexts["mode"])

	style := tcell.StyleDefault.Reverse(true)
	col := 0
	for _, r := range " " + text {
		if col >= width {
			break
		}
		h.screen.SetContent(col, row, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
	for ; col < width-len(right); col++ {
		h.screen.SetContent(col, row, ' ', nil, style)
	}
	for _, r := range right {
		if col >= width {
			break
		}
		h.screen.SetContent(col, row, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
}

func (h *demoHost) placeCursor(active selection.Position, gutter, viewHeight int) {
	row := active.Line - h.top
	if row < 0 || row >= viewHeight {
		h.screen.HideCursor()
		return
	}
	col := gutter
	char := 0
	for _, r := range h.surface.doc.Line(active.Line) {
		if char >= active.Char {
			break
		}
		col += runewidth.RuneWidth(r)
		char++
	}
	h.screen.SetCursorStyle(cursorStyleFor(h.surface.cursor))
	h.screen.ShowCursor(col, row)
}

// decorationBackgrounds resolves the applied decorations into per-line
// background colors.
func (h *demoHost) decorationBackgrounds() map[int]tcell.Color {
	out := make(map[int]tcell.Color)
	for _, applied := range h.surface.decs {
		hex := applied.dec.Color
		if hex == "" {
			hex = themeColors[applied.dec.ThemeColor]
		}
		if hex == "" {
			continue
		}
		color := tcell.GetColor(hex)
		for _, sel := range applied.sels {
			for line := sel.Start().Line; line <= sel.End().Line; line++ {
				out[line] = color
			}
		}
	}
	return out
}

func cursorStyleFor(style host.CursorStyle) tcell.CursorStyle {
	switch style {
	case host.CursorBlock, host.CursorBlockOutline:
		return tcell.CursorStyleSteadyBlock
	case host.CursorUnderline, host.CursorUnderlineThin:
		return tcell.CursorStyleSteadyUnderline
	default:
		return tcell.CursorStyleSteadyBar
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
