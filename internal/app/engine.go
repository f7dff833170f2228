package app

import (
	"sync"
	"time"

	"github.com/dshills/modaledit/internal/config"
	"github.com/dshills/modaledit/internal/engine/selection"
	"github.com/dshills/modaledit/internal/engine/tracking"
	"github.com/dshills/modaledit/internal/event"
	"github.com/dshills/modaledit/internal/host"
	"github.com/dshills/modaledit/internal/mode"
)

// PointerDebounceDelay defers normalization of pointer-driven selection
// changes so the engine does not fight an in-progress drag.
const PointerDebounceDelay = 200 * time.Millisecond

// Reloader re-reads the configuration sources and returns fresh settings.
type Reloader func() (config.Settings, error)

// ToggleWriter persists the enabled flag back to the host settings.
type ToggleWriter func(enabled bool) error

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDebounceDelay overrides the pointer debounce delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.debounceDelay = d
		}
	}
}

// WithReloader sets the function used to re-read configuration when the
// host reports a configuration change.
func WithReloader(r Reloader) Option {
	return func(e *Engine) {
		e.reload = r
	}
}

// WithToggleWriter sets the function used to persist the enabled flag
// when the engine is toggled.
func WithToggleWriter(w ToggleWriter) Option {
	return func(e *Engine) {
		e.persistToggle = w
	}
}

// Engine is the process-wide modal editing engine: one per host, created
// on activation and torn down on deactivation. All engine state lives
// here rather than in package globals.
type Engine struct {
	mu  sync.Mutex
	hst host.Host
	hub *event.Hub

	store         *config.Store
	logger        *Logger
	metrics       *Metrics
	reload        Reloader
	persistToggle ToggleWriter

	normalCfg *mode.Config
	insertCfg *mode.Config
	manager   *mode.Manager

	trackers   map[host.DocumentID]*tracking.Tracker
	debouncers map[host.DocumentID]*Debouncer
	pointer    map[host.DocumentID]host.Surface
	ignoreNext map[host.DocumentID]bool

	subs          []*event.Subscription
	enabled       bool
	debounceDelay time.Duration
}

// New creates an engine bound to a host, an event hub, and a settings
// store. The engine is created inactive; call Start to apply the
// configured enabled state.
func New(h host.Host, hub *event.Hub, store *config.Store, opts ...Option) *Engine {
	e := &Engine{
		hst:           h,
		hub:           hub,
		store:         store,
		logger:        NopLogger(),
		metrics:       NewMetrics(),
		normalCfg:     mode.NewConfig(),
		insertCfg:     mode.NewConfig(),
		trackers:      make(map[host.DocumentID]*tracking.Tracker),
		debouncers:    make(map[host.DocumentID]*Debouncer),
		pointer:       make(map[host.DocumentID]host.Surface),
		ignoreNext:    make(map[host.DocumentID]bool),
		debounceDelay: PointerDebounceDelay,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.manager = mode.NewManager(h, e.normalCfg, e.insertCfg,
		mode.WithSelectionWriter(e.writeSelections),
		mode.WithAllowEmpty(func() bool {
			return e.store.Current().AllowEmptySelections
		}),
		mode.WithChangeCallback(func(id host.DocumentID, from, to mode.Mode) {
			e.metrics.RecordModeSwitch()
			e.logger.Debug("mode %s -> %s for %s", from, to, id)
		}),
	)

	e.applySettings(e.store.Current())
	e.observeSettings()

	return e
}

// Start applies the configured enabled state. Called once by the host
// after construction.
func (e *Engine) Start() {
	if e.store.Current().Enabled {
		e.Enable()
	}
}

// Enabled reports whether the engine is active.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Enable activates the engine: installs event subscriptions and puts
// every visible document into Normal mode. Enabling an enabled engine is
// a no-op.
func (e *Engine) Enable() {
	e.mu.Lock()
	if e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = true
	e.subs = []*event.Subscription{
		e.hub.Subscribe(event.TopicSelectionChanged, e.onSelectionChanged),
		e.hub.Subscribe(event.TopicDocumentChanged, e.onDocumentChanged),
		e.hub.Subscribe(event.TopicDocumentClosed, e.onDocumentClosed),
		e.hub.Subscribe(event.TopicActiveSurfaceChanged, e.onActiveSurfaceChanged),
		e.hub.Subscribe(event.TopicConfigChanged, e.onConfigChanged),
	}
	e.mu.Unlock()

	e.logger.Info("engine enabled")
	for _, surface := range e.hst.VisibleSurfaces() {
		e.manager.SetMode(surface, mode.ModeNormal)
	}
}

// Disable deactivates the engine: tears down subscriptions, reverts every
// visible surface to the host's native styles, clears decorations, and
// forgets all mode assignments and saved selections. Disabling a disabled
// engine is a no-op.
func (e *Engine) Disable() {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = false
	subs := e.subs
	e.subs = nil
	debouncers := e.debouncers
	e.trackers = make(map[host.DocumentID]*tracking.Tracker)
	e.debouncers = make(map[host.DocumentID]*Debouncer)
	e.pointer = make(map[host.DocumentID]host.Surface)
	e.ignoreNext = make(map[host.DocumentID]bool)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	for _, d := range debouncers {
		d.Cancel()
	}

	for _, surface := range e.hst.VisibleSurfaces() {
		surface.SetLineNumbers(e.hst.DefaultLineNumbers())
		surface.SetCursorStyle(e.hst.DefaultCursorStyle())
		surface.ClearDecoration(mode.ModeNormal.DecorationKey())
		surface.ClearDecoration(mode.ModeInsert.DecorationKey())
	}
	e.manager.Reset()

	e.hst.SetStatus("")
	e.hst.SetContext("mode", mode.ModeDisabled.String())
	e.logger.Info("engine disabled")
}

// Toggle flips the engine's enabled setting and persists the new value
// to the host settings. The resulting enable or disable happens through
// the settings observer, so a toggle behaves exactly like an external
// configuration change.
func (e *Engine) Toggle() {
	enabled := !e.store.Current().Enabled
	e.store.SetEnabled(enabled)

	if e.persistToggle != nil {
		if err := e.persistToggle(enabled); err != nil {
			e.logger.Warn("persisting enabled flag failed: %v", err)
		}
	}
}

// Manager exposes the mode state machine for command handlers.
func (e *Engine) Manager() *mode.Manager {
	return e.manager
}

// Metrics returns the engine's activity counters.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// WordSeparators returns the configured word separators for a document,
// preferring the per-language value.
func (e *Engine) WordSeparators(doc host.Document) string {
	return e.store.Current().SeparatorsFor(doc.LanguageID())
}

// SaveSelection anchors a selection of the given document so it tracks
// subsequent edits. The returned handle must be forgotten when done.
func (e *Engine) SaveSelection(id host.DocumentID, sel selection.Selection) tracking.Handle {
	return e.trackerFor(id).Save(sel)
}

// SavedSelection returns the current value of a saved selection.
func (e *Engine) SavedSelection(id host.DocumentID, h tracking.Handle) (selection.Selection, bool) {
	return e.trackerFor(id).Get(h)
}

// ForgetSelection releases a saved selection. Unknown handles are a
// safe no-op.
func (e *Engine) ForgetSelection(id host.DocumentID, h tracking.Handle) {
	e.trackerFor(id).Forget(h)
}

// applySettings pushes settings values into the mode configurations.
func (e *Engine) applySettings(s config.Settings) {
	e.normalCfg.SetLineHighlight(s.Normal.LineHighlight)
	e.normalCfg.SetLineNumbers(mode.ParseLineNumberStyle(s.Normal.LineNumbers))
	e.normalCfg.SetCursorStyle(mode.ParseCursorStyle(s.Normal.CursorStyle))
	e.insertCfg.SetLineHighlight(s.Insert.LineHighlight)
	e.insertCfg.SetLineNumbers(mode.ParseLineNumberStyle(s.Insert.LineNumbers))
	e.insertCfg.SetCursorStyle(mode.ParseCursorStyle(s.Insert.CursorStyle))
}

// observeSettings wires the fixed set of observed keys to their typed
// update functions. Registration happens once, at construction.
func (e *Engine) observeSettings() {
	e.store.Observe(config.KeyEnabled, func(s config.Settings) {
		if s.Enabled {
			e.Enable()
		} else {
			e.Disable()
		}
	})

	visual := func(s config.Settings) {
		e.applySettings(s)
		e.refreshVisible()
	}
	for _, key := range []config.Key{
		config.KeyNormalLineHighlight,
		config.KeyNormalLineNumbers,
		config.KeyNormalCursorStyle,
		config.KeyInsertLineHighlight,
		config.KeyInsertLineNumbers,
		config.KeyInsertCursorStyle,
		config.KeyEditorLineNumbers,
		config.KeyEditorCursorStyle,
	} {
		e.store.Observe(key, visual)
	}

	e.store.Observe(config.KeyAllowEmptySelections, func(s config.Settings) {
		if !s.AllowEmptySelections {
			e.normalizeVisible()
		}
	})
}

// refreshVisible reapplies mode visuals to every visible surface, picking
// up changed configuration including inherit resolution.
func (e *Engine) refreshVisible() {
	if !e.Enabled() {
		return
	}
	for _, surface := range e.hst.VisibleSurfaces() {
		e.manager.RefreshVisuals(surface)
	}
}

// normalizeVisible runs a normalization pass over every visible surface.
func (e *Engine) normalizeVisible() {
	if !e.Enabled() {
		return
	}
	for _, surface := range e.hst.VisibleSurfaces() {
		if e.manager.Normalize(surface) {
			e.metrics.RecordNormalization()
		}
	}
}

// writeSelections applies normalized selections to a surface, flagging
// the resulting selection-changed event so the handler ignores it.
func (e *Engine) writeSelections(surface host.Surface, sels []selection.Selection) {
	id := surface.Document().ID()
	e.mu.Lock()
	e.ignoreNext[id] = true
	e.mu.Unlock()

	surface.SetSelections(sels)
}

// trackerFor returns the saved-selection tracker of a document, creating
// it on first use.
func (e *Engine) trackerFor(id host.DocumentID) *tracking.Tracker {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.trackers[id]
	if !ok {
		t = tracking.NewTracker(tracking.WithShifter(tracking.LineShifter{}))
		e.trackers[id] = t
	}
	return t
}
