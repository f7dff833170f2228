package mode

import (
	"sync"

	"github.com/dshills/modaledit/internal/engine/selection"
	"github.com/dshills/modaledit/internal/host"
)

// SelectionWriter applies a selection set to a surface. The engine wraps
// this with its re-entrancy guard so normalization-induced writes do not
// loop back through the selection-changed handler.
type SelectionWriter func(surface host.Surface, sels []selection.Selection)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSelectionWriter sets the function used to write normalized
// selections back to a surface.
func WithSelectionWriter(w SelectionWriter) ManagerOption {
	return func(m *Manager) {
		m.write = w
	}
}

// WithAllowEmpty sets the callback that reports whether empty selections
// are currently allowed by configuration.
func WithAllowEmpty(fn func() bool) ManagerOption {
	return func(m *Manager) {
		m.allowEmpty = fn
	}
}

// WithChangeCallback registers a callback invoked after every mode change.
func WithChangeCallback(fn func(doc host.DocumentID, from, to Mode)) ManagerOption {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// Manager is the process-wide mapping from document identity to current
// mode. It owns mode transitions and their side effects: decoration swap,
// cursor and line-number application, and status updates.
type Manager struct {
	mu         sync.Mutex
	hst        host.Host
	modes      map[host.DocumentID]Mode
	normal     *Config
	insert     *Config
	pending    map[host.DocumentID]host.Disposable
	normalizer *selection.Normalizer
	write      SelectionWriter
	allowEmpty func() bool
	onChange   func(doc host.DocumentID, from, to Mode)
}

// NewManager creates a mode manager bound to a host.
func NewManager(h host.Host, normal, insert *Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		hst:        h,
		modes:      make(map[host.DocumentID]Mode),
		normal:     normal,
		insert:     insert,
		pending:    make(map[host.DocumentID]host.Disposable),
		normalizer: selection.NewNormalizer(),
		write: func(surface host.Surface, sels []selection.Selection) {
			surface.SetSelections(sels)
		},
		allowEmpty: func() bool { return true },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ConfigFor returns the configuration governing a mode. Awaiting shares
// Normal's visuals; Disabled has none.
func (m *Manager) ConfigFor(mode Mode) *Config {
	switch mode {
	case ModeInsert:
		return m.insert
	case ModeNormal, ModeAwaiting:
		return m.normal
	default:
		return nil
	}
}

// SetMode transitions a surface's document to the target mode. Setting the
// mode a document already has is a no-op: no decoration recompute, no
// status update.
func (m *Manager) SetMode(surface host.Surface, target Mode) {
	doc := surface.Document()
	id := doc.ID()

	m.mu.Lock()
	current, tracked := m.modes[id]
	if tracked && current == target {
		m.mu.Unlock()
		return
	}
	m.modes[id] = target

	var pending host.Disposable
	if tracked && current == ModeAwaiting {
		pending = m.pending[id]
		delete(m.pending, id)
	}
	m.mu.Unlock()

	// Leaving Awaiting cancels the pending single-keystroke registration.
	if pending != nil {
		pending.Dispose()
	}

	m.applyVisuals(surface, target)

	if target != ModeInsert && target != ModeDisabled && !m.allowEmpty() {
		m.normalize(surface, target)
	}

	if m.isActive(surface) {
		m.hst.SetStatus(target.StatusText())
		m.hst.SetContext("mode", target.String())
	}

	if m.onChange != nil {
		m.onChange(id, current, target)
	}
}

// applyVisuals swaps the mode decorations and applies the target mode's
// cursor and line-number styles.
func (m *Manager) applyVisuals(surface host.Surface, target Mode) {
	cfg := m.ConfigFor(target)

	// Clear the counterpart mode's decoration before applying ours.
	switch target {
	case ModeInsert:
		surface.ClearDecoration(ModeNormal.DecorationKey())
	default:
		surface.ClearDecoration(ModeInsert.DecorationKey())
	}

	if cfg == nil {
		surface.ClearDecoration(ModeNormal.DecorationKey())
		surface.ClearDecoration(ModeInsert.DecorationKey())
		return
	}

	key := target.DecorationKey()
	if target == ModeAwaiting {
		key = ModeNormal.DecorationKey()
	}
	if dec, ok := cfg.Decoration(); ok {
		surface.ApplyDecoration(key, dec, surface.Selections())
	} else {
		surface.ClearDecoration(key)
	}

	surface.SetCursorStyle(cfg.CursorStyle(m.hst))
	surface.SetLineNumbers(cfg.LineNumbers(m.hst))
}

// RefreshVisuals reapplies the current mode's visuals to a surface, used
// after configuration changes.
func (m *Manager) RefreshVisuals(surface host.Surface) {
	mode := m.ModeFor(surface.Document().ID())
	if mode == ModeDisabled {
		return
	}
	m.applyVisuals(surface, mode)
	if m.isActive(surface) {
		m.hst.SetStatus(mode.StatusText())
		m.hst.SetContext("mode", mode.String())
	}
}

// Normalize runs the selection normalizer against a surface if its mode
// requires non-empty selections and configuration does not allow empty
// ones. Returns true when a corrected selection set was written back.
func (m *Manager) Normalize(surface host.Surface) bool {
	mode := m.ModeFor(surface.Document().ID())
	if !mode.RequiresNonEmptySelections() || m.allowEmpty() {
		return false
	}
	return m.normalize(surface, mode)
}

func (m *Manager) normalize(surface host.Surface, mode Mode) bool {
	sels := surface.Selections()
	fixed := m.normalizer.Normalize(surface.Document(), sels)
	if len(fixed) == len(sels) {
		same := true
		for i := range fixed {
			if !fixed[i].Equals(sels[i]) {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}

	m.write(surface, fixed)

	// The highlight tracks the active selection.
	if cfg := m.ConfigFor(mode); cfg != nil {
		if dec, ok := cfg.Decoration(); ok {
			key := mode.DecorationKey()
			if mode == ModeAwaiting {
				key = ModeNormal.DecorationKey()
			}
			surface.ApplyDecoration(key, dec, fixed)
		}
	}
	return true
}

// ModeFor returns the tracked mode of a document, defaulting to Normal
// for documents the engine has not yet materialized.
func (m *Manager) ModeFor(id host.DocumentID) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode, ok := m.modes[id]; ok {
		return mode
	}
	return ModeNormal
}

// ActiveMode returns the mode of the active document, or Disabled when no
// surface has focus.
func (m *Manager) ActiveMode() Mode {
	surface := m.hst.ActiveSurface()
	if surface == nil {
		return ModeDisabled
	}
	return m.ModeFor(surface.Document().ID())
}

// SetPending registers the disposable for an Awaiting mode's pending
// single-keystroke input. Any previous registration is disposed.
func (m *Manager) SetPending(id host.DocumentID, d host.Disposable) {
	m.mu.Lock()
	prev := m.pending[id]
	m.pending[id] = d
	m.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

// Forget drops a document's mode assignment and pending registration,
// used when the host reports the document closed.
func (m *Manager) Forget(id host.DocumentID) {
	m.mu.Lock()
	pending := m.pending[id]
	delete(m.pending, id)
	delete(m.modes, id)
	m.mu.Unlock()

	if pending != nil {
		pending.Dispose()
	}
}

// Reset forgets every mode assignment, used on engine disable.
func (m *Manager) Reset() {
	m.mu.Lock()
	pending := m.pending
	m.modes = make(map[host.DocumentID]Mode)
	m.pending = make(map[host.DocumentID]host.Disposable)
	m.mu.Unlock()

	for _, d := range pending {
		if d != nil {
			d.Dispose()
		}
	}
}

// Tracked returns the IDs of all documents with a materialized mode.
func (m *Manager) Tracked() []host.DocumentID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]host.DocumentID, 0, len(m.modes))
	for id := range m.modes {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) isActive(surface host.Surface) bool {
	active := m.hst.ActiveSurface()
	return active != nil && active.Document().ID() == surface.Document().ID()
}
