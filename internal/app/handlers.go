package app

import (
	"github.com/dshills/modaledit/internal/event"
	"github.com/dshills/modaledit/internal/host"
	"github.com/dshills/modaledit/internal/mode"
)

// onSelectionChanged reacts to a selection change on a surface. Changes
// produced by the engine's own normalization writes are suppressed.
// Pointer-driven changes are debounced so an in-progress drag settles
// before normalization runs; everything else normalizes synchronously.
func (e *Engine) onSelectionChanged(ev any) {
	sc, ok := ev.(event.SelectionChanged)
	if !ok {
		return
	}
	surface := sc.Surface
	id := surface.Document().ID()

	e.mu.Lock()
	if e.ignoreNext[id] {
		delete(e.ignoreNext, id)
		e.mu.Unlock()
		e.metrics.RecordSuppressedEvent()
		return
	}
	e.mu.Unlock()

	// Any selection movement cancels a pending single-keystroke wait.
	if e.manager.ModeFor(id) == mode.ModeAwaiting {
		e.manager.SetMode(surface, mode.ModeNormal)
	}

	current := e.manager.ModeFor(id)
	if !current.RequiresNonEmptySelections() {
		return
	}
	if e.store.Current().AllowEmptySelections {
		return
	}

	if sc.Origin == event.OriginPointer {
		e.debouncePointer(surface)
		return
	}

	e.cancelPointer(id)
	if e.manager.Normalize(surface) {
		e.metrics.RecordNormalization()
	}
}

// debouncePointer schedules a deferred normalization for a surface,
// coalescing with any already pending one for the same document.
func (e *Engine) debouncePointer(surface host.Surface) {
	id := surface.Document().ID()

	e.mu.Lock()
	e.pointer[id] = surface
	d, ok := e.debouncers[id]
	if !ok {
		d = NewDebouncer(e.debounceDelay, func() {
			e.flushPointer(id)
		})
		e.debouncers[id] = d
	}
	e.mu.Unlock()

	if d.IsPending() {
		e.metrics.RecordCoalescedEvent()
	}
	d.Call()
}

// flushPointer runs the deferred normalization for a document once its
// pointer debounce settles.
func (e *Engine) flushPointer(id host.DocumentID) {
	e.mu.Lock()
	surface := e.pointer[id]
	delete(e.pointer, id)
	enabled := e.enabled
	e.mu.Unlock()

	if !enabled || surface == nil {
		return
	}
	if e.manager.Normalize(surface) {
		e.metrics.RecordNormalization()
	}
}

// cancelPointer drops any deferred pointer normalization for a document.
// A command-driven change supersedes the pointer state it would have
// corrected.
func (e *Engine) cancelPointer(id host.DocumentID) {
	e.mu.Lock()
	d := e.debouncers[id]
	delete(e.pointer, id)
	e.mu.Unlock()

	if d != nil {
		d.Cancel()
	}
}

// onDocumentChanged shifts every saved selection of the changed document
// across its edits.
func (e *Engine) onDocumentChanged(ev any) {
	dc, ok := ev.(event.DocumentChanged)
	if !ok {
		return
	}
	id := dc.Document.ID()

	e.mu.Lock()
	t := e.trackers[id]
	e.mu.Unlock()

	if t == nil || len(dc.Changes) == 0 {
		return
	}
	t.Apply(dc.Changes)
}

// onDocumentClosed releases every per-document resource: mode assignment,
// pending keystroke registration, saved selections, and debounce state.
func (e *Engine) onDocumentClosed(ev any) {
	dc, ok := ev.(event.DocumentClosed)
	if !ok {
		return
	}
	id := dc.ID

	e.mu.Lock()
	d := e.debouncers[id]
	delete(e.debouncers, id)
	delete(e.pointer, id)
	delete(e.trackers, id)
	delete(e.ignoreNext, id)
	e.mu.Unlock()

	if d != nil {
		d.Cancel()
	}
	e.manager.Forget(id)
	e.logger.Debug("document %s closed, state released", id)
}

// onActiveSurfaceChanged materializes a mode for newly focused documents
// and republishes mode status for already tracked ones.
func (e *Engine) onActiveSurfaceChanged(ev any) {
	asc, ok := ev.(event.ActiveSurfaceChanged)
	if !ok {
		return
	}
	surface := asc.Surface
	if surface == nil {
		e.hst.SetStatus("")
		return
	}

	id := surface.Document().ID()
	for _, tracked := range e.manager.Tracked() {
		if tracked == id {
			e.manager.RefreshVisuals(surface)
			return
		}
	}
	e.manager.SetMode(surface, mode.ModeNormal)
}

// onConfigChanged reloads settings through the configured reloader and
// publishes the diff to the settings observers.
func (e *Engine) onConfigChanged(ev any) {
	if _, ok := ev.(event.ConfigChanged); !ok {
		return
	}
	if e.reload == nil {
		return
	}

	settings, err := e.reload()
	if err != nil {
		e.logger.Warn("configuration reload failed: %v", err)
		return
	}
	changed := e.store.Replace(settings)
	if len(changed) > 0 {
		e.metrics.RecordConfigReload()
		e.logger.Info("configuration reloaded, %d keys changed", len(changed))
	}
}
