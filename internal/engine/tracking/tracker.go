package tracking

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/modaledit/internal/engine/selection"
)

// Change describes a single text edit: Start..End replaced by NewText.
// Positions use the host's native units.
type Change struct {
	Start   selection.Position
	End     selection.Position
	NewText string
}

// Shifter adjusts a selection for a text edit. The position-shift
// arithmetic lives with the host collaborator; the tracker only owns the
// list of selections to adjust.
type Shifter interface {
	Shift(sel selection.Selection, change Change) selection.Selection
}

// ShifterFunc adapts a function to the Shifter interface.
type ShifterFunc func(sel selection.Selection, change Change) selection.Selection

// Shift implements Shifter.
func (f ShifterFunc) Shift(sel selection.Selection, change Change) selection.Selection {
	return f(sel, change)
}

// Handle identifies a saved selection.
type Handle = uuid.UUID

// SavedSelection is a selection anchored to a document that survives
// concurrent text edits. Instances are owned by the tracker; callers hold
// the Handle and must Forget it when done.
type SavedSelection struct {
	handle Handle
	sel    selection.Selection
}

// Handle returns the saved selection's identifier.
func (s *SavedSelection) Handle() Handle { return s.handle }

// Selection returns the current (edit-adjusted) selection.
func (s *SavedSelection) Selection() selection.Selection { return s.sel }

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithShifter sets the position-shift collaborator.
func WithShifter(s Shifter) TrackerOption {
	return func(t *Tracker) {
		t.shifter = s
	}
}

// Tracker owns the saved selections of one document and keeps them valid
// across text edits. All operations are safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	saved   []*SavedSelection
	shifter Shifter
}

// NewTracker creates a saved-selection tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Save records a selection and returns its handle.
func (t *Tracker) Save(sel selection.Selection) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	saved := &SavedSelection{handle: uuid.New(), sel: sel}
	t.saved = append(t.saved, saved)
	return saved.handle
}

// Get returns the current value of a saved selection.
func (t *Tracker) Get(h Handle) (selection.Selection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, s := range t.saved {
		if s.handle == h {
			return s.sel, true
		}
	}
	return selection.Selection{}, false
}

// Forget removes a saved selection. Forgetting an unknown or already
// removed handle is a no-op.
func (t *Tracker) Forget(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.saved {
		if s.handle == h {
			t.saved = append(t.saved[:i], t.saved[i+1:]...)
			return
		}
	}
}

// Apply adjusts every saved selection for the given edits, in order.
// Without a configured Shifter the call is a no-op.
func (t *Tracker) Apply(changes []Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shifter == nil {
		return
	}
	for _, change := range changes {
		for _, s := range t.saved {
			s.sel = t.shifter.Shift(s.sel, change)
		}
	}
}

// List returns the current values of all saved selections.
func (t *Tracker) List() []selection.Selection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]selection.Selection, len(t.saved))
	for i, s := range t.saved {
		out[i] = s.sel
	}
	return out
}

// Len returns the number of saved selections.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.saved)
}

// Clear forgets all saved selections.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saved = nil
}
