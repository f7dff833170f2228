package config

import "sync"

// UpdateFunc receives the full settings after a change to its observed key.
type UpdateFunc func(s Settings)

// Store holds the current settings and a fixed table of per-key update
// functions. Observers register once at startup; Replace diffs the
// incoming settings against the current ones and invokes only the update
// functions whose keys changed.
type Store struct {
	mu        sync.RWMutex
	settings  Settings
	observers [keyCount][]UpdateFunc
}

// NewStore creates a store seeded with the given settings.
func NewStore(initial Settings) *Store {
	return &Store{settings: initial}
}

// Current returns the settings now in effect.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Observe registers an update function for one key.
func (s *Store) Observe(key Key, fn UpdateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers[key] = append(s.observers[key], fn)
}

// Replace installs new settings and notifies the update functions of
// every changed key. Returns the changed keys.
func (s *Store) Replace(next Settings) []Key {
	s.mu.Lock()
	changed := diff(s.settings, next)
	s.settings = next

	var notify []UpdateFunc
	for _, key := range changed {
		notify = append(notify, s.observers[key]...)
	}
	s.mu.Unlock()

	// Update functions run outside the lock; they read Current().
	for _, fn := range notify {
		fn(next)
	}
	return changed
}

// SetEnabled updates only the engine toggle, notifying its observers.
func (s *Store) SetEnabled(enabled bool) {
	next := s.Current()
	next.Enabled = enabled
	s.Replace(next)
}
