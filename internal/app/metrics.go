package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks engine activity counters.
type Metrics struct {
	modeSwitches     atomic.Uint64
	normalizations   atomic.Uint64
	coalescedEvents  atomic.Uint64
	configReloads    atomic.Uint64
	suppressedEvents atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordModeSwitch records a completed mode transition.
func (m *Metrics) RecordModeSwitch() {
	m.modeSwitches.Add(1)
}

// RecordNormalization records a normalization pass that corrected at
// least one selection.
func (m *Metrics) RecordNormalization() {
	m.normalizations.Add(1)
}

// RecordCoalescedEvent records a pointer selection event superseded
// within the debounce window.
func (m *Metrics) RecordCoalescedEvent() {
	m.coalescedEvents.Add(1)
}

// RecordConfigReload records a configuration reload.
func (m *Metrics) RecordConfigReload() {
	m.configReloads.Add(1)
}

// RecordSuppressedEvent records a selection event ignored because the
// engine produced it itself.
func (m *Metrics) RecordSuppressedEvent() {
	m.suppressedEvents.Add(1)
}

// MetricsSnapshot is a point-in-time view of the counters.
type MetricsSnapshot struct {
	ModeSwitches     uint64
	Normalizations   uint64
	CoalescedEvents  uint64
	ConfigReloads    uint64
	SuppressedEvents uint64
	Uptime           time.Duration
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ModeSwitches:     m.modeSwitches.Load(),
		Normalizations:   m.normalizations.Load(),
		CoalescedEvents:  m.coalescedEvents.Load(),
		ConfigReloads:    m.configReloads.Load(),
		SuppressedEvents: m.suppressedEvents.Load(),
		Uptime:           time.Since(m.startTime),
	}
}
