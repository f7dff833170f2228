package event

import (
	"github.com/dshills/modaledit/internal/engine/selection"
	"github.com/dshills/modaledit/internal/engine/tracking"
	"github.com/dshills/modaledit/internal/host"
)

// Topic identifies an event stream.
type Topic string

// Engine boundary topics.
const (
	// TopicSelectionChanged is published when a surface's selections change.
	TopicSelectionChanged Topic = "selection.changed"

	// TopicDocumentChanged is published when a document's text changes.
	TopicDocumentChanged Topic = "document.changed"

	// TopicDocumentClosed is published when the host closes a document.
	TopicDocumentClosed Topic = "document.closed"

	// TopicActiveSurfaceChanged is published when focus moves between surfaces.
	TopicActiveSurfaceChanged Topic = "surface.active.changed"

	// TopicConfigChanged is published when observed configuration changes.
	TopicConfigChanged Topic = "config.changed"
)

// Origin describes what produced a selection change.
type Origin uint8

const (
	// OriginCommand is a keyboard or command-driven change.
	OriginCommand Origin = iota

	// OriginPointer is a mouse or touch interaction, possibly mid-drag.
	OriginPointer
)

// String returns a human-readable origin name.
func (o Origin) String() string {
	switch o {
	case OriginCommand:
		return "command"
	case OriginPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// SelectionChanged is published when a surface's selections change.
type SelectionChanged struct {
	// Surface is where the change happened.
	Surface host.Surface

	// Selections is the new selection set.
	Selections []selection.Selection

	// Origin tags what produced the change.
	Origin Origin
}

// DocumentChanged is published when a document's text changes.
type DocumentChanged struct {
	// Document is the changed document.
	Document host.Document

	// Changes lists the edits in application order.
	Changes []tracking.Change
}

// DocumentClosed is published when the host closes a document.
type DocumentClosed struct {
	// ID identifies the closed document.
	ID host.DocumentID
}

// ActiveSurfaceChanged is published when focus moves between surfaces.
type ActiveSurfaceChanged struct {
	// Surface is the newly focused surface, nil when focus left the editor.
	Surface host.Surface
}

// ConfigChanged is published when observed configuration changes.
type ConfigChanged struct {
	// Keys lists the changed configuration keys.
	Keys []string
}
