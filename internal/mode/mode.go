package mode

// Mode is the interaction state of a document. It governs selection shape
// and how the host interprets keys.
type Mode uint8

const (
	// ModeDisabled means the engine is inactive for all documents.
	ModeDisabled Mode = iota

	// ModeNormal is the command mode with a block-style caret.
	ModeNormal

	// ModeInsert is ordinary text insertion.
	ModeInsert

	// ModeAwaiting waits for a single follow-up character (e.g. after a
	// pending operator). It reverts to Normal on the next selection change.
	ModeAwaiting
)

// String returns the mode identifier used for context values.
func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeNormal:
		return "normal"
	case ModeInsert:
		return "insert"
	case ModeAwaiting:
		return "awaiting"
	default:
		return "unknown"
	}
}

// StatusText returns the status-bar text for the mode.
func (m Mode) StatusText() string {
	switch m {
	case ModeNormal:
		return "-- NORMAL --"
	case ModeInsert:
		return "-- INSERT --"
	case ModeAwaiting:
		return "-- AWAITING --"
	default:
		return ""
	}
}

// DecorationKey returns the host decoration key for the mode's highlight.
func (m Mode) DecorationKey() string {
	return "modaledit." + m.String()
}

// RequiresNonEmptySelections returns true for modes whose caret is drawn
// as a one-unit selection.
func (m Mode) RequiresNonEmptySelections() bool {
	return m == ModeNormal || m == ModeAwaiting
}
