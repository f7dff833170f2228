package host

import (
	"github.com/dshills/modaledit/internal/engine/selection"
)

// DocumentID is the host's stable identifier for an open document.
type DocumentID string

// Document is the engine's read-only view of an open document.
type Document interface {
	selection.Document

	// ID returns the stable identifier for this document.
	ID() DocumentID

	// LanguageID returns the host's language identifier (e.g., "go"),
	// used to resolve per-language word separators.
	LanguageID() string
}

// CursorStyle is a caret rendering shape the host can display.
type CursorStyle uint8

const (
	CursorLine CursorStyle = iota
	CursorBlock
	CursorUnderline
	CursorLineThin
	CursorBlockOutline
	CursorUnderlineThin
)

// String returns a human-readable cursor style name.
func (c CursorStyle) String() string {
	switch c {
	case CursorLine:
		return "line"
	case CursorBlock:
		return "block"
	case CursorUnderline:
		return "underline"
	case CursorLineThin:
		return "line-thin"
	case CursorBlockOutline:
		return "block-outline"
	case CursorUnderlineThin:
		return "underline-thin"
	default:
		return "unknown"
	}
}

// LineNumberStyle is a gutter line-number rendering style.
type LineNumberStyle uint8

const (
	LineNumbersOn LineNumberStyle = iota
	LineNumbersOff
	LineNumbersRelative
	LineNumbersInterval
)

// String returns a human-readable line-number style name.
func (l LineNumberStyle) String() string {
	switch l {
	case LineNumbersOn:
		return "on"
	case LineNumbersOff:
		return "off"
	case LineNumbersRelative:
		return "relative"
	case LineNumbersInterval:
		return "interval"
	default:
		return "unknown"
	}
}

// Decoration describes a whole-line background highlight. Exactly one of
// Color (a literal hex value) or ThemeColor (a symbolic name resolved by
// the host theme) is set.
type Decoration struct {
	Color      string
	ThemeColor string
}

// Surface is one editor view onto a document. The engine writes computed
// selections and styles back through it; the host renders them.
type Surface interface {
	// Document returns the document shown in this surface.
	Document() Document

	// Selections returns the surface's current selections. There is
	// always at least one (possibly empty) selection.
	Selections() []selection.Selection

	// SetSelections replaces the surface's selections.
	SetSelections(sels []selection.Selection)

	// SetCursorStyle applies a caret shape.
	SetCursorStyle(style CursorStyle)

	// SetLineNumbers applies a gutter style.
	SetLineNumbers(style LineNumberStyle)

	// ApplyDecoration draws the decoration over the given ranges,
	// replacing any previous ranges under the same key.
	ApplyDecoration(key string, dec Decoration, sels []selection.Selection)

	// ClearDecoration removes the decoration under key. Clearing a key
	// that was never applied is a no-op.
	ClearDecoration(key string)
}

// Host is the surrounding editor. The engine consumes its state and
// publishes status through it; everything else about the host is opaque.
type Host interface {
	// ActiveSurface returns the focused surface, or nil when none.
	ActiveSurface() Surface

	// VisibleSurfaces returns all surfaces currently on screen.
	VisibleSurfaces() []Surface

	// SetStatus sets the global status-bar text.
	SetStatus(text string)

	// SetContext publishes a named value for host-level conditional
	// keybindings and UI.
	SetContext(key, value string)

	// DefaultCursorStyle returns the host's own cursor preference,
	// used when a mode inherits.
	DefaultCursorStyle() CursorStyle

	// DefaultLineNumbers returns the host's own line-number preference,
	// used when a mode inherits.
	DefaultLineNumbers() LineNumberStyle

	// WordSeparators returns the word-separator characters configured
	// for the given language.
	WordSeparators(languageID string) string
}

// Disposable is a host resource the engine must release. Disposing more
// than once is a no-op.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to the Disposable interface. It guards
// itself so double disposal is safe.
type DisposeFunc func()

// Dispose implements Disposable.
func (f *DisposeFunc) Dispose() {
	if f == nil || *f == nil {
		return
	}
	fn := *f
	*f = nil
	fn()
}
