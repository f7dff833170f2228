package config

// DefaultWordSeparators matches the host default when no per-language
// value is configured.
const DefaultWordSeparators = "`~!@#$%^&*()-=+[{]}\\|;:'\",.<>/?"

// Key identifies one observed configuration setting. The set is a fixed
// enumeration resolved at startup; there is no open-ended key dispatch.
type Key uint8

const (
	KeyEnabled Key = iota
	KeyAllowEmptySelections
	KeyNormalLineHighlight
	KeyNormalLineNumbers
	KeyNormalCursorStyle
	KeyInsertLineHighlight
	KeyInsertLineNumbers
	KeyInsertCursorStyle
	KeyEditorLineNumbers
	KeyEditorCursorStyle
	KeyWordSeparators

	keyCount
)

// String returns the dot-separated configuration path for the key.
func (k Key) String() string {
	switch k {
	case KeyEnabled:
		return "enabled"
	case KeyAllowEmptySelections:
		return "selections.allowEmpty"
	case KeyNormalLineHighlight:
		return "normal.lineHighlight"
	case KeyNormalLineNumbers:
		return "normal.lineNumbers"
	case KeyNormalCursorStyle:
		return "normal.cursorStyle"
	case KeyInsertLineHighlight:
		return "insert.lineHighlight"
	case KeyInsertLineNumbers:
		return "insert.lineNumbers"
	case KeyInsertCursorStyle:
		return "insert.cursorStyle"
	case KeyEditorLineNumbers:
		return "editor.lineNumbers"
	case KeyEditorCursorStyle:
		return "editor.cursorStyle"
	case KeyWordSeparators:
		return "editor.wordSeparators"
	default:
		return "unknown"
	}
}

// ModeSettings holds the raw configured values for one mode. Values are
// kept as strings; the mode package parses them with inherit fallbacks.
type ModeSettings struct {
	LineHighlight string
	LineNumbers   string
	CursorStyle   string
}

// Settings is the full observed configuration surface.
type Settings struct {
	// Enabled is the process-wide engine toggle.
	Enabled bool

	// AllowEmptySelections globally disables normalization when true.
	AllowEmptySelections bool

	// Normal and Insert are the per-mode visual settings.
	Normal ModeSettings
	Insert ModeSettings

	// EditorLineNumbers and EditorCursorStyle are the host's own global
	// preferences, read when a mode setting inherits.
	EditorLineNumbers string
	EditorCursorStyle string

	// WordSeparators maps language ID to that language's word-separator
	// characters. The empty key holds the global value.
	WordSeparators map[string]string
}

// Default returns the settings in effect before any file is loaded.
func Default() Settings {
	return Settings{
		Enabled:              true,
		AllowEmptySelections: true,
		Normal: ModeSettings{
			LineNumbers: "inherit",
			CursorStyle: "inherit",
		},
		Insert: ModeSettings{
			LineNumbers: "inherit",
			CursorStyle: "inherit",
		},
		EditorLineNumbers: "on",
		EditorCursorStyle: "line",
		WordSeparators:    map[string]string{"": DefaultWordSeparators},
	}
}

// SeparatorsFor returns the word separators for a language, falling back
// to the global value.
func (s Settings) SeparatorsFor(languageID string) string {
	if sep, ok := s.WordSeparators[languageID]; ok {
		return sep
	}
	if sep, ok := s.WordSeparators[""]; ok {
		return sep
	}
	return DefaultWordSeparators
}

// diff returns the keys whose values differ between two settings.
func diff(old, next Settings) []Key {
	var changed []Key
	add := func(k Key, differs bool) {
		if differs {
			changed = append(changed, k)
		}
	}

	add(KeyEnabled, old.Enabled != next.Enabled)
	add(KeyAllowEmptySelections, old.AllowEmptySelections != next.AllowEmptySelections)
	add(KeyNormalLineHighlight, old.Normal.LineHighlight != next.Normal.LineHighlight)
	add(KeyNormalLineNumbers, old.Normal.LineNumbers != next.Normal.LineNumbers)
	add(KeyNormalCursorStyle, old.Normal.CursorStyle != next.Normal.CursorStyle)
	add(KeyInsertLineHighlight, old.Insert.LineHighlight != next.Insert.LineHighlight)
	add(KeyInsertLineNumbers, old.Insert.LineNumbers != next.Insert.LineNumbers)
	add(KeyInsertCursorStyle, old.Insert.CursorStyle != next.Insert.CursorStyle)
	add(KeyEditorLineNumbers, old.EditorLineNumbers != next.EditorLineNumbers)
	add(KeyEditorCursorStyle, old.EditorCursorStyle != next.EditorCursorStyle)
	add(KeyWordSeparators, !separatorsEqual(old.WordSeparators, next.WordSeparators))

	return changed
}

func separatorsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
