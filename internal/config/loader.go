package config

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ParseError describes a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying parse error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// fileSettings mirrors the engine's TOML configuration file. Pointer
// fields distinguish "absent" from a zero value so absent keys keep their
// defaults.
type fileSettings struct {
	Enabled    *bool `toml:"enabled"`
	Selections struct {
		AllowEmpty *bool `toml:"allowEmpty"`
	} `toml:"selections"`
	Normal fileModeSettings `toml:"normal"`
	Insert fileModeSettings `toml:"insert"`
}

type fileModeSettings struct {
	LineHighlight *string `toml:"lineHighlight"`
	LineNumbers   *string `toml:"lineNumbers"`
	CursorStyle   *string `toml:"cursorStyle"`
}

// Load reads the engine's TOML configuration file and applies it over the
// defaults. A missing file is not an error; the defaults come back.
func Load(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var file fileSettings
	if err := toml.Unmarshal(data, &file); err != nil {
		return settings, &ParseError{Path: path, Message: err.Error(), Err: err}
	}

	applyFile(&settings, file)
	return settings, nil
}

func applyFile(settings *Settings, file fileSettings) {
	if file.Enabled != nil {
		settings.Enabled = *file.Enabled
	}
	if file.Selections.AllowEmpty != nil {
		settings.AllowEmptySelections = *file.Selections.AllowEmpty
	}
	applyFileMode(&settings.Normal, file.Normal)
	applyFileMode(&settings.Insert, file.Insert)
}

func applyFileMode(mode *ModeSettings, file fileModeSettings) {
	if file.LineHighlight != nil {
		mode.LineHighlight = *file.LineHighlight
	}
	if file.LineNumbers != nil {
		mode.LineNumbers = *file.LineNumbers
	}
	if file.CursorStyle != nil {
		mode.CursorStyle = *file.CursorStyle
	}
}

// ApplyHostOverlay reads the host's JSON settings document and overlays
// the editor-level values the engine observes: editor.lineNumbers,
// editor.cursorStyle, editor.wordSeparators, per-language
// "[lang]".editor.wordSeparators overrides, and the engine toggle.
// Host keys contain literal dots, so they are escaped in lookup paths.
func ApplyHostOverlay(settings *Settings, data []byte) {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return
	}

	if v := gjson.GetBytes(data, `editor\.lineNumbers`); v.Exists() {
		settings.EditorLineNumbers = v.String()
	}
	if v := gjson.GetBytes(data, `editor\.cursorStyle`); v.Exists() {
		settings.EditorCursorStyle = v.String()
	}
	if v := gjson.GetBytes(data, `editor\.wordSeparators`); v.Exists() {
		settings.WordSeparators[""] = v.String()
	}
	if v := gjson.GetBytes(data, `modaledit\.enabled`); v.Exists() {
		settings.Enabled = v.Bool()
	}

	// Language sections look like {"[go]": {"editor.wordSeparators": "..."}}.
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if !strings.HasPrefix(name, "[") || !strings.HasSuffix(name, "]") {
			return true
		}
		lang := name[1 : len(name)-1]
		if sep := value.Get(`editor\.wordSeparators`); sep.Exists() {
			settings.WordSeparators[lang] = sep.String()
		}
		return true
	})
}

// WriteEnabled flips the engine toggle inside the host's JSON settings
// file, preserving everything else in the document.
func WriteEnabled(path string, enabled bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading host settings %s: %w", path, err)
		}
		data = []byte("{}")
	}

	out, err := sjson.SetBytes(data, `modaledit\.enabled`, enabled)
	if err != nil {
		return fmt.Errorf("updating host settings: %w", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing host settings %s: %w", path, err)
	}
	return nil
}
