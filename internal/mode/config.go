package mode

import (
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/modaledit/internal/host"
)

// CursorStyle is a configured caret shape, with an explicit inherit
// sentinel resolved against the host's own preference.
type CursorStyle uint8

const (
	CursorInherit CursorStyle = iota
	CursorLine
	CursorBlock
	CursorUnderline
	CursorLineThin
	CursorBlockOutline
	CursorUnderlineThin
)

// ParseCursorStyle maps a configuration value to a cursor style.
// Unrecognized values fall through to inherit.
func ParseCursorStyle(s string) CursorStyle {
	switch s {
	case "line":
		return CursorLine
	case "block":
		return CursorBlock
	case "underline":
		return CursorUnderline
	case "line-thin":
		return CursorLineThin
	case "block-outline":
		return CursorBlockOutline
	case "underline-thin":
		return CursorUnderlineThin
	default:
		return CursorInherit
	}
}

// Resolve returns the host cursor style, consulting the host preference
// for the inherit sentinel. The hard fallback is a line cursor.
func (c CursorStyle) Resolve(h host.Host) host.CursorStyle {
	switch c {
	case CursorLine:
		return host.CursorLine
	case CursorBlock:
		return host.CursorBlock
	case CursorUnderline:
		return host.CursorUnderline
	case CursorLineThin:
		return host.CursorLineThin
	case CursorBlockOutline:
		return host.CursorBlockOutline
	case CursorUnderlineThin:
		return host.CursorUnderlineThin
	default:
		if h != nil {
			return h.DefaultCursorStyle()
		}
		return host.CursorLine
	}
}

// LineNumberStyle is a configured gutter style, with an inherit sentinel.
type LineNumberStyle uint8

const (
	LineNumbersInherit LineNumberStyle = iota
	LineNumbersOn
	LineNumbersOff
	LineNumbersRelative
	LineNumbersInterval
)

// ParseLineNumberStyle maps a configuration value to a line-number style.
// Unrecognized values fall through to inherit.
func ParseLineNumberStyle(s string) LineNumberStyle {
	switch s {
	case "on":
		return LineNumbersOn
	case "off":
		return LineNumbersOff
	case "relative":
		return LineNumbersRelative
	case "interval":
		return LineNumbersInterval
	default:
		return LineNumbersInherit
	}
}

// Resolve returns the host line-number style, consulting the host
// preference for the inherit sentinel. The hard fallback is "on".
func (l LineNumberStyle) Resolve(h host.Host) host.LineNumberStyle {
	switch l {
	case LineNumbersOn:
		return host.LineNumbersOn
	case LineNumbersOff:
		return host.LineNumbersOff
	case LineNumbersRelative:
		return host.LineNumbersRelative
	case LineNumbersInterval:
		return host.LineNumbersInterval
	default:
		if h != nil {
			return h.DefaultLineNumbers()
		}
		return host.LineNumbersOn
	}
}

// Config is the visual and behavioral configuration of one mode. Two
// instances exist per engine (Normal and Insert); both live for the
// process lifetime and mutate in place on preference updates.
type Config struct {
	mu            sync.RWMutex
	cursor        CursorStyle
	lineNumbers   LineNumberStyle
	lineHighlight string
}

// NewConfig creates a mode configuration with everything inherited and no
// highlight decoration.
func NewConfig() *Config {
	return &Config{}
}

// SetCursorStyle updates the configured caret shape.
func (c *Config) SetCursorStyle(style CursorStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = style
}

// SetLineNumbers updates the configured gutter style.
func (c *Config) SetLineNumbers(style LineNumberStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lineNumbers = style
}

// SetLineHighlight updates the highlight color. A leading '#' marks a
// literal color; anything else is a theme color name; empty disables the
// decoration.
func (c *Config) SetLineHighlight(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lineHighlight = value
}

// CursorStyle resolves the caret shape against the host at call time.
// Inherit is never cached: host preference changes take effect on the
// next application.
func (c *Config) CursorStyle(h host.Host) host.CursorStyle {
	c.mu.RLock()
	style := c.cursor
	c.mu.RUnlock()
	return style.Resolve(h)
}

// LineNumbers resolves the gutter style against the host at call time.
func (c *Config) LineNumbers(h host.Host) host.LineNumberStyle {
	c.mu.RLock()
	style := c.lineNumbers
	c.mu.RUnlock()
	return style.Resolve(h)
}

// Decoration returns the highlight decoration, if configured. A malformed
// literal color disables the decoration rather than erroring.
func (c *Config) Decoration() (host.Decoration, bool) {
	c.mu.RLock()
	value := c.lineHighlight
	c.mu.RUnlock()

	if value == "" {
		return host.Decoration{}, false
	}
	if strings.HasPrefix(value, "#") {
		if _, err := colorful.Hex(value); err != nil {
			return host.Decoration{}, false
		}
		return host.Decoration{Color: value}, true
	}
	return host.Decoration{ThemeColor: value}, true
}
