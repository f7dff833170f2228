package charclass

import "strings"

// Kind is the semantic classification of a code point.
type Kind uint8

const (
	// KindBlank is whitespace: line breaks, tabs, spaces, and the Unicode
	// space separators.
	KindBlank Kind = iota

	// KindPunctuation is a member of the document's configured word
	// separators that is not already blank.
	KindPunctuation

	// KindWord is everything else.
	KindWord
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindPunctuation:
		return "punctuation"
	case KindWord:
		return "word"
	default:
		return "unknown"
	}
}

// Set is a bitmask describing a character membership query. The Blank and
// Punctuation bits select which tables participate; the Invert bit negates
// the result. Three primitives compose into all four named classifications
// without special-casing each one.
type Set uint8

const (
	// Invert negates the membership result.
	Invert Set = 1 << iota

	// Blank selects the fixed whitespace table.
	Blank

	// Punctuation selects the configured word-separator table.
	Punctuation

	// Word matches characters that are neither blank nor punctuation.
	Word = Invert | Blank | Punctuation

	// NonBlank matches characters that are not blank.
	NonBlank = Invert | Blank
)

// IsBlank returns true if r is in the fixed whitespace table:
// CR, LF, TAB, space, plus the standard Unicode space separators.
func IsBlank(r rune) bool {
	switch r {
	case '\r', '\n', '\t', ' ',
		' ', // NBSP
		' ',
		' ', ' ', ' ', ' ', '　':
		return true
	}
	return r >= ' ' && r <= ' '
}

// Classify returns the kind of r given the document's configured word
// separators. Blank takes priority: a separator that is also whitespace
// classifies as blank.
func Classify(r rune, separators string) Kind {
	if IsBlank(r) {
		return KindBlank
	}
	if strings.ContainsRune(separators, r) {
		return KindPunctuation
	}
	return KindWord
}

// Contains tests r against the tables selected by s, applying inversion
// last. An empty separator table degrades punctuation membership to
// never-true.
func (s Set) Contains(r rune, separators string) bool {
	member := false
	if s&Blank != 0 && IsBlank(r) {
		member = true
	}
	if !member && s&Punctuation != 0 && strings.ContainsRune(separators, r) {
		member = true
	}
	if s&Invert != 0 {
		return !member
	}
	return member
}
