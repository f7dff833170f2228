// Package charclass classifies code points into the blank, punctuation,
// and word sets used by motion and selection commands.
//
// The blank table is fixed; the punctuation table comes from the host's
// per-language word-separator configuration. Set values compose the two
// tables with an inversion bit, giving all four named classifications from
// three primitives.
package charclass
