// Package host declares the boundary between the mode engine and the
// editor that embeds it: documents, editor surfaces, and the handful of
// host services the engine consumes. The engine computes what should be
// shown; the host renders it.
package host
