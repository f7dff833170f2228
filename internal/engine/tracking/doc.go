// Package tracking keeps externally anchored selections valid across text
// edits. Each document gets its own Tracker; callers save a selection,
// receive a handle, and forget it when done. The position-shift arithmetic
// is pluggable so a host with richer edit semantics can supply its own.
package tracking
