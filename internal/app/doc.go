// Package app wires the modal editing engine together: the enable and
// disable lifecycle, host event handling, pointer-drag debouncing, the
// saved-selection trackers, and the settings observers. It also carries
// the engine's logging and metrics facilities.
package app
