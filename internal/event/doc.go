// Package event defines the boundary events the engine consumes from its
// host (selection changes, document changes, focus changes, configuration
// changes) and a small synchronous hub for routing them.
package event
