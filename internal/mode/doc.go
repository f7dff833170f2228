// Package mode implements the per-document mode state machine and the
// per-mode visual configuration.
//
// The Manager maps document identity to mode and owns transition side
// effects: decoration swap, cursor and line-number application, selection
// normalization on entering block-cursor modes, and status publishing for
// the active surface. Mode assignments are explicit entries removed on a
// document-closed notification, never weak references.
package mode
