// Package selection provides the selection value types and the
// normalization algorithm that keeps selections caret-shaped in
// block-cursor modes.
//
// Positions and selections are immutable value types in the host's native
// text units. The Normalizer converts arbitrary editor selections into the
// non-empty, direction-consistent shape a block cursor requires, touching
// only the selections that violate the invariant.
package selection
