// Package ir provides the foundational data types of the recalculation engine.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Value is a sealed variant with exactly three cases: Number, Literal, ErrorValue
//   - Snapshot is immutable; all changes go through a Builder and produce a new Snapshot
//   - Dependents are ordered slices (never maps) so propagation order is deterministic
//   - Canonical JSON never carries floats; numbers are encoded as decimal strings
package ir
