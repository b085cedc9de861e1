// Package store provides the SQLite-backed journal of workbook transitions.
//
// Every committed edit, undo and redo is appended as one row of
// journal_entries. The journal is an audit log: the workbook never loads
// grid state from it. Replay re-runs a session on a fresh workbook and
// checks that every recorded digest is reproduced.
//
// # Ordering
//
// Seq is the workbook's logical clock. Queries order by
// seq ASC, id ASC COLLATE BINARY so results are identical across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Digests and edit ids are computed in internal/ir/hash.go using RFC 8785
// canonical JSON and SHA-256 with domain separation.
package store
