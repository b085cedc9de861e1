package ir

// Version constants for the snapshot schema and engine.
const (
	// SchemaVersion is the snapshot schema version recorded in the journal.
	SchemaVersion = "1"

	// EngineVersion is the recalc engine version.
	EngineVersion = "0.1.0"
)
