package ir

// EntryKind names a journaled history transition.
type EntryKind string

const (
	EntryEdit EntryKind = "edit"
	EntryUndo EntryKind = "undo"
	EntryRedo EntryKind = "redo"
)

// JournalEntry records one committed history transition.
//
// For edits, Cell and Formula carry the user input and ID is the
// content-addressed EditID. Undo and redo entries leave those empty.
// Digest is the SnapshotDigest of the state the cursor points at afterwards.
type JournalEntry struct {
	ID       string    `json:"id"`
	Session  string    `json:"session"`
	Seq      int64     `json:"seq"` // Logical clock
	Kind     EntryKind `json:"kind"`
	Cell     CellID    `json:"cell,omitempty"`
	Formula  string    `json:"formula,omitempty"`
	Rejected bool      `json:"rejected,omitempty"` // Edit tagged #CIRCULAR
	Cursor   int       `json:"cursor"`
	Digest   string    `json:"digest"`
}
