package harness

import "github.com/roach88/recalc/internal/ir"

// TraceEvent records one executed step.
type TraceEvent struct {
	Op         string   `json:"op"` // "edit", "undo" or "redo"
	Cell       string   `json:"cell,omitempty"`
	Formula    string   `json:"formula,omitempty"`
	Rejected   bool     `json:"rejected,omitempty"`
	Recomputed []string `json:"recomputed,omitempty"`
	Error      string   `json:"error,omitempty"` // Edit error code, if the step failed
	Seq        int64    `json:"seq,omitempty"`   // Zero when the step failed
	Cursor     int      `json:"cursor"`
}

// Failed reports whether the step returned an edit error.
func (e TraceEvent) Failed() bool {
	return e.Error != ""
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all step expectations, assertions and the replay check hold.
	Pass bool `json:"pass"`

	// Session is the journal session the scenario ran under.
	Session string `json:"session"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the snapshot under the history cursor after the last step.
	Final ir.Snapshot `json:"-"`

	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  ir.EmptySnapshot(),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed step.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
