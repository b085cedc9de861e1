package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/ir"
	"github.com/roach88/recalc/internal/store"
	"github.com/roach88/recalc/internal/testutil"
)

// Harness is the scenario execution engine.
// It drives a Workbook with a deterministic clock and session id.
type Harness struct {
	wb      *engine.Workbook
	store   *store.Store
	clock   *testutil.DeterministicClock
	session string
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory journal for isolation.
//
// Execution flow:
// 1. Create fresh in-memory journal and workbook
// 2. Execute steps, validating each expect clause
// 3. Evaluate assertions against the final snapshot
// 4. Replay the journaled session and report any divergence
//
// Run returns an error only for infrastructure failures; a scenario that
// does not hold is reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock()
	sessions := testutil.NewFixedSessionGenerator(scenario.Session)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	h := &Harness{
		wb: engine.NewWorkbook(
			engine.WithJournal(st),
			engine.WithClock(clock),
			engine.WithSessionGenerator(sessions),
			engine.WithHistoryLimit(scenario.HistoryLimit),
			engine.WithLogger(logger),
		),
		store:  st,
		clock:  clock,
		logger: logger,
	}
	h.session = h.wb.Session()

	ctx := context.Background()
	result := NewResult()
	result.Session = h.session

	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	result.Final = h.wb.Current()
	result.CanUndo = h.wb.CanUndo()
	result.CanRedo = h.wb.CanRedo()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	if err := h.verifyReplay(ctx, scenario.HistoryLimit, result); err != nil {
		return nil, fmt.Errorf("failed to replay: %w", err)
	}

	return result, nil
}

// executeSteps runs all steps and validates expect clauses.
//
// Each step:
// 1. Applies the edit, undo or redo to the workbook (journaled by the store)
// 2. Records a trace event with the seq and cursor afterwards
// 3. Validates the expect clause
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		event := TraceEvent{Op: step.op()}

		var (
			out engine.Outcome
			err error
		)
		switch {
		case step.Edit != nil:
			event.Cell = step.Edit.Cell
			event.Formula = step.Edit.Formula
			_, out, err = h.wb.EditCell(ctx, step.Edit.Cell, step.Edit.Formula)
		case step.Undo:
			_, err = h.wb.Undo(ctx)
		case step.Redo:
			_, err = h.wb.Redo(ctx)
		}

		if err != nil {
			var ee *engine.EditError
			if !errors.As(err, &ee) {
				return fmt.Errorf("step %d: %w", i, err)
			}
			event.Error = string(ee.Code)
		} else {
			event.Seq = h.clock.Current()
			if step.Edit != nil {
				event.Cell = string(out.Cell)
				event.Rejected = out.Rejected
				event.Recomputed = cellStrings(out.Recomputed)
			}
		}
		event.Cursor, _ = h.wb.Cursor()

		result.AddTrace(event)
		checkExpect(i, step, event, result)

		h.logger.Info("scenario step completed",
			"step", i,
			"op", event.Op,
			"cell", event.Cell,
			"seq", event.Seq,
			"error", event.Error,
		)
	}

	return nil
}

// checkExpect compares a step's outcome with its expect clause. A step that
// fails is an error unless the clause names the failure.
func checkExpect(index int, step Step, event TraceEvent, result *Result) {
	var want StepExpect
	if step.Expect != nil {
		want = *step.Expect
	}

	if event.Error != want.Error {
		if want.Error == "" {
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error %s", index, event.Op, event.Error))
		} else {
			result.AddError(fmt.Sprintf("steps[%d] %s: error = %q, want %q", index, event.Op, event.Error, want.Error))
		}
		return
	}

	if want.Rejected != nil && *want.Rejected != event.Rejected {
		result.AddError(fmt.Sprintf("steps[%d] edit %s: rejected = %t, want %t", index, event.Cell, event.Rejected, *want.Rejected))
	}

	if want.Recomputed != nil && !slices.Equal(want.Recomputed, event.Recomputed) {
		result.AddError(fmt.Sprintf("steps[%d] edit %s: recomputed = %v, want %v", index, event.Cell, event.Recomputed, want.Recomputed))
	}
}

// verifyReplay re-runs the journaled session on a fresh workbook and adds an
// error for every entry it does not reproduce.
func (h *Harness) verifyReplay(ctx context.Context, historyLimit int, result *Result) error {
	replay, err := h.store.ReplaySession(ctx, h.session,
		engine.WithHistoryLimit(historyLimit),
		engine.WithLogger(h.logger),
	)
	if errors.Is(err, store.ErrNotFound) {
		// Every step failed; nothing was journaled.
		return nil
	}
	if err != nil {
		return err
	}

	for _, m := range replay.Mismatches {
		result.AddError(fmt.Sprintf("replay seq %d: %s = %q, want %q", m.Seq, m.Field, m.Got, m.Want))
	}
	if !replay.Final.Equal(result.Final) {
		result.AddError("replay: final snapshot differs")
	}
	return nil
}

func cellStrings(ids []ir.CellID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
