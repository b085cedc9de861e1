package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/store"
)

// Command is one parsed line of eval or repl input.
type Command struct {
	Op      string // "edit", "undo", "redo", "show"
	Cell    string
	Formula string
}

// ParseCommand parses "undo", "redo", "show" or "ID=TEXT".
//
// The cell id and text are split at the first "=" and trimmed, so
// "B1==A1+1" and "B1 = =A1+1" both set B1 to "=A1+1". Surrounding
// whitespace is input syntax, not cell text; to keep it, write the text as a
// Go string literal: `A1 = " 5 "` sets A1 to " 5 ". A quoted text that does
// not unquote cleanly is kept as typed.
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	switch strings.ToLower(trimmed) {
	case "undo", "redo", "show":
		return Command{Op: strings.ToLower(trimmed)}, nil
	}

	id, text, ok := strings.Cut(trimmed, "=")
	if !ok {
		return Command{}, fmt.Errorf("expected CELL=TEXT, undo, redo or show; got %q", line)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Command{}, fmt.Errorf("missing cell id in %q", line)
	}
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, `"`) {
		if unquoted, err := strconv.Unquote(text); err == nil {
			text = unquoted
		}
	}
	return Command{Op: "edit", Cell: id, Formula: text}, nil
}

// StepReport describes the effect of one applied command.
type StepReport struct {
	Op         string   `json:"op"`
	Cell       string   `json:"cell,omitempty"`
	Formula    string   `json:"formula,omitempty"`
	Text       string   `json:"text,omitempty"`
	Rejected   bool     `json:"rejected,omitempty"`
	Recomputed []string `json:"recomputed,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// sheet is a journaled workbook opened for one CLI invocation.
type sheet struct {
	wb *engine.Workbook
	st *store.Store
}

func openSheet(dsn string, historyLimit int, logger *slog.Logger) (*sheet, error) {
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	wb := engine.NewWorkbook(
		engine.WithJournal(st),
		engine.WithHistoryLimit(historyLimit),
		engine.WithLogger(logger),
	)
	logger.Debug("session opened", "session", wb.Session(), "journal", dsn)
	return &sheet{wb: wb, st: st}, nil
}

func (s *sheet) Close() error {
	return s.st.Close()
}

// apply runs c against the workbook.
//
// Undo or redo with nothing to move is reported in StepReport.Error, as is
// an invalid cell id. Other errors come from the journal and are returned.
func (s *sheet) apply(ctx context.Context, c Command) (StepReport, error) {
	report := StepReport{Op: c.Op, Cell: c.Cell, Formula: c.Formula}

	var err error
	switch c.Op {
	case "edit":
		var out engine.Outcome
		_, out, err = s.wb.EditCell(ctx, c.Cell, c.Formula)
		if err == nil {
			report.Cell = string(out.Cell)
			report.Text, _ = s.wb.Display(out.Cell)
			report.Rejected = out.Rejected
			for _, id := range out.Recomputed {
				report.Recomputed = append(report.Recomputed, string(id))
			}
		}
	case "undo":
		_, err = s.wb.Undo(ctx)
	case "redo":
		_, err = s.wb.Redo(ctx)
	case "show":
		return report, nil
	default:
		return report, fmt.Errorf("unknown op %q", c.Op)
	}

	var ee *engine.EditError
	if errors.As(err, &ee) {
		report.Error = string(ee.Code)
		return report, nil
	}
	return report, err
}

// writeGrid prints cells as an aligned ID / FORMULA / VALUE table.
func writeGrid(w io.Writer, cells []engine.DisplayCell) error {
	if len(cells) == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CELL\tFORMULA\tVALUE")
	for _, c := range cells {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Formula, c.Text)
	}
	return tw.Flush()
}

// writeReport prints a one-line summary of a step.
func writeReport(w io.Writer, r StepReport) {
	switch {
	case r.Error != "":
		fmt.Fprintf(w, "%s: %s\n", r.Op, r.Error)
	case r.Op == "edit" && r.Rejected:
		fmt.Fprintf(w, "%s = %s  -> %s (rejected)\n", r.Cell, r.Formula, r.Text)
	case r.Op == "edit":
		fmt.Fprintf(w, "%s = %s  -> %s", r.Cell, r.Formula, r.Text)
		if len(r.Recomputed) > 0 {
			fmt.Fprintf(w, "  (recomputed %s)", strings.Join(r.Recomputed, ", "))
		}
		fmt.Fprintln(w)
	default:
		fmt.Fprintln(w, r.Op)
	}
}
