package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/recalc/internal/ir"
	"github.com/roach88/recalc/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Cell     string // optional - filter edits to one cell
	List     bool
}

// TraceStats holds summary statistics for a session.
type TraceStats struct {
	TotalEntries int `json:"total_entries"`
	Edits        int `json:"edits"`
	Rejected     int `json:"rejected"`
	Undos        int `json:"undos"`
	Redos        int `json:"redos"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string            `json:"session"`
	Timeline []ir.JournalEntry `json:"timeline"`
	Stats    TraceStats        `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [session]",
		Short: "Print the journal of a session",
		Long: `Print the journaled edits, undos and redos of one session in seq
order, with the history cursor and snapshot digest after each.

Without a session argument the most recent session is shown. --list
prints a summary of every session instead.

Examples:
  recalc trace --db ./recalc.db
  recalc trace --db ./recalc.db 0192f3a0-...
  recalc trace --db ./recalc.db --cell B1
  recalc trace --db ./recalc.db --list --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := ""
			if len(args) == 1 {
				session = args[0]
			}
			return runTrace(opts, session, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (defaults to RECALC_JOURNAL_DSN)")
	cmd.Flags().StringVar(&opts.Cell, "cell", "", "show only edits of this cell (history moves are kept)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list sessions instead of tracing one")

	return cmd
}

func runTrace(opts *TraceOptions, session string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openJournal(opts.journalDSN(cmd, "db", opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.List {
		return runTraceList(ctx, opts, st, cmd)
	}

	if session == "" {
		session, err = st.LastSession(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, "journal has no sessions")
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find last session", err)
		}
	}

	entries, err := st.ReadSession(ctx, session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}
	if len(entries) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", session))
	}

	var cell ir.CellID
	if opts.Cell != "" {
		cell, err = ir.ParseCellID(opts.Cell)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --cell", err)
		}
	}

	result := TraceResult{
		Session:  session,
		Timeline: buildTimeline(entries, cell),
		Stats:    traceStats(entries),
	}

	if out := traceFormatter(cmd, opts); out.JSON() {
		return out.Result(result, nil)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

func runTraceList(ctx context.Context, opts *TraceOptions, st *store.Store, cmd *cobra.Command) error {
	summaries, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	if out := traceFormatter(cmd, opts); out.JSON() {
		return out.Result(summaries, nil)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%s  entries=%d last_seq=%d digest=%s\n", s.Session, s.Entries, s.LastSeq, shortDigest(s.LastDigest))
	}
	return nil
}

// buildTimeline keeps every history move and, when cell is set, only the
// edits of that cell.
func buildTimeline(entries []ir.JournalEntry, cell ir.CellID) []ir.JournalEntry {
	if cell == "" {
		return entries
	}
	timeline := make([]ir.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == ir.EntryEdit && e.Cell != cell {
			continue
		}
		timeline = append(timeline, e)
	}
	return timeline
}

func traceStats(entries []ir.JournalEntry) TraceStats {
	stats := TraceStats{TotalEntries: len(entries)}
	for _, e := range entries {
		switch e.Kind {
		case ir.EntryEdit:
			stats.Edits++
			if e.Rejected {
				stats.Rejected++
			}
		case ir.EntryUndo:
			stats.Undos++
		case ir.EntryRedo:
			stats.Redos++
		}
	}
	return stats
}

func traceFormatter(cmd *cobra.Command, opts *TraceOptions) *OutputFormatter {
	out := newFormatter(cmd, opts.RootOptions)
	out.Indent = true
	return out
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no entries)")
	} else {
		for _, e := range result.Timeline {
			formatTimelineEntry(w, e, verbose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Entries: %d\n", result.Stats.TotalEntries)
	fmt.Fprintf(w, "  Edits: %d (%d rejected)\n", result.Stats.Edits, result.Stats.Rejected)
	fmt.Fprintf(w, "  Undos: %d\n", result.Stats.Undos)
	fmt.Fprintf(w, "  Redos: %d\n", result.Stats.Redos)
	return nil
}

func formatTimelineEntry(w io.Writer, e ir.JournalEntry, verbose bool) {
	digest := shortDigest(e.Digest)
	if verbose {
		digest = e.Digest
	}

	switch e.Kind {
	case ir.EntryEdit:
		suffix := ""
		if e.Rejected {
			suffix = " [" + string(ir.TagCircular) + "]"
		}
		fmt.Fprintf(w, "  [%d] edit %s = %q%s  cursor=%d digest=%s\n", e.Seq, e.Cell, e.Formula, suffix, e.Cursor, digest)
	default:
		fmt.Fprintf(w, "  [%d] %s  cursor=%d digest=%s\n", e.Seq, e.Kind, e.Cursor, digest)
	}
	if verbose {
		fmt.Fprintf(w, "      id=%s\n", e.ID)
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
