package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database     string
	Session      string // optional - specific session only
	HistoryLimit int
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string           `json:"session"`
	Entries       int              `json:"entries"`
	Deterministic bool             `json:"deterministic"`
	Mismatches    []store.Mismatch `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the edit journal and verify determinism",
		Long: `Re-run every journaled session on a fresh workbook and compare each
entry's snapshot digest, history cursor, rejection flag and edit id with
what the engine produces now.

Sessions recorded with a history limit must be replayed with the same
--history-limit for cursors to agree.

Exit codes:
  0 - All sessions reproduced exactly
  1 - At least one session diverged
  2 - Command error (journal not found, unknown session, etc.)

Examples:
  recalc replay --db ./recalc.db
  recalc replay --db ./recalc.db --session 0192f3a0-...
  recalc replay --db ./recalc.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (defaults to RECALC_JOURNAL_DSN)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")
	cmd.Flags().IntVar(&opts.HistoryLimit, "history-limit", 0, "history limit the sessions were recorded with")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openJournal(opts.journalDSN(cmd, "db", opts.Database))
	if err != nil {
		return err
	}
	defer st.Close()

	wbOpts := []engine.Option{
		engine.WithHistoryLimit(opts.historyLimit(cmd, "history-limit", opts.HistoryLimit)),
		engine.WithLogger(opts.logger()),
	}

	var replays []store.ReplayResult
	if opts.Session != "" {
		r, err := st.ReplaySession(ctx, opts.Session, wbOpts...)
		if errors.Is(err, store.ErrNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay session", err)
		}
		replays = []store.ReplayResult{r}
	} else {
		replays, err = st.ReplayAll(ctx, wbOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay journal", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(replays)),
		TotalSessions:    len(replays),
		AllDeterministic: true,
	}
	for _, r := range replays {
		result.Sessions = append(result.Sessions, ReplaySessionResult{
			Session:       r.Session,
			Entries:       r.Entries,
			Deterministic: r.OK(),
			Mismatches:    r.Mismatches,
		})
		if !r.OK() {
			result.AllDeterministic = false
		}
	}

	if out := newFormatter(cmd, opts.RootOptions); out.JSON() {
		out.Indent = true
		var fail *CLIError
		if !result.AllDeterministic {
			fail = &CLIError{Code: "E_DETERMINISM", Message: "determinism verification failed"}
		}
		return out.Result(result, fail)
	}

	if len(result.Sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in journal.")
		return nil
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// openJournal opens an existing on-disk journal.
func openJournal(dsn string) (*store.Store, error) {
	if dsn == "" || dsn == store.MemoryDSN {
		return nil, NewExitError(ExitCommandError, "a persistent journal is required (--db or RECALC_JOURNAL_DSN)")
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Session: %s\n", status, s.Session)
		fmt.Fprintf(w, "  Entries: %d\n", s.Entries)

		if !s.Deterministic {
			fmt.Fprintf(w, "  Mismatches: %d\n", len(s.Mismatches))
			for i, m := range s.Mismatches {
				if !verbose && i == 3 {
					fmt.Fprintf(w, "    ... %d more (use --verbose)\n", len(s.Mismatches)-i)
					break
				}
				fmt.Fprintf(w, "    seq %d %s: want %q, got %q\n", m.Seq, m.Field, m.Want, m.Got)
			}
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
