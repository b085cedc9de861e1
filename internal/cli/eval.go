package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database     string
	HistoryLimit int
	Quiet        bool // print only the final grid
}

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	Session string               `json:"session"`
	Steps   []StepReport         `json:"steps"`
	Cells   []engine.DisplayCell `json:"cells"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <command>...",
		Short: "Apply edits and print the resulting grid",
		Long: `Apply each argument in order to a fresh workbook and print every
materialised cell.

Each argument is CELL=TEXT (split at the first "="), undo, or redo.
TEXT starting with "=" is a formula.

Exit codes:
  0 - All commands applied (rejected edits and empty undo/redo included)
  2 - Malformed argument, invalid cell id, or journal error

Examples:
  recalc eval A1=5 B1==A1+1
  recalc eval A1=5 B1==A1*2 A1=7 undo
  recalc eval --db ./recalc.db A1==B1 B1==A1
  recalc eval --format json A1=5`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", store.MemoryDSN, "journal DSN (defaults to RECALC_JOURNAL_DSN)")
	cmd.Flags().IntVar(&opts.HistoryLimit, "history-limit", 0, "maximum retained snapshots (0 = unlimited)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the final grid")

	return cmd
}

func runEval(opts *EvalOptions, args []string, cmd *cobra.Command) error {
	commands := make([]Command, 0, len(args))
	for _, arg := range args {
		c, err := ParseCommand(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid argument", err)
		}
		if c.Op == "show" {
			return NewExitError(ExitCommandError, "show is only available in repl")
		}
		commands = append(commands, c)
	}

	limit := opts.historyLimit(cmd, "history-limit", opts.HistoryLimit)
	if limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("history limit must be non-negative, got %d", limit))
	}

	sh, err := openSheet(opts.journalDSN(cmd, "db", opts.Database), limit, opts.logger())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer sh.Close()

	ctx := context.Background()
	result := EvalResult{Session: sh.wb.Session(), Steps: make([]StepReport, 0, len(commands))}
	for _, c := range commands {
		report, err := sh.apply(ctx, c)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to apply "+c.Op, err)
		}
		if report.Error == string(engine.ErrCodeInvalidCellID) {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid cell id %q", c.Cell))
		}
		result.Steps = append(result.Steps, report)
	}
	result.Cells = engine.Render(sh.wb.Current())

	if out := newFormatter(cmd, opts.RootOptions); out.JSON() {
		return out.Success(result)
	}

	w := cmd.OutOrStdout()
	if !opts.Quiet {
		for _, r := range result.Steps {
			writeReport(w, r)
		}
		fmt.Fprintln(w)
	}
	return writeGrid(w, result.Cells)
}
