package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/store"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	Database     string
	HistoryLimit int
	Prompt       string
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Edit a workbook interactively",
		Long: `Read commands from stdin, one per line, against a single workbook.

Commands:
  A1 = text     set a cell (text starting with "=" is a formula)
  undo | redo   move through history
  show          print every materialised cell
  quit | exit   stop (end of input also stops)

Lines starting with "#" are ignored. Mistakes are reported and the
session continues. With --format json every command prints one JSON
object per line.

Examples:
  recalc repl
  printf 'A1 = 5\nB1 = =A1*2\nshow\n' | recalc repl --prompt ""
  recalc repl --db ./recalc.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", store.MemoryDSN, "journal DSN (defaults to RECALC_JOURNAL_DSN)")
	cmd.Flags().IntVar(&opts.HistoryLimit, "history-limit", 0, "maximum retained snapshots (0 = unlimited)")
	cmd.Flags().StringVar(&opts.Prompt, "prompt", "> ", "prompt written to stderr before each line")

	return cmd
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
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
	w := cmd.OutOrStdout()
	formatter := newFormatter(cmd, opts.RootOptions)
	prompt := func() {
		if opts.Prompt != "" {
			fmt.Fprint(formatter.GetErrWriter(), opts.Prompt)
		}
	}

	formatter.VerboseLog("session %s", sh.wb.Session())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			prompt()
			continue
		case line == "quit" || line == "exit":
			return nil
		}

		c, err := ParseCommand(line)
		if err != nil {
			if err := formatter.Error("E_SYNTAX", err.Error(), nil); err != nil {
				return err
			}
			prompt()
			continue
		}

		report, err := sh.apply(ctx, c)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to apply "+c.Op, err)
		}

		switch {
		case formatter.JSON() && c.Op == "show":
			err = formatter.Success(engine.Render(sh.wb.Current()))
		case formatter.JSON():
			err = formatter.Success(report)
		case c.Op == "show":
			err = writeGrid(w, engine.Render(sh.wb.Current()))
		default:
			writeReport(w, report)
		}
		if err != nil {
			return err
		}
		prompt()
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}
