package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/recalc/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is loaded from the environment before any subcommand runs.
	// Flags that are set explicitly take precedence over it.
	Config config.Config

	// Logger writes engine diagnostics to stderr.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the recalc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "recalc - reactive spreadsheet recalculation",
		Long: `A reactive spreadsheet engine: edit a cell and every dependent
formula is recomputed, with cycle rejection and undo/redo history.

Settings are read from RECALC_JOURNAL_DSN, RECALC_LOG_LEVEL,
RECALC_HISTORY_LIMIT and RECALC_FORMAT; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg

			if !cmd.Flags().Changed("format") {
				opts.Format = cfg.Format
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			opts.Logger = cfg.NewLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// logger returns the configured logger, or one that discards everything
// when the command runs without the root pre-run (as in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// journalDSN returns flagValue when the flag was set, otherwise the
// configured DSN, otherwise flagValue.
func (o *RootOptions) journalDSN(cmd *cobra.Command, flagName, flagValue string) string {
	if cmd.Flags().Changed(flagName) || o.Config.JournalDSN == "" {
		return flagValue
	}
	return o.Config.JournalDSN
}

// historyLimit returns flagValue when the flag was set, otherwise the
// configured limit.
func (o *RootOptions) historyLimit(cmd *cobra.Command, flagName string, flagValue int) int {
	if cmd.Flags().Changed(flagName) {
		return flagValue
	}
	if o.Config.HistoryLimit > 0 {
		return o.Config.HistoryLimit
	}
	return flagValue
}
