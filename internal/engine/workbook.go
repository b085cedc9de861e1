package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/recalc/internal/evaluator"
	"github.com/roach88/recalc/internal/ir"
)

// Sequencer stamps journal entries. Implemented by *Clock and by
// testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Journal receives one entry per committed history transition.
// Implemented by store.Store.
type Journal interface {
	Append(ctx context.Context, entry ir.JournalEntry) error
}

// Workbook is the engine surface the presentation layer talks to.
//
// It owns the single mutable reference to "the current snapshot", reached
// only through History. Snapshots it returns are immutable and may be held
// by readers indefinitely.
//
// Thread-safety model:
//   - EditCell, Undo, Redo: serialised by an internal mutex
//   - Current, CanUndo, CanRedo, Display: safe from any goroutine
//
// A transition is journaled before it is applied; if the journal rejects
// the entry the workbook state is unchanged.
type Workbook struct {
	mu         sync.Mutex
	propagator *Propagator
	history    *History
	clock      Sequencer
	journal    Journal
	session    string
	logger     *slog.Logger
}

type workbookConfig struct {
	eval         evaluator.Evaluator
	logger       *slog.Logger
	historyLimit int
	journal      Journal
	sessions     SessionGenerator
	clock        Sequencer
	initial      ir.Snapshot
}

// Option configures a Workbook.
type Option func(*workbookConfig)

// WithEvaluator sets the arithmetic evaluator. Default: evaluator.NewCUE().
func WithEvaluator(eval evaluator.Evaluator) Option {
	return func(c *workbookConfig) {
		c.eval = eval
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *workbookConfig) {
		c.logger = logger
	}
}

// WithHistoryLimit bounds the number of retained snapshots (0 = unlimited).
func WithHistoryLimit(limit int) Option {
	return func(c *workbookConfig) {
		c.historyLimit = limit
	}
}

// WithJournal records every transition to j.
func WithJournal(j Journal) Option {
	return func(c *workbookConfig) {
		c.journal = j
	}
}

// WithSessionGenerator sets the session id source. Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(c *workbookConfig) {
		c.sessions = g
	}
}

// WithClock sets the logical clock. Default: a new clock at 0.
func WithClock(clock Sequencer) Option {
	return func(c *workbookConfig) {
		c.clock = clock
	}
}

// WithInitial seeds history with s instead of the empty snapshot.
func WithInitial(s ir.Snapshot) Option {
	return func(c *workbookConfig) {
		c.initial = s
	}
}

// NewWorkbook creates a workbook whose history holds a single initial entry.
func NewWorkbook(opts ...Option) *Workbook {
	cfg := workbookConfig{initial: ir.EmptySnapshot()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.eval == nil {
		cfg.eval = evaluator.NewCUE()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.sessions == nil {
		cfg.sessions = UUIDv7Generator{}
	}
	if cfg.clock == nil {
		cfg.clock = NewClock()
	}

	resolver := NewResolver(cfg.eval, cfg.logger)
	return &Workbook{
		propagator: NewPropagator(resolver, cfg.logger),
		history:    NewHistory(cfg.initial, cfg.historyLimit),
		clock:      cfg.clock,
		journal:    cfg.journal,
		session:    cfg.sessions.Generate(),
		logger:     cfg.logger,
	}
}

// Session returns the id under which this workbook journals.
func (w *Workbook) Session() string {
	return w.session
}

// EditCell commits rawText as the new input of cell rawID.
//
// The id is normalised to upper case; a malformed id returns an
// INVALID_CELL_ID error and changes nothing. Every well-formed edit, including
// one rejected as #CIRCULAR, becomes an undoable history entry.
func (w *Workbook) EditCell(ctx context.Context, rawID, rawText string) (ir.Snapshot, Outcome, error) {
	id, err := ir.ParseCellID(rawID)
	if err != nil {
		return w.Current(), Outcome{}, NewInvalidCellIDError(rawID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next, out := w.propagator.Commit(id, rawText, w.history.Current())

	seq := w.clock.Current() + 1
	digest, err := ir.SnapshotDigest(next)
	if err != nil {
		return w.history.Current(), out, fmt.Errorf("edit %s: %w", id, err)
	}
	editID, err := ir.EditID(w.session, seq, id, rawText)
	if err != nil {
		return w.history.Current(), out, fmt.Errorf("edit %s: %w", id, err)
	}

	entry := ir.JournalEntry{
		ID:       editID,
		Session:  w.session,
		Seq:      seq,
		Kind:     ir.EntryEdit,
		Cell:     id,
		Formula:  rawText,
		Rejected: out.Rejected,
		Cursor:   w.projectedCommitCursor(),
		Digest:   digest,
	}
	if err := w.record(ctx, entry); err != nil {
		return w.history.Current(), out, fmt.Errorf("edit %s: %w", id, err)
	}
	w.clock.Next()
	w.history.Commit(next)

	w.logger.Info("edit committed",
		"session", w.session,
		"seq", seq,
		"cell", id,
		"rejected", out.Rejected,
		"recomputed", len(out.Recomputed),
		"digest", digest,
	)
	return next, out, nil
}

// Undo moves back one history entry and returns it.
// At the oldest entry it returns the current snapshot and NOTHING_TO_UNDO.
func (w *Workbook) Undo(ctx context.Context) (ir.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.history.CanUndo() {
		return w.history.Current(), errNothingToUndo
	}
	return w.move(ctx, ir.EntryUndo, w.history.Cursor()-1, w.history.Undo)
}

// Redo moves forward one history entry and returns it.
// At the newest entry it returns the current snapshot and NOTHING_TO_REDO.
func (w *Workbook) Redo(ctx context.Context) (ir.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.history.CanRedo() {
		return w.history.Current(), errNothingToRedo
	}
	return w.move(ctx, ir.EntryRedo, w.history.Cursor()+1, w.history.Redo)
}

// move journals a cursor transition to target, then applies it.
func (w *Workbook) move(ctx context.Context, kind ir.EntryKind, target int, apply func() (ir.Snapshot, error)) (ir.Snapshot, error) {
	seq := w.clock.Current() + 1
	digest, err := ir.SnapshotDigest(w.history.entries[target])
	if err != nil {
		return w.history.Current(), fmt.Errorf("%s: %w", kind, err)
	}

	entry := ir.JournalEntry{
		ID:      fmt.Sprintf("%s/%d", w.session, seq),
		Session: w.session,
		Seq:     seq,
		Kind:    kind,
		Cursor:  target,
		Digest:  digest,
	}
	if err := w.record(ctx, entry); err != nil {
		return w.history.Current(), fmt.Errorf("%s: %w", kind, err)
	}
	w.clock.Next()

	s, err := apply()
	if err != nil {
		return s, err
	}
	w.logger.Info("history moved",
		"session", w.session,
		"seq", seq,
		"kind", kind,
		"cursor", target,
		"digest", digest,
	)
	return s, nil
}

// projectedCommitCursor is the cursor History.Commit will leave behind.
func (w *Workbook) projectedCommitCursor() int {
	cursor := w.history.Cursor() + 1
	if w.history.limit > 0 && cursor >= w.history.limit {
		cursor = w.history.limit - 1
	}
	return cursor
}

func (w *Workbook) record(ctx context.Context, entry ir.JournalEntry) error {
	if w.journal == nil {
		return nil
	}
	return w.journal.Append(ctx, entry)
}

// Current returns the snapshot under the history cursor.
func (w *Workbook) Current() ir.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Current()
}

// CanUndo reports whether Undo would move the cursor.
func (w *Workbook) CanUndo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.CanUndo()
}

// CanRedo reports whether Redo would move the cursor.
func (w *Workbook) CanRedo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.CanRedo()
}

// Cursor returns the history cursor and the number of retained entries.
func (w *Workbook) Cursor() (cursor, length int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Cursor(), w.history.Len()
}

// Display returns the rendered value of id in the current snapshot and
// whether it is an error state. id is normalised like EditCell's, so "a1"
// reads A1; an id that does not parse reads as an empty cell.
func (w *Workbook) Display(id ir.CellID) (string, bool) {
	if parsed, err := ir.ParseCellID(string(id)); err == nil {
		id = parsed
	}
	return Display(w.Current(), id)
}
