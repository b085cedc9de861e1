package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recalc/internal/engine"
	"github.com/roach88/recalc/internal/ir"
)

var _ engine.Sequencer = (*DeterministicClock)(nil)

// seqJournal records the seq of every appended entry.
type seqJournal struct {
	seqs []int64
}

func (j *seqJournal) Append(_ context.Context, e ir.JournalEntry) error {
	j.seqs = append(j.seqs, e.Seq)
	return nil
}

func TestDeterministicClock_Sequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	for want := int64(1); want <= 4; want++ {
		assert.Equal(t, want, clock.Next())
	}
	assert.Equal(t, int64(4), clock.Current())
}

func TestDeterministicClock_ResetRenumbersRerun(t *testing.T) {
	ctx := context.Background()
	clock := NewDeterministicClock()

	run := func() []int64 {
		var journal seqJournal
		wb := engine.NewWorkbook(
			engine.WithClock(clock),
			engine.WithJournal(&journal),
			engine.WithSessionGenerator(NewFixedSessionGenerator("rerun")),
		)
		_, _, err := wb.EditCell(ctx, "A1", "1")
		require.NoError(t, err)
		_, _, err = wb.EditCell(ctx, "B1", "=A1")
		require.NoError(t, err)
		return journal.seqs
	}

	first := run()
	clock.Reset()
	second := run()

	assert.Equal(t, []int64{1, 2}, first)
	assert.Equal(t, first, second)
}

func TestDeterministicClock_ConcurrentNext(t *testing.T) {
	clock := NewDeterministicClock()
	const goroutines = 100
	const calls = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	results := make([][]int64, goroutines)
	for i := range results {
		results[i] = make([]int64, calls)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				results[idx][j] = clock.Next()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, r := range results {
		for _, v := range r {
			require.False(t, seen[v], "duplicate seq %d", v)
			seen[v] = true
		}
	}
	for i := int64(1); i <= goroutines*calls; i++ {
		assert.True(t, seen[i], "missing seq %d", i)
	}
}

func TestDeterministicClock_RefusedUndoTakesNoSeq(t *testing.T) {
	ctx := context.Background()
	clock := NewDeterministicClock()
	wb := engine.NewWorkbook(engine.WithClock(clock))

	_, _, err := wb.EditCell(ctx, "A1", "1")
	require.NoError(t, err)
	_, err = wb.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), clock.Current())

	_, err = wb.Undo(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(2), clock.Current())
}
