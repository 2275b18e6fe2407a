package replay

import (
	"context"
	"testing"
	"time"

	"eeg-replay/internal/platform/logger"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*Scheduler, *clockwork.FakeClock, *recorder) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	rec := newRecorder(clock)
	s := NewScheduler(rec, clock, logger.Discard(), nil)
	t.Cleanup(s.Close)
	return s, clock, rec
}

// waitForTimer blocks until the pacing task is waiting on the clock.
func waitForTimer(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1), "pacing timer never armed")
}

func TestScheduler_ReplaysWithRecordedSpacing(t *testing.T) {
	s, clock, rec := newTestScheduler(t)
	ds := newDataset("spacing", 0, 10, 10, 50)

	require.NoError(t, s.Start(ds))
	rec.WaitFor(t, 2)
	waitForTimer(t, clock)

	clock.Advance(9 * time.Millisecond)
	waitForTimer(t, clock)
	assert.Equal(t, 2, rec.Len(), "no emission before the recorded gap elapses")

	clock.Advance(time.Millisecond)
	rec.WaitFor(t, 3)
	waitForTimer(t, clock)

	clock.Advance(time.Millisecond)
	rec.WaitFor(t, 4)
	waitForTimer(t, clock)

	clock.Advance(39 * time.Millisecond)
	waitForTimer(t, clock)
	assert.Equal(t, 4, rec.Len())

	clock.Advance(time.Millisecond)
	rec.WaitFor(t, 6)

	events := rec.Events()
	require.Len(t, events, 6)
	started, ok := events[0].(StreamStartedEvent)
	require.True(t, ok, "first event is stream_started")
	assert.Equal(t, "spacing", started.Dataset)
	assert.Equal(t, 4, started.TotalPoints)

	completed, ok := events[5].(StreamCompletedEvent)
	require.True(t, ok, "last event is stream_completed")
	assert.Equal(t, 4, completed.TotalPoints)

	evs, times := rec.EEG()
	require.Len(t, evs, 4)
	for i, ev := range evs {
		assert.Equal(t, i, ev.Index)
		assert.Equal(t, 4, ev.Total)
		assert.Equal(t, ds.Samples[i].Timestamp, ev.Timestamp)
	}
	var gaps []time.Duration
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i].Sub(times[i-1]))
	}
	assert.Equal(t, []time.Duration{10 * time.Millisecond, time.Millisecond, 40 * time.Millisecond}, gaps)

	st := s.Status()
	assert.False(t, st.Streaming)
	assert.Equal(t, 4, st.Index)
	assert.Same(t, ds, st.Dataset, "last dataset is kept after completion")
}

func TestScheduler_SingleSample(t *testing.T) {
	s, _, rec := newTestScheduler(t)

	require.NoError(t, s.Start(newDataset("one", 42)))
	rec.WaitFor(t, 3)

	assert.Equal(t, 1, rec.CountType(EventEEG))
	assert.Equal(t, 1, rec.CountType(EventStreamCompleted))
	assert.False(t, s.Streaming())
}

func TestScheduler_StopCancelsPendingWait(t *testing.T) {
	s, clock, rec := newTestScheduler(t)

	require.NoError(t, s.Start(newDataset("stopped", 0, 1000, 2000)))
	rec.WaitFor(t, 2)
	waitForTimer(t, clock)

	assert.True(t, s.Stop())
	assert.False(t, s.Stop(), "stop when idle is a no-op")

	clock.Advance(time.Hour)
	s.Close()

	assert.Equal(t, 2, rec.Len(), "nothing emitted after stop")
	assert.Zero(t, rec.CountType(EventStreamCompleted))

	st := s.Status()
	assert.False(t, st.Streaming)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, "stopped", st.Dataset.Name)
}

func TestScheduler_StopImmediatelyAfterStart(t *testing.T) {
	s, _, rec := newTestScheduler(t)

	require.NoError(t, s.Start(newDataset("quick", 0, 10, 20)))
	assert.True(t, s.Stop())
	s.Close()

	assert.LessOrEqual(t, rec.CountType(EventEEG), 1)
	assert.Zero(t, rec.CountType(EventStreamCompleted))
	assert.False(t, s.Streaming())
}

func TestScheduler_RejectsSecondStart(t *testing.T) {
	s, clock, rec := newTestScheduler(t)
	first := newDataset("first", 0, 10, 20)

	require.NoError(t, s.Start(first))
	rec.WaitFor(t, 2)
	waitForTimer(t, clock)

	err := s.Start(newDataset("second", 0, 5))
	assert.ErrorIs(t, err, ErrAlreadyStreaming)

	st := s.Status()
	assert.True(t, st.Streaming)
	assert.Same(t, first, st.Dataset)
	assert.Equal(t, 1, st.Index, "rejected start leaves progress untouched")
	assert.Equal(t, 1, rec.CountType(EventStreamStarted))
}

func TestScheduler_RejectsEmptyDataset(t *testing.T) {
	s, _, rec := newTestScheduler(t)

	assert.ErrorIs(t, s.Start(newDataset("empty")), ErrEmptyDataset)
	assert.ErrorIs(t, s.Start(nil), ErrEmptyDataset)
	assert.Equal(t, Status{}, s.Status())
	assert.Zero(t, rec.Len())

	require.NoError(t, s.Start(newDataset("done", 7)))
	rec.WaitFor(t, 3)
	assert.ErrorIs(t, s.Start(newDataset("empty")), ErrEmptyDataset)
	assert.Equal(t, "done", s.Status().Dataset.Name, "failed start keeps the previous session")
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	s, clock, rec := newTestScheduler(t)

	require.NoError(t, s.Start(newDataset("a", 0, 100)))
	rec.WaitFor(t, 2)
	waitForTimer(t, clock)
	s.Close()

	second := newDataset("b", 0, 100)
	require.NoError(t, s.Start(second))
	rec.WaitFor(t, 4)

	st := s.Status()
	assert.True(t, st.Streaming)
	assert.Same(t, second, st.Dataset)
	assert.Equal(t, 2, rec.CountType(EventStreamStarted))

	evs, _ := rec.EEG()
	require.Len(t, evs, 2)
	assert.Equal(t, 0, evs[1].Index, "new session restarts at index 0")
}
