package replay

import "time"

// minDelay keeps the pacing loop moving when timestamps repeat or go backwards.
const minDelay = time.Millisecond

// Delay is the pause between emitting prev and next: the gap between their
// recorded timestamps in milliseconds, never less than one millisecond.
func Delay(prev, next Sample) time.Duration {
	gap := time.Duration(next.Timestamp-prev.Timestamp) * time.Millisecond
	if gap < minDelay {
		return minDelay
	}
	return gap
}

// session is the state of one replay. Its methods are pure transitions;
// the Scheduler serializes access and does the waiting.
type session struct {
	dataset *Dataset
	index   int
	active  bool
	stopCh  chan struct{}
}

func newSession(ds *Dataset) *session {
	return &session{dataset: ds, active: true, stopCh: make(chan struct{})}
}

// tick emits the sample at the current index and advances. It returns the
// event, the delay before the next tick and whether the sequence is exhausted,
// in which case the session is no longer active.
func (s *session) tick() (ev EEGEvent, delay time.Duration, done bool) {
	samples := s.dataset.Samples
	cur := samples[s.index]
	ev = EEGEvent{
		Type:      EventEEG,
		Timestamp: cur.Timestamp,
		Value:     cur.Value,
		Index:     s.index,
		Total:     len(samples),
	}

	s.index++
	if s.index >= len(samples) {
		s.active = false
		return ev, 0, true
	}
	return ev, Delay(cur, samples[s.index]), false
}

// stop deactivates the session and wakes its pacing task. It reports
// whether the session was active.
func (s *session) stop() bool {
	if !s.active {
		return false
	}
	s.active = false
	close(s.stopCh)
	return true
}
