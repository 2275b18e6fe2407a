package replay

import (
	"log/slog"
	"sync"
	"time"

	"eeg-replay/internal/platform/metrics"

	"github.com/jonboulle/clockwork"
)

// progressLogEvery controls how often the pacing loop logs progress.
const progressLogEvery = 100

// Publisher delivers events to every subscriber. broadcast.Hub implements it.
type Publisher interface {
	Broadcast(event any)
}

// Status is a read-only snapshot of the scheduler.
type Status struct {
	Streaming bool
	// Dataset is the most recently started dataset, kept after the stream ends.
	Dataset *Dataset
	// Index is the number of samples emitted so far.
	Index int
}

// Scheduler owns the single stream session and replays its samples with the
// recorded spacing. Start, Stop and every tick run under one mutex, so at most
// one stream is active and the index only moves forward.
type Scheduler struct {
	mu      sync.Mutex
	current *session
	wg      sync.WaitGroup

	pub     Publisher
	clock   clockwork.Clock
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewScheduler returns an idle Scheduler. m may be nil to disable metric recording.
func NewScheduler(pub Publisher, clock clockwork.Clock, log *slog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{pub: pub, clock: clock, log: log, metrics: m}
}

// Start begins replaying ds. It fails with ErrAlreadyStreaming while another
// stream is active and with ErrEmptyDataset when ds has no samples; in both
// cases the existing session is left as it was.
func (s *Scheduler) Start(ds *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.active {
		return ErrAlreadyStreaming
	}
	if ds == nil || len(ds.Samples) == 0 {
		return ErrEmptyDataset
	}

	sess := newSession(ds)
	s.current = sess
	s.pub.Broadcast(StreamStartedEvent{
		Type:        EventStreamStarted,
		Timestamp:   s.clock.Now().UnixMilli(),
		Dataset:     ds.Name,
		TotalPoints: ds.Len(),
	})
	if s.metrics != nil {
		s.metrics.IncStreamsStarted()
		s.metrics.SetStreaming(true)
	}
	s.log.Info("stream started",
		slog.String("dataset", ds.Name),
		slog.String("path", ds.Path),
		slog.Int("samples", ds.Len()))

	s.wg.Add(1)
	go s.run(sess)
	return nil
}

// Stop ends the active stream. A pending wait is abandoned without emitting.
// It is a no-op when idle and reports whether a stream was stopped.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || !s.current.stop() {
		return false
	}
	if s.metrics != nil {
		s.metrics.IncStreamsStopped()
		s.metrics.SetStreaming(false)
	}
	s.log.Info("stream stopped",
		slog.String("dataset", s.current.dataset.Name),
		slog.Int("index", s.current.index))
	return true
}

// Streaming reports whether a stream is active.
func (s *Scheduler) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.active
}

// Status returns a snapshot of the current or last session.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Status{}
	}
	return Status{
		Streaming: s.current.active,
		Dataset:   s.current.dataset,
		Index:     s.current.index,
	}
}

// Close stops any active stream and waits for its pacing task to exit.
func (s *Scheduler) Close() {
	s.Stop()
	s.wg.Wait()
}

// run is the pacing task of one session.
func (s *Scheduler) run(sess *session) {
	defer s.wg.Done()

	for {
		delay, done := s.step(sess)
		if done {
			return
		}

		timer := s.clock.NewTimer(delay)
		select {
		case <-timer.Chan():
		case <-sess.stopCh:
			timer.Stop()
			return
		}
	}
}

// step emits one sample if sess is still the active session.
func (s *Scheduler) step(sess *session) (delay time.Duration, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != sess || !sess.active {
		return 0, true
	}

	ev, delay, done := sess.tick()
	s.pub.Broadcast(ev)
	if s.metrics != nil {
		s.metrics.IncSamplesEmitted()
	}
	if ev.Index%progressLogEvery == 0 {
		s.log.Debug("sample emitted",
			slog.Int("index", ev.Index),
			slog.Int("total", ev.Total),
			slog.Float64("value", ev.Value))
	}

	if done {
		s.pub.Broadcast(StreamCompletedEvent{
			Type:        EventStreamCompleted,
			Timestamp:   s.clock.Now().UnixMilli(),
			TotalPoints: ev.Total,
		})
		if s.metrics != nil {
			s.metrics.IncStreamsCompleted()
			s.metrics.SetStreaming(false)
		}
		s.log.Info("stream completed",
			slog.String("dataset", sess.dataset.Name),
			slog.Int("samples", ev.Total))
	}
	return delay, done
}
