package replay

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// writeFile creates root/rel with content, making parent directories.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

// samplesJSON renders a dataset file with the given timestamps and value 0.5.
func samplesJSON(timestamps ...int64) string {
	parts := make([]string, len(timestamps))
	for i, ts := range timestamps {
		parts[i] = `{"timestamp":` + strconv.FormatInt(ts, 10) + `,"value":0.5}`
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func newDataset(name string, timestamps ...int64) *Dataset {
	ds := &Dataset{Category: "test", Name: name, Path: "test/" + name + ".json"}
	for i, ts := range timestamps {
		ds.Samples = append(ds.Samples, Sample{Timestamp: ts, Value: float64(i%10) / 10})
	}
	return ds
}

// recorder is a Publisher that keeps every event with the clock time it was published at.
type recorder struct {
	clock clockwork.Clock

	mu     sync.Mutex
	events []any
	times  []time.Time
}

func newRecorder(clock clockwork.Clock) *recorder {
	return &recorder{clock: clock}
}

func (r *recorder) Broadcast(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.times = append(r.times, r.clock.Now())
}

func (r *recorder) Events() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// EEG returns the eeg events and the times they were published.
func (r *recorder) EEG() ([]EEGEvent, []time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var evs []EEGEvent
	var times []time.Time
	for i, e := range r.events {
		if ev, ok := e.(EEGEvent); ok {
			evs = append(evs, ev)
			times = append(times, r.times[i])
		}
	}
	return evs, times
}

func (r *recorder) CountType(eventType string) int {
	n := 0
	for _, e := range r.Events() {
		switch ev := e.(type) {
		case StreamStartedEvent:
			if ev.Type == eventType {
				n++
			}
		case EEGEvent:
			if ev.Type == eventType {
				n++
			}
		case StreamCompletedEvent:
			if ev.Type == eventType {
				n++
			}
		}
	}
	return n
}

func (r *recorder) WaitFor(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return r.Len() >= n }, 2*time.Second, time.Millisecond,
		"expected at least %d events", n)
}
