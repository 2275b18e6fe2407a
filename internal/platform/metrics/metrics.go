package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the replay server.
type Metrics struct {
	registry              *prometheus.Registry
	requestsTotal         prometheus.Counter
	errorsTotal           prometheus.Counter
	streamsStartedTotal   prometheus.Counter
	streamsCompletedTotal prometheus.Counter
	streamsStoppedTotal   prometheus.Counter
	samplesEmittedTotal   prometheus.Counter
	framesDroppedTotal    prometheus.Counter
	subscribers           prometheus.Gauge
	streaming             prometheus.Gauge
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eeg_replay_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eeg_replay_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		streamsStartedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eeg_replay_streams_started_total",
			Help: "Total number of replay streams started",
		}),
		streamsCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eeg_replay_streams_completed_total",
			Help: "Total number of replay streams that emitted every sample",
		}),
		streamsStoppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eeg_replay_streams_stopped_total",
			Help: "Total number of replay streams stopped before completion",
		}),
		samplesEmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eeg_replay_samples_emitted_total",
			Help: "Total number of eeg events broadcast",
		}),
		framesDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eeg_replay_frames_dropped_total",
			Help: "Frames skipped for subscribers that were not ready or had a full send buffer",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eeg_replay_subscribers",
			Help: "Number of connected push channel subscribers",
		}),
		streaming: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eeg_replay_streaming",
			Help: "1 while a replay stream is active, 0 otherwise",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.streamsStartedTotal,
		m.streamsCompletedTotal,
		m.streamsStoppedTotal,
		m.samplesEmittedTotal,
		m.framesDroppedTotal,
		m.subscribers,
		m.streaming,
	)

	return m
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

func (m *Metrics) IncStreamsStarted() {
	m.streamsStartedTotal.Inc()
}

func (m *Metrics) IncStreamsCompleted() {
	m.streamsCompletedTotal.Inc()
}

func (m *Metrics) IncStreamsStopped() {
	m.streamsStoppedTotal.Inc()
}

func (m *Metrics) IncSamplesEmitted() {
	m.samplesEmittedTotal.Inc()
}

// AddFramesDropped records n frames that a broadcast could not hand to a subscriber.
func (m *Metrics) AddFramesDropped(n int) {
	m.framesDroppedTotal.Add(float64(n))
}

// SetSubscribers sets the subscribers gauge.
func (m *Metrics) SetSubscribers(n int) {
	m.subscribers.Set(float64(n))
}

// SetStreaming sets the streaming gauge to 1 or 0.
func (m *Metrics) SetStreaming(active bool) {
	if active {
		m.streaming.Set(1)
		return
	}
	m.streaming.Set(0)
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. subscribers).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
