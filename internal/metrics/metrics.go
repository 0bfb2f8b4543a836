// Package metrics collects and exposes Prometheus metrics for dispatch runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/signdispatch/internal/domain/model"
)

// Recorder is the metrics interface used by the dispatch loop.
type Recorder interface {
	RecordOutcome(outcome model.Outcome)
	RecordCredentialConsumed()
	RecordPoolExhausted()
	RecordStepLatency(step model.Step, d time.Duration)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests  *prometheus.CounterVec
	consumed  prometheus.Counter
	exhausted prometheus.Counter
	latency   *prometheus.HistogramVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signdispatch_requests_total",
			Help: "Signing requests by terminal outcome.",
		}, []string{"outcome"}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signdispatch_credentials_consumed_total",
			Help: "Quota units charged to credentials.",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signdispatch_pool_exhausted_total",
			Help: "Runs stopped early because every credential was exhausted.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signdispatch_step_duration_seconds",
			Help:    "Latency of remote workflow steps.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
	}

	reg.MustRegister(c.requests, c.consumed, c.exhausted, c.latency)

	return c
}

// RecordOutcome counts a finished signing request.
func (c *Collector) RecordOutcome(outcome model.Outcome) {
	c.requests.WithLabelValues(string(outcome)).Inc()
}

// RecordCredentialConsumed counts one quota unit charged.
func (c *Collector) RecordCredentialConsumed() {
	c.consumed.Inc()
}

// RecordPoolExhausted counts an early stop on pool exhaustion.
func (c *Collector) RecordPoolExhausted() {
	c.exhausted.Inc()
}

// RecordStepLatency observes the duration of one remote step.
func (c *Collector) RecordStepLatency(step model.Step, d time.Duration) {
	c.latency.WithLabelValues(string(step)).Observe(d.Seconds())
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) RecordOutcome(model.Outcome)                 {}
func (Nop) RecordCredentialConsumed()                   {}
func (Nop) RecordPoolExhausted()                        {}
func (Nop) RecordStepLatency(model.Step, time.Duration) {}

// Handler returns an HTTP handler serving /metrics from gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
