// Package metrics records session lifecycle events.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder receives lifecycle events from the session manager and the
// refresh coordinator.
type Recorder interface {
	LoginCompleted(outcome string)
	// RefreshCompleted is called once per network renewal.
	RefreshCompleted(outcome string, elapsed time.Duration)
	// RefreshShared is called for every caller that received the result of a
	// renewal started by someone else.
	RefreshShared()
	// RequestRetried is called when an authorized request is replayed after a 401.
	RequestRetried()
	Logout()
}

// Noop discards everything.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) LoginCompleted(string)                  {}
func (Noop) RefreshCompleted(string, time.Duration) {}
func (Noop) RefreshShared()                         {}
func (Noop) RequestRetried()                        {}
func (Noop) Logout()                                {}

// Prometheus exports the lifecycle events as Prometheus collectors.
type Prometheus struct {
	logins          *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	refreshShared   prometheus.Counter
	retries         prometheus.Counter
	logouts         prometheus.Counter
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates the collectors under namespace and registers them with reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Network calls to the renewal endpoint by outcome.",
		}, []string{"outcome"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refresh_duration_seconds",
			Help:      "Latency of renewal calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		refreshShared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refresh_shared_total",
			Help:      "Callers served by a renewal already in flight.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "request_retries_total",
			Help:      "Authorized requests replayed after a 401.",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Sessions cleared, explicitly or after a failed renewal.",
		}),
	}

	for _, c := range []prometheus.Collector{p.logins, p.refreshes, p.refreshDuration, p.refreshShared, p.retries, p.logouts} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register session metrics")
		}
	}
	return p, nil
}

func (p *Prometheus) LoginCompleted(outcome string) {
	p.logins.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) RefreshCompleted(outcome string, elapsed time.Duration) {
	p.refreshes.WithLabelValues(outcome).Inc()
	p.refreshDuration.Observe(elapsed.Seconds())
}

func (p *Prometheus) RefreshShared() {
	p.refreshShared.Inc()
}

func (p *Prometheus) RequestRetried() {
	p.retries.Inc()
}

func (p *Prometheus) Logout() {
	p.logouts.Inc()
}

// Refreshes returns the counter for the given outcome. Used by tests and
// diagnostics.
func (p *Prometheus) Refreshes(outcome string) prometheus.Counter {
	return p.refreshes.WithLabelValues(outcome)
}
