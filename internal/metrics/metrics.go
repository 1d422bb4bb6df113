// Package metrics records Prometheus metrics for compiler sessions.
//
// A nil *Collector is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sass"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

// Callback kind labels.
const (
	KindCanonicalize = "canonicalize"
	KindImport       = "import"
	KindFileImport   = "file_import"
	KindFunctionCall = "function_call"
)

// Collector holds the session metrics.
type Collector struct {
	compilations *prometheus.CounterVec
	duration     prometheus.Histogram
	callbacks    *prometheus.CounterVec
	logEvents    *prometheus.CounterVec
	faults       prometheus.Counter
}

// New creates a Collector and registers it with reg. When reg already
// holds the same collectors (several sessions sharing one registry) the
// existing ones are reused. A nil reg returns a nil Collector.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, nil
	}

	c := &Collector{
		compilations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compilations_total",
			Help:      "Compilations by outcome (success, failure, error).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compilation_duration_seconds",
			Help:      "Wall time of compile exchanges, including callbacks.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Callback requests answered by the host, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		logEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_events_total",
			Help:      "Log events emitted by the compiler, by type.",
		}, []string{"type"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_faults_total",
			Help:      "Sessions that became unusable after a transport or protocol fault.",
		}),
	}

	var err error

	c.compilations, err = register(reg, c.compilations)
	if err != nil {
		return nil, err
	}

	c.duration, err = register(reg, c.duration)
	if err != nil {
		return nil, err
	}

	c.callbacks, err = register(reg, c.callbacks)
	if err != nil {
		return nil, err
	}

	c.logEvents, err = register(reg, c.logEvents)
	if err != nil {
		return nil, err
	}

	c.faults, err = register(reg, c.faults)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := errors.AsType[prometheus.AlreadyRegisteredError](err); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

// Compilation records a finished compile exchange.
func (c *Collector) Compilation(outcome string, d time.Duration) {
	if c == nil {
		return
	}

	c.compilations.WithLabelValues(outcome).Inc()
	c.duration.Observe(d.Seconds())
}

// Callback records an answered callback request.
func (c *Collector) Callback(kind, outcome string) {
	if c == nil {
		return
	}

	c.callbacks.WithLabelValues(kind, outcome).Inc()
}

// LogEvent records a compiler log event.
func (c *Collector) LogEvent(eventType string) {
	if c == nil {
		return
	}

	c.logEvents.WithLabelValues(eventType).Inc()
}

// SessionFault records a session becoming unusable.
func (c *Collector) SessionFault() {
	if c == nil {
		return
	}

	c.faults.Inc()
}
