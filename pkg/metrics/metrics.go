// Package metrics counts what a run did. Counters live in a per-run registry
// that can be written out in the Prometheus text format when the run ends.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "web_automator"

// Target outcomes.
const (
	OutcomeDone    = "done"
	OutcomeSkipped = "skipped"
	OutcomeAborted = "aborted"
)

// Action results.
const (
	ResultOK      = "ok"
	ResultIgnored = "ignored"
	ResultError   = "error"
)

// Recorder holds the counters of one run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	targets       *prometheus.CounterVec
	actions       *prometheus.CounterVec
	clicks        prometheus.Counter
	cookiesSynced prometheus.Counter
	sleepSeconds  prometheus.Counter
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		targets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "targets_total",
			Help:      "Target URLs processed, by outcome.",
		}, []string{"outcome"}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Instructions executed, by action and result.",
		}, []string{"action", "result"}),
		clicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Script-level clicks issued against the page.",
		}),
		cookiesSynced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cookie_syncs_total",
			Help:      "Domain runs that had to inject cookies.",
		}),
		sleepSeconds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sleep_seconds_total",
			Help:      "Time spent in action delays and waits.",
		}),
	}
}

func (r *Recorder) Target(outcome string) {
	if r == nil {
		return
	}
	r.targets.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Action(action, result string) {
	if r == nil {
		return
	}
	r.actions.WithLabelValues(action, result).Inc()
}

func (r *Recorder) Click() {
	if r == nil {
		return
	}
	r.clicks.Inc()
}

func (r *Recorder) CookiesSynced() {
	if r == nil {
		return
	}
	r.cookiesSynced.Inc()
}

func (r *Recorder) Slept(seconds float64) {
	if r == nil || seconds <= 0 {
		return
	}
	r.sleepSeconds.Add(seconds)
}

// Registry exposes the underlying registry, for tests and exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes every counter to path in the Prometheus text format.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}
	return nil
}
