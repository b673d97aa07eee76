// Package metrics holds the prometheus collectors of the relay submitter.
//
// A nil *RelayMetrics is valid and records nothing, so components can be
// built without a registry in tests and one-shot CLI runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relay_submit"

// OutcomeSuccess labels submissions that produced a signature.
const OutcomeSuccess = "success"

type RelayMetrics struct {
	submissions *prometheus.CounterVec
	roundTrip   prometheus.Histogram
	logFailures prometheus.Counter
}

func NewRelayMetrics(reg prometheus.Registerer) (*RelayMetrics, error) {
	m := &RelayMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Transaction submissions by outcome (success or the failed stage).",
		}, []string{"outcome"}),
		roundTrip: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_round_trip_seconds",
			Help:      "Duration of the relay HTTP call, including failed calls.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		logFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_log_failures_total",
			Help:      "Accepted submissions whose signature could not be appended to the log.",
		}),
	}

	for _, c := range []prometheus.Collector{m.submissions, m.roundTrip, m.logFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *RelayMetrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *RelayMetrics) ObserveRoundTrip(d time.Duration) {
	if m == nil {
		return
	}
	m.roundTrip.Observe(d.Seconds())
}

func (m *RelayMetrics) IncLogFailure() {
	if m == nil {
		return
	}
	m.logFailures.Inc()
}

// Submissions exposes the submission counter for inspection.
func (m *RelayMetrics) Submissions() *prometheus.CounterVec { return m.submissions }

// LogFailures exposes the log failure counter for inspection.
func (m *RelayMetrics) LogFailures() prometheus.Counter { return m.logFailures }
