package resilience

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

const metricsNamespace = "wastechat"

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "breaker_state",
		Help:      "Breaker position: 0 closed, 0.5 half-open, 1 open.",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "breaker_calls_total",
		Help:      "Calls through a breaker by result: ok, error or rejected.",
	}, []string{"breaker", "result"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "breaker_transitions_total",
		Help:      "Breaker state changes.",
	}, []string{"breaker", "from", "to"})

	unnamedBreakers uint64
)

// breakerMetrics holds the collectors bound to one breaker name.
type breakerMetrics struct {
	name     string
	state    prometheus.Gauge
	ok       prometheus.Counter
	failed   prometheus.Counter
	rejected prometheus.Counter
}

func newBreakerMetrics(name string) *breakerMetrics {
	return &breakerMetrics{
		name:     name,
		state:    breakerState.WithLabelValues(name),
		ok:       breakerCalls.WithLabelValues(name, "ok"),
		failed:   breakerCalls.WithLabelValues(name, "error"),
		rejected: breakerCalls.WithLabelValues(name, "rejected"),
	}
}

func (m *breakerMetrics) setState(s gobreaker.State) {
	m.state.Set(stateValue(s))
}

func (m *breakerMetrics) transition(from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(m.name, from.String(), to.String()).Inc()
	m.setState(to)
}

func (m *breakerMetrics) result(err error) {
	if err != nil {
		m.failed.Inc()
		return
	}
	m.ok.Inc()
}

func nextBreakerName(base string) string {
	if base != "" {
		return base
	}
	return "breaker-" + strconv.FormatUint(atomic.AddUint64(&unnamedBreakers, 1), 10)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	}
	return -1
}
