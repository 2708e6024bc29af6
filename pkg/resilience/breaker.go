package resilience

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Operation is the call guarded by a CircuitBreaker.
type Operation func(ctx context.Context) (interface{}, error)

// CircuitBreaker stops calling a dependency after repeated failures.
type CircuitBreaker struct {
	name     string
	cb       *gobreaker.CircuitBreaker
	fallback FallbackFunc
	metrics  *breakerMetrics
}

// NewCircuitBreaker creates a breaker. A nil fallback returns ErrCircuitOpen.
func NewCircuitBreaker(settings Settings, fallback FallbackFunc) *CircuitBreaker {
	name := nextBreakerName(settings.Name)
	if fallback == nil {
		fallback = NoopFallback
	}

	metrics := newBreakerMetrics(name)
	threshold := settings.FailureThreshold
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			metrics.transition(from, to)
		},
		IsSuccessful: settings.IsSuccessful,
	}

	b := &CircuitBreaker{
		name:     name,
		cb:       gobreaker.NewCircuitBreaker(st),
		fallback: fallback,
		metrics:  metrics,
	}
	metrics.setState(gobreaker.StateClosed)
	return b
}

// Name returns the breaker's metric label.
func (b *CircuitBreaker) Name() string {
	return b.name
}

// State returns the current state: closed, half-open or open.
func (b *CircuitBreaker) State() string {
	return b.cb.State().String()
}

// Execute runs op unless the breaker is open, in which case the fallback answers.
func (b *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.metrics.rejected.Inc()
		return b.fallback(ctx, err)
	}
	b.metrics.result(err)
	return result, err
}
