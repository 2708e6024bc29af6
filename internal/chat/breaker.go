package chat

import (
	"context"

	"github.com/richxcame/waste-chat/pkg/httpclient"
	"github.com/richxcame/waste-chat/pkg/resilience"
)

// GuardedBackend sends requests through a circuit breaker. Only transport
// failures count against it: a backend that answers with an error status
// is still reachable.
type GuardedBackend struct {
	next    BackendInterface
	breaker *resilience.CircuitBreaker
}

// NewGuardedBackend wraps next with a breaker built from settings.
func NewGuardedBackend(next BackendInterface, settings resilience.Settings) *GuardedBackend {
	settings.IsSuccessful = reachedBackend
	return &GuardedBackend{
		next:    next,
		breaker: resilience.NewCircuitBreaker(settings, resilience.GracefulDegradation(settings.Name)),
	}
}

// State returns the breaker state.
func (g *GuardedBackend) State() string {
	return g.breaker.State()
}

// Post implements BackendInterface.
func (g *GuardedBackend) Post(ctx context.Context, path string, body interface{}, headers map[string]string) ([]byte, error) {
	result, err := g.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return g.next.Post(ctx, path, body, headers)
	})
	data, _ := result.([]byte)
	return data, err
}

func reachedBackend(err error) bool {
	if err == nil {
		return true
	}
	_, ok := httpclient.AsHTTPError(err)
	return ok
}
