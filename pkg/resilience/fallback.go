package resilience

import (
	"context"
	"fmt"

	"github.com/richxcame/waste-chat/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFunc answers a call the breaker refused. err is gobreaker's
// rejection reason.
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// NoopFallback wraps the rejection in ErrCircuitOpen.
func NoopFallback(_ context.Context, err error) (interface{}, error) {
	return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
}

// GracefulDegradation logs each refused call against dependency before
// returning ErrCircuitOpen.
func GracefulDegradation(dependency string) FallbackFunc {
	return func(ctx context.Context, err error) (interface{}, error) {
		logger.WithContext(ctx).Warn("dependency unavailable, call refused",
			zap.String("dependency", dependency),
			zap.Error(err),
		)
		return NoopFallback(ctx, err)
	}
}
