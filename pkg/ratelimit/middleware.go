package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/waste-chat/pkg/common"
	"github.com/richxcame/waste-chat/pkg/logger"
	"go.uber.org/zap"
)

// Enforce takes a token for identity and reports whether the request may
// continue. Over the limit it writes a 429 with Retry-After and aborts.
// Redis failures let the request through. Handlers call it once they know
// a server-side identity; client-supplied values must not be used.
func Enforce(c *gin.Context, l *Limiter, identity string) bool {
	result, err := l.Allow(c.Request.Context(), identity)
	if err != nil {
		logger.WithContext(c.Request.Context()).Warn("rate limiter unavailable", zap.Error(err))
		return true
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(result.Remaining, 0)))

	if !result.Allowed {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds(result)))
		common.ErrorResponse(c, http.StatusTooManyRequests, "too many messages, please wait")
		c.Abort()
		return false
	}
	return true
}

// RetryAfterSeconds rounds the result's wait up to whole seconds.
func RetryAfterSeconds(r Result) int {
	return int(math.Ceil(r.RetryAfter.Seconds()))
}
