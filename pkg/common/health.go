package common

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

var startedAt = time.Now()

// HealthResponse is the body of /healthz and /health/ready.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthCheck answers liveness checks. It never consults dependencies.
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  StatusHealthy,
			Service: serviceName,
			Version: version,
			Uptime:  time.Since(startedAt).Truncate(time.Second).String(),
		})
	}
}

// HealthCheckWithDeps answers readiness checks. Checks run concurrently and
// any failure turns the response into a 503.
func HealthCheckWithDeps(serviceName, version string, checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := runChecks(checks)

		status, code := StatusHealthy, http.StatusOK
		for _, r := range results {
			if r != StatusHealthy {
				status, code = StatusUnhealthy, http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, HealthResponse{
			Status:  status,
			Service: serviceName,
			Version: version,
			Checks:  results,
		})
	}
}

func runChecks(checks map[string]func() error) map[string]string {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(checks))
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check func() error) {
			defer wg.Done()
			result := StatusHealthy
			if err := check(); err != nil {
				result = StatusUnhealthy + ": " + err.Error()
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return results
}
