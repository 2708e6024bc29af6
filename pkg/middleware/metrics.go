package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wastechat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Widget HTTP requests by route and status.",
		},
		[]string{"service", "method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wastechat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Widget HTTP request latency. Websocket upgrades are excluded.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "method", "route", "status"},
	)

	httpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wastechat",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served, open websockets included.",
		},
		[]string{"service"},
	)
)

// Metrics records request counts and latencies labelled by the matched route.
// Unmatched paths share the "not_found" route label.
func Metrics(serviceName string) gin.HandlerFunc {
	inFlight := httpRequestsInFlight.WithLabelValues(serviceName)

	return func(c *gin.Context) {
		inFlight.Inc()
		start := time.Now()

		c.Next()

		inFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = "not_found"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(serviceName, method, route, status).Inc()
		if isWebsocketUpgrade(c.Request) {
			return
		}
		httpRequestDuration.WithLabelValues(serviceName, method, route, status).Observe(time.Since(start).Seconds())
	}
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
