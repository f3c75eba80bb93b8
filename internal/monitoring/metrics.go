// Package monitoring tracks request-level metrics for both binaries and
// serves them as JSON on /metrics.
package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	RequestCount   int64            `json:"request_count"`
	ErrorCount     int64            `json:"error_count"`
	ActiveRequests int64            `json:"active_requests"`
	TotalLatencyMS int64            `json:"total_latency_ms"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	StartedAt      time.Time        `json:"started_at"`
}

var (
	mu      sync.Mutex
	metrics = newMetrics()
)

func newMetrics() *Metrics {
	return &Metrics{
		StatusCodes: make(map[string]int64),
		StartedAt:   time.Now(),
	}
}

func resetGlobalMetrics() {
	mu.Lock()
	metrics = newMetrics()
	mu.Unlock()
}

// GetMetrics returns a copy safe to read without holding the lock.
func GetMetrics() Metrics {
	mu.Lock()
	defer mu.Unlock()

	out := *metrics
	out.StatusCodes = make(map[string]int64, len(metrics.StatusCodes))
	for k, v := range metrics.StatusCodes {
		out.StatusCodes[k] = v
	}
	return out
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		mu.Lock()
		metrics.ActiveRequests++
		mu.Unlock()

		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)

		mu.Lock()
		metrics.ActiveRequests--
		metrics.RequestCount++
		metrics.TotalLatencyMS += elapsed.Milliseconds()
		metrics.StatusCodes[strconv.Itoa(status)]++
		if status >= 500 {
			metrics.ErrorCount++
		}
		mu.Unlock()
	}
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := GetMetrics()

		avgLatency := int64(0)
		if m.RequestCount > 0 {
			avgLatency = m.TotalLatencyMS / m.RequestCount
		}

		c.JSON(http.StatusOK, gin.H{
			"request_count":   m.RequestCount,
			"error_count":     m.ErrorCount,
			"active_requests": m.ActiveRequests,
			"avg_latency_ms":  avgLatency,
			"status_codes":    m.StatusCodes,
			"uptime_seconds":  int64(time.Since(m.StartedAt).Seconds()),
		})
	}
}
