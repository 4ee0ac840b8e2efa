// Package metrics keeps in-process request and authentication counters.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlbahja/01-blog/internal/audit"

	"github.com/labstack/echo/v4"
)

const unmatchedRoute = "unmatched"

// Collector holds the performance and auth counters for one server.
// Safe for concurrent use via atomics and mutex.
type Collector struct {
	totalRequests  int64
	activeRequests int64
	totalErrors    int64
	totalLatencyMs int64
	maxLatencyMs   int64

	mu                sync.Mutex
	startTime         time.Time
	endpointCounts    map[string]int64
	endpointLatencies map[string]int64 // total ms per endpoint
	statusCodes       map[int]int64
	authEvents        map[string]int64

	now func() time.Time
}

var _ audit.Recorder = (*Collector)(nil)

func NewCollector() *Collector {
	return &Collector{
		startTime:         time.Now(),
		endpointCounts:    make(map[string]int64),
		endpointLatencies: make(map[string]int64),
		statusCodes:       make(map[int]int64),
		authEvents:        make(map[string]int64),
		now:               time.Now,
	}
}

// Middleware tracks request count, latency, active requests and error rates.
// It must run outside the request logger so the response status is final.
func (m *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.activeRequests, 1)
			start := m.now()

			err := next(c)

			latencyMs := m.now().Sub(start).Milliseconds()
			atomic.AddInt64(&m.activeRequests, -1)
			atomic.AddInt64(&m.totalRequests, 1)
			atomic.AddInt64(&m.totalLatencyMs, latencyMs)

			// lock-free max
			for {
				current := atomic.LoadInt64(&m.maxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&m.maxLatencyMs, current, latencyMs) {
					break
				}
			}

			statusCode := c.Response().Status
			path := c.Path()
			if path == "" {
				path = unmatchedRoute
			}
			endpoint := fmt.Sprintf("%s %s", c.Request().Method, path)

			m.mu.Lock()
			m.endpointCounts[endpoint]++
			m.endpointLatencies[endpoint] += latencyMs
			m.statusCodes[statusCode]++
			m.mu.Unlock()
			if statusCode >= http.StatusBadRequest {
				atomic.AddInt64(&m.totalErrors, 1)
			}

			return err
		}
	}
}

// Record counts an auth event by type and outcome, e.g. "login_failure:failure".
func (m *Collector) Record(_ context.Context, event *audit.Event) error {
	key := string(event.Type) + ":" + string(event.Status)
	m.mu.Lock()
	m.authEvents[key]++
	m.mu.Unlock()
	return nil
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	RequestsPerSec float64          `json:"requests_per_sec"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	EndpointAvgMs  map[string]int64 `json:"endpoint_avg_latency_ms"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	AuthEvents     map[string]int64 `json:"auth_events"`
	Memory         MemoryStats      `json:"memory"`
}

func (m *Collector) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.totalRequests)
	errors := atomic.LoadInt64(&m.totalErrors)
	totalLatency := atomic.LoadInt64(&m.totalLatencyMs)

	var avgLatency, errorRate float64
	if total > 0 {
		avgLatency = float64(totalLatency) / float64(total)
		errorRate = float64(errors) / float64(total) * 100
	}

	m.mu.Lock()
	uptime := m.now().Sub(m.startTime).Seconds()
	endpointCounts := make(map[string]int64, len(m.endpointCounts))
	endpointAvg := make(map[string]int64, len(m.endpointLatencies))
	for k, v := range m.endpointCounts {
		endpointCounts[k] = v
		if v > 0 {
			endpointAvg[k] = m.endpointLatencies[k] / v
		}
	}
	statusCodes := make(map[int]int64, len(m.statusCodes))
	for k, v := range m.statusCodes {
		statusCodes[k] = v
	}
	authEvents := make(map[string]int64, len(m.authEvents))
	for k, v := range m.authEvents {
		authEvents[k] = v
	}
	m.mu.Unlock()

	var perSec float64
	if uptime > 0 {
		perSec = float64(total) / uptime
	}

	return Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.activeRequests),
		TotalErrors:    errors,
		ErrorRate:      errorRate,
		AvgLatencyMs:   avgLatency,
		MaxLatencyMs:   atomic.LoadInt64(&m.maxLatencyMs),
		RequestsPerSec: perSec,
		UptimeSeconds:  uptime,
		EndpointCounts: endpointCounts,
		EndpointAvgMs:  endpointAvg,
		StatusCodes:    statusCodes,
		AuthEvents:     authEvents,
		Memory:         ReadMemoryStats(),
	}
}

// Handler serves the current snapshot as JSON
func (m *Collector) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, m.Snapshot())
	}
}
