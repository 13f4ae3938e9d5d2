// Package monitoring keeps in-memory counters for prediction outcomes.
package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType is the Prometheus type of an exported series.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// OutcomeOK labels a prediction that produced a score.
const OutcomeOK = "ok"

// LatencyBuckets are the upper bounds, in seconds, of the latency histogram.
var LatencyBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// Metrics counts prediction outcomes and their latency. Safe for concurrent
// use.
type Metrics struct {
	mu        sync.RWMutex
	outcomes  map[string]uint64
	buckets   []uint64
	count     uint64
	sum       float64
	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		outcomes:  make(map[string]uint64),
		buckets:   make([]uint64, len(LatencyBuckets)),
		startTime: time.Now(),
	}
}

// Observe records one prediction attempt. outcome is OutcomeOK or the name
// of the failing stage.
func (m *Metrics) Observe(outcome string, elapsed time.Duration) {
	seconds := elapsed.Seconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes[outcome]++
	m.count++
	m.sum += seconds
	for i, bound := range LatencyBuckets {
		if seconds <= bound {
			m.buckets[i]++
		}
	}
}

// Count returns how many attempts ended with outcome.
func (m *Metrics) Count(outcome string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.outcomes[outcome]
}

// GetUptime reports how long the collector has been running.
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.startTime)
}

// Snapshot returns the outcome counters keyed by outcome.
func (m *Metrics) Snapshot() map[string]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]uint64, len(m.outcomes))
	for k, v := range m.outcomes {
		result[k] = v
	}
	return result
}

// ExportPrometheus renders the counters in the Prometheus text format.
func (m *Metrics) ExportPrometheus() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder

	writeHeader(&b, "studentscore_predictions_total", "Prediction attempts by outcome", MetricTypeCounter)
	outcomes := make([]string, 0, len(m.outcomes))
	for outcome := range m.outcomes {
		outcomes = append(outcomes, outcome)
	}
	sort.Strings(outcomes)
	for _, outcome := range outcomes {
		fmt.Fprintf(&b, "studentscore_predictions_total{outcome=%q} %d\n", outcome, m.outcomes[outcome])
	}

	writeHeader(&b, "studentscore_prediction_seconds", "Time spent decoding, encoding and predicting one record", MetricTypeHistogram)
	for i, bound := range LatencyBuckets {
		fmt.Fprintf(&b, "studentscore_prediction_seconds_bucket{le=\"%g\"} %d\n", bound, m.buckets[i])
	}
	fmt.Fprintf(&b, "studentscore_prediction_seconds_bucket{le=\"+Inf\"} %d\n", m.count)
	fmt.Fprintf(&b, "studentscore_prediction_seconds_sum %g\n", m.sum)
	fmt.Fprintf(&b, "studentscore_prediction_seconds_count %d\n", m.count)

	writeHeader(&b, "studentscore_uptime_seconds", "Seconds since the server started", MetricTypeGauge)
	fmt.Fprintf(&b, "studentscore_uptime_seconds %g\n", time.Since(m.startTime).Seconds())

	writeHeader(&b, "studentscore_goroutines", "Number of goroutines", MetricTypeGauge)
	fmt.Fprintf(&b, "studentscore_goroutines %d\n", runtime.NumGoroutine())

	return b.String()
}

func writeHeader(b *strings.Builder, name, help string, typ MetricType) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, typ)
}
