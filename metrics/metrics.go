// Package metrics instruments filestore providers with Prometheus metrics.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmgilman/go/filestore/errors"
)

// Metrics holds the filestore collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "filestore_operations_total",
			Help: "Total number of storage operations by provider, operation and result",
		}, []string{"provider", "op", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filestore_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "op"}),
		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "filestore_bytes_total",
			Help: "Total bytes transferred by provider and direction",
		}, []string{"provider", "direction"}),
	}
}

// Default returns collectors registered with the default Prometheus registry.
// Registration happens once per process.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func (m *Metrics) observe(provider, op string, start time.Time, err error) {
	m.duration.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
	m.operations.WithLabelValues(provider, op, result(err)).Inc()
}

func (m *Metrics) transferred(provider, direction string, n int) {
	if n > 0 {
		m.bytes.WithLabelValues(provider, direction).Add(float64(n))
	}
}

// result maps an error onto a bounded label value.
func result(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(errors.GetCode(err)))
}
