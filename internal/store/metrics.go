package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opGet    = "get"
	opPut    = "put"
	opRemove = "remove"

	resultHit  = "hit"
	resultMiss = "miss"
	resultOK   = "ok"
	resultNoop = "noop"
)

// Metrics holds the prometheus collectors updated by a Store. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Operations    *prometheus.CounterVec
	Version       prometheus.Gauge
	Keys          prometheus.Gauge
	WriteDuration *prometheus.HistogramVec
}

// NewMetrics creates the store collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triestore",
			Name:      "operations_total",
			Help:      "Store operations by type and outcome.",
		}, []string{"op", "result"}),
		Version: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "triestore",
			Name:      "version",
			Help:      "Last published trie version.",
		}),
		Keys: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "triestore",
			Name:      "keys",
			Help:      "Number of keys in the published trie.",
		}),
		WriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "triestore",
			Name:      "write_duration_seconds",
			Help:      "Time spent holding the write lock.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~260ms
		}, []string{"op"}),
	}
}

func (m *Metrics) observeGet(hit bool) {
	if m == nil {
		return
	}
	result := resultMiss
	if hit {
		result = resultHit
	}
	m.Operations.WithLabelValues(opGet, result).Inc()
}

func (m *Metrics) observeWrite(op, result string, took time.Duration, version uint64, keys int) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.WriteDuration.WithLabelValues(op).Observe(took.Seconds())
	m.Version.Set(float64(version))
	m.Keys.Set(float64(keys))
}
