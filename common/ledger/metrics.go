package ledger

import (
	metricsPkg "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	// Latency of ledger RPC calls in seconds
	RequestDuration metricsPkg.Histogram
	// Failed ledger RPC calls, breaker rejections included
	RequestErrors metricsPkg.Counter
}

func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "request_duration_seconds",
			Help:      "Latency of ledger RPC calls",
			Buckets:   stdprometheus.DefBuckets,
		}, []string{"method"}),
		RequestErrors: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "request_errors",
			Help:      "Number of failed ledger RPC calls",
		}, []string{"method"}),
	}
}

func NopMetrics() *Metrics {
	return &Metrics{
		RequestDuration: discard.NewHistogram(),
		RequestErrors:   discard.NewCounter(),
	}
}
