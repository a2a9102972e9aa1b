package pixel

import (
	metricsPkg "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "pixel"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Operations emitted, labelled by kind (create, update)
	Operations metricsPkg.Counter
	// Resolutions abandoned, labelled by error code
	Failures metricsPkg.Counter
}

// PrometheusMetrics registers the metrics with the default prometheus registerer.
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		Operations: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "operations",
			Help:      "Number of pixel operations resolved",
		}, []string{"kind"}),
		Failures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: metricsSubsystem,
			Name:      "failures",
			Help:      "Number of pixel resolutions that failed",
		}, []string{"code"}),
	}
}

func NopMetrics() *Metrics {
	return &Metrics{
		Operations: discard.NewCounter(),
		Failures:   discard.NewCounter(),
	}
}
