package pub

import (
	metricsPkg "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Size of publication queue
	PublicationQueueSize metricsPkg.Gauge
	// Time used to publish the last message
	PublishTimeMs metricsPkg.Gauge
	// num of issued actions published
	NumPublished metricsPkg.Counter
	// num of issued actions dropped because the queue was full
	NumDropped metricsPkg.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		PublicationQueueSize: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "publication",
			Name:      "queue_size",
			Help:      "Size of publication queue",
		}, []string{}),
		PublishTimeMs: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "publication",
			Name:      "publish_time",
			Help:      "Time to publish the last issued action (ms)",
		}, []string{}),
		NumPublished: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publication",
			Name:      "num_published",
			Help:      "Number of issued actions published",
		}, []string{}),
		NumDropped: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publication",
			Name:      "num_dropped",
			Help:      "Number of issued actions dropped on a full queue",
		}, []string{}),
	}
}

func NopMetrics() *Metrics {
	return &Metrics{
		PublicationQueueSize: discard.NewGauge(),
		PublishTimeMs:        discard.NewGauge(),
		NumPublished:         discard.NewCounter(),
		NumDropped:           discard.NewCounter(),
	}
}
