package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks outbox draining.
type Metrics struct {
	Published     prometheus.Counter
	PublishErrors prometheus.Counter
	BatchSize     prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_outbox_published_total",
			Help: "Total number of outbox entries published",
		}),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_outbox_publish_errors_total",
			Help: "Total number of failed outbox publish attempts",
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "poolpay_outbox_batch_size",
			Help:    "Number of entries drained per poll",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
}
