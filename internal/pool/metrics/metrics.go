package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the pool module.
type Metrics struct {
	PoolsCreated      prometheus.Counter
	PoolsCancelled    prometheus.Counter
	GetPoolDuration   prometheus.Histogram
	ListPoolsDuration prometheus.Histogram
}

// New creates the pool metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PoolsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_pools_created_total",
			Help: "Total number of pools created",
		}),
		PoolsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_pools_cancelled_total",
			Help: "Total number of pools cancelled by their creator",
		}),
		GetPoolDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "poolpay_get_pool_duration_seconds",
			Help:    "Duration of GetPool operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ListPoolsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "poolpay_list_pools_duration_seconds",
			Help:    "Duration of ListByCreator operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementPoolCreated() {
	m.PoolsCreated.Inc()
}

func (m *Metrics) IncrementPoolCancelled() {
	m.PoolsCancelled.Inc()
}

// ObserveGetPool records the duration of a GetPool operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveGetPool(start time.Time) {
	m.GetPoolDuration.Observe(time.Since(start).Seconds())
}

// ObserveListPools records the duration of a ListByCreator operation.
func (m *Metrics) ObserveListPools(start time.Time) {
	m.ListPoolsDuration.Observe(time.Since(start).Seconds())
}
