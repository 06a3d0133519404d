package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for intent creation and reconciliation.
type Metrics struct {
	IntentsCreated         prometheus.Counter
	IntentsRejected        *prometheus.CounterVec
	GatewayFailures        *prometheus.CounterVec
	Confirmations          prometheus.Counter
	Failures               prometheus.Counter
	DuplicateConfirmations prometheus.Counter
	IntegrityFaults        prometheus.Counter
	ConfirmDuration        prometheus.Histogram
}

// New creates the contribution metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IntentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_intents_created_total",
			Help: "Total number of payment intents handed to the gateway",
		}),
		IntentsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poolpay_intents_rejected_total",
			Help: "Intent requests rejected before reaching the gateway",
		}, []string{"reason"}),
		GatewayFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poolpay_gateway_failures_total",
			Help: "Failed calls to the payment gateway",
		}, []string{"op"}),
		Confirmations: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_contributions_confirmed_total",
			Help: "Contributions moved from pending to confirmed",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_contributions_failed_total",
			Help: "Contributions moved from pending to failed",
		}),
		DuplicateConfirmations: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_duplicate_confirmations_total",
			Help: "Confirm or fail calls that found the contribution already terminal",
		}),
		IntegrityFaults: factory.NewCounter(prometheus.CounterOpts{
			Name: "poolpay_integrity_faults_total",
			Help: "Confirmations refused because they would break pool capacity",
		}),
		ConfirmDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "poolpay_confirm_duration_seconds",
			Help:    "Duration of Confirm operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementIntentCreated() {
	m.IntentsCreated.Inc()
}

func (m *Metrics) IncrementIntentRejected(reason string) {
	m.IntentsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementGatewayFailure(op string) {
	m.GatewayFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) IncrementConfirmed() {
	m.Confirmations.Inc()
}

func (m *Metrics) IncrementFailed() {
	m.Failures.Inc()
}

func (m *Metrics) IncrementDuplicate() {
	m.DuplicateConfirmations.Inc()
}

func (m *Metrics) IncrementIntegrityFault() {
	m.IntegrityFaults.Inc()
}

// ObserveConfirm records the duration of a Confirm call.
func (m *Metrics) ObserveConfirm(start time.Time) {
	m.ConfirmDuration.Observe(time.Since(start).Seconds())
}
