package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cryptogate"

type PrometheusRecorder struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	sweeps      *prometheus.CounterVec
	tickErrors  *prometheus.CounterVec
	tickLatency *prometheus.HistogramVec
}

func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_created_total",
				Help:      "Payments created, by currency.",
			},
			[]string{"currency"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_transitions_total",
				Help:      "Payment status transitions, by currency and new status.",
			},
			[]string{"currency", "status"},
		),
		sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweeps_total",
				Help:      "Sweep attempts to the admin wallet, by outcome.",
			},
			[]string{"currency", "outcome"},
		),
		tickErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tick_errors_total",
				Help:      "Monitor ticks that ended in an error, by reason.",
			},
			[]string{"currency", "reason"},
		),
		tickLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Time spent in one payment tick, chain calls included.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"currency"},
		),
	}

	reg.MustRegister(r.created, r.transitions, r.sweeps, r.tickErrors, r.tickLatency)
	return r
}

func (r *PrometheusRecorder) PaymentCreated(currency string) {
	r.created.WithLabelValues(currency).Inc()
}

func (r *PrometheusRecorder) StatusChanged(currency, status string) {
	r.transitions.WithLabelValues(currency, status).Inc()
}

func (r *PrometheusRecorder) SweepFinished(currency, outcome string) {
	r.sweeps.WithLabelValues(currency, outcome).Inc()
}

func (r *PrometheusRecorder) TickFailed(currency, reason string) {
	r.tickErrors.WithLabelValues(currency, reason).Inc()
}

func (r *PrometheusRecorder) ObserveTick(currency string, d time.Duration) {
	r.tickLatency.WithLabelValues(currency).Observe(d.Seconds())
}
