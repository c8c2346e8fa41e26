package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters and latency for the booking engine. All
// observe methods tolerate a nil receiver so wiring stays optional.
type BookingMetrics struct {
	createdTotal   prometheus.Counter
	conflictTotal  prometheus.Counter
	cancelledTotal prometheus.Counter
	opLatency      *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slotd",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Appointments created",
		}),
		conflictTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slotd",
			Subsystem: "booking",
			Name:      "conflict_total",
			Help:      "Create or update attempts rejected because the slot was taken",
		}),
		cancelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slotd",
			Subsystem: "booking",
			Name:      "cancelled_total",
			Help:      "Appointments cancelled",
		}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slotd",
			Subsystem: "booking",
			Name:      "operation_latency_seconds",
			Help:      "Latency of booking operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.conflictTotal, m.cancelledTotal, m.opLatency)
	return m
}

func (m *BookingMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.createdTotal.Inc()
}

func (m *BookingMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictTotal.Inc()
}

func (m *BookingMetrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.cancelledTotal.Inc()
}

func (m *BookingMetrics) ObserveOperation(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.opLatency.WithLabelValues(operation).Observe(seconds)
}
