package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks the order lifecycle and dispatch activity. All methods
// are nil-safe so services can run without a registry in tests.
type OrderMetrics struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	cancelled   *prometheus.CounterVec
	pushes      *prometheus.CounterVec
	variance    prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaon",
		Name:      "orders_created_total",
		Help:      "Orders created, by payment method.",
	}, []string{"payment_method"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaon",
		Name:      "order_status_transitions_total",
		Help:      "Order status transitions, by target status and actor class.",
	}, []string{"to", "actor"})
	cancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaon",
		Name:      "orders_cancelled_total",
		Help:      "Cancelled orders, by actor class.",
	}, []string{"actor"})
	pushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaon",
		Name:      "driver_location_pushes_total",
		Help:      "Driver location pushes, by outcome (written or throttled).",
	}, []string{"outcome"})
	variance := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kaon",
		Name:      "cash_variance_orders_total",
		Help:      "Cash orders whose received amount differed from expected.",
	})
	reg.MustRegister(created, transitions, cancelled, pushes, variance)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		cancelled:   cancelled,
		pushes:      pushes,
		variance:    variance,
	}
}

// IncCreated counts a newly created order.
func (m *OrderMetrics) IncCreated(paymentMethod string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncTransition counts a status transition applied by the given actor class.
func (m *OrderMetrics) IncTransition(to, actor string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to), normalizeLabel(actor)).Inc()
}

// IncCancelled counts a cancellation by actor class.
func (m *OrderMetrics) IncCancelled(actor string) {
	if m == nil || m.cancelled == nil {
		return
	}
	m.cancelled.WithLabelValues(normalizeLabel(actor)).Inc()
}

// IncLocationPush counts one location push by outcome.
func (m *OrderMetrics) IncLocationPush(outcome string) {
	if m == nil || m.pushes == nil {
		return
	}
	m.pushes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCashVariance counts a cash order reconciled with a mismatch.
func (m *OrderMetrics) IncCashVariance() {
	if m == nil || m.variance == nil {
		return
	}
	m.variance.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
