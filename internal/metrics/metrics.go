package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oceanview",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by initial status.",
		},
		[]string{"status"},
	)

	bookingTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oceanview",
			Name:      "booking_transition_total",
			Help:      "Count of booking status transitions by target status.",
		},
		[]string{"to"},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oceanview",
			Name:      "booking_transition_rejected_total",
			Help:      "Count of booking transitions rejected by the transition table.",
		},
		[]string{"from", "to"},
	)

	paymentStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oceanview",
			Name:      "payment_status_total",
			Help:      "Count of payments entering each status.",
		},
		[]string{"status"},
	)

	refundedAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "oceanview",
			Name:      "refunded_amount_total",
			Help:      "Sum of refunded amounts in whole currency units.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingTransition, bookingRejected, paymentStatus, refundedAmount)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncBookingTransition(to string) {
	bookingTransition.WithLabelValues(to).Inc()
}

func IncBookingRejected(from, to string) {
	bookingRejected.WithLabelValues(from, to).Inc()
}

func IncPaymentStatus(status string) {
	paymentStatus.WithLabelValues(status).Inc()
}

func AddRefunded(amount int64) {
	refundedAmount.Add(float64(amount))
}
