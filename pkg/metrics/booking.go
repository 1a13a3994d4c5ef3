package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/shareit-backend/pkg/enums"
)

// BookingMetrics counts booking lifecycle events.
type BookingMetrics struct {
	created   prometheus.Counter
	decisions *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings created in WAITING status.",
	})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_decisions_total",
		Help: "Owner decisions applied to waiting bookings, by resulting status.",
	}, []string{"status"})
	reg.MustRegister(created, decisions)
	return &BookingMetrics{
		created:   created,
		decisions: decisions,
	}
}

// IncCreated counts a newly created booking.
func (b *BookingMetrics) IncCreated() {
	if b == nil || b.created == nil {
		return
	}
	b.created.Inc()
}

// IncDecision counts a WAITING booking moved to status.
func (b *BookingMetrics) IncDecision(status enums.BookingStatus) {
	if b == nil || b.decisions == nil {
		return
	}
	b.decisions.WithLabelValues(normalizeLabel(status.String())).Inc()
}
