package kafka

import (
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingRefunded      = "booking.refunded"
	EventBookingCheckedIn     = "booking.checked_in"
	EventPaymentCreated       = "payment.created"
	EventPaymentStatusChanged = "payment.status_changed"
	EventPaymentRefunded      = "payment.refunded"
)

type LifecycleEvent struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	BookingID        int64     `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	UserID           int64     `json:"user_id"`
	PaymentID        int64     `json:"payment_id,omitempty"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	Amount           int64     `json:"amount,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	DepartureDate    time.Time `json:"departure_date"`
	OccurredAt       time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, reason string) LifecycleEvent {
	return LifecycleEvent{
		ID:               uuid.NewString(),
		Type:             eventType,
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
		UserID:           b.UserID,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		Amount:           b.TotalPrice,
		Reason:           reason,
		DepartureDate:    b.DepartureDate,
		OccurredAt:       b.UpdatedAt,
	}
}

func NewPaymentEvent(eventType string, b *domain.Booking, p *domain.Payment) LifecycleEvent {
	event := LifecycleEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		PaymentID:     p.ID,
		BookingID:     p.BookingID,
		PaymentStatus: string(p.Status),
		Amount:        p.Amount,
		OccurredAt:    time.Now(),
	}
	if p.RefundAmount != nil && eventType == EventPaymentRefunded {
		event.Amount = *p.RefundAmount
	}
	if b != nil {
		event.BookingReference = b.BookingReference
		event.UserID = b.UserID
		event.Status = string(b.Status)
		event.DepartureDate = b.DepartureDate
	}
	return event
}
