package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusRefunded   BookingStatus = "refunded"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusRefunded},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded},
	BookingStatusCompleted:  {BookingStatusRefunded},
	BookingStatusCancelled:  {BookingStatusCancelled, BookingStatusRefunded},
	BookingStatusRefunded:   {},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: booking status %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether the table allows moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further lifecycle progress is expected.
// Terminal bookings may still be refunded.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded:
		return true
	}
	return false
}

type CancellationReason string

const (
	CancellationCustomerRequest CancellationReason = "customer_request"
	CancellationScheduleChange  CancellationReason = "schedule_change"
	CancellationMedical         CancellationReason = "medical"
	CancellationWeather         CancellationReason = "weather"
	CancellationEmergency       CancellationReason = "emergency"
	CancellationPolicyViolation CancellationReason = "policy_violation"
	CancellationOther           CancellationReason = "other"
)

func ParseCancellationReason(s string) (CancellationReason, error) {
	switch r := CancellationReason(s); r {
	case CancellationCustomerRequest, CancellationScheduleChange, CancellationMedical,
		CancellationWeather, CancellationEmergency, CancellationPolicyViolation, CancellationOther:
		return r, nil
	}
	return "", fmt.Errorf("%w: cancellation reason %q", ErrInvalidStatus, s)
}

type StatusChange struct {
	From      BookingStatus `json:"from"`
	To        BookingStatus `json:"to"`
	Timestamp time.Time     `json:"timestamp"`
	Reason    string        `json:"reason,omitempty"`
}

type Booking struct {
	ID                   int64              `json:"id"`
	UserID               int64              `json:"user_id"`
	CruiseID             int64              `json:"cruise_id"`
	CabinTypeID          *int64             `json:"cabin_type_id,omitempty"`
	BookingDate          time.Time          `json:"booking_date"`
	DepartureDate        time.Time          `json:"departure_date"`
	ReturnDate           time.Time          `json:"return_date"`
	TotalPrice           int64              `json:"total_price"`
	NumberOfGuests       int                `json:"number_of_guests"`
	CabinType            string             `json:"cabin_type"`
	GuestDetails         json.RawMessage    `json:"guest_details,omitempty"`
	Status               BookingStatus      `json:"status"`
	StatusHistory        []StatusChange     `json:"status_history"`
	PaymentStatus        PaymentStatus      `json:"payment_status"`
	PaymentID            *int64             `json:"payment_id,omitempty"`
	SpecialRequests      string             `json:"special_requests,omitempty"`
	BookingReference     string             `json:"booking_reference"`
	UpdatedAt            time.Time          `json:"updated_at"`
	CancellationDate     *time.Time         `json:"cancellation_date,omitempty"`
	CancellationReason   CancellationReason `json:"cancellation_reason,omitempty"`
	CancellationNotes    string             `json:"cancellation_notes,omitempty"`
	RefundAmount         *int64             `json:"refund_amount,omitempty"`
	RefundDate           *time.Time         `json:"refund_date,omitempty"`
	CheckedIn            bool               `json:"checked_in"`
	CheckInDate          *time.Time         `json:"check_in_date,omitempty"`
	TermsAccepted        bool               `json:"terms_accepted"`
	LastNotificationSent *time.Time         `json:"last_notification_sent,omitempty"`
}

// Transition moves the booking to next and records the change in its history.
// With strict set, moves outside the transition table fail with ErrInvalidTransition.
func (b *Booking) Transition(next BookingStatus, reason string, at time.Time, strict bool) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: booking status %q", ErrInvalidStatus, next)
	}
	if strict && !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
	}
	b.StatusHistory = append(b.StatusHistory, StatusChange{
		From:      b.Status,
		To:        next,
		Timestamp: at,
		Reason:    reason,
	})
	b.Status = next
	b.UpdatedAt = at
	return nil
}

// SyncPayment mirrors a payment status onto the booking. A completed payment
// confirms the booking and a fully refunded one refunds it, when the booking
// is allowed to move there. It reports whether the booking status changed.
func (b *Booking) SyncPayment(status PaymentStatus, at time.Time, strict bool) bool {
	b.PaymentStatus = status
	b.UpdatedAt = at

	var target BookingStatus
	var reason string
	switch status {
	case PaymentStatusCompleted:
		target, reason = BookingStatusConfirmed, "payment_completed"
	case PaymentStatusRefunded:
		target, reason = BookingStatusRefunded, "payment_refunded"
	default:
		return false
	}
	if b.Status == target {
		return false
	}
	return b.Transition(target, reason, at, strict) == nil
}

func (b *Booking) IsUpcoming(now time.Time) bool {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusRefunded {
		return false
	}
	return b.DepartureDate.After(now)
}

func (b *Booking) IsPast(now time.Time) bool {
	return b.Status == BookingStatusCompleted || b.ReturnDate.Before(now)
}

func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.CabinTypeID = cloneInt64(b.CabinTypeID)
	c.PaymentID = cloneInt64(b.PaymentID)
	c.RefundAmount = cloneInt64(b.RefundAmount)
	c.CancellationDate = cloneTime(b.CancellationDate)
	c.RefundDate = cloneTime(b.RefundDate)
	c.CheckInDate = cloneTime(b.CheckInDate)
	c.LastNotificationSent = cloneTime(b.LastNotificationSent)
	if b.GuestDetails != nil {
		c.GuestDetails = append(json.RawMessage(nil), b.GuestDetails...)
	}
	c.StatusHistory = append([]StatusChange{}, b.StatusHistory...)
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
