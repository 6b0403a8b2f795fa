package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/kafka"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/metrics"
	"github.com/Domenick1991/oceanview/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus, reason string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64, input CancelInput) (*domain.Booking, error)
	ProcessRefund(ctx context.Context, id int64, amount int64) (*domain.Booking, error)
	CheckInPassengers(ctx context.Context, id int64) (*domain.Booking, error)
	GetUpcomingBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	GetPastBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	catalog            repository.CatalogRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	referencePrefix    string
	strict             bool
	log                *logger.Logger
	now                func() time.Time
	referenceSuffix    func() int
}

type CreateBookingInput struct {
	UserID          int64                `json:"-"`
	CruiseID        int64                `json:"cruise_id"`
	CabinTypeID     *int64               `json:"cabin_type_id,omitempty"`
	DepartureDate   time.Time            `json:"departure_date"`
	ReturnDate      *time.Time           `json:"return_date,omitempty"`
	NumberOfGuests  int                  `json:"number_of_guests"`
	TotalPrice      int64                `json:"total_price"`
	CabinType       string               `json:"cabin_type"`
	GuestDetails    json.RawMessage      `json:"guest_details,omitempty"`
	SpecialRequests string               `json:"special_requests"`
	TermsAccepted   bool                 `json:"terms_accepted"`
	Status          domain.BookingStatus `json:"status,omitempty"`
}

type CancelInput struct {
	Reason domain.CancellationReason `json:"reason"`
	Notes  string                    `json:"notes"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithReferencePrefix(prefix string) BookingServiceOption {
	return func(s *BookingService) {
		s.referencePrefix = prefix
	}
}

// WithStrictTransitions toggles enforcement of the booking and payment
// transition tables.
func WithStrictTransitions(strict bool) BookingServiceOption {
	return func(s *BookingService) {
		s.strict = strict
	}
}

func WithLogger(log *logger.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	catalog repository.CatalogRepository,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		catalog:         catalog,
		producer:        producer,
		bookingTopic:    bookingTopic,
		referencePrefix: "BK",
		strict:          true,
		log:             logger.Nop(),
		now:             time.Now,
		referenceSuffix: func() int { return rand.IntN(10000) },
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.NumberOfGuests < 1 {
		return nil, fmt.Errorf("%w: number of guests must be at least 1", domain.ErrValidation)
	}
	if input.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: total price must not be negative", domain.ErrValidation)
	}
	if input.DepartureDate.IsZero() {
		return nil, fmt.Errorf("%w: departure date is required", domain.ErrValidation)
	}

	status := domain.BookingStatusPending
	if input.Status != "" {
		parsed, err := domain.ParseBookingStatus(string(input.Status))
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	cruise, err := s.catalog.GetCruise(ctx, input.CruiseID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	var cabin *domain.CabinType
	if input.CabinTypeID != nil {
		cabin, err = s.catalog.GetCabinType(ctx, *input.CabinTypeID)
		if err != nil {
			return nil, fmt.Errorf("create booking: %w", err)
		}
		if cabin.CruiseID != cruise.ID {
			return nil, fmt.Errorf("%w: cabin type %d does not belong to cruise %d", domain.ErrValidation, cabin.ID, cruise.ID)
		}
	}

	returnDate := input.DepartureDate.AddDate(0, 0, cruise.Duration)
	if input.ReturnDate != nil {
		returnDate = *input.ReturnDate
	}
	if !input.DepartureDate.Before(returnDate) {
		return nil, fmt.Errorf("%w: departure date must be before return date", domain.ErrValidation)
	}

	totalPrice := input.TotalPrice
	cabinLabel := input.CabinType
	if cabinLabel == "" {
		cabinLabel = cruise.CabinType
	}
	if cabin != nil {
		if input.CabinType == "" {
			cabinLabel = cabin.Name
		}
		if totalPrice == 0 {
			totalPrice = (cruise.PricePerPerson + cabin.PriceModifier) * int64(input.NumberOfGuests)
		}
	} else if totalPrice == 0 {
		totalPrice = cruise.PricePerPerson * int64(input.NumberOfGuests)
	}

	now := s.now()
	booking := &domain.Booking{
		UserID:          input.UserID,
		CruiseID:        cruise.ID,
		CabinTypeID:     input.CabinTypeID,
		BookingDate:     now,
		DepartureDate:   input.DepartureDate,
		ReturnDate:      returnDate,
		TotalPrice:      totalPrice,
		NumberOfGuests:  input.NumberOfGuests,
		CabinType:       cabinLabel,
		GuestDetails:    input.GuestDetails,
		Status:          status,
		StatusHistory:   []domain.StatusChange{},
		PaymentStatus:   domain.PaymentStatusPending,
		SpecialRequests: input.SpecialRequests,
		UpdatedAt:       now,
		TermsAccepted:   input.TermsAccepted,
	}

	err = s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		id, err := tx.NextBookingID(ctx)
		if err != nil {
			return err
		}
		booking.ID = id
		booking.BookingReference = s.reference(id)
		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated(string(booking.Status))
	s.log.LogBooking("CREATE", booking.BookingReference, fmt.Sprintf("user=%d cruise=%d total=%d", booking.UserID, booking.CruiseID, booking.TotalPrice))
	s.publish(ctx, kafka.EventBookingCreated, booking, "")
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetBookingByReference(ctx, reference)
}

func (s *BookingService) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListBookingsByUser(ctx, userID)
}

// UpdateBookingStatus is the only way a booking changes status outside of
// cancellation, refunds and payment sync. Every successful call appends one
// history entry.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus, reason string) (*domain.Booking, error) {
	updated, err := s.mutate(ctx, id, "update booking status", func(b *domain.Booking, now time.Time) error {
		return s.transition(b, status, reason, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingStatusChanged, updated, reason)
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id int64, input CancelInput) (*domain.Booking, error) {
	reason := input.Reason
	if reason == "" {
		reason = domain.CancellationCustomerRequest
	}
	if _, err := domain.ParseCancellationReason(string(reason)); err != nil {
		return nil, err
	}

	updated, err := s.mutate(ctx, id, "cancel booking", func(b *domain.Booking, now time.Time) error {
		if err := s.transition(b, domain.BookingStatusCancelled, string(reason), now); err != nil {
			return err
		}
		b.CancellationDate = &now
		b.CancellationReason = reason
		b.CancellationNotes = input.Notes
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingCancelled, updated, string(reason))
	return updated, nil
}

// ProcessRefund refunds the booking and, when one is linked, its payment in
// the same transaction.
func (s *BookingService) ProcessRefund(ctx context.Context, id int64, amount int64) (*domain.Booking, error) {
	var updated *domain.Booking
	err := s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		b, err := tx.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if amount <= 0 || amount > b.TotalPrice {
			return fmt.Errorf("%w: %d not within (0, %d]", domain.ErrInvalidRefundAmount, amount, b.TotalPrice)
		}

		now := s.now()
		if err := s.transition(b, domain.BookingStatusRefunded, "refund_processed", now); err != nil {
			return err
		}
		b.PaymentStatus = domain.PaymentStatusRefunded
		b.RefundAmount = &amount
		b.RefundDate = &now

		if b.PaymentID != nil {
			p, err := tx.GetPayment(ctx, *b.PaymentID)
			if err != nil {
				return err
			}
			if err := p.SettleRefund(amount, now, s.strict); err != nil {
				return err
			}
			if err := tx.SavePayment(ctx, p); err != nil {
				return err
			}
			total := *p.RefundAmount
			b.RefundAmount = &total
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("process refund %d: %w", id, err)
	}

	metrics.AddRefunded(amount)
	s.log.LogBooking("REFUND", updated.BookingReference, fmt.Sprintf("amount=%d", amount))
	s.publish(ctx, kafka.EventBookingRefunded, updated, "refund_processed")
	return updated, nil
}

func (s *BookingService) CheckInPassengers(ctx context.Context, id int64) (*domain.Booking, error) {
	updated, err := s.mutate(ctx, id, "check in", func(b *domain.Booking, now time.Time) error {
		if b.Status != domain.BookingStatusConfirmed && b.Status != domain.BookingStatusInProgress {
			return fmt.Errorf("%w: cannot check in a %s booking", domain.ErrInvalidTransition, b.Status)
		}
		if b.CheckedIn {
			return fmt.Errorf("%w: booking %s is already checked in", domain.ErrInvalidTransition, b.BookingReference)
		}
		b.CheckedIn = true
		b.CheckInDate = &now
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingCheckedIn, updated, "")
	return updated, nil
}

func (s *BookingService) GetUpcomingBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.filterByUser(ctx, userID, func(b *domain.Booking, now time.Time) bool { return b.IsUpcoming(now) })
}

func (s *BookingService) GetPastBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.filterByUser(ctx, userID, func(b *domain.Booking, now time.Time) bool { return b.IsPast(now) })
}

func (s *BookingService) MarkNotified(ctx context.Context, id int64, at time.Time) (*domain.Booking, error) {
	return s.mutate(ctx, id, "mark notified", func(b *domain.Booking, _ time.Time) error {
		b.LastNotificationSent = &at
		return nil
	})
}

func (s *BookingService) filterByUser(ctx context.Context, userID int64, keep func(*domain.Booking, time.Time) bool) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]domain.Booking, 0, len(bookings))
	for i := range bookings {
		if keep(&bookings[i], now) {
			result = append(result, bookings[i])
		}
	}
	return result, nil
}

func (s *BookingService) mutate(ctx context.Context, id int64, op string, fn func(*domain.Booking, time.Time) error) (*domain.Booking, error) {
	var updated *domain.Booking
	err := s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		b, err := tx.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(b, s.now()); err != nil {
			return err
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", op, id, err)
	}
	return updated, nil
}

func (s *BookingService) transition(b *domain.Booking, next domain.BookingStatus, reason string, at time.Time) error {
	from := b.Status
	if err := b.Transition(next, reason, at, s.strict); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			metrics.IncBookingRejected(string(from), string(next))
			s.log.Warn("BOOKING", fmt.Sprintf("%s rejected: %v", b.BookingReference, err))
		}
		return err
	}
	metrics.IncBookingTransition(string(next))
	s.log.LogBooking("STATUS", b.BookingReference, fmt.Sprintf("%s -> %s", from, next))
	return nil
}

// reference embeds the booking id, so two bookings never share one.
func (s *BookingService) reference(id int64) string {
	return fmt.Sprintf("%s-%04d-%d", s.referencePrefix, s.referenceSuffix(), id)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, reason string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking, reason)
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.BookingReference, event); err != nil {
		s.log.Warn("KAFKA", fmt.Sprintf("failed to publish %s for %s: %v", eventType, booking.BookingReference, err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.BookingReference, event); err != nil {
			s.log.Warn("KAFKA", fmt.Sprintf("failed to publish %s notification for %s: %v", eventType, booking.BookingReference, err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
