package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/oceanview/internal/domain"
)

// InTx holds the store lock for the whole of fn. Writes are staged and only
// copied into the store when fn succeeds.
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:    s,
		bookings: make(map[int64]*domain.Booking),
		payments: make(map[int64]*domain.Payment),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memoryTx struct {
	store    *MemoryStore
	bookings map[int64]*domain.Booking
	payments map[int64]*domain.Payment
}

func (tx *memoryTx) commit() {
	for id, b := range tx.bookings {
		tx.store.bookings[id] = b
		tx.store.bookingRefs[b.BookingReference] = id
	}
	for id, p := range tx.payments {
		tx.store.payments[id] = p
	}
}

func (tx *memoryTx) NextBookingID(context.Context) (int64, error) {
	tx.store.seq.booking++
	return tx.store.seq.booking, nil
}

func (tx *memoryTx) booking(id int64) (*domain.Booking, bool) {
	if b, ok := tx.bookings[id]; ok {
		return b, true
	}
	b, ok := tx.store.bookings[id]
	return b, ok
}

func (tx *memoryTx) GetBooking(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := tx.booking(id)
	if !ok {
		return nil, notFound("booking", id)
	}
	return b.Clone(), nil
}

func (tx *memoryTx) referenceTaken(ref string, except int64) bool {
	if id, ok := tx.store.bookingRefs[ref]; ok && id != except {
		return true
	}
	for id, b := range tx.bookings {
		if id != except && b.BookingReference == ref {
			return true
		}
	}
	return false
}

func (tx *memoryTx) InsertBooking(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == 0 {
		id, _ := tx.NextBookingID(ctx)
		booking.ID = id
	}
	if _, exists := tx.booking(booking.ID); exists {
		return fmt.Errorf("booking %d: %w", booking.ID, domain.ErrConflict)
	}
	if booking.BookingReference == "" {
		return fmt.Errorf("booking reference is required: %w", domain.ErrValidation)
	}
	if tx.referenceTaken(booking.BookingReference, booking.ID) {
		return fmt.Errorf("booking reference %s: %w", booking.BookingReference, domain.ErrConflict)
	}
	tx.bookings[booking.ID] = booking.Clone()
	return nil
}

func (tx *memoryTx) SaveBooking(_ context.Context, booking *domain.Booking) error {
	current, ok := tx.booking(booking.ID)
	if !ok {
		return notFound("booking", booking.ID)
	}
	if current.BookingReference != booking.BookingReference {
		return fmt.Errorf("booking %d reference is immutable: %w", booking.ID, domain.ErrValidation)
	}
	tx.bookings[booking.ID] = booking.Clone()
	return nil
}

func (tx *memoryTx) payment(id int64) (*domain.Payment, bool) {
	if p, ok := tx.payments[id]; ok {
		return p, true
	}
	p, ok := tx.store.payments[id]
	return p, ok
}

func (tx *memoryTx) GetPayment(_ context.Context, id int64) (*domain.Payment, error) {
	p, ok := tx.payment(id)
	if !ok {
		return nil, notFound("payment", id)
	}
	return p.Clone(), nil
}

func (tx *memoryTx) InsertPayment(_ context.Context, payment *domain.Payment) error {
	tx.store.seq.payment++
	payment.ID = tx.store.seq.payment
	tx.payments[payment.ID] = payment.Clone()
	return nil
}

func (tx *memoryTx) SavePayment(_ context.Context, payment *domain.Payment) error {
	if _, ok := tx.payment(payment.ID); !ok {
		return notFound("payment", payment.ID)
	}
	tx.payments[payment.ID] = payment.Clone()
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id int64) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, notFound("booking", id)
	}
	return b.Clone(), nil
}

func (s *MemoryStore) GetBookingByReference(_ context.Context, reference string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bookingRefs[reference]
	if !ok {
		return nil, notFound("booking", reference)
	}
	return s.bookings[id].Clone(), nil
}

func (s *MemoryStore) ListBookingsByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Booking, 0)
	for _, id := range sortedKeys(s.bookings) {
		if b := s.bookings[id]; b.UserID == userID {
			out = append(out, *b.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id int64) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, notFound("payment", id)
	}
	return p.Clone(), nil
}

func (s *MemoryStore) GetPaymentByIntent(_ context.Context, intentID string) (*domain.Payment, error) {
	payments := s.filterPayments(func(p *domain.Payment) bool {
		return intentID != "" && p.PaymentIntentID == intentID
	})
	if len(payments) == 0 {
		return nil, notFound("payment intent", intentID)
	}
	return &payments[len(payments)-1], nil
}

func (s *MemoryStore) ListPaymentsByBooking(_ context.Context, bookingID int64) ([]domain.Payment, error) {
	return s.filterPayments(func(p *domain.Payment) bool { return p.BookingID == bookingID }), nil
}

func (s *MemoryStore) ListPaymentsByStatus(_ context.Context, status domain.PaymentStatus) ([]domain.Payment, error) {
	return s.filterPayments(func(p *domain.Payment) bool { return p.Status == status }), nil
}

func (s *MemoryStore) filterPayments(match func(*domain.Payment) bool) []domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Payment, 0)
	for _, id := range sortedKeys(s.payments) {
		if p := s.payments[id]; match(p) {
			out = append(out, *p.Clone())
		}
	}
	return out
}
