package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/gateway"
	"github.com/Domenick1991/oceanview/internal/kafka"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/metrics"
	"github.com/Domenick1991/oceanview/internal/repository"
)

var (
	ErrCheckoutInProgress = errors.New("checkout or refund already in progress for this booking")
	ErrGatewayDeclined    = errors.New("payment gateway declined the request")
	ErrGatewayDisabled    = errors.New("payment gateway is not configured")
)

type PaymentUseCase interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Payment, error)
	ProcessStripePayment(ctx context.Context, bookingID int64, input StripePaymentInput) (*CheckoutResult, error)
	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	ListPayments(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	GetPaymentsByStatus(ctx context.Context, status domain.PaymentStatus) ([]domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Payment, error)
	RefundPayment(ctx context.Context, id int64, amount int64) (*domain.Payment, error)
	HandleGatewayEvent(ctx context.Context, payload []byte, signature string) (*domain.Payment, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req gateway.IntentRequest) (*gateway.Intent, error)
	Refund(ctx context.Context, req gateway.RefundRequest) (*gateway.Refund, error)
	ParseWebhook(payload []byte, signature string) (*gateway.Event, error)
}

type CheckoutLock interface {
	AcquireCheckoutLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, bookingID int64) error
}

type CreatePaymentInput struct {
	BookingID       int64                  `json:"booking_id"`
	Amount          int64                  `json:"amount"`
	Currency        string                 `json:"currency"`
	Status          domain.PaymentStatus   `json:"status"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method"`
	TransactionID   string                 `json:"transaction_id"`
	PaymentIntentID string                 `json:"payment_intent_id"`
	BillingAddress  *domain.BillingAddress `json:"billing_address"`
	CardLast4       string                 `json:"card_last4"`
	ExpiryMonth     string                 `json:"expiry_month"`
	ExpiryYear      string                 `json:"expiry_year"`
	CardholderName  string                 `json:"cardholder_name"`
	GatewayResponse map[string]any         `json:"gateway_response"`
}

// StripePaymentInput carries card metadata only. A full card number is reduced
// to its last four digits and a CVV is never accepted.
type StripePaymentInput struct {
	PaymentMethodID string                 `json:"payment_method_id"`
	PaymentIntentID string                 `json:"payment_intent_id"`
	CardNumber      string                 `json:"card_number"`
	ExpiryMonth     string                 `json:"expiry_month"`
	ExpiryYear      string                 `json:"expiry_year"`
	CardholderName  string                 `json:"cardholder_name"`
	BillingAddress  *domain.BillingAddress `json:"billing_address"`
}

type CheckoutResult struct {
	Payment      *domain.Payment `json:"payment"`
	Booking      *domain.Booking `json:"booking"`
	ClientSecret string          `json:"client_secret,omitempty"`
}

type PaymentService struct {
	bookings           repository.BookingRepository
	producer           Producer
	paymentTopic       string
	notificationsTopic string
	gateway            Gateway
	lock               CheckoutLock
	lockTTL            time.Duration
	strict             bool
	log                *logger.Logger
	now                func() time.Time

	refunds paymentLocks
}

// paymentLocks serializes refunds of the same payment within the process.
type paymentLocks struct {
	mu    sync.Mutex
	locks map[int64]*paymentLock
}

type paymentLock struct {
	sync.Mutex
	waiters int
}

func (l *paymentLocks) lock(id int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*paymentLock)
	}
	pl, ok := l.locks[id]
	if !ok {
		pl = &paymentLock{}
		l.locks[id] = pl
	}
	pl.waiters++
	l.mu.Unlock()

	pl.Lock()
	return func() {
		pl.Unlock()
		l.mu.Lock()
		pl.waiters--
		if pl.waiters == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

type PaymentServiceOption func(*PaymentService)

func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

func WithGateway(g Gateway) PaymentServiceOption {
	return func(s *PaymentService) {
		s.gateway = g
	}
}

func WithCheckoutLock(lock CheckoutLock, ttl time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		s.lock = lock
		s.lockTTL = ttl
	}
}

func WithStrictTransitions(strict bool) PaymentServiceOption {
	return func(s *PaymentService) {
		s.strict = strict
	}
}

func WithLogger(log *logger.Logger) PaymentServiceOption {
	return func(s *PaymentService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) PaymentServiceOption {
	return func(s *PaymentService) {
		s.now = now
	}
}

func NewPaymentService(bookings repository.BookingRepository, producer Producer, paymentTopic string, opts ...PaymentServiceOption) *PaymentService {
	service := &PaymentService{
		bookings:     bookings,
		producer:     producer,
		paymentTopic: paymentTopic,
		lockTTL:      30 * time.Second,
		strict:       true,
		log:          logger.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreatePayment stores a payment and, when it belongs to a booking, links it
// and mirrors its status onto the booking in the same transaction.
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Payment, error) {
	if input.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", domain.ErrValidation)
	}

	status := domain.PaymentStatusPending
	if input.Status != "" {
		parsed, err := domain.ParsePaymentStatus(string(input.Status))
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	method := domain.PaymentMethodCreditCard
	if input.PaymentMethod != "" {
		parsed, err := domain.ParsePaymentMethod(string(input.PaymentMethod))
		if err != nil {
			return nil, err
		}
		method = parsed
	}
	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	payment := &domain.Payment{
		BookingID:       input.BookingID,
		Amount:          input.Amount,
		Currency:        currency,
		Status:          status,
		PaymentMethod:   method,
		TransactionID:   input.TransactionID,
		PaymentIntentID: input.PaymentIntentID,
		PaymentDate:     s.now(),
		BillingAddress:  input.BillingAddress,
		CardLast4:       lastFour(input.CardLast4),
		ExpiryMonth:     input.ExpiryMonth,
		ExpiryYear:      input.ExpiryYear,
		CardholderName:  input.CardholderName,
		GatewayResponse: input.GatewayResponse,
	}

	var booking *domain.Booking
	err := s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		if payment.BookingID != 0 {
			b, err := tx.GetBooking(ctx, payment.BookingID)
			if err != nil {
				return err
			}
			booking = b
		}
		if err := tx.InsertPayment(ctx, payment); err != nil {
			return err
		}
		if booking == nil {
			return nil
		}
		booking.PaymentID = &payment.ID
		s.syncBooking(booking, payment.Status, payment.PaymentDate)
		return tx.SaveBooking(ctx, booking)
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	metrics.IncPaymentStatus(string(payment.Status))
	s.log.LogPayment("CREATE", payment.ID, fmt.Sprintf("booking=%d amount=%d %s status=%s", payment.BookingID, payment.Amount, payment.Currency, payment.Status))
	s.publish(ctx, kafka.EventPaymentCreated, booking, payment)
	return payment, nil
}

func (s *PaymentService) ProcessStripePayment(ctx context.Context, bookingID int64, input StripePaymentInput) (*CheckoutResult, error) {
	current, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout %d: %w", bookingID, err)
	}
	if err := checkoutAllowed(current); err != nil {
		return nil, err
	}

	if s.lock != nil {
		ok, err := s.lock.AcquireCheckoutLock(ctx, bookingID, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("stripe checkout %d: %w", bookingID, err)
		}
		if !ok {
			return nil, ErrCheckoutInProgress
		}
		defer func() {
			if err := s.lock.ReleaseCheckoutLock(context.WithoutCancel(ctx), bookingID); err != nil {
				s.log.Warn("REDIS", fmt.Sprintf("failed to release checkout lock for booking %d: %v", bookingID, err))
			}
		}()
	}

	result := &CheckoutResult{}
	intentID := input.PaymentIntentID
	gatewayResponse := map[string]any{}
	if s.gateway != nil && intentID == "" {
		intent, err := s.gateway.CreatePaymentIntent(ctx, gateway.IntentRequest{
			BookingID:     current.ID,
			Reference:     current.BookingReference,
			Amount:        current.TotalPrice,
			PaymentMethod: input.PaymentMethodID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGatewayDeclined, err)
		}
		intentID = intent.ID
		gatewayResponse["intent_id"] = intent.ID
		gatewayResponse["status"] = intent.Status
		gatewayResponse["amount_minor"] = intent.AmountMinor
		result.ClientSecret = intent.ClientSecret
	}

	now := s.now()
	payment := &domain.Payment{
		BookingID:       bookingID,
		Currency:        "USD",
		Status:          domain.PaymentStatusProcessing,
		PaymentMethod:   domain.PaymentMethodStripe,
		TransactionID:   intentID,
		PaymentIntentID: intentID,
		PaymentDate:     now,
		BillingAddress:  input.BillingAddress,
		CardLast4:       lastFour(input.CardNumber),
		ExpiryMonth:     input.ExpiryMonth,
		ExpiryYear:      input.ExpiryYear,
		CardholderName:  input.CardholderName,
	}
	if len(gatewayResponse) > 0 {
		payment.GatewayResponse = gatewayResponse
	}

	err = s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := checkoutAllowed(b); err != nil {
			return err
		}
		payment.Amount = b.TotalPrice
		if err := tx.InsertPayment(ctx, payment); err != nil {
			return err
		}
		b.PaymentID = &payment.ID
		s.syncBooking(b, payment.Status, now)
		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		result.Booking = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stripe checkout %d: %w", bookingID, err)
	}
	result.Payment = payment

	metrics.IncPaymentStatus(string(payment.Status))
	s.log.LogPayment("STRIPE", payment.ID, fmt.Sprintf("checkout started for %s intent=%s", result.Booking.BookingReference, intentID))
	s.publish(ctx, kafka.EventPaymentCreated, result.Booking, payment)
	return result, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.bookings.GetPayment(ctx, id)
}

func (s *PaymentService) ListPayments(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	if _, err := s.bookings.GetBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.bookings.ListPaymentsByBooking(ctx, bookingID)
}

func (s *PaymentService) GetPaymentsByStatus(ctx context.Context, status domain.PaymentStatus) ([]domain.Payment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: payment status %q", domain.ErrInvalidStatus, status)
	}
	return s.bookings.ListPaymentsByStatus(ctx, status)
}

// UpdatePaymentStatus moves the payment along its transition table and syncs
// the owning booking in one transaction.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Payment, error) {
	var (
		updated *domain.Payment
		booking *domain.Booking
	)
	err := s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		p, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if err := p.SetStatus(status, s.strict); err != nil {
			return err
		}
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		updated = p

		if p.BookingID == 0 {
			return nil
		}
		b, err := tx.GetBooking(ctx, p.BookingID)
		if err != nil {
			return err
		}
		s.syncBooking(b, p.Status, s.now())
		booking = b
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("update payment status %d: %w", id, err)
	}

	metrics.IncPaymentStatus(string(updated.Status))
	s.log.LogPayment("STATUS", updated.ID, "status="+string(updated.Status))
	s.publish(ctx, kafka.EventPaymentStatusChanged, booking, updated)
	return updated, nil
}

// RefundPayment refunds amount of a payment. Refunds of one payment run one at
// a time; with a checkout lock configured they also hold the booking's lock.
func (s *PaymentService) RefundPayment(ctx context.Context, id int64, amount int64) (*domain.Payment, error) {
	unlock := s.refunds.lock(id)
	defer unlock()

	current, err := s.bookings.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("refund payment %d: %w", id, err)
	}

	if bookingID := current.BookingID; s.lock != nil && bookingID != 0 {
		ok, err := s.lock.AcquireCheckoutLock(ctx, bookingID, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("refund payment %d: %w", id, err)
		}
		if !ok {
			return nil, ErrCheckoutInProgress
		}
		defer func() {
			if err := s.lock.ReleaseCheckoutLock(context.WithoutCancel(ctx), bookingID); err != nil {
				s.log.Warn("REDIS", fmt.Sprintf("failed to release checkout lock for booking %d: %v", bookingID, err))
			}
		}()
		if current, err = s.bookings.GetPayment(ctx, id); err != nil {
			return nil, fmt.Errorf("refund payment %d: %w", id, err)
		}
	}

	preview := current.Clone()
	if err := preview.ApplyRefund(amount, s.now(), s.strict); err != nil {
		return nil, fmt.Errorf("refund payment %d: %w", id, err)
	}

	var gatewayRefund *gateway.Refund
	if s.gateway != nil && current.PaymentIntentID != "" {
		gatewayRefund, err = s.gateway.Refund(ctx, gateway.RefundRequest{
			IntentID:       current.PaymentIntentID,
			Amount:         amount,
			IdempotencyKey: fmt.Sprintf("refund-%d-%d", id, *preview.RefundAmount),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGatewayDeclined, err)
		}
	}

	var (
		updated *domain.Payment
		booking *domain.Booking
	)
	err = s.bookings.InTx(ctx, func(tx repository.BookingTx) error {
		p, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := p.ApplyRefund(amount, now, s.strict); err != nil {
			return err
		}
		if gatewayRefund != nil {
			if p.GatewayResponse == nil {
				p.GatewayResponse = map[string]any{}
			}
			p.GatewayResponse["refund_id"] = gatewayRefund.ID
			p.GatewayResponse["refund_status"] = gatewayRefund.Status
		}
		if err := tx.SavePayment(ctx, p); err != nil {
			return err
		}
		updated = p

		if p.BookingID == 0 {
			return nil
		}
		b, err := tx.GetBooking(ctx, p.BookingID)
		if err != nil {
			return err
		}
		s.syncBooking(b, p.Status, now)
		b.RefundAmount = p.RefundAmount
		b.RefundDate = &now
		booking = b
		return tx.SaveBooking(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("refund payment %d: %w", id, err)
	}

	metrics.AddRefunded(amount)
	metrics.IncPaymentStatus(string(updated.Status))
	s.log.LogPayment("REFUND", updated.ID, fmt.Sprintf("amount=%d total=%d status=%s", amount, *updated.RefundAmount, updated.Status))
	s.publish(ctx, kafka.EventPaymentRefunded, booking, updated)
	return updated, nil
}

// HandleGatewayEvent applies a verified Stripe webhook to the payment that
// owns the intent. Events that do not map to a payment status are ignored and
// return a nil payment.
func (s *PaymentService) HandleGatewayEvent(ctx context.Context, payload []byte, signature string) (*domain.Payment, error) {
	if s.gateway == nil {
		return nil, ErrGatewayDisabled
	}
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}

	status, ok := statusForEvent(event.Type)
	if !ok || event.IntentID == "" {
		s.log.Debug("STRIPE", "ignoring webhook event "+event.Type)
		return nil, nil
	}

	p, err := s.bookings.GetPaymentByIntent(ctx, event.IntentID)
	if err != nil {
		return nil, fmt.Errorf("webhook %s: %w", event.ID, err)
	}
	if p.Status == status {
		return p, nil
	}
	return s.UpdatePaymentStatus(ctx, p.ID, status)
}

func statusForEvent(eventType string) (domain.PaymentStatus, bool) {
	switch eventType {
	case "payment_intent.succeeded":
		return domain.PaymentStatusCompleted, true
	case "payment_intent.payment_failed", "payment_intent.canceled":
		return domain.PaymentStatusFailed, true
	case "payment_intent.processing":
		return domain.PaymentStatusProcessing, true
	}
	return "", false
}

func checkoutAllowed(b *domain.Booking) error {
	switch b.Status {
	case domain.BookingStatusCancelled, domain.BookingStatusRefunded, domain.BookingStatusCompleted:
		return fmt.Errorf("%w: cannot pay for a %s booking", domain.ErrInvalidTransition, b.Status)
	}
	return nil
}

func (s *PaymentService) syncBooking(b *domain.Booking, status domain.PaymentStatus, at time.Time) {
	if b.SyncPayment(status, at, s.strict) {
		metrics.IncBookingTransition(string(b.Status))
		s.log.LogBooking("SYNC", b.BookingReference, "payment "+string(status)+" moved booking to "+string(b.Status))
	}
}

func (s *PaymentService) publish(ctx context.Context, eventType string, booking *domain.Booking, payment *domain.Payment) {
	if s.producer == nil || s.paymentTopic == "" {
		return
	}
	event := kafka.NewPaymentEvent(eventType, booking, payment)
	key := event.BookingReference
	if key == "" {
		key = fmt.Sprintf("payment-%d", payment.ID)
	}
	if err := s.producer.Publish(ctx, s.paymentTopic, key, event); err != nil {
		s.log.Warn("KAFKA", fmt.Sprintf("failed to publish %s for payment %d: %v", eventType, payment.ID, err))
		return
	}
	if s.notificationsTopic != "" && booking != nil {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Warn("KAFKA", fmt.Sprintf("failed to publish %s notification for payment %d: %v", eventType, payment.ID, err))
		}
	}
}

func lastFour(card string) string {
	digits := make([]byte, 0, len(card))
	for i := 0; i < len(card); i++ {
		if card[i] >= '0' && card[i] <= '9' {
			digits = append(digits, card[i])
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}

var _ PaymentUseCase = (*PaymentService)(nil)
