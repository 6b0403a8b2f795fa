package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, user_id, cruise_id, cabin_type_id, booking_date, departure_date, return_date, total_price,
	number_of_guests, cabin_type, guest_details, status, status_history, payment_status, payment_id,
	COALESCE(special_requests, ''), booking_reference, updated_at, cancellation_date, COALESCE(cancellation_reason, ''),
	COALESCE(cancellation_notes, ''), refund_amount, refund_date, checked_in, check_in_date, terms_accepted, last_notification_sent`

func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		b       domain.Booking
		guests  []byte
		history []byte
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CruiseID, &b.CabinTypeID, &b.BookingDate, &b.DepartureDate, &b.ReturnDate, &b.TotalPrice,
		&b.NumberOfGuests, &b.CabinType, &guests, &b.Status, &history, &b.PaymentStatus, &b.PaymentID,
		&b.SpecialRequests, &b.BookingReference, &b.UpdatedAt, &b.CancellationDate, &b.CancellationReason,
		&b.CancellationNotes, &b.RefundAmount, &b.RefundDate, &b.CheckedIn, &b.CheckInDate, &b.TermsAccepted, &b.LastNotificationSent); err != nil {
		return nil, err
	}
	if len(guests) > 0 {
		b.GuestDetails = json.RawMessage(guests)
	}
	if err := json.Unmarshal(history, &b.StatusHistory); err != nil {
		return nil, fmt.Errorf("decode status history of booking %d: %w", b.ID, err)
	}
	return &b, nil
}

func bookingArgs(b *domain.Booking) ([]any, error) {
	history := b.StatusHistory
	if history == nil {
		history = []domain.StatusChange{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}
	var guests []byte
	if len(b.GuestDetails) > 0 {
		guests = b.GuestDetails
	}
	return []any{
		b.ID, b.UserID, b.CruiseID, b.CabinTypeID, b.BookingDate, b.DepartureDate, b.ReturnDate, b.TotalPrice,
		b.NumberOfGuests, b.CabinType, guests, b.Status, historyJSON, b.PaymentStatus, b.PaymentID,
		b.SpecialRequests, b.BookingReference, b.UpdatedAt, b.CancellationDate, string(b.CancellationReason),
		b.CancellationNotes, b.RefundAmount, b.RefundDate, b.CheckedIn, b.CheckInDate, b.TermsAccepted, b.LastNotificationSent,
	}, nil
}

const paymentColumns = `id, booking_id, amount, currency, status, payment_method, COALESCE(transaction_id, ''),
	COALESCE(payment_intent_id, ''), payment_date, billing_address, COALESCE(card_last4, ''), COALESCE(expiry_month, ''),
	COALESCE(expiry_year, ''), COALESCE(cardholder_name, ''), refund_amount, refund_date, gateway_response`

func scanPayment(row scanner) (*domain.Payment, error) {
	var (
		p       domain.Payment
		address []byte
		gateway []byte
	)
	if err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Currency, &p.Status, &p.PaymentMethod, &p.TransactionID,
		&p.PaymentIntentID, &p.PaymentDate, &address, &p.CardLast4, &p.ExpiryMonth,
		&p.ExpiryYear, &p.CardholderName, &p.RefundAmount, &p.RefundDate, &gateway); err != nil {
		return nil, err
	}
	if len(address) > 0 {
		p.BillingAddress = &domain.BillingAddress{}
		if err := json.Unmarshal(address, p.BillingAddress); err != nil {
			return nil, fmt.Errorf("decode billing address of payment %d: %w", p.ID, err)
		}
	}
	if len(gateway) > 0 {
		if err := json.Unmarshal(gateway, &p.GatewayResponse); err != nil {
			return nil, fmt.Errorf("decode gateway response of payment %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

func paymentArgs(p *domain.Payment) ([]any, error) {
	var address, gateway []byte
	var err error
	if p.BillingAddress != nil {
		if address, err = json.Marshal(p.BillingAddress); err != nil {
			return nil, err
		}
	}
	if p.GatewayResponse != nil {
		if gateway, err = json.Marshal(p.GatewayResponse); err != nil {
			return nil, err
		}
	}
	return []any{
		p.BookingID, p.Amount, p.Currency, p.Status, p.PaymentMethod, p.TransactionID,
		p.PaymentIntentID, p.PaymentDate, address, p.CardLast4, p.ExpiryMonth,
		p.ExpiryYear, p.CardholderName, p.RefundAmount, p.RefundDate, gateway,
	}, nil
}

func (s *PGStore) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return fn(&pgBookingTx{q: tx})
	})
}

type pgBookingTx struct {
	q querier
}

func (t *pgBookingTx) NextBookingID(ctx context.Context) (int64, error) {
	var id int64
	err := t.q.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('bookings', 'id'))`).Scan(&id)
	return id, err
}

func (t *pgBookingTx) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(t.q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	return b, mapErr(err, "booking", id)
}

func (t *pgBookingTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	if b.ID == 0 {
		id, err := t.NextBookingID(ctx)
		if err != nil {
			return err
		}
		b.ID = id
	}
	args, err := bookingArgs(b)
	if err != nil {
		return err
	}
	_, err = t.q.Exec(ctx, `INSERT INTO bookings (id, user_id, cruise_id, cabin_type_id, booking_date, departure_date, return_date,
		total_price, number_of_guests, cabin_type, guest_details, status, status_history, payment_status, payment_id,
		special_requests, booking_reference, updated_at, cancellation_date, cancellation_reason,
		cancellation_notes, refund_amount, refund_date, checked_in, check_in_date, terms_accepted, last_notification_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, ''), $17, $18, $19, NULLIF($20, ''),
		NULLIF($21, ''), $22, $23, $24, $25, $26, $27)`, args...)
	return mapErr(err, "booking", b.BookingReference)
}

func (t *pgBookingTx) SaveBooking(ctx context.Context, b *domain.Booking) error {
	args, err := bookingArgs(b)
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, `UPDATE bookings SET user_id=$2, cruise_id=$3, cabin_type_id=$4, booking_date=$5, departure_date=$6,
		return_date=$7, total_price=$8, number_of_guests=$9, cabin_type=$10, guest_details=$11, status=$12, status_history=$13,
		payment_status=$14, payment_id=$15, special_requests=NULLIF($16, ''), updated_at=$18,
		cancellation_date=$19, cancellation_reason=NULLIF($20, ''), cancellation_notes=NULLIF($21, ''), refund_amount=$22,
		refund_date=$23, checked_in=$24, check_in_date=$25, terms_accepted=$26, last_notification_sent=$27
		WHERE id=$1 AND booking_reference=$17`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("booking", fmt.Sprintf("%d/%s", b.ID, b.BookingReference))
	}
	return nil
}

func (t *pgBookingTx) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(t.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1 FOR UPDATE`, id))
	return p, mapErr(err, "payment", id)
}

func (t *pgBookingTx) InsertPayment(ctx context.Context, p *domain.Payment) error {
	args, err := paymentArgs(p)
	if err != nil {
		return err
	}
	return t.q.QueryRow(ctx, `INSERT INTO payments (booking_id, amount, currency, status, payment_method, transaction_id,
		payment_intent_id, payment_date, billing_address, card_last4, expiry_month,
		expiry_year, cardholder_name, refund_amount, refund_date, gateway_response)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, NULLIF($10, ''), NULLIF($11, ''),
		NULLIF($12, ''), NULLIF($13, ''), $14, $15, $16) RETURNING id`, args...).Scan(&p.ID)
}

func (t *pgBookingTx) SavePayment(ctx context.Context, p *domain.Payment) error {
	args, err := paymentArgs(p)
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, `UPDATE payments SET booking_id=$1, amount=$2, currency=$3, status=$4, payment_method=$5,
		transaction_id=NULLIF($6, ''), payment_intent_id=NULLIF($7, ''), payment_date=$8, billing_address=$9,
		card_last4=NULLIF($10, ''), expiry_month=NULLIF($11, ''), expiry_year=NULLIF($12, ''), cardholder_name=NULLIF($13, ''),
		refund_amount=$14, refund_date=$15, gateway_response=$16
		WHERE id=$17`, append(args, p.ID)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("payment", p.ID)
	}
	return nil
}

func (s *PGStore) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	return b, mapErr(err, "booking", id)
}

func (s *PGStore) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_reference=$1`, reference))
	return b, mapErr(err, "booking", reference)
}

func (s *PGStore) ListBookingsByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBooking)
}

func (s *PGStore) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
	return p, mapErr(err, "payment", id)
}

func (s *PGStore) GetPaymentByIntent(ctx context.Context, intentID string) (*domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE payment_intent_id=$1
		ORDER BY id DESC LIMIT 1`, intentID))
	return p, mapErr(err, "payment intent", intentID)
}

func (s *PGStore) ListPaymentsByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	rows, err := s.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (s *PGStore) ListPaymentsByStatus(ctx context.Context, status domain.PaymentStatus) ([]domain.Payment, error) {
	rows, err := s.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE status=$1 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}
