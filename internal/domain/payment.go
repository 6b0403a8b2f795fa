package domain

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusProcessing        PaymentStatus = "processing"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:           {PaymentStatusProcessing, PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusProcessing:        {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusFailed:            {PaymentStatusPending, PaymentStatusProcessing},
	PaymentStatusCompleted:         {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusPartiallyRefunded: {PaymentStatusPartiallyRefunded, PaymentStatusRefunded},
	PaymentStatusRefunded:          {},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: payment status %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Refundable() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusPartiallyRefunded
}

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodApplePay     PaymentMethod = "apple_pay"
	PaymentMethodGooglePay    PaymentMethod = "google_pay"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal, PaymentMethodBankTransfer,
		PaymentMethodStripe, PaymentMethodApplePay, PaymentMethodGooglePay:
		return m, nil
	}
	return "", fmt.Errorf("%w: payment method %q", ErrInvalidStatus, s)
}

type BillingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Payment never carries a full card number or CVV, only masked card metadata.
type Payment struct {
	ID              int64           `json:"id"`
	BookingID       int64           `json:"booking_id"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	Status          PaymentStatus   `json:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	PaymentDate     time.Time       `json:"payment_date"`
	BillingAddress  *BillingAddress `json:"billing_address,omitempty"`
	CardLast4       string          `json:"card_last4,omitempty"`
	ExpiryMonth     string          `json:"expiry_month,omitempty"`
	ExpiryYear      string          `json:"expiry_year,omitempty"`
	CardholderName  string          `json:"cardholder_name,omitempty"`
	RefundAmount    *int64          `json:"refund_amount,omitempty"`
	RefundDate      *time.Time      `json:"refund_date,omitempty"`
	GatewayResponse map[string]any  `json:"gateway_response,omitempty"`
}

func (p *Payment) SetStatus(next PaymentStatus, strict bool) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: payment status %q", ErrInvalidStatus, next)
	}
	if strict && !p.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}
	p.Status = next
	return nil
}

// ApplyRefund records a refund of amount. In strict mode refunds accumulate and
// may not exceed the amount paid; otherwise the latest amount replaces any
// earlier one.
func (p *Payment) ApplyRefund(amount int64, at time.Time, strict bool) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRefundAmount, amount)
	}

	total := amount
	if strict {
		if !p.Status.Refundable() {
			return fmt.Errorf("%w: %s payment cannot be refunded", ErrInvalidTransition, p.Status)
		}
		if p.RefundAmount != nil {
			total += *p.RefundAmount
		}
		if total > p.Amount {
			return fmt.Errorf("%w: %d exceeds remaining %d", ErrInvalidRefundAmount, amount, p.Amount-(total-amount))
		}
	}

	next := PaymentStatusPartiallyRefunded
	if total == p.Amount {
		next = PaymentStatusRefunded
	}
	if err := p.SetStatus(next, strict); err != nil {
		return err
	}
	p.RefundAmount = &total
	p.RefundDate = &at
	return nil
}

// SettleRefund records a closing refund of amount and marks the payment
// refunded whatever balance remains. In strict mode the payment must accept the
// refunded transition and amount is added to earlier refunds, which together
// may not exceed the amount paid.
func (p *Payment) SettleRefund(amount int64, at time.Time, strict bool) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRefundAmount, amount)
	}

	total := amount
	if strict {
		if !p.Status.Refundable() {
			return fmt.Errorf("%w: %s payment cannot be refunded", ErrInvalidTransition, p.Status)
		}
		if p.RefundAmount != nil {
			total += *p.RefundAmount
		}
		if total > p.Amount {
			return fmt.Errorf("%w: %d exceeds remaining %d", ErrInvalidRefundAmount, amount, p.Amount-(total-amount))
		}
	}

	if err := p.SetStatus(PaymentStatusRefunded, strict); err != nil {
		return err
	}
	p.RefundAmount = &total
	p.RefundDate = &at
	return nil
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	c.RefundAmount = cloneInt64(p.RefundAmount)
	c.RefundDate = cloneTime(p.RefundDate)
	if p.BillingAddress != nil {
		addr := *p.BillingAddress
		c.BillingAddress = &addr
	}
	if p.GatewayResponse != nil {
		c.GatewayResponse = make(map[string]any, len(p.GatewayResponse))
		for k, v := range p.GatewayResponse {
			c.GatewayResponse[k] = v
		}
	}
	return &c
}
