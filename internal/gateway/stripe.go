package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
	ErrWebhookSignature       = errors.New("invalid webhook signature")
)

type IntentRequest struct {
	BookingID     int64
	Reference     string
	Amount        int64
	Currency      string
	PaymentMethod string
}

type Intent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
	AmountMinor  int64  `json:"amount_minor"`
}

// RefundRequest refunds Amount of an intent. Stripe replays the first result
// for a repeated IdempotencyKey instead of refunding again.
type RefundRequest struct {
	IntentID       string
	Amount         int64
	IdempotencyKey string
}

type Refund struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount_minor"`
}

type Event struct {
	ID       string
	Type     string
	IntentID string
}

type intentsAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type refundsAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeGateway talks to Stripe. Amounts are whole currency units on the way
// in and are sent to Stripe in minor units.
type StripeGateway struct {
	intents       intentsAPI
	refunds       refundsAPI
	webhookSecret string
	log           *logger.Logger
}

func NewStripeGateway(secretKey, webhookSecret string, log *logger.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		log.Error("STRIPE", "stripe secret key not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(secretKey, nil)
	if sc == nil {
		log.Error("STRIPE", "Failed to initialize Stripe client")
		return nil, ErrStripeClientInitFailed
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeGateway{
		intents:       sc.PaymentIntents,
		refunds:       sc.Refunds,
		webhookSecret: webhookSecret,
		log:           log,
	}, nil
}

func (g *StripeGateway) CreatePaymentIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(toMinor(req.Amount)),
		Currency:           stripe.String(currency),
		Description:        stripe.String("Cruise booking " + req.Reference),
		PaymentMethodTypes: []*string{stripe.String("card")},
		Metadata: map[string]string{
			"booking_id":        strconv.FormatInt(req.BookingID, 10),
			"booking_reference": req.Reference,
		},
	}
	if req.PaymentMethod != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethod)
		params.Confirm = stripe.Bool(true)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		g.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	g.log.LogPayment("INTENT", req.BookingID, fmt.Sprintf("payment intent %s created with status %s", pi.ID, pi.Status))

	return &Intent{
		ID:           pi.ID,
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
	}, nil
}

func (g *StripeGateway) Refund(_ context.Context, req RefundRequest) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.IntentID),
		Amount:        stripe.Int64(toMinor(req.Amount)),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	r, err := g.refunds.New(params)
	if err != nil {
		g.log.Error("STRIPE", fmt.Sprintf("Refund failed: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	g.log.Info("STRIPE", fmt.Sprintf("refund %s for intent %s: %s", r.ID, req.IntentID, r.Status))

	return &Refund{ID: r.ID, Status: string(r.Status), AmountMinor: r.Amount}, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the payment
// intent the event is about.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		g.log.LogSecurity("WEBHOOK", "stripe signature rejected: "+err.Error())
		return nil, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	parsed := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Data != nil && len(event.Data.Raw) > 0 {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err == nil {
			parsed.IntentID = pi.ID
		}
	}
	return parsed, nil
}

func toMinor(amount int64) int64 {
	return amount * 100
}
