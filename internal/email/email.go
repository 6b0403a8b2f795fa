package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/Domenick1991/oceanview/config"
	"github.com/Domenick1991/oceanview/internal/kafka"
	"github.com/Domenick1991/oceanview/internal/logger"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPTransport struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPTransport{
		addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		from:     cfg.From,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (t *SMTPTransport) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n\r\n%s",
		t.from, msg.To, msg.Subject, msg.Body)
	if err := t.sendMail(t.addr, t.auth, t.from, []string{msg.To}, []byte(raw)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct {
	log *logger.Logger
}

func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.log.Info("EMAIL", fmt.Sprintf("to=%s subject=%q", msg.To, msg.Subject))
	return nil
}

type Sender struct {
	transport Transport
	log       *logger.Logger
}

func NewSender(cfg config.SMTPConfig, log *logger.Logger) *Sender {
	if cfg.Host == "" {
		return NewSenderWithTransport(&LogTransport{log: log}, log)
	}
	return NewSenderWithTransport(NewSMTPTransport(cfg), log)
}

func NewSenderWithTransport(transport Transport, log *logger.Logger) *Sender {
	if log == nil {
		log = logger.Nop()
	}
	return &Sender{transport: transport, log: log}
}

func (s *Sender) Send(ctx context.Context, to string, event kafka.LifecycleEvent) error {
	msg := Render(event)
	msg.To = to
	if err := s.transport.Deliver(ctx, msg); err != nil {
		return err
	}
	s.log.Debug("EMAIL", fmt.Sprintf("sent %s for booking %s to %s", event.Type, event.BookingReference, to))
	return nil
}

// Render builds the subject and body for an event. The recipient is left empty.
func Render(event kafka.LifecycleEvent) Message {
	ref := event.BookingReference
	var subject, lead string
	switch event.Type {
	case kafka.EventBookingCreated:
		subject = "Booking received: " + ref
		lead = "Thank you for booking with OceanView. Your booking is now " + event.Status + "."
	case kafka.EventBookingCancelled:
		subject = "Booking cancelled: " + ref
		lead = "Your booking has been cancelled."
		if event.Reason != "" {
			lead += " Reason: " + event.Reason + "."
		}
	case kafka.EventBookingRefunded, kafka.EventPaymentRefunded:
		subject = "Refund processed: " + ref
		lead = fmt.Sprintf("A refund of $%d has been issued.", event.Amount)
	case kafka.EventBookingCheckedIn:
		subject = "You're checked in: " + ref
		lead = "Check-in is complete. Your boarding pass is ready to download."
	case kafka.EventPaymentCreated, kafka.EventPaymentStatusChanged:
		subject = "Payment update: " + ref
		lead = "Your payment is now " + event.PaymentStatus + "."
	default:
		subject = "Booking update: " + ref
		lead = "Your booking is now " + event.Status + "."
	}

	var body strings.Builder
	body.WriteString(lead)
	body.WriteString("\n\n")
	fmt.Fprintf(&body, "Reference: %s\n", ref)
	if !event.DepartureDate.IsZero() {
		fmt.Fprintf(&body, "Departure: %s\n", event.DepartureDate.Format("02 Jan 2006"))
	}
	if event.Status != "" {
		fmt.Fprintf(&body, "Booking status: %s\n", event.Status)
	}
	if event.PaymentStatus != "" {
		fmt.Fprintf(&body, "Payment status: %s\n", event.PaymentStatus)
	}
	body.WriteString("\nOceanView Cruises")
	return Message{Subject: subject, Body: body.String()}
}
