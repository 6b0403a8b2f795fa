package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/Domenick1991/oceanview/config"
	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Deliver(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockMarker struct {
	mock.Mock
}

func (m *MockMarker) MarkNotified(ctx context.Context, id int64, at time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func cancelledEvent() kafka.LifecycleEvent {
	return kafka.LifecycleEvent{
		ID:               "evt-1",
		Type:             kafka.EventBookingCancelled,
		BookingID:        5,
		BookingReference: "BK-0042-5",
		UserID:           3,
		Status:           "cancelled",
		PaymentStatus:    "pending",
		Reason:           "weather",
		DepartureDate:    time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	msg := Render(cancelledEvent())
	assert.Equal(t, "Booking cancelled: BK-0042-5", msg.Subject)
	assert.Contains(t, msg.Body, "Reason: weather.")
	assert.Contains(t, msg.Body, "Departure: 14 Jun 2026")
	assert.Empty(t, msg.To)

	refund := Render(kafka.LifecycleEvent{Type: kafka.EventPaymentRefunded, BookingReference: "BK-1", Amount: 250})
	assert.Equal(t, "Refund processed: BK-1", refund.Subject)
	assert.Contains(t, refund.Body, "$250")
	assert.NotContains(t, refund.Body, "Departure")
}

func TestSMTPTransport_Deliver(t *testing.T) {
	transport := NewSMTPTransport(config.SMTPConfig{Host: "mail.local", Port: 2525, From: "ship@oceanview.example"})
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	transport.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	err := transport.Deliver(context.Background(), Message{To: "ann@example.com", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "ship@oceanview.example", gotFrom)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	assert.Contains(t, string(gotBody), "Subject: Hi\r\n")
	assert.Contains(t, string(gotBody), "\r\n\r\nHello")

	transport.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	err = transport.Deliver(context.Background(), Message{To: "ann@example.com"})
	assert.ErrorContains(t, err, "refused")
}

func TestNotifier_Handle(t *testing.T) {
	transport := &MockTransport{}
	users := &MockUsers{}
	marker := &MockMarker{}
	notifier := NewNotifier(users, marker, NewSenderWithTransport(transport, nil), nil)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return now }
	ctx := context.Background()

	users.On("GetUser", ctx, int64(3)).Return(&domain.User{ID: 3, Email: "ann@example.com"}, nil).Once()
	transport.On("Deliver", ctx, mock.MatchedBy(func(m Message) bool {
		return m.To == "ann@example.com" && m.Subject == "Booking cancelled: BK-0042-5"
	})).Return(nil).Once()
	marker.On("MarkNotified", ctx, int64(5), now).Return(&domain.Booking{ID: 5}, nil).Once()

	require.NoError(t, notifier.Handle(ctx, cancelledEvent()))
	users.AssertExpectations(t)
	transport.AssertExpectations(t)
	marker.AssertExpectations(t)
}

func TestNotifier_Handle_Skips(t *testing.T) {
	transport := &MockTransport{}
	users := &MockUsers{}
	marker := &MockMarker{}
	notifier := NewNotifier(users, marker, NewSenderWithTransport(transport, nil), nil)
	ctx := context.Background()

	anonymous := cancelledEvent()
	anonymous.UserID = 0
	require.NoError(t, notifier.Handle(ctx, anonymous))

	users.On("GetUser", ctx, int64(3)).Return(nil, domain.ErrNotFound).Once()
	require.NoError(t, notifier.Handle(ctx, cancelledEvent()))

	transport.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	marker.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifier_Handle_DeliveryFailure(t *testing.T) {
	transport := &MockTransport{}
	users := &MockUsers{}
	marker := &MockMarker{}
	notifier := NewNotifier(users, marker, NewSenderWithTransport(transport, nil), nil)
	ctx := context.Background()

	users.On("GetUser", ctx, int64(3)).Return(&domain.User{ID: 3, Email: "ann@example.com"}, nil).Once()
	transport.On("Deliver", ctx, mock.Anything).Return(errors.New("smtp down")).Once()

	err := notifier.Handle(ctx, cancelledEvent())
	assert.EqualError(t, err, "smtp down")
	marker.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
}
