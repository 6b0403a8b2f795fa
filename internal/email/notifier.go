package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/kafka"
	"github.com/Domenick1991/oceanview/internal/logger"
)

type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type NotificationMarker interface {
	MarkNotified(ctx context.Context, id int64, at time.Time) (*domain.Booking, error)
}

// Notifier turns notification events into emails and stamps the booking once
// the message is out.
type Notifier struct {
	users    UserLookup
	bookings NotificationMarker
	sender   *Sender
	log      *logger.Logger
	now      func() time.Time
}

func NewNotifier(users UserLookup, bookings NotificationMarker, sender *Sender, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{users: users, bookings: bookings, sender: sender, log: log, now: time.Now}
}

// Handle returns an error only for failures worth retrying. Events for unknown
// users or bookings are logged and dropped.
func (n *Notifier) Handle(ctx context.Context, event kafka.LifecycleEvent) error {
	if event.UserID == 0 {
		n.log.Debug("EMAIL", fmt.Sprintf("skip %s %s: no recipient", event.Type, event.ID))
		return nil
	}

	user, err := n.users.GetUser(ctx, event.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		n.log.Warn("EMAIL", fmt.Sprintf("skip %s: user %d not found", event.Type, event.UserID))
		return nil
	}
	if err != nil {
		return err
	}

	if err := n.sender.Send(ctx, user.Email, event); err != nil {
		return err
	}

	if event.BookingID == 0 {
		return nil
	}
	if _, err := n.bookings.MarkNotified(ctx, event.BookingID, n.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			n.log.Warn("EMAIL", fmt.Sprintf("booking %d vanished after notification", event.BookingID))
			return nil
		}
		return err
	}
	return nil
}
