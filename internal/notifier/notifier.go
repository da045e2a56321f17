// Package notifier publishes registration confirmations onto the
// notification bus. Delivery is fire-and-forget: a broker outage is logged
// and never surfaces to the request that triggered the mail.
package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/pkg/rabbitmq"
)

const RoutingKeyRegistration = "notification.registration"

// Message is the payload the email consumer renders into a confirmation
// mail. Join details are included here because the confirmation is the one
// place they are disclosed.
type Message struct {
	To          string    `json:"to"`
	Name        string    `json:"name"`
	EventTitle  string    `json:"event_title"`
	EventDate   time.Time `json:"event_date"`
	Mode        string    `json:"mode"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	City        string    `json:"city,omitempty"`
	Venue       string    `json:"venue,omitempty"`
}

type Notifier interface {
	RegistrationConfirmed(ctx context.Context, reg *models.Registration, event *models.Event)
}

type amqpNotifier struct {
	pub *rabbitmq.Publisher
	log *zap.Logger
}

func NewAMQPNotifier(pub *rabbitmq.Publisher, log *zap.Logger) Notifier {
	return &amqpNotifier{pub: pub, log: log}
}

func (n *amqpNotifier) RegistrationConfirmed(ctx context.Context, reg *models.Registration, event *models.Event) {
	msg := Message{
		To:          reg.Email,
		Name:        reg.Name,
		EventTitle:  event.Title,
		EventDate:   event.EventDate,
		Mode:        string(event.Mode),
		MeetingLink: event.MeetingLink,
		City:        event.City,
		Venue:       event.Venue,
	}

	if err := n.pub.Publish(RoutingKeyRegistration, msg); err != nil {
		n.log.Warn("confirmation publish failed",
			zap.String("registration_id", reg.ID.String()),
			zap.Error(err))
	}
}

// Nop is used when no broker is configured and in tests.
type Nop struct{}

func (Nop) RegistrationConfirmed(context.Context, *models.Registration, *models.Event) {}
