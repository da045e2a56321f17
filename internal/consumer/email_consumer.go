package consumer

import (
	"encoding/json"
	"fmt"
	"net/smtp"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/milanhq/milan/internal/notifier"
)

// SMTPConfig is the mail relay the consumer delivers through.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// EmailConsumer drains the notification queue and sends confirmation mails
// over SMTP. It runs in-process next to the HTTP server.
type EmailConsumer struct {
	smtp SMTPConfig
	log  *zap.Logger
}

func NewEmailConsumer(smtp SMTPConfig, log *zap.Logger) *EmailConsumer {
	return &EmailConsumer{smtp: smtp, log: log}
}

func (ec *EmailConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ec.handleMessage(msg)
		}
		ec.log.Info("notification channel closed, stopping email consumer")
	}()
}

func (ec *EmailConsumer) handleMessage(msg amqp.Delivery) {
	var m notifier.Message
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		ec.log.Warn("drop malformed notification", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	if err := ec.send(m); err != nil {
		ec.log.Warn("confirmation mail failed",
			zap.String("to", m.To),
			zap.Error(err))
		// No requeue: mail is best-effort and a broken relay would otherwise
		// spin the same delivery forever.
		_ = msg.Nack(false, false)
		return
	}

	_ = msg.Ack(false)
}

func (ec *EmailConsumer) send(m notifier.Message) error {
	subject := fmt.Sprintf("You're in: %s", m.EventTitle)

	var where string
	switch m.Mode {
	case "online":
		where = fmt.Sprintf("Join link: %s", m.MeetingLink)
	case "offline":
		where = fmt.Sprintf("Venue: %s, %s", m.Venue, m.City)
	default:
		where = fmt.Sprintf("City: %s\r\nJoin link: %s", m.City, m.MeetingLink)
	}

	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour registration for %s on %s is confirmed.\r\n%s\r\n\r\nSee you there!",
		m.Name, m.EventTitle, m.EventDate.Format("Mon, 02 Jan 2006 15:04 MST"), where,
	)

	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		ec.smtp.From, m.To, subject, body)

	addr := ec.smtp.Host + ":" + ec.smtp.Port
	auth := smtp.PlainAuth("", ec.smtp.User, ec.smtp.Pass, ec.smtp.Host)

	if err := smtp.SendMail(addr, auth, ec.smtp.From, []string{m.To}, []byte(payload)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	ec.log.Info("confirmation mail sent", zap.String("to", m.To), zap.String("event", m.EventTitle))
	return nil
}
