package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher emits booking events to RabbitMQ. A nil *Publisher is a valid
// no-op publisher, used when no broker is configured. Errors are logged and
// returned so callers can ignore them; a broker outage must never fail the
// payment that triggered the event.
type Publisher struct {
	url    string
	logger *logrus.Logger
}

// NewPublisher creates a publisher for the given broker URL. Returns nil
// when the URL is empty.
func NewPublisher(url string, logger *logrus.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, logger: logger}
}

// PublishBookingConfirmed sends the event to the booking.confirmed queue.
// The queue is declared durable and messages persistent, so confirmations
// survive a broker restart. A fresh connection per publish keeps the
// publisher free of reconnect state; volume is one message per payment.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event *BookingConfirmedEvent) error {
	if p == nil {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.WithError(err).Error("Failed to dial broker")
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.WithError(err).Error("Failed to open channel")
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		p.logger.WithError(err).Error("Failed to declare queue")
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", BookingConfirmedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.WithError(err).Error("Failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"booking_id":        event.BookingID,
		"confirmation_code": event.ConfirmationCode,
	}).Info("Booking confirmed event published")

	return nil
}
