package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/pkg/mailer"
)

// Consumer drains the booking.confirmed queue and sends the confirmation
// mail for each event.
type Consumer struct {
	url    string
	mailer *mailer.Mailer
	logger *logrus.Logger
}

// NewConsumer creates a consumer for the given broker URL
func NewConsumer(url string, m *mailer.Mailer, logger *logrus.Logger) *Consumer {
	return &Consumer{url: url, mailer: m, logger: logger}
}

// Run connects to the broker and consumes until ctx is cancelled. Broker
// failures trigger a reconnect with capped exponential backoff, so the
// consumer survives restarts without supervision.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.WithError(err).Warnf("Failed to dial broker, retrying in %s", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			c.logger.WithError(err).Warn("Consume loop ended, reconnecting")
		}
		conn.Close()
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(10, 0, false); err != nil {
		c.logger.WithError(err).Warn("Failed to set QoS")
	}

	if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				c.logger.WithError(err).Error("Failed to handle booking event")
				// do not requeue, a poison message would loop forever
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var event BookingConfirmedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	msg := mailer.Message{
		To:      event.UserEmail,
		Subject: fmt.Sprintf("Booking confirmed - %s", event.ConfirmationCode),
		Body:    confirmationBody(&event),
	}

	if err := c.mailer.Send(msg); err != nil {
		return fmt.Errorf("failed to send confirmation mail: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"booking_id":        event.BookingID,
		"confirmation_code": event.ConfirmationCode,
	}).Info("Confirmation mail sent")

	return nil
}

func confirmationBody(event *BookingConfirmedEvent) string {
	return fmt.Sprintf(`<h2>Your booking is confirmed</h2>
<p>Dear %s,</p>
<p>Thank you for booking with us. Here are your stay details:</p>
<ul>
  <li>Confirmation code: <strong>%s</strong></li>
  <li>Hotel: %s</li>
  <li>Room: %s</li>
  <li>Check-in: %s</li>
  <li>Check-out: %s</li>
  <li>Guests: %d</li>
  <li>Total paid: %.2f</li>
</ul>
<p>Please present your confirmation code at check-in.</p>`,
		event.UserName, event.ConfirmationCode, event.HotelName, event.RoomType,
		event.CheckIn, event.CheckOut, event.Guests, event.TotalPrice)
}
