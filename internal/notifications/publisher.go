package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"delivery_dispatch/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "dispatch.notifications"

// Publisher pushes notification messages onto the broker. The push/SMS
// transport consuming them lives outside this service; publishing is
// fire-and-forget from the order pipeline's point of view.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(amqpURL string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) publish(routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func (p *Publisher) NotifyPaymentConfirmed(order *models.Order, customer *models.Customer) error {
	return p.publish("order.payment_confirmed", map[string]interface{}{
		"order_id":       order.PublicID,
		"customer_email": customer.Email,
		"amount_cents":   order.AmountCents,
		"currency":       order.Currency,
	})
}

func (p *Publisher) NotifyDriverAssigned(order *models.Order, driver *models.Driver) error {
	return p.publish("order.driver_assigned", map[string]interface{}{
		"order_id":     order.PublicID,
		"driver_id":    driver.ID,
		"driver_name":  driver.Name,
		"driver_phone": driver.Phone,
	})
}

func (p *Publisher) NotifyStatusChanged(order *models.Order, oldStatus string) error {
	return p.publish("order.status_changed", map[string]interface{}{
		"order_id":   order.PublicID,
		"old_status": oldStatus,
		"new_status": order.Status,
	})
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// NoopNotifier is used when no broker is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyPaymentConfirmed(*models.Order, *models.Customer) error { return nil }
func (NoopNotifier) NotifyDriverAssigned(*models.Order, *models.Driver) error     { return nil }
func (NoopNotifier) NotifyStatusChanged(*models.Order, string) error              { return nil }
