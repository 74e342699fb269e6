package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrdersExchange receives one message per completed order, routed as
// "orders.completed.{session}" so a kitchen display can bind per session.
const OrdersExchange = "orders_topic"

// EventPublisher publishes order events to RabbitMQ.
// A nil *EventPublisher is valid and drops every event.
type EventPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewEventPublisher dials url and declares the orders exchange. An empty url
// disables publishing.
func NewEventPublisher(url string) (*EventPublisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", OrdersExchange, err)
	}
	return &EventPublisher{conn: conn, ch: ch}, nil
}

func (p *EventPublisher) Enabled() bool { return p != nil && p.ch != nil }

// Publish sends a persistent JSON message.
func (p *EventPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	if !p.Enabled() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, OrdersExchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
}

func (p *EventPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
