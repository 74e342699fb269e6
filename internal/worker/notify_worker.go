package worker

// notify_worker.go
// Fans a completed order out to the kitchen event exchange and the admin
// Telegram chat. Both sinks are optional.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NotifyJobPayload is the job envelope sent to QueueNotify. It is also the
// body of the published order event.
type NotifyJobPayload struct {
	OrderID       string          `json:"order_id"`
	BillNo        string          `json:"bill_no"`
	TerminalID    string          `json:"terminal_id"`
	Session       string          `json:"session"`
	OrderType     string          `json:"order_type"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	TotalItems    int             `json:"total_items"`
	Items         []NotifyItem    `json:"items"`
	CompletedAt   time.Time       `json:"completed_at"`
}

type NotifyItem struct {
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
}

// MessageSender is implemented by infra.TelegramNotifier.
type MessageSender interface {
	Send(text string) error
}

// EventPublisher is implemented by infra.EventPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

type NotifyWorker struct {
	chat   MessageSender
	events EventPublisher
}

func NewNotifyWorker(chat MessageSender, events EventPublisher) *NotifyWorker {
	return &NotifyWorker{chat: chat, events: events}
}

// RoutingKey is the topic an order event is published under.
func RoutingKey(session string) string {
	return "orders.completed." + session
}

func (w *NotifyWorker) Process(ctx context.Context, raw json.RawMessage) {
	var p NotifyJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error().Err(err).Msg("notify_worker: invalid payload")
		return
	}

	if w.events != nil {
		if err := w.events.Publish(ctx, RoutingKey(p.Session), raw); err != nil {
			log.Warn().Err(err).Str("bill_no", p.BillNo).Msg("notify_worker: publish failed")
		}
	}
	if w.chat != nil {
		if err := w.chat.Send(summaryText(p)); err != nil {
			log.Warn().Err(err).Str("bill_no", p.BillNo).Msg("notify_worker: telegram send failed")
		}
	}
}

func summaryText(p NotifyJobPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bill %s · %s · %s\n", p.BillNo, p.Session, p.OrderType)
	for _, it := range p.Items {
		fmt.Fprintf(&b, "%d x %s", it.Quantity, it.Name)
		if len(it.Customizations) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(it.Customizations, ", "))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Total Rs. %s (%s)", p.Total.StringFixed(2), p.PaymentMethod)
	return b.String()
}
