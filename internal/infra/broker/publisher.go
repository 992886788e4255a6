package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fintrack_notifier/internal/domain/push"
	"fintrack_notifier/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// envelope is the wire shape consumed by the mobile push gateway.
type envelope struct {
	ID       string        `json:"id"`
	SlotKey  string        `json:"slot_key"`
	UserID   int64         `json:"user_id"`
	Title    string        `json:"title"`
	Body     string        `json:"body"`
	Subtext  string        `json:"subtext,omitempty"`
	Priority push.Priority `json:"priority"`
	SentAt   time.Time     `json:"sent_at"`
}

// Publisher implements push.Sender over a RabbitMQ topic exchange. The slot
// key doubles as the routing key, so a gateway can bind per card or per
// event kind and collapse replacements downstream.
type Publisher struct {
	conn     *amqp091.Connection
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}
	return &Publisher{conn: conn, exchange: exchange}, nil
}

func (p *Publisher) Send(ctx context.Context, msg push.Message) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(envelope{
		ID:       uuid.NewString(),
		SlotKey:  msg.SlotKey,
		UserID:   msg.UserID,
		Title:    msg.Title,
		Body:     msg.Body,
		Subtext:  msg.Subtext,
		Priority: msg.Priority,
		SentAt:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push envelope: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, msg.SlotKey, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.SlotKey, // stable per slot; gateways dedupe on it
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish push message: %w", err)
	}
	logger.Log.WithField("slot", msg.SlotKey).Debug("Push message published")
	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
