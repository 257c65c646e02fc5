// Package events publishes shopping record events to RabbitMQ.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/smartcart-api/internal/application/shopping"
	"github.com/jhoicas/smartcart-api/internal/domain/entity"
)

var (
	_ shopping.RecordPublisher = (*Publisher)(nil)
	_ shopping.RecordPublisher = NoopPublisher{}
)

const publishTimeout = 5 * time.Second

// channel the part of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends record events to a durable direct exchange.
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	log      zerolog.Logger
	now      func() time.Time
}

// NewPublisher dials url, retrying with backoff up to attempts times, and declares the exchange.
func NewPublisher(ctx context.Context, url, exchange string, attempts int, log zerolog.Logger) (*Publisher, error) {
	conn, err := dialWithRetry(ctx, url, attempts, log)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, log: log, now: time.Now}, nil
}

// PublishRecordCreated sends a record.created message for rec.
func (p *Publisher) PublishRecordCreated(ctx context.Context, shopperID string, rec *entity.ShoppingRecord) error {
	body, err := NewRecordCreatedMessage(shopperID, rec).ToJSON()
	if err != nil {
		return fmt.Errorf("events: marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		RoutingKeyRecordCreated,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    rec.ID,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", rec.ID, err)
	}

	p.log.Debug().Str("record_id", rec.ID).Str("exchange", p.exchange).Msg("record event published")
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func dialWithRetry(ctx context.Context, url string, attempts int, log zerolog.Logger) (*amqp091.Connection, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		wait := backoff(i)
		log.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", wait).Msg("amqp dial failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("events: dial amqp: %w", lastErr)
}

// backoff 1s, 2s, 4s... capped at 30s.
func backoff(attempt int) time.Duration {
	if attempt > 5 {
		return 30 * time.Second
	}
	d := time.Second << attempt
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

// PublishRecordCreated does nothing.
func (NoopPublisher) PublishRecordCreated(context.Context, string, *entity.ShoppingRecord) error {
	return nil
}
