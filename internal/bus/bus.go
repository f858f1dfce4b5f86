// Package bus implements the Event Bus Adapter: a thin wrapper over a
// durable fanout exchange named "events" that every service in the system
// publishes to and subscribes from.
//
// Publish is best-effort: a connection failure is logged and returned to the
// caller, never panics, and never corrupts the caller's own transaction.
// Subscribe hands every delivery to a handler with at-least-once semantics
// and auto-acks; consumer-side dedup (ProcessedMessage, not the bus) is
// what turns that into an exactly-once effect.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	exchangeName = "events"
	exchangeType = "fanout"
)

// Handler processes one decoded envelope. It returns nothing: a handler logs
// its own failures, and the adapter never nacks or requeues, since auto-ack
// semantics mean the message is already considered delivered by the broker.
type Handler func(ctx context.Context, env RawEnvelope)

// Publisher publishes events onto the durable fanout exchange.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// Subscriber binds an exclusive, auto-deleted queue to the fanout exchange
// and delivers every message to a Handler until the context is cancelled.
type Subscriber interface {
	Run(ctx context.Context, handler Handler) error
	Close() error
}

// Adapter is both a Publisher and a Subscriber sharing one AMQP connection.
// Each service constructs exactly one Adapter.
type Adapter struct {
	url    string
	logger zerolog.Logger

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAdapter dials RabbitMQ, opens a channel, and declares the durable
// fanout exchange. The exchange declaration is idempotent, so every service
// can safely be the first to start.
func NewAdapter(url string, logger zerolog.Logger) (*Adapter, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("bus: failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bus: failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchangeName,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bus: failed to declare exchange %q: %w", exchangeName, err)
	}

	logger.Info().Str("exchange", exchangeName).Msg("bus adapter connected")

	return &Adapter{url: url, logger: logger, conn: conn, ch: ch}, nil
}

// Publish serializes {type, payload} and broadcasts it on the fanout
// exchange. No messageId is set, so it is omitted from the JSON; consumers
// fall back to their own "{type}:{bookingId}" key. Failure is returned to
// the caller rather than retried here; the caller decides whether to retry.
func (a *Adapter) Publish(ctx context.Context, eventType string, payload any) error {
	env := Envelope{
		Type:      eventType,
		Payload:   payload,
		MessageID: "",
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bus: failed to marshal event %s: %w", eventType, err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = a.ch.PublishWithContext(pctx,
		exchangeName,
		"", // fanout ignores routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		a.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
		return fmt.Errorf("bus: failed to publish %s: %w", eventType, err)
	}

	a.logger.Debug().Str("event_type", eventType).Msg("published event")
	return nil
}

// Run declares an exclusive, auto-deleted queue bound to the fanout
// exchange and delivers every message to handler until ctx is cancelled.
// On connection loss it reconnects with backoff min(5*attempt, 30) seconds
// , and resumes consuming — every message published after
// it rebinds, including any redelivered by the broker, is handed to handler
// again; handler is responsible for idempotent dispatch (see
// internal/orchestrator's ProcessedMessage dedup).
func (a *Adapter) Run(ctx context.Context, handler Handler) error {
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := a.runOnce(ctx, handler)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		attempt++
		wait := time.Duration(min(5*attempt, 30)) * time.Second
		a.logger.Error().Err(err).Int("attempt", attempt).Dur("wait", wait).
			Msg("bus subscriber disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		if err := a.reconnect(); err != nil {
			continue
		}
		attempt = 0
	}
}

func (a *Adapter) runOnce(ctx context.Context, handler Handler) error {
	q, err := a.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("bus: failed to declare exclusive queue: %w", err)
	}

	if err := a.ch.QueueBind(q.Name, "", exchangeName, false, nil); err != nil {
		return fmt.Errorf("bus: failed to bind queue %q: %w", q.Name, err)
	}

	deliveries, err := a.ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("bus: failed to start consuming: %w", err)
	}

	a.logger.Info().Str("queue", q.Name).Msg("bus subscriber bound and consuming")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("bus: delivery channel closed")
			}
			var env RawEnvelope
			if err := json.Unmarshal(msg.Body, &env); err != nil {
				a.logger.Error().Err(err).Str("body", string(msg.Body)).
					Msg("bus: dropping unparseable message")
				continue
			}
			handler(ctx, env)
		}
	}
}

func (a *Adapter) reconnect() error {
	if a.ch != nil {
		a.ch.Close()
	}
	if a.conn != nil {
		a.conn.Close()
	}

	conn, err := amqp.Dial(a.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(exchangeName, exchangeType, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	a.conn = conn
	a.ch = ch
	return nil
}

// Close releases the channel and connection. Safe to call once at shutdown.
func (a *Adapter) Close() error {
	if a.ch != nil {
		a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
