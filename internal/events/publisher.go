package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits storefront events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, meta EventMeta, ev OrderPlaced) error
	PublishCheckoutCompleted(ctx context.Context, meta EventMeta, ev CheckoutCompleted) error
	PublishPaymentVerificationFailed(ctx context.Context, meta EventMeta, ev PaymentVerificationFailed) error
	Close() error
}

// EventMeta is the request context an event is published under.
type EventMeta struct {
	CorrelationID string
	SessionID     string
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	ch       channel
	seqRepo  SequenceRepository
	producer string
	now      func() time.Time
}

func NewAMQPPublisher(conn *amqp.Connection, seqRepo SequenceRepository) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &AMQPPublisher{ch: ch, seqRepo: seqRepo, producer: producerName, now: time.Now}, nil
}

func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}

func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, meta EventMeta, ev OrderPlaced) error {
	return p.publish(ctx, meta, EventTypeOrderPlaced, orderPlacedSchema, OrderPlacedRoutingKey, ev)
}

func (p *AMQPPublisher) PublishCheckoutCompleted(ctx context.Context, meta EventMeta, ev CheckoutCompleted) error {
	return p.publish(ctx, meta, EventTypeCheckoutCompleted, checkoutCompletedSchema, CheckoutCompletedRoutingKey, ev)
}

func (p *AMQPPublisher) PublishPaymentVerificationFailed(ctx context.Context, meta EventMeta, ev PaymentVerificationFailed) error {
	return p.publish(ctx, meta, EventTypePaymentVerificationFailed, paymentVerificationFailedSchema, PaymentVerificationFailedRoutingKey, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, meta EventMeta, name, schema, routingKey string, payload any) error {
	seq, err := p.seqRepo.NextSequence(ctx, meta.SessionID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env, err := newEnvelope(meta, seq, p.producer, name, schema, payload, p.now().UTC())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", name, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: meta.CorrelationID,
			Timestamp:     env.OccurredAt,
			Body:          body,
		},
	)
}

// LoggingPublisher stands in when no broker is configured. It only logs.
type LoggingPublisher struct {
	logger *log.Logger
}

func NewLoggingPublisher(logger *log.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) PublishOrderPlaced(_ context.Context, meta EventMeta, ev OrderPlaced) error {
	p.logger.Printf("event %s order=%d session=%s cid=%s", EventTypeOrderPlaced, ev.OrderID, meta.SessionID, meta.CorrelationID)
	return nil
}

func (p *LoggingPublisher) PublishCheckoutCompleted(_ context.Context, meta EventMeta, ev CheckoutCompleted) error {
	p.logger.Printf("event %s order=%d session=%s cid=%s", EventTypeCheckoutCompleted, ev.OrderID, meta.SessionID, meta.CorrelationID)
	return nil
}

func (p *LoggingPublisher) PublishPaymentVerificationFailed(_ context.Context, meta EventMeta, ev PaymentVerificationFailed) error {
	p.logger.Printf("event %s order=%d session=%s cid=%s reason=%q", EventTypePaymentVerificationFailed, ev.OrderID, meta.SessionID, meta.CorrelationID, ev.Reason)
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }
