package events

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange                      = "storefront.events"
	OrderPlacedRoutingKey               = "storefront.order.placed.v1"
	CheckoutCompletedRoutingKey         = "storefront.checkout.completed.v1"
	PaymentVerificationFailedRoutingKey = "storefront.payment.verification_failed.v1"
	producerName                        = "storefront-go"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Dial connects to RabbitMQ, retrying while the broker comes up.
func Dial(url string, attempts int, backoff time.Duration) (*amqp.Connection, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(backoff)
	}
	return nil, fmt.Errorf("connect to RabbitMQ: %w", lastErr)
}
