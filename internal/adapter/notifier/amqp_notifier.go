package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const alertQueue = "operator.alerts"

// AMQPNotifier publishes operator alerts to a durable RabbitMQ queue. A
// downstream worker turns them into emails. Dialing per publish keeps the
// adapter stateless; alerts are rare enough that connection churn does not
// matter.
type AMQPNotifier struct {
	url string
}

func NewAMQPNotifier(url string) *AMQPNotifier {
	return &AMQPNotifier{url: url}
}

type alertMessage struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

func (n *AMQPNotifier) Notify(ctx context.Context, subject, body string) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("amqp dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so alerts survive broker restarts.
	if _, err := ch.QueueDeclare(alertQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp queue declare failed: %w", err)
	}

	payload, err := json.Marshal(alertMessage{
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}

	if err := ch.PublishWithContext(ctx, "", alertQueue, false, false, pub); err != nil {
		return fmt.Errorf("amqp publish failed: %w", err)
	}

	return nil
}
