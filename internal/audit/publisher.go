package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue audit records are published to.
const QueueName = "reservation.audit"

// Publisher emits audit records.  The engine treats publishing as
// best-effort: a broker outage must never fail a reservation, so
// callers log and ignore errors from Publish.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// AMQPPublisher publishes audit records to RabbitMQ.  Each publish
// dials its own short-lived connection so a dropped broker connection
// never leaves the publisher wedged.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher bound to the given broker URL.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// Publish declares the durable audit queue (idempotent) and publishes
// the record as a persistent JSON message.  Any error is logged and
// returned so the caller can choose to ignore it.
func (p *AMQPPublisher) Publish(ctx context.Context, rec Record) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("audit: dial broker failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("audit: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		QueueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("audit: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(rec)
	if err != nil {
		log.Printf("audit: marshal record failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("audit: publish failed: %v", err)
		return err
	}
	return nil
}
