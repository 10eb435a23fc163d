package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

// MemberEventsQueue is the durable queue member lifecycle events are published to.
const MemberEventsQueue = "member_events"

// Event types.
const (
	EventMemberRegistered = "member.registered"
	EventMemberUpdated    = "member.updated"
	EventMemberDeleted    = "member.deleted"
	EventDocumentUploaded = "document.uploaded"
)

// Event is the JSON body of every message on MemberEventsQueue.
type Event struct {
	Type     string    `json:"type"`
	MemberID string    `json:"member_id"`
	UserID   string    `json:"user_id"`
	DocType  string    `json:"doc_type,omitempty"`
	At       time.Time `json:"at"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares MemberEventsQueue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", MemberEventsQueue, err)
	}

	log.Printf("RabbitMQ client connected and %s declared.", MemberEventsQueue)

	return &Client{conn: conn, channel: ch}, nil
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		MemberEventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// Close closes the channel and then the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishEvent publishes event as a persistent JSON message.
func (c *Client) PublishEvent(event Event) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.Publish(
		"",                // default exchange
		MemberEventsQueue, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.At,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// ConsumeEvents delivers every message on MemberEventsQueue to handler.
// Messages are acked when handler returns nil and requeued otherwise.
// It returns once the consumer is registered; done is closed when the delivery
// channel closes.
func (c *Client) ConsumeEvents(handler func(msg amqp.Delivery) error) (done <-chan struct{}, err error) {
	if c.channel == nil {
		return nil, fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for msg := range msgs {
			if err := handler(msg); err != nil {
				log.Printf("Error processing message %d: %v", msg.DeliveryTag, err)
				// Malformed messages would loop forever if requeued.
				if nackErr := msg.Nack(false, !errorIsPermanent(err)); nackErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return finished, nil
}

// DecodeError marks a message body that can never be processed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "undecodable event: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

func errorIsPermanent(err error) bool {
	_, ok := err.(*DecodeError)
	return ok
}

// DecodeEvent parses a delivery body into an Event.
func DecodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, &DecodeError{Err: err}
	}
	if event.Type == "" {
		return Event{}, &DecodeError{Err: fmt.Errorf("missing event type")}
	}
	return event, nil
}

// HandleEventMessage logs a member event.
func HandleEventMessage(msg amqp.Delivery) error {
	event, err := DecodeEvent(msg.Body)
	if err != nil {
		return err
	}
	if event.DocType != "" {
		log.Printf("Received %s for member %s (user %s, doc %q) at %s",
			event.Type, event.MemberID, event.UserID, event.DocType, event.At.Format(time.RFC3339))
		return nil
	}
	log.Printf("Received %s for member %s (user %s) at %s",
		event.Type, event.MemberID, event.UserID, event.At.Format(time.RFC3339))
	return nil
}
