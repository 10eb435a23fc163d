package services

import (
	"log"
	"time"

	"socios/pkg/rabbitmq"
)

// EventPublisher publishes member lifecycle events. *rabbitmq.Client implements it.
type EventPublisher interface {
	PublishEvent(event rabbitmq.Event) error
}

// publish sends event if a publisher is configured. Failures never fail the operation.
func publish(p EventPublisher, event rabbitmq.Event) {
	if p == nil {
		return
	}
	event.At = time.Now().UTC()
	if err := p.PublishEvent(event); err != nil {
		log.Printf("Warning: failed to publish %s for member %s: %v", event.Type, event.MemberID, err)
	}
}
