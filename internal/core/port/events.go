package port

import (
	"context"

	"github.com/bookwise/booking-platform/internal/core/domain"
)

// Envelope is the canonical serialized event record handed to the broker:
// topic, optional partition key, flat payload, and production timestamp.
type Envelope interface {
	Topic() string
	Key() string
	Encode() ([]byte, error)
}

// ProducerHandle is a leased reference to the shared producer connection.
// Handles are cheap to acquire and must be released on every exit path.
type ProducerHandle interface {
	Release()
}

// ConnectionManager hides broker-client setup and teardown behind producer
// and consumer capability surfaces. Producer acquisition is safe under
// concurrent callers; the consumer subscription is long-lived and owned by a
// single sink.
type ConnectionManager interface {
	// AcquireProducer establishes or reuses a producer-mode connection.
	// Fails with domain.ErrBrokerUnavailable when the broker cannot be
	// reached within the configured timeout.
	AcquireProducer(ctx context.Context) (ProducerHandle, error)

	// Send transmits one envelope to its topic with at-least-once
	// semantics. A failed send may have been partially transmitted and is
	// reported as domain.ErrPublishFailed.
	Send(ctx context.Context, handle ProducerHandle, envelope Envelope) error

	// Subscribe establishes a long-lived consumer binding for the given
	// topics and group. Created once per process, not per message.
	Subscribe(ctx context.Context, topics []string, groupID string) (Subscription, error)

	// Close tears down all broker connections.
	Close() error
}

// Subscription is a standing consumer-group binding delivering messages until
// closed. Ownership is exclusive to the sink that consumes it.
type Subscription interface {
	// Consume runs the delivery loop, dispatching each message to handler,
	// until ctx is cancelled or the subscription is closed.
	Consume(ctx context.Context, handler MessageHandler) error
	Close() error
}

// MessageHandler processes one delivered message. Errors are logged by the
// sink and never terminate the subscription loop.
type MessageHandler func(ctx context.Context, topic string, value []byte) error

// EventPublisher orchestrates gate, envelope construction, and broker
// delivery for each triggering action. Delivery is best-effort fan-out: the
// caller's primary state change is never rolled back on failure.
type EventPublisher interface {
	PublishLogin(ctx context.Context, event domain.LoginEvent) error
	PublishAvailabilityDeclared(ctx context.Context, declaration domain.AvailabilityDeclaration) (int, error)
	PublishAppointmentRequested(ctx context.Context, event domain.AppointmentRequestedEvent) error
}
