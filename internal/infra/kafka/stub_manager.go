package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/port"
)

// StubConnectionManager logs envelopes instead of sending them to a broker.
// Used when no brokers are configured so local development keeps working
// without Kafka.
type StubConnectionManager struct {
	logger *zap.Logger
}

// NewStubConnectionManager constructs the development stand-in.
func NewStubConnectionManager(logger *zap.Logger) *StubConnectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubConnectionManager{logger: logger}
}

type stubHandle struct{}

func (stubHandle) Release() {}

func (m *StubConnectionManager) AcquireProducer(context.Context) (port.ProducerHandle, error) {
	return stubHandle{}, nil
}

func (m *StubConnectionManager) Send(_ context.Context, _ port.ProducerHandle, envelope port.Envelope) error {
	value, err := envelope.Encode()
	if err != nil {
		return err
	}

	m.logger.Info("stub envelope published",
		zap.String("topic", envelope.Topic()),
		zap.String("key", envelope.Key()),
		zap.ByteString("payload", value),
	)
	return nil
}

func (m *StubConnectionManager) Subscribe(context.Context, []string, string) (port.Subscription, error) {
	return stubSubscription{}, nil
}

func (m *StubConnectionManager) Close() error { return nil }

type stubSubscription struct{}

// Consume blocks until cancellation; no messages ever arrive.
func (stubSubscription) Consume(ctx context.Context, _ port.MessageHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stubSubscription) Close() error { return nil }

var _ port.ConnectionManager = (*StubConnectionManager)(nil)
