package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/infra/config"
)

const (
	defaultDialTimeout = 10 * time.Second
	defaultSendTimeout = 10 * time.Second
)

// ConnectionManager owns the lifecycle of broker connections. The producer
// connection is established once and shared; AcquireProducer and Release are
// cheap reference operations, not handshakes. Consumer bindings are created
// per Subscribe call and owned by their subscriber.
type ConnectionManager struct {
	cfg    config.KafkaSettings
	logger *zap.Logger

	mu       sync.Mutex
	producer sarama.SyncProducer
	leases   int
	closed   bool

	// dial is replaced in tests to avoid a live broker.
	dial func(brokers []string, sc *sarama.Config) (sarama.SyncProducer, error)
}

// NewConnectionManager constructs a manager for the configured brokers. No
// connection is attempted until the first acquire or subscribe.
func NewConnectionManager(cfg config.KafkaSettings, logger *zap.Logger) *ConnectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionManager{
		cfg:    cfg,
		logger: logger,
		dial:   sarama.NewSyncProducer,
	}
}

func (m *ConnectionManager) producerConfig() *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = m.cfg.ClientID
	sc.Version = sarama.V3_5_0_0

	dialTimeout := m.cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	sendTimeout := m.cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	sc.Net.DialTimeout = dialTimeout
	sc.Producer.Timeout = sendTimeout
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	// At-least-once: broker-level resends stay inside the client; the core
	// itself never re-publishes a failed envelope.
	sc.Producer.Retry.Max = 3
	sc.Producer.Retry.Backoff = 250 * time.Millisecond

	return sc
}

// producerLease is a released-once reference to the shared producer.
type producerLease struct {
	manager *ConnectionManager
	once    sync.Once
}

// Release returns the lease. Idempotent; safe to defer on every exit path.
func (l *producerLease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.manager.mu.Lock()
		if l.manager.leases > 0 {
			l.manager.leases--
		}
		l.manager.mu.Unlock()
	})
}

// AcquireProducer establishes the shared producer connection on first use and
// hands out a lease. Safe under concurrent callers; a dial that cannot
// complete within the bounded timeout reports domain.ErrBrokerUnavailable.
func (m *ConnectionManager) AcquireProducer(ctx context.Context) (port.ProducerHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("%w: connection manager closed", domain.ErrBrokerUnavailable)
	}

	if m.producer == nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBrokerUnavailable, err)
		}

		producer, err := m.dial(m.cfg.Brokers, m.producerConfig())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBrokerUnavailable, err)
		}
		m.producer = producer
		m.logger.Info("kafka producer connected",
			zap.Strings("brokers", m.cfg.Brokers),
			zap.String("client_id", m.cfg.ClientID),
		)
	}

	m.leases++
	return &producerLease{manager: m}, nil
}

// Send transmits one envelope to its topic. A failure after the connection is
// established is transient and reported as domain.ErrPublishFailed; the
// message may have been partially transmitted.
func (m *ConnectionManager) Send(ctx context.Context, handle port.ProducerHandle, envelope port.Envelope) error {
	lease, ok := handle.(*producerLease)
	if !ok || lease.manager != m {
		return fmt.Errorf("%w: foreign producer handle", domain.ErrPublishFailed)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}

	m.mu.Lock()
	producer := m.producer
	m.mu.Unlock()
	if producer == nil {
		return fmt.Errorf("%w: producer not connected", domain.ErrBrokerUnavailable)
	}

	value, err := envelope.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: envelope.Topic(),
		Value: sarama.ByteEncoder(value),
	}
	if key := envelope.Key(); key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}

	m.logger.Debug("envelope sent",
		zap.String("topic", envelope.Topic()),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)

	return nil
}

// Subscribe establishes a long-lived consumer-group binding. With
// ReplayFromBeginning set, a fresh group replays retained history instead of
// starting at the newest offset.
func (m *ConnectionManager) Subscribe(_ context.Context, topics []string, groupID string) (port.Subscription, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("at least one topic is required")
	}
	if groupID == "" {
		return nil, fmt.Errorf("consumer group id is required")
	}

	sc := sarama.NewConfig()
	sc.ClientID = m.cfg.ClientID
	sc.Version = sarama.V3_5_0_0
	sc.Consumer.Return.Errors = true
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	if m.cfg.ReplayFromBeginning {
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	group, err := sarama.NewConsumerGroup(m.cfg.Brokers, groupID, sc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBrokerUnavailable, err)
	}

	m.logger.Info("kafka consumer group subscribed",
		zap.Strings("topics", topics),
		zap.String("group_id", groupID),
		zap.Bool("replay_from_beginning", m.cfg.ReplayFromBeginning),
	)

	return &groupSubscription{
		group:  group,
		topics: topics,
		logger: m.logger,
	}, nil
}

// Close tears down the shared producer. Outstanding leases become invalid.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.producer != nil {
		if err := m.producer.Close(); err != nil {
			return fmt.Errorf("close kafka producer: %w", err)
		}
		m.producer = nil
	}

	return nil
}

var _ port.ConnectionManager = (*ConnectionManager)(nil)

// groupSubscription adapts a sarama consumer group to port.Subscription.
type groupSubscription struct {
	group  sarama.ConsumerGroup
	topics []string
	logger *zap.Logger
}

// Consume runs the delivery loop until ctx is cancelled. Rebalances restart
// the session; message-level failures never escape the loop.
func (s *groupSubscription) Consume(ctx context.Context, handler port.MessageHandler) error {
	claims := &claimConsumer{handler: handler, logger: s.logger}

	go func() {
		for err := range s.group.Errors() {
			s.logger.Warn("consumer group error", zap.Error(err))
		}
	}()

	for {
		if err := s.group.Consume(ctx, s.topics, claims); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("consumer session ended", zap.Error(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *groupSubscription) Close() error {
	return s.group.Close()
}

// claimConsumer dispatches each claimed message to the sink handler.
type claimConsumer struct {
	handler port.MessageHandler
	logger  *zap.Logger
}

func (c *claimConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *claimConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (c *claimConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := c.handler(session.Context(), message.Topic, message.Value); err != nil {
				c.logger.Warn("message handler failed",
					zap.String("topic", message.Topic),
					zap.Int64("offset", message.Offset),
					zap.Error(err),
				)
			}
			// Mark regardless of outcome: redelivery on the broker's
			// default at-least-once terms, consumers tolerate duplicates.
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
