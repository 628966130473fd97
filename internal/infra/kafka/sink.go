package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/infra/logger"
	"github.com/bookwise/booking-platform/internal/infra/telemetry"
)

// EventSink is the standing consumer bound to one subscription. Delivered
// messages are dispatched to a registered handler keyed by topic; unknown
// topics are logged and dropped, and handler failures never terminate the
// subscription loop.
type EventSink struct {
	handlers map[string]port.MessageHandler
	logger   *zap.Logger
	metrics  *telemetry.PipelineMetrics
}

// NewEventSink constructs an empty sink.
func NewEventSink(log *zap.Logger) *EventSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventSink{
		handlers: make(map[string]port.MessageHandler),
		logger:   log,
	}
}

// WithMetrics attaches pipeline counters.
func (s *EventSink) WithMetrics(metrics *telemetry.PipelineMetrics) *EventSink {
	s.metrics = metrics
	return s
}

// Register binds a handler to a topic. Later registrations replace earlier ones.
func (s *EventSink) Register(topic string, handler port.MessageHandler) {
	s.handlers[topic] = handler
}

// Topics lists the registered topics in no particular order.
func (s *EventSink) Topics() []string {
	topics := make([]string, 0, len(s.handlers))
	for topic := range s.handlers {
		topics = append(topics, topic)
	}
	return topics
}

// Run consumes the subscription until ctx is cancelled. The subscription is
// owned exclusively by this sink for its lifetime.
func (s *EventSink) Run(ctx context.Context, subscription port.Subscription) error {
	s.logger.Info("event sink started", zap.Strings("topics", s.Topics()))
	return subscription.Consume(ctx, s.Dispatch)
}

// Dispatch routes one delivered message. Always returns nil for handler
// failures after logging them; the loop must stay available.
func (s *EventSink) Dispatch(ctx context.Context, topic string, value []byte) error {
	handler, ok := s.handlers[topic]
	if !ok {
		s.logger.Warn("message on unregistered topic dropped", zap.String("topic", topic))
		return nil
	}

	if err := handler(ctx, topic, value); err != nil {
		if s.metrics != nil {
			s.metrics.MessagesRejected.WithLabelValues(topic).Inc()
		}
		s.logger.Warn("event handler failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return nil
	}

	if s.metrics != nil {
		s.metrics.MessagesConsumed.WithLabelValues(topic).Inc()
	}
	return nil
}

// loginRecord mirrors the user-login payload schema on the wire.
type loginRecord struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
}

// NewLoginAuditHandler returns the handler that ingests user-login events and
// writes an audit log line with masked contact details. Duplicates are
// harmless: the handler is idempotent by construction.
func NewLoginAuditHandler(log *zap.Logger) port.MessageHandler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(_ context.Context, _ string, value []byte) error {
		var record loginRecord
		if err := json.Unmarshal(value, &record); err != nil {
			return fmt.Errorf("decode login event: %w", err)
		}
		if record.UserID == "" {
			return fmt.Errorf("login event missing userId")
		}

		log.Info("user login observed",
			zap.String("topic", domain.TopicUserLogin),
			zap.String("user_id", record.UserID),
			zap.String("email", logger.MaskEmail(record.Email)),
			zap.String("phone", logger.MaskPhone(record.Phone)),
			zap.String("role", record.Role),
			zap.String("timestamp", record.Timestamp),
		)
		return nil
	}
}
