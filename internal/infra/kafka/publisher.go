package kafka

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/core/port"
	"github.com/bookwise/booking-platform/internal/infra/telemetry"
)

// DomainEventPublisher orchestrates envelope construction and broker delivery
// for each triggering action: build, acquire producer, send, release. Release
// runs on every exit path via deferred lease release.
type DomainEventPublisher struct {
	manager port.ConnectionManager
	logger  *zap.Logger
	metrics *telemetry.PipelineMetrics
	tracer  trace.Tracer
}

// NewDomainEventPublisher constructs a publisher on top of the connection manager.
func NewDomainEventPublisher(manager port.ConnectionManager, logger *zap.Logger) *DomainEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DomainEventPublisher{
		manager: manager,
		logger:  logger,
		tracer:  otel.Tracer("booking-platform/kafka"),
	}
}

// WithMetrics attaches pipeline counters.
func (p *DomainEventPublisher) WithMetrics(metrics *telemetry.PipelineMetrics) *DomainEventPublisher {
	p.metrics = metrics
	return p
}

// publish sends the envelopes sequentially under one acquired producer scope.
// A failure on envelope i aborts the remainder and reports the count already
// delivered; no retry is attempted here.
func (p *DomainEventPublisher) publish(ctx context.Context, topic string, envelopes []*Envelope) (int, error) {
	ctx, span := p.tracer.Start(ctx, "publish",
		trace.WithAttributes(
			attribute.String("messaging.destination", topic),
			attribute.Int("messaging.batch.size", len(envelopes)),
		))
	defer span.End()

	handle, err := p.manager.AcquireProducer(ctx)
	if err != nil {
		p.observeFailure(topic, "acquire")
		span.RecordError(err)
		return 0, err
	}
	defer handle.Release()

	for i, envelope := range envelopes {
		if err := p.manager.Send(ctx, handle, envelope); err != nil {
			p.observeFailure(topic, "send")
			span.RecordError(err)
			p.logger.Warn("event fan-out aborted",
				zap.String("topic", topic),
				zap.Int("delivered", i),
				zap.Int("remaining", len(envelopes)-i),
				zap.Error(err),
			)
			return i, &domain.PublishError{Delivered: i, Err: err}
		}
		p.observeSuccess(topic)
	}

	return len(envelopes), nil
}

func (p *DomainEventPublisher) observeSuccess(topic string) {
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(topic).Inc()
	}
}

func (p *DomainEventPublisher) observeFailure(topic, stage string) {
	if p.metrics != nil {
		p.metrics.EventsFailed.WithLabelValues(topic, stage).Inc()
	}
}

// PublishLogin fans out a user-login event after a completed credential check.
func (p *DomainEventPublisher) PublishLogin(ctx context.Context, event domain.LoginEvent) error {
	envelope, err := LoginEnvelope(event)
	if err != nil {
		return err
	}

	if _, err := p.publish(ctx, domain.TopicUserLogin, []*Envelope{envelope}); err != nil {
		return err
	}

	p.logger.Info("login event published", zap.String("user_id", event.UserID))
	return nil
}

// PublishAvailabilityDeclared decomposes a multi-day declaration into one
// independent envelope per day, all sharing the declaration's time window,
// and sends them sequentially under a single producer lease. The returned
// count is the number of envelopes delivered.
func (p *DomainEventPublisher) PublishAvailabilityDeclared(ctx context.Context, declaration domain.AvailabilityDeclaration) (int, error) {
	if len(declaration.AvailableDays) == 0 {
		return 0, &domain.InvalidEventPayloadError{
			Topic:  domain.TopicAvailabilityCreated,
			Fields: []string{"availableDays"},
		}
	}

	events := declaration.Events()
	envelopes := make([]*Envelope, 0, len(events))
	for _, event := range events {
		envelope, err := AvailabilityEnvelope(event)
		if err != nil {
			return 0, err
		}
		envelopes = append(envelopes, envelope)
	}

	delivered, err := p.publish(ctx, domain.TopicAvailabilityCreated, envelopes)
	if err != nil {
		return delivered, err
	}

	p.logger.Info("availability events published",
		zap.String("admin_id", declaration.AdminID),
		zap.Int("days", delivered),
	)
	return delivered, nil
}

// PublishAppointmentRequested fans out an appointment-created event.
func (p *DomainEventPublisher) PublishAppointmentRequested(ctx context.Context, event domain.AppointmentRequestedEvent) error {
	envelope, err := AppointmentEnvelope(event)
	if err != nil {
		return err
	}

	if _, err := p.publish(ctx, domain.TopicAppointmentCreated, []*Envelope{envelope}); err != nil {
		return err
	}

	p.logger.Info("appointment event published",
		zap.String("user_id", event.UserID),
		zap.String("admin_id", event.AdminID),
	)
	return nil
}

var _ port.EventPublisher = (*DomainEventPublisher)(nil)
