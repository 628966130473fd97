package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/bookwise/booking-platform/internal/core/domain"
	"github.com/bookwise/booking-platform/internal/infra/config"
)

type fakeSyncProducer struct {
	sendErr  error
	messages []*sarama.ProducerMessage
	closed   bool
}

func (p *fakeSyncProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	if p.sendErr != nil {
		return 0, 0, p.sendErr
	}
	p.messages = append(p.messages, msg)
	return 0, int64(len(p.messages)), nil
}

func (p *fakeSyncProducer) SendMessages(msgs []*sarama.ProducerMessage) error {
	for _, msg := range msgs {
		if _, _, err := p.SendMessage(msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakeSyncProducer) Close() error {
	p.closed = true
	return nil
}

func (p *fakeSyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag { return 0 }
func (p *fakeSyncProducer) IsTransactional() bool                   { return false }
func (p *fakeSyncProducer) BeginTxn() error                         { return nil }
func (p *fakeSyncProducer) CommitTxn() error                        { return nil }
func (p *fakeSyncProducer) AbortTxn() error                         { return nil }
func (p *fakeSyncProducer) AddOffsetsToTxn(map[string][]*sarama.PartitionOffsetMetadata, string) error {
	return nil
}
func (p *fakeSyncProducer) AddMessageToTxn(*sarama.ConsumerMessage, string, *string) error {
	return nil
}

func newTestManager(t *testing.T, producer *fakeSyncProducer, dialErr error) (*ConnectionManager, *int) {
	t.Helper()
	manager := NewConnectionManager(config.KafkaSettings{
		Brokers:  []string{"localhost:9092"},
		ClientID: "test",
	}, zaptest.NewLogger(t))

	dials := 0
	manager.dial = func([]string, *sarama.Config) (sarama.SyncProducer, error) {
		dials++
		if dialErr != nil {
			return nil, dialErr
		}
		return producer, nil
	}
	return manager, &dials
}

func TestAcquireProducerDialsOnce(t *testing.T) {
	producer := &fakeSyncProducer{}
	manager, dials := newTestManager(t, producer, nil)

	first, err := manager.AcquireProducer(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	second, err := manager.AcquireProducer(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if *dials != 1 {
		t.Fatalf("dials = %d, want the connection shared across leases", *dials)
	}

	first.Release()
	first.Release() // idempotent
	second.Release()
}

func TestAcquireProducerReportsBrokerUnavailable(t *testing.T) {
	manager, _ := newTestManager(t, nil, errors.New("connection refused"))

	_, err := manager.AcquireProducer(context.Background())
	if !errors.Is(err, domain.ErrBrokerUnavailable) {
		t.Fatalf("err = %v, want ErrBrokerUnavailable", err)
	}
}

func TestSendDeliversEncodedEnvelope(t *testing.T) {
	producer := &fakeSyncProducer{}
	manager, _ := newTestManager(t, producer, nil)

	handle, err := manager.AcquireProducer(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer handle.Release()

	envelope, err := AvailabilityEnvelope(domain.AvailabilityDeclaredEvent{
		AdminID:   "admin-1",
		DayOfWeek: "MONDAY",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}

	if err := manager.Send(context.Background(), handle, envelope); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(producer.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.Topic != domain.TopicAvailabilityCreated {
		t.Fatalf("topic = %q", msg.Topic)
	}
	key, _ := msg.Key.Encode()
	if string(key) != "admin-1" {
		t.Fatalf("key = %q, want admin-1", key)
	}
}

func TestSendWrapsProducerFailure(t *testing.T) {
	producer := &fakeSyncProducer{sendErr: errors.New("broker went away")}
	manager, _ := newTestManager(t, producer, nil)

	handle, err := manager.AcquireProducer(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer handle.Release()

	envelope, err := LoginEnvelope(domain.LoginEvent{
		UserID: "user-1",
		Email:  "jane@example.com",
		Role:   domain.RoleClient,
	})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}

	if err := manager.Send(context.Background(), handle, envelope); !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("err = %v, want ErrPublishFailed", err)
	}
}

func TestSendRejectsForeignHandle(t *testing.T) {
	producer := &fakeSyncProducer{}
	manager, _ := newTestManager(t, producer, nil)
	other, _ := newTestManager(t, &fakeSyncProducer{}, nil)

	handle, err := other.AcquireProducer(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer handle.Release()

	envelope, _ := LoginEnvelope(domain.LoginEvent{
		UserID: "user-1",
		Email:  "jane@example.com",
		Role:   domain.RoleClient,
	})

	if err := manager.Send(context.Background(), handle, envelope); !errors.Is(err, domain.ErrPublishFailed) {
		t.Fatalf("err = %v, want ErrPublishFailed for a foreign handle", err)
	}
}

func TestCloseShutsDownProducer(t *testing.T) {
	producer := &fakeSyncProducer{}
	manager, _ := newTestManager(t, producer, nil)

	if _, err := manager.AcquireProducer(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := manager.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !producer.closed {
		t.Fatal("producer not closed")
	}

	if _, err := manager.AcquireProducer(context.Background()); !errors.Is(err, domain.ErrBrokerUnavailable) {
		t.Fatalf("err = %v, want ErrBrokerUnavailable after close", err)
	}
}
