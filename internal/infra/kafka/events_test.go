package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, async sarama.AsyncProducer) *EventPublisher {
	t.Helper()
	producer := &Producer{
		producer: async,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "crm"},
		done:     make(chan struct{}),
	}
	return NewEventPublisher(producer, config.AppSettings{Name: "crm-service", Env: "test"}, zaptest.NewLogger(t))
}

func TestPublishUserRegistered(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	registeredAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	event := domain.UserRegisteredEvent{
		EventID:      "event-123",
		UserID:       "user-456",
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		RoleName:     "customer",
		RegisteredAt: registeredAt,
	}

	if err := publisher.PublishUserRegistered(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "crm.user.registered" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope struct {
			EventID   string `json:"event_id"`
			EventType string `json:"event_type"`
			Version   string `json:"version"`
			Payload   struct {
				UserID string `json:"user_id"`
				Role   string `json:"role"`
			} `json:"payload"`
			Metadata map[string]string `json:"metadata"`
		}
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}

		if envelope.EventID != "event-123" {
			t.Errorf("event_id = %q, want event-123", envelope.EventID)
		}
		if envelope.EventType != "crm.user.registered" {
			t.Errorf("event_type = %q", envelope.EventType)
		}
		if envelope.Payload.UserID != "user-456" {
			t.Errorf("payload user_id = %q", envelope.Payload.UserID)
		}
		if envelope.Payload.Role != "customer" {
			t.Errorf("payload role = %q", envelope.Payload.Role)
		}
		if envelope.Metadata["service"] != "crm-service" {
			t.Errorf("metadata service = %q", envelope.Metadata["service"])
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishCustomerEventTopicPerChange(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	event := domain.CustomerEvent{
		CustomerID: "cust-1",
		Change:     domain.CustomerDeleted,
		ActorID:    "user-1",
		At:         time.Now(),
	}

	if err := publisher.PublishCustomerEvent(context.Background(), event); err != nil {
		t.Fatalf("PublishCustomerEvent returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "crm.customer.deleted" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}
	default:
		t.Fatal("no message produced")
	}
}

func TestPublishGeneratesEventIDWhenMissing(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	event := domain.UserLoggedInEvent{
		UserID:   "user-1",
		Email:    "jdoe@example.com",
		RoleName: "manager",
		At:       time.Now(),
	}

	if err := publisher.PublishUserLoggedIn(context.Background(), event); err != nil {
		t.Fatalf("PublishUserLoggedIn returned error: %v", err)
	}

	msg := <-asyncProducer.input
	bytes, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("Value.Encode returned error: %v", err)
	}

	var envelope struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(bytes, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.EventID == "" {
		t.Fatal("event_id was not generated")
	}
}
