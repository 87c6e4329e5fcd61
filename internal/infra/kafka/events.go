package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher on top of Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes crm.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string    `json:"user_id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		Role         string    `json:"role"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		Role:         event.RoleName,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "crm.user.registered", event.RegisteredAt, payload)
}

// PublishUserLoggedIn publishes crm.user.logged_in events.
func (p *EventPublisher) PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
		IPAddress *string   `json:"ip_address,omitempty"`
		LoggedAt  time.Time `json:"logged_at"`
	}{
		UserID:    event.UserID,
		Email:     event.Email,
		Role:      event.RoleName,
		IPAddress: event.IP,
		LoggedAt:  event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "crm.user.logged_in", event.At, payload)
}

// PublishPasswordChanged publishes crm.user.password_changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string    `json:"user_id"`
		ChangedBy string    `json:"changed_by"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		UserID:    event.UserID,
		ChangedBy: event.ChangedBy,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "crm.user.password_changed", event.ChangedAt, payload)
}

// PublishCustomerEvent publishes crm.customer.<change> events.
func (p *EventPublisher) PublishCustomerEvent(ctx context.Context, event domain.CustomerEvent) error {
	payload := struct {
		CustomerID string    `json:"customer_id"`
		Change     string    `json:"change"`
		ActorID    string    `json:"actor_id"`
		At         time.Time `json:"at"`
	}{
		CustomerID: event.CustomerID,
		Change:     string(event.Change),
		ActorID:    event.ActorID,
		At:         event.At.UTC(),
	}

	return p.publish(ctx, event.EventID, "crm.customer."+string(event.Change), event.At, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
