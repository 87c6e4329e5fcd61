package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent("crm.user.registered", event.RegisteredAt, map[string]any{
		"user_id":  event.UserID,
		"username": event.Username,
		"role":     event.RoleName,
	})
	return nil
}

func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.logEvent("crm.user.logged_in", event.At, map[string]any{
		"user_id": event.UserID,
		"role":    event.RoleName,
	})
	return nil
}

func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent("crm.user.password_changed", event.ChangedAt, map[string]any{
		"user_id":    event.UserID,
		"changed_by": event.ChangedBy,
	})
	return nil
}

func (p *StubPublisher) PublishCustomerEvent(_ context.Context, event domain.CustomerEvent) error {
	p.logEvent("crm.customer."+string(event.Change), event.At, map[string]any{
		"customer_id": event.CustomerID,
		"actor_id":    event.ActorID,
	})
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
