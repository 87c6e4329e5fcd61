package port

import (
	"context"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
)

// EventPublisher emits domain events to downstream consumers. Publishing is
// best-effort: callers log failures but never fail the request on them.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserLoggedIn(ctx context.Context, event domain.UserLoggedInEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishCustomerEvent(ctx context.Context, event domain.CustomerEvent) error
}
