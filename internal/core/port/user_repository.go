package port

import (
	"context"
	"time"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
)

// UserFilter narrows List and Count queries.
type UserFilter struct {
	Search string
	Limit  int
	Offset int
}

// UserRepository exposes persistence behavior for users. Implementations load
// the associated role on every read so authorization always sees the current
// role, never a token snapshot.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByIdentifier matches either username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
	Update(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
