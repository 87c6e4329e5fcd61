package port

import (
	"context"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
)

// RoleRepository handles role lookups. Roles are seeded at system
// initialization and are effectively read-only at runtime.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	List(ctx context.Context) ([]domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
}
