package port

import (
	"context"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
)

// CustomerFilter narrows customer listings. Search matches a substring of
// first/last name, email, phone, or business name. CreatedBy restricts
// results to a single creating user.
type CustomerFilter struct {
	Search    string
	CreatedBy string
	Limit     int
	Offset    int
}

// CustomerRepository exposes persistence behavior for customer records.
type CustomerRepository interface {
	Create(ctx context.Context, customer domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error)
	Count(ctx context.Context, filter CustomerFilter) (int, error)
	Update(ctx context.Context, customer domain.Customer) error
	Delete(ctx context.Context, id string) error
	// CountByCreator reports how many customers reference the user as creator.
	// Users owning customers cannot be deleted.
	CountByCreator(ctx context.Context, userID string) (int, error)
}
