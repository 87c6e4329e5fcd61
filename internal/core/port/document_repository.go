package port

import (
	"context"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
)

// DocumentRepository persists customer document metadata. File payloads live
// in the document store, not the database.
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.CustomerDocument) error
	GetByID(ctx context.Context, id string) (*domain.CustomerDocument, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.CustomerDocument, error)
	Delete(ctx context.Context, id string) error
}
