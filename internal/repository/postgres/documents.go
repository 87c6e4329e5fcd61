package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

// DocumentRepository implements customer document metadata persistence.
type DocumentRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDocumentRepository wires a PostgreSQL-backed document repository.
func NewDocumentRepository(exec pgExecutor) *DocumentRepository {
	repo := &DocumentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new document metadata row.
func (r *DocumentRepository) Create(ctx context.Context, doc domain.CustomerDocument) error {
	stmt, args, err := r.builder.Insert("crm.customer_documents").
		Columns(
			"id",
			"customer_id",
			"document_type",
			"file_path",
			"file_name",
			"file_size",
			"file_type",
			"uploaded_at",
		).
		Values(
			doc.ID,
			doc.CustomerID,
			doc.DocumentType,
			doc.FilePath,
			doc.FileName,
			doc.FileSize,
			doc.FileType,
			doc.UploadedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert document sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

// GetByID retrieves document metadata by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.CustomerDocument, error) {
	stmt, args, err := r.builder.Select(
		"id",
		"customer_id",
		"document_type",
		"file_path",
		"file_name",
		"file_size",
		"file_type",
		"uploaded_at",
	).
		From("crm.customer_documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select document sql: %w", err)
	}

	var doc domain.CustomerDocument
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&doc.ID,
		&doc.CustomerID,
		&doc.DocumentType,
		&doc.FilePath,
		&doc.FileName,
		&doc.FileSize,
		&doc.FileType,
		&doc.UploadedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	return &doc, nil
}

// ListByCustomer returns all documents attached to a customer, newest first.
func (r *DocumentRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.CustomerDocument, error) {
	stmt, args, err := r.builder.Select(
		"id",
		"customer_id",
		"document_type",
		"file_path",
		"file_name",
		"file_size",
		"file_type",
		"uploaded_at",
	).
		From("crm.customer_documents").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list documents sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.CustomerDocument, 0)
	for rows.Next() {
		var doc domain.CustomerDocument
		if err := rows.Scan(
			&doc.ID,
			&doc.CustomerID,
			&doc.DocumentType,
			&doc.FilePath,
			&doc.FileName,
			&doc.FileSize,
			&doc.FileType,
			&doc.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// Delete removes a document metadata row.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("crm.customer_documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete document sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.DocumentRepository = (*DocumentRepository)(nil)
