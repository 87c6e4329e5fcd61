package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

var documentRowColumns = []string{
	"id", "customer_id", "document_type", "file_path", "file_name",
	"file_size", "file_type", "uploaded_at",
}

func TestDocumentRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewDocumentRepository(mock)

	doc := domain.CustomerDocument{
		ID:           "doc-1",
		CustomerID:   "cust-1",
		DocumentType: "registration_certificate",
		FilePath:     "3f6c2c4e.pdf",
		FileName:     "certificate.pdf",
		FileSize:     2048,
		FileType:     "application/pdf",
		UploadedAt:   time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO crm\.customer_documents`).
		WithArgs(
			doc.ID,
			doc.CustomerID,
			doc.DocumentType,
			doc.FilePath,
			doc.FileName,
			doc.FileSize,
			doc.FileType,
			doc.UploadedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_ListByCustomer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewDocumentRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(documentRowColumns).
		AddRow("doc-2", "cust-1", "tax_certificate", "b.pdf", "tax.pdf", int64(100), "application/pdf", now).
		AddRow("doc-1", "cust-1", "registration_certificate", "a.pdf", "reg.pdf", int64(200), "application/pdf", now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM crm\.customer_documents WHERE customer_id = \$1 ORDER BY uploaded_at DESC`).
		WithArgs("cust-1").
		WillReturnRows(rows)

	docs, err := repo.ListByCustomer(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("ListByCustomer returned error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	if docs[0].ID != "doc-2" {
		t.Errorf("first doc = %q, want doc-2", docs[0].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewDocumentRepository(mock)

	mock.ExpectExec(`DELETE FROM crm\.customer_documents`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Delete error = %v, want ErrNotFound", err)
	}
}
