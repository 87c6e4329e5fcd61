package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

var (
	// ErrCustomerNotFound indicates the referenced customer does not exist,
	// or is hidden from the acting user.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrDocumentNotFound indicates the referenced document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateCustomer indicates the customer email is already in use.
	ErrDuplicateCustomer = errors.New("customer email already registered")
)

// defaultAllowedFileTypes is the document upload allow-list: images, PDFs,
// and Office documents.
var defaultAllowedFileTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// CustomerService manages customer records and their documents. Admins see
// every record; other roles see only the customers they created.
type CustomerService struct {
	customers    port.CustomerRepository
	documents    port.DocumentRepository
	files        port.DocumentStore
	events       port.EventPublisher
	logger       *zap.Logger
	allowedTypes map[string]struct{}
}

func NewCustomerService(
	customers port.CustomerRepository,
	documents port.DocumentRepository,
	files port.DocumentStore,
	events port.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	svc := &CustomerService{
		customers: customers,
		documents: documents,
		files:     files,
		events:    events,
		logger:    logger,
	}
	return svc.WithAllowedFileTypes(defaultAllowedFileTypes)
}

// WithAllowedFileTypes replaces the document upload MIME allow-list.
func (s *CustomerService) WithAllowedFileTypes(types []string) *CustomerService {
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			allowed[t] = struct{}{}
		}
	}
	s.allowedTypes = allowed
	return s
}

func canSeeAll(actor *domain.User) bool {
	return actor.RoleName() == domain.RoleAdmin
}

// visible loads a customer and enforces creator scoping. Hidden records are
// reported as not found, not as forbidden, so existence does not leak.
func (s *CustomerService) visible(ctx context.Context, actor *domain.User, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if !canSeeAll(actor) && customer.CreatedBy != actor.ID {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// CustomerInput carries the customer fields accepted on create and update.
type CustomerInput struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Address           *string
	City              *string
	State             *string
	PostalCode        *string
	Country           string
	BusinessName      string
	BusinessType      *string
	BusinessRegNumber *string
	TINNumber         *string
	VATNumber         *string
	Activities        *string
}

func (in *CustomerInput) validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.BusinessName = strings.TrimSpace(in.BusinessName)

	if in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if in.Phone == "" {
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	if in.Country == "" {
		in.Country = domain.DefaultCustomerCountry
	}
	return nil
}

func (s *CustomerService) Create(ctx context.Context, actor *domain.User, input CustomerInput) (*domain.Customer, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:                uuid.NewString(),
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             input.Email,
		Phone:             input.Phone,
		Address:           input.Address,
		City:              input.City,
		State:             input.State,
		PostalCode:        input.PostalCode,
		Country:           input.Country,
		BusinessName:      input.BusinessName,
		BusinessType:      input.BusinessType,
		BusinessRegNumber: input.BusinessRegNumber,
		TINNumber:         input.TINNumber,
		VATNumber:         input.VATNumber,
		Activities:        input.Activities,
		CreatedBy:         actor.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCustomer
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.publishChange(ctx, domain.CustomerCreated, customer.ID, actor.ID)
	return &customer, nil
}

func (s *CustomerService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Customer, error) {
	return s.visible(ctx, actor, id)
}

// CustomerPage is one page of a customer listing.
type CustomerPage struct {
	Customers []domain.Customer
	Total     int
	Limit     int
	Offset    int
}

// List returns a page of customers matching the filter. Non-admin actors are
// always scoped to their own records regardless of the filter.
func (s *CustomerService) List(ctx context.Context, actor *domain.User, filter port.CustomerFilter) (*CustomerPage, error) {
	if !canSeeAll(actor) {
		filter.CreatedBy = actor.ID
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	customers, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	total, err := s.customers.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	return &CustomerPage{Customers: customers, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *CustomerService) Update(ctx context.Context, actor *domain.User, id string, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	customer.FirstName = input.FirstName
	customer.LastName = input.LastName
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.City = input.City
	customer.State = input.State
	customer.PostalCode = input.PostalCode
	customer.Country = input.Country
	customer.BusinessName = input.BusinessName
	customer.BusinessType = input.BusinessType
	customer.BusinessRegNumber = input.BusinessRegNumber
	customer.TINNumber = input.TINNumber
	customer.VATNumber = input.VATNumber
	customer.Activities = input.Activities
	customer.UpdatedAt = time.Now().UTC()

	if err := s.customers.Update(ctx, *customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCustomer
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}

	s.publishChange(ctx, domain.CustomerUpdated, customer.ID, actor.ID)
	return customer, nil
}

// Delete removes a customer together with its document files and rows.
func (s *CustomerService) Delete(ctx context.Context, actor *domain.User, id string) error {
	customer, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}

	docs, err := s.documents.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("list customer documents: %w", err)
	}

	// Drop the row first so a failed delete never leaves document rows
	// pointing at files that are already gone; rows cascade with it and the
	// files are cleaned up best-effort afterwards.
	if err := s.customers.Delete(ctx, customer.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("delete customer: %w", err)
	}

	for _, doc := range docs {
		if err := s.files.Remove(ctx, doc.FilePath); err != nil {
			s.logger.Warn("remove document file failed",
				zap.String("document_id", doc.ID), zap.Error(err))
		}
	}

	s.publishChange(ctx, domain.CustomerDeleted, customer.ID, actor.ID)
	return nil
}

// normalizeContentType lowercases a MIME type and drops any parameters, so
// "application/PDF; charset=binary" matches the allow-list entry.
func normalizeContentType(contentType string) string {
	if media, _, found := strings.Cut(contentType, ";"); found {
		contentType = media
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// DocumentUpload carries an incoming document payload and its metadata.
type DocumentUpload struct {
	DocumentType string
	FileName     string
	ContentType  string
	Contents     io.Reader
}

// AttachDocument stores a document payload and records its metadata row.
func (s *CustomerService) AttachDocument(ctx context.Context, actor *domain.User, customerID string, upload DocumentUpload) (*domain.CustomerDocument, error) {
	customer, err := s.visible(ctx, actor, customerID)
	if err != nil {
		return nil, err
	}
	if upload.FileName == "" || upload.Contents == nil {
		return nil, fmt.Errorf("%w: a file is required", ErrValidation)
	}

	contentType := normalizeContentType(upload.ContentType)
	if _, ok := s.allowedTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: file type %q is not allowed; only images, PDFs, and Office documents are accepted", ErrValidation, upload.ContentType)
	}

	path, size, err := s.files.Save(ctx, upload.FileName, upload.Contents)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := domain.CustomerDocument{
		ID:           uuid.NewString(),
		CustomerID:   customer.ID,
		DocumentType: upload.DocumentType,
		FilePath:     path,
		FileName:     upload.FileName,
		FileSize:     size,
		FileType:     contentType,
		UploadedAt:   time.Now().UTC(),
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		if removeErr := s.files.Remove(ctx, path); removeErr != nil {
			s.logger.Warn("orphaned document file", zap.String("path", path), zap.Error(removeErr))
		}
		return nil, fmt.Errorf("record document: %w", err)
	}

	return &doc, nil
}

func (s *CustomerService) ListDocuments(ctx context.Context, actor *domain.User, customerID string) ([]domain.CustomerDocument, error) {
	customer, err := s.visible(ctx, actor, customerID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list customer documents: %w", err)
	}
	return docs, nil
}

// OpenDocument returns a document's metadata and a reader over its payload.
// The caller closes the reader.
func (s *CustomerService) OpenDocument(ctx context.Context, actor *domain.User, customerID, documentID string) (*domain.CustomerDocument, io.ReadCloser, error) {
	customer, err := s.visible(ctx, actor, customerID)
	if err != nil {
		return nil, nil, err
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("get document: %w", err)
	}
	if doc.CustomerID != customer.ID {
		return nil, nil, ErrDocumentNotFound
	}

	reader, err := s.files.Open(ctx, doc.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open document: %w", err)
	}
	return doc, reader, nil
}

func (s *CustomerService) DeleteDocument(ctx context.Context, actor *domain.User, customerID, documentID string) error {
	customer, err := s.visible(ctx, actor, customerID)
	if err != nil {
		return err
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("get document: %w", err)
	}
	if doc.CustomerID != customer.ID {
		return ErrDocumentNotFound
	}

	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document row: %w", err)
	}
	if err := s.files.Remove(ctx, doc.FilePath); err != nil {
		s.logger.Warn("remove document file failed",
			zap.String("document_id", doc.ID), zap.Error(err))
	}
	return nil
}

func (s *CustomerService) publishChange(ctx context.Context, change domain.CustomerChange, customerID, actorID string) {
	if s.events == nil {
		return
	}
	event := domain.CustomerEvent{
		EventID:    uuid.NewString(),
		Change:     change,
		CustomerID: customerID,
		ActorID:    actorID,
		At:         time.Now().UTC(),
	}
	if err := s.events.PublishCustomerEvent(ctx, event); err != nil {
		s.logger.Warn("publish customer event failed", zap.Error(err))
	}
}
