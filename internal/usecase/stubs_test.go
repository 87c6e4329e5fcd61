package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/security"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t)
}

func testCodec(t *testing.T) *security.TokenCodec {
	t.Helper()
	codec, err := security.NewTokenCodec("unit-test-secret", "crm-test", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

func testValidator() *security.PasswordValidator {
	return security.NewPasswordValidator(security.MinLengthRule(8))
}

func seededRoles() *stubRoleRepo {
	return &stubRoleRepo{roles: map[string]domain.Role{
		domain.RoleAdmin:    {ID: "role-admin", Name: domain.RoleAdmin},
		domain.RoleManager:  {ID: "role-manager", Name: domain.RoleManager},
		domain.RoleCustomer: {ID: "role-customer", Name: domain.RoleCustomer},
	}}
}

type stubUserRepo struct {
	users      map[string]domain.User
	createErr  error
	lastPwHash string
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == identifier || user.Email == identifier {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) List(_ context.Context, filter port.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if filter.Search == "" || strings.Contains(user.Username, filter.Search) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Count(ctx context.Context, filter port.UserFilter) (int, error) {
	users, err := r.List(ctx, filter)
	return len(users), err
}

func (r *stubUserRepo) Update(_ context.Context, user domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = changedAt
	r.users[id] = user
	r.lastPwHash = passwordHash
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type stubRoleRepo struct {
	roles map[string]domain.Role
}

func (r *stubRoleRepo) Create(_ context.Context, role domain.Role) error {
	r.roles[role.Name] = role
	return nil
}

func (r *stubRoleRepo) List(context.Context) ([]domain.Role, error) {
	var out []domain.Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *stubRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	if role, ok := r.roles[name]; ok {
		copied := role
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			copied := role
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type stubCustomerRepo struct {
	customers map[string]domain.Customer
	deleteErr error
}

func newStubCustomerRepo(customers ...domain.Customer) *stubCustomerRepo {
	r := &stubCustomerRepo{customers: make(map[string]domain.Customer)}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *stubCustomerRepo) Create(_ context.Context, customer domain.Customer) error {
	for _, existing := range r.customers {
		if existing.Email == customer.Email {
			return repository.ErrDuplicate
		}
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *stubCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	if customer, ok := r.customers[id]; ok {
		copied := customer
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubCustomerRepo) match(customer domain.Customer, filter port.CustomerFilter) bool {
	if filter.CreatedBy != "" && customer.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		haystack := strings.ToLower(customer.FirstName + " " + customer.LastName + " " + customer.Email + " " + customer.BusinessName + " " + customer.Phone)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (r *stubCustomerRepo) List(_ context.Context, filter port.CustomerFilter) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, customer := range r.customers {
		if r.match(customer, filter) {
			out = append(out, customer)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) Count(ctx context.Context, filter port.CustomerFilter) (int, error) {
	customers, err := r.List(ctx, filter)
	return len(customers), err
}

func (r *stubCustomerRepo) Update(_ context.Context, customer domain.Customer) error {
	if _, ok := r.customers[customer.ID]; !ok {
		return repository.ErrNotFound
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.customers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *stubCustomerRepo) CountByCreator(_ context.Context, userID string) (int, error) {
	count := 0
	for _, customer := range r.customers {
		if customer.CreatedBy == userID {
			count++
		}
	}
	return count, nil
}

type stubDocumentRepo struct {
	docs map[string]domain.CustomerDocument
}

func newStubDocumentRepo(docs ...domain.CustomerDocument) *stubDocumentRepo {
	r := &stubDocumentRepo{docs: make(map[string]domain.CustomerDocument)}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *stubDocumentRepo) Create(_ context.Context, doc domain.CustomerDocument) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *stubDocumentRepo) GetByID(_ context.Context, id string) (*domain.CustomerDocument, error) {
	if doc, ok := r.docs[id]; ok {
		copied := doc
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubDocumentRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.CustomerDocument, error) {
	var out []domain.CustomerDocument
	for _, doc := range r.docs {
		if doc.CustomerID == customerID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *stubDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

type stubDocumentStore struct {
	files   map[string][]byte
	counter int
}

func newStubDocumentStore() *stubDocumentStore {
	return &stubDocumentStore{files: make(map[string][]byte)}
}

func (s *stubDocumentStore) Save(_ context.Context, fileName string, contents io.Reader) (string, int64, error) {
	data, err := io.ReadAll(contents)
	if err != nil {
		return "", 0, err
	}
	s.counter++
	path := "stored-" + fileName
	s.files[path] = data
	return path, int64(len(data)), nil
}

func (s *stubDocumentStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubDocumentStore) Remove(_ context.Context, path string) error {
	delete(s.files, path)
	return nil
}

type recordingPublisher struct {
	registered      []domain.UserRegisteredEvent
	loggedIn        []domain.UserLoggedInEvent
	passwordChanged []domain.PasswordChangedEvent
	customerEvents  []domain.CustomerEvent
}

// asPort avoids storing a typed nil *recordingPublisher in the
// port.EventPublisher interface, which would defeat the services' nil checks.
func (p *recordingPublisher) asPort() port.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.loggedIn = append(p.loggedIn, event)
	return nil
}

func (p *recordingPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.passwordChanged = append(p.passwordChanged, event)
	return nil
}

func (p *recordingPublisher) PublishCustomerEvent(_ context.Context, event domain.CustomerEvent) error {
	p.customerEvents = append(p.customerEvents, event)
	return nil
}
