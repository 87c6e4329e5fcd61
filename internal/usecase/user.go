package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/security"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserOwnsCustomers blocks deleting a user who created customer
	// records. Reassign or remove the customers first.
	ErrUserOwnsCustomers = errors.New("user has customer records")
	// ErrWrongPassword indicates the current password check failed during a
	// password change.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// UserService covers administrative user management plus self-service
// password change.
type UserService struct {
	users             port.UserRepository
	roles             port.RoleRepository
	customers         port.CustomerRepository
	passwordValidator *security.PasswordValidator
	events            port.EventPublisher
	logger            *zap.Logger
}

func NewUserService(
	users port.UserRepository,
	roles port.RoleRepository,
	customers port.CustomerRepository,
	validator *security.PasswordValidator,
	events port.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:             users,
		roles:             roles,
		customers:         customers,
		passwordValidator: validator,
		events:            events,
		logger:            logger,
	}
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users  []domain.User
	Total  int
	Limit  int
	Offset int
}

func (s *UserService) List(ctx context.Context, filter port.UserFilter) (*UserPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return &UserPage{Users: users, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	clean := user.Sanitized()
	return &clean, nil
}

// CreateInput carries the fields for an admin-created account. Unlike
// self-registration, the role is chosen explicitly.
type CreateInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleName  string
}

// Create makes an account with an explicit role. The role name must belong
// to the seeded set.
func (s *UserService) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email, and password are required", ErrValidation)
	}
	if !domain.IsKnownRoleName(input.RoleName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, input.RoleName)
	}
	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	role, err := s.roles.GetByName(ctx, input.RoleName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotSeeded
		}
		return nil, fmt.Errorf("load role: %w", err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		RoleID:       role.ID,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	clean := user.Sanitized()
	return &clean, nil
}

// UpdateInput carries the mutable user fields. Nil pointers leave the
// current value unchanged.
type UpdateInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	RoleName  *string
}

func (s *UserService) Update(ctx context.Context, id string, input UpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.RoleName != nil {
		if !domain.IsKnownRoleName(*input.RoleName) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, *input.RoleName)
		}
		role, err := s.roles.GetByName(ctx, *input.RoleName)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrRoleNotSeeded
			}
			return nil, fmt.Errorf("load role: %w", err)
		}
		user.RoleID = role.ID
		user.Role = role
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	clean := user.Sanitized()
	return &clean, nil
}

// ChangePassword replaces the user's password after verifying the current
// one. Admin-initiated resets go through the password reset flow instead.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	ok, err := security.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	changedAt := time.Now().UTC()
	if err := s.users.UpdatePassword(ctx, userID, newHash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.publishPasswordChanged(ctx, userID, userID, changedAt)
	return nil
}

// Delete removes a user unless customer records reference them as creator.
func (s *UserService) Delete(ctx context.Context, id string) error {
	owned, err := s.customers.CountByCreator(ctx, id)
	if err != nil {
		return fmt.Errorf("count owned customers: %w", err)
	}
	if owned > 0 {
		return ErrUserOwnsCustomers
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserService) publishPasswordChanged(ctx context.Context, userID, changedBy string, at time.Time) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPasswordChanged(ctx, newPasswordChangedEvent(userID, changedBy, at)); err != nil {
		s.logger.Warn("publish password change event failed", zap.Error(err))
	}
}
