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
	// ErrDuplicateIdentity indicates the username or email is already taken.
	// The store-level unique constraint maps here too, so a race between
	// pre-check and insert surfaces identically.
	ErrDuplicateIdentity = errors.New("username or email already registered")
	// ErrRoleNotSeeded indicates the default role row is missing. This is a
	// deployment problem and never the caller's fault.
	ErrRoleNotSeeded = errors.New("default role not seeded")
	// ErrPasswordPolicyViolation indicates the password failed the policy.
	ErrPasswordPolicyViolation = errors.New("password does not meet policy requirements")
	// ErrValidation indicates a missing or malformed registration field.
	ErrValidation = errors.New("invalid registration input")
)

// RegistrationService handles self-service account creation. New accounts
// always receive the default role; privileged roles are assigned only through
// user administration.
type RegistrationService struct {
	users             port.UserRepository
	roles             port.RoleRepository
	passwordValidator *security.PasswordValidator
	codec             *security.TokenCodec
	events            port.EventPublisher
	logger            *zap.Logger
}

func NewRegistrationService(
	users port.UserRepository,
	roles port.RoleRepository,
	validator *security.PasswordValidator,
	codec *security.TokenCodec,
	events port.EventPublisher,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:             users,
		roles:             roles,
		passwordValidator: validator,
		codec:             codec,
		events:            events,
		logger:            logger,
	}
}

// RegisterInput carries the fields a new account is created from.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult carries the created user and an access token so the client
// is signed in immediately after registering.
type RegisterResult struct {
	User  domain.User
	Token string
}

// Register creates a user with the default role and returns a signed access
// token. Duplicate username or email fails with ErrDuplicateIdentity whether
// caught by the pre-check or by the store's unique constraint.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	if err := s.checkIdentityFree(ctx, input.Username); err != nil {
		return nil, err
	}
	if err := s.checkIdentityFree(ctx, input.Email); err != nil {
		return nil, err
	}

	role, err := s.roles.GetByName(ctx, domain.DefaultRoleName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotSeeded
		}
		return nil, fmt.Errorf("load default role: %w", err)
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

	token, err := s.codec.IssueAccess(user.ID, role.Name)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.publishRegistered(ctx, user)

	return &RegisterResult{User: user.Sanitized(), Token: token}, nil
}

func (s *RegistrationService) checkIdentityFree(ctx context.Context, identifier string) error {
	_, err := s.users.GetByIdentifier(ctx, identifier)
	if err == nil {
		return ErrDuplicateIdentity
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("check identifier: %w", err)
}

func (s *RegistrationService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}
	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		RoleName:     user.RoleName(),
		RegisteredAt: user.CreatedAt,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish registration event failed", zap.Error(err))
	}
}
