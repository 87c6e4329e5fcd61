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
	// ErrInvalidCredentials covers both unknown identifiers and wrong
	// passwords. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a token that failed verification for any
	// reason other than expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a well-formed token past its expiry.
	ErrExpiredToken = errors.New("expired token")
	// ErrForbidden indicates an authenticated user whose role is not in the
	// allowed set for an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownRole indicates an allowed-role list referencing a role name
	// outside the seeded set. This is a programming error, not a user error.
	ErrUnknownRole = errors.New("unknown role name in allowed set")
)

// AuthService verifies credentials, resolves sessions from access tokens, and
// gates operations by role.
type AuthService struct {
	users  port.UserRepository
	codec  *security.TokenCodec
	events port.EventPublisher
	logger *zap.Logger
}

func NewAuthService(users port.UserRepository, codec *security.TokenCodec, events port.EventPublisher, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, codec: codec, events: events, logger: logger}
}

// LoginResult carries the authenticated user and the issued access token.
type LoginResult struct {
	User  domain.User
	Token string
}

// Login verifies the identifier/password pair and issues an access token.
// Unknown identifier and wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string, clientIP *string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.codec.IssueAccess(user.ID, user.RoleName())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.publishLogin(ctx, *user, clientIP)

	return &LoginResult{User: user.Sanitized(), Token: token}, nil
}

func (s *AuthService) publishLogin(ctx context.Context, user domain.User, clientIP *string) {
	if s.events == nil {
		return
	}
	event := domain.UserLoggedInEvent{
		EventID:  uuid.NewString(),
		UserID:   user.ID,
		Email:    user.Email,
		RoleName: user.RoleName(),
		IP:       clientIP,
		At:       time.Now().UTC(),
	}
	if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
		s.logger.Warn("publish login event failed", zap.Error(err))
	}
}

// ResolveSession verifies an access token and loads the current user record.
// The user and role come from the store, not from token claims, so a role
// change or account deletion takes effect on the next request.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.codec.Verify(token, security.PurposeAccess)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	return user, nil
}

// Authorize reports whether the user's current role appears in allowedRoles.
// Role names match exactly and case-sensitively. An allowed list naming a
// role outside the seeded set is rejected as ErrUnknownRole.
func (s *AuthService) Authorize(user *domain.User, allowedRoles []string) error {
	if bad, ok := domain.ValidateRoleNames(allowedRoles); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, bad)
	}
	if user == nil {
		return ErrForbidden
	}

	roleName := user.RoleName()
	for _, allowed := range allowedRoles {
		if roleName == allowed {
			return nil
		}
	}
	return ErrForbidden
}
