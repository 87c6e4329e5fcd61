package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/logger"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/infra/security"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

// PasswordResetService issues short-lived reset tokens and applies the new
// password when one is redeemed.
type PasswordResetService struct {
	users             port.UserRepository
	codec             *security.TokenCodec
	passwordValidator *security.PasswordValidator
	events            port.EventPublisher
	logger            *zap.Logger
}

func NewPasswordResetService(
	users port.UserRepository,
	codec *security.TokenCodec,
	validator *security.PasswordValidator,
	events port.EventPublisher,
	log *zap.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		users:             users,
		codec:             codec,
		passwordValidator: validator,
		events:            events,
		logger:            log,
	}
}

// RequestReset issues a reset token for the account behind email. An unknown
// email returns an empty token and no error so the endpoint's response never
// reveals whether the address is registered.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				zap.String("email", logger.MaskEmail(email)))
			return "", nil
		}
		return "", fmt.Errorf("look up user: %w", err)
	}

	token, err := s.codec.IssueReset(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}

	s.logger.Info("password reset token issued",
		zap.String("email", logger.MaskEmail(email)))
	return token, nil
}

// CompleteReset verifies a reset token and replaces the password. Access
// tokens are rejected here regardless of validity.
func (s *PasswordResetService) CompleteReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.codec.Verify(token, security.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("load user: %w", err)
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	changedAt := time.Now().UTC()
	if err := s.users.UpdatePassword(ctx, user.ID, newHash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.publishPasswordChanged(ctx, user.ID, changedAt)
	return nil
}

func (s *PasswordResetService) publishPasswordChanged(ctx context.Context, userID string, at time.Time) {
	if s.events == nil {
		return
	}
	event := newPasswordChangedEvent(userID, userID, at)
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("publish password change event failed", zap.Error(err))
	}
}
