package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Token purposes. Access tokens carry a session; reset tokens are only good
// for completing a password reset and are rejected everywhere else.
const (
	PurposeAccess        = "access"
	PurposePasswordReset = "password_reset"
)

// Claims is the payload carried by every token the codec issues.
type Claims struct {
	UserID   string `json:"uid"`
	RoleName string `json:"role"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HMAC-SHA256 signed tokens. The signing
// algorithm is pinned on both sides; a token whose header names any other
// method fails verification regardless of its signature.
type TokenCodec struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	resetTTL  time.Duration
}

func NewTokenCodec(secret, issuer string, accessTTL, resetTTL time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token codec: empty signing secret")
	}
	if accessTTL <= 0 {
		accessTTL = 168 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &TokenCodec{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
	}, nil
}

// IssueAccess signs an access token for the given user and role.
func (c *TokenCodec) IssueAccess(userID, roleName string) (string, error) {
	return c.issue(userID, roleName, PurposeAccess, c.accessTTL)
}

// IssueReset signs a short-lived password reset token.
func (c *TokenCodec) IssueReset(userID string) (string, error) {
	return c.issue(userID, "", PurposePasswordReset, c.resetTTL)
}

func (c *TokenCodec) issue(userID, roleName, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		RoleName: roleName,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Expired tokens
// are reported as ErrExpiredToken; every other failure mode (bad signature,
// malformed payload, wrong signing method) collapses into ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString, wantPurpose string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if claims.Purpose != wantPurpose || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
