// Package jwt implements the identity.Authenticator interface with signed
// JWT access tokens and opaque, database-backed refresh tokens.
package jwt

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/communitybridge/outreach/internal/domain"
	"github.com/communitybridge/outreach/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config contains token settings.
type Config struct {
	SecretKey            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// TokenStore is the subset of the identity repository the authenticator needs.
type TokenStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
}

// Authenticator issues HS256-signed access tokens and rotating refresh
// tokens. Only the SHA-256 hash of a refresh token touches the database.
type Authenticator struct {
	config Config
	store  TokenStore
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(cfg Config, store TokenStore) *Authenticator {
	return &Authenticator{config: cfg, store: store}
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateTokens issues a new access/refresh token pair for the user.
func (a *Authenticator) GenerateTokens(ctx context.Context, user *domain.User) (*identity.TokenPair, error) {
	now := time.Now()

	claims := accessClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.AccessTokenDuration)),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}

	err = a.store.SaveRefreshToken(ctx, &domain.RefreshToken{
		TokenHash: hashToken(refreshToken),
		UserID:    user.ID,
		ExpiresAt: now.Add(a.config.RefreshTokenDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &identity.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken parses and verifies an access token, returning the
// subject user id and role.
func (a *Authenticator) ValidateAccessToken(_ context.Context, token string) (string, domain.Role, error) {
	claims := &accessClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return "", "", identity.ErrInvalidToken
	}

	return claims.Subject, domain.Role(claims.Role), nil
}

// RefreshTokens rotates a refresh token: the old token is deleted and a new
// pair is issued. An unknown or expired token yields ErrInvalidToken.
func (a *Authenticator) RefreshTokens(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	stored, err := a.store.GetRefreshToken(ctx, tokenHash)
	if err != nil || stored == nil {
		return nil, identity.ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = a.store.DeleteRefreshToken(ctx, tokenHash)
		return nil, identity.ErrInvalidToken
	}

	user, err := a.store.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, identity.ErrInvalidToken
	}

	if err := a.store.DeleteRefreshToken(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return a.GenerateTokens(ctx, user)
}

// RevokeRefreshToken deletes the refresh token server-side.
func (a *Authenticator) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return a.store.DeleteRefreshToken(ctx, hashToken(refreshToken))
}

func generateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
