package identity

import (
	"context"
	"fmt"
	"regexp"

	"github.com/communitybridge/outreach/internal/domain"
	"github.com/communitybridge/outreach/internal/pkg/ctxlog"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair holds an access token and its paired refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Authenticator issues and validates session tokens.
type Authenticator interface {
	GenerateTokens(ctx context.Context, user *domain.User) (*TokenPair, error)
	ValidateAccessToken(ctx context.Context, token string) (string, domain.Role, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

// Service implements identity business logic.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{repo: repo, auth: auth}
}

// nameRe mirrors the reference front-end's name check: letters only, at
// least two of them. Server-side validation is authoritative.
var nameRe = regexp.MustCompile(`^[A-Za-z]{2,}$`)

// ValidName reports whether s is an acceptable first or last name.
func ValidName(s string) bool {
	return nameRe.MatchString(s)
}

// RegisterInput holds data for creating a user.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if existing, err := s.repo.GetUserByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	role := input.Role
	if role == "" {
		role = domain.RoleVolunteer
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	// Admin is never self-assignable; registration is anonymous
	if role == domain.RoleAdmin {
		return nil, ErrRoleNotPermitted
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// LoginInput holds credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates a user and issues a token pair.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, *TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		// Do not reveal whether the email exists
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.auth.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	return user, tokens, nil
}

// Logout revokes the refresh token server-side.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.auth.RevokeRefreshToken(ctx, refreshToken)
}

// RefreshTokens rotates a refresh token into a new token pair.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.auth.RefreshTokens(ctx, refreshToken)
}

// GetUserByID returns the user with the given id.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns all users for the admin dashboard.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// ValidateToken implements httputil.TokenValidator for the auth middleware.
func (s *Service) ValidateToken(ctx context.Context, token string) (string, domain.Role, error) {
	return s.auth.ValidateAccessToken(ctx, token)
}

// UpdateUserInput holds the mutable profile fields.
type UpdateUserInput struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      domain.Role
}

// UpdateUser mutates the profile fields of an existing user. The actor must
// be the user being updated or an admin. The mutation is a single UPDATE
// statement; submitting identical values twice yields the same stored record.
func (s *Service) UpdateUser(ctx context.Context, input UpdateUserInput, actorID string, actorRole domain.Role) (*domain.User, error) {
	if actorID != input.ID && actorRole != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	// Granting Admin requires an admin actor; otherwise the admin-only
	// routes would be one self-service update away from anyone
	if input.Role == domain.RoleAdmin && actorRole != domain.RoleAdmin {
		return nil, ErrRoleNotPermitted
	}

	user, err := s.repo.GetUserByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if other, err := s.repo.GetUserByEmail(ctx, input.Email); err == nil && other != nil && other.ID != input.ID {
		return nil, ErrEmailExists
	}

	roleChanged := user.Role != input.Role

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = input.Email
	user.Role = input.Role

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	// Access tokens carry the role, so outstanding refresh tokens must not
	// renew a session with the old one
	if roleChanged {
		if err := s.repo.DeleteUserRefreshTokens(ctx, user.ID); err != nil {
			ctxlog.FromContext(ctx).Warn("failed to revoke refresh tokens after role change",
				"user_id", user.ID, "error", err)
		}
	}

	return user, nil
}
