package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/communitybridge/outreach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users             map[string]*domain.User
	createUserErr     error
	updateCalls       int
	revokedTokenUsers []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	user.ID = "test-user-id"
	m.users[user.Email] = user
	return nil
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) UpdateUser(_ context.Context, user *domain.User) error {
	m.updateCalls++
	for email, u := range m.users {
		if u.ID == user.ID {
			delete(m.users, email)
			m.users[user.Email] = user
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *mockRepository) ListUsers(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockRepository) SaveRefreshToken(_ context.Context, _ *domain.RefreshToken) error {
	return nil
}

func (m *mockRepository) GetRefreshToken(_ context.Context, _ string) (*domain.RefreshToken, error) {
	return nil, nil
}

func (m *mockRepository) DeleteRefreshToken(_ context.Context, _ string) error {
	return nil
}

func (m *mockRepository) DeleteUserRefreshTokens(_ context.Context, userID string) error {
	m.revokedTokenUsers = append(m.revokedTokenUsers, userID)
	return nil
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	revoked []string
}

func (m *mockAuthenticator) GenerateTokens(_ context.Context, _ *domain.User) (*TokenPair, error) {
	return &TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *mockAuthenticator) ValidateAccessToken(_ context.Context, _ string) (string, domain.Role, error) {
	return "", "", nil
}

func (m *mockAuthenticator) RefreshTokens(_ context.Context, _ string) (*TokenPair, error) {
	return &TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *mockAuthenticator) RevokeRefreshToken(_ context.Context, token string) error {
	m.revoked = append(m.revoked, token)
	return nil
}

func seedUser(repo *mockRepository, id, email string, role domain.Role) *domain.User {
	user := &domain.User{
		ID:        id,
		FirstName: "Jordan",
		LastName:  "Baker",
		Email:     email,
		Role:      role,
	}
	repo.users[email] = user
	return user
}

func TestRegister_DefaultsToVolunteer(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	user, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Password:  "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleVolunteer, user.Role)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestRegister_EmailAlreadyExists(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "existing@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	user, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Al",
		LastName:  "Li",
		Email:     "existing@example.com",
		Password:  "password123",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	user, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Password:  "password123",
		Role:      domain.RoleAdmin,
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrRoleNotPermitted)
	assert.Empty(t, repo.users)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	user, tokens, err := service.Login(context.Background(), LoginInput{
		Email:    "al@example.com",
		Password: "wrong-password",
	})

	assert.Nil(t, user)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmailLooksLikeBadPassword(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	_, _, err := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_Success(t *testing.T) {
	repo := newMockRepository()
	auth := &mockAuthenticator{}
	service := NewService(repo, auth)

	_, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Password:  "password123",
	})
	require.NoError(t, err)

	user, tokens, err := service.Login(context.Background(), LoginInput{
		Email:    "al@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "al@example.com", user.Email)
	assert.Equal(t, "access", tokens.AccessToken)
}

func TestUpdateUser_Self(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "old@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	updated, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u1",
		FirstName: "Sam",
		LastName:  "Reed",
		Email:     "new@example.com",
		Role:      domain.RoleHelpRequested,
	}, "u1", domain.RoleVolunteer)

	require.NoError(t, err)
	assert.Equal(t, "Sam", updated.FirstName)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, domain.RoleHelpRequested, updated.Role)
}

func TestUpdateUser_Idempotent(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "al@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	input := UpdateUserInput{
		ID:        "u1",
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Role:      domain.RoleVolunteer,
	}

	first, err := service.UpdateUser(context.Background(), input, "u1", domain.RoleVolunteer)
	require.NoError(t, err)
	second, err := service.UpdateUser(context.Background(), input, "u1", domain.RoleVolunteer)
	require.NoError(t, err)

	assert.Equal(t, first.Email, second.Email)
	assert.Equal(t, first.FirstName, second.FirstName)
	assert.Equal(t, 2, repo.updateCalls)
	assert.Len(t, repo.users, 1)
}

func TestUpdateUser_NotFound(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "missing",
		FirstName: "Sam",
		LastName:  "Reed",
		Email:     "sam@example.com",
		Role:      domain.RoleVolunteer,
	}, "missing", domain.RoleVolunteer)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "first@example.com", domain.RoleVolunteer)
	seedUser(repo, "u2", "second@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u1",
		FirstName: "Sam",
		LastName:  "Reed",
		Email:     "second@example.com",
		Role:      domain.RoleVolunteer,
	}, "u1", domain.RoleVolunteer)

	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestUpdateUser_InvalidRole(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "al@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u1",
		FirstName: "Sam",
		LastName:  "Reed",
		Email:     "al@example.com",
		Role:      "Superhero",
	}, "u1", domain.RoleVolunteer)

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateUser_ForbiddenForOtherUser(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "first@example.com", domain.RoleVolunteer)
	seedUser(repo, "u2", "second@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u2",
		FirstName: "Sam",
		LastName:  "Reed",
		Email:     "second@example.com",
		Role:      domain.RoleVolunteer,
	}, "u1", domain.RoleVolunteer)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateUser_AdminMayUpdateAnyone(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "admin", "admin@example.com", domain.RoleAdmin)
	seedUser(repo, "u2", "member@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	updated, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u2",
		FirstName: "Sam",
		LastName:  "Reed",
		Email:     "member@example.com",
		Role:      domain.RoleHelpRequested,
	}, "admin", domain.RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleHelpRequested, updated.Role)
}

func TestUpdateUser_SelfPromotionToAdminForbidden(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "al@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u1",
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Role:      domain.RoleAdmin,
	}, "u1", domain.RoleVolunteer)

	assert.ErrorIs(t, err, ErrRoleNotPermitted)
	assert.Equal(t, 0, repo.updateCalls)
	assert.Equal(t, domain.RoleVolunteer, repo.users["al@example.com"].Role)
}

func TestUpdateUser_AdminMayGrantAdmin(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "admin", "admin@example.com", domain.RoleAdmin)
	seedUser(repo, "u2", "member@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	updated, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u2",
		FirstName: "Sam",
		LastName:  "Reed",
		Email:     "member@example.com",
		Role:      domain.RoleAdmin,
	}, "admin", domain.RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestUpdateUser_RoleChangeRevokesRefreshTokens(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "al@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u1",
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Role:      domain.RoleHelpRequested,
	}, "u1", domain.RoleVolunteer)

	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.revokedTokenUsers)
}

func TestUpdateUser_SameRoleKeepsRefreshTokens(t *testing.T) {
	repo := newMockRepository()
	seedUser(repo, "u1", "al@example.com", domain.RoleVolunteer)
	service := NewService(repo, &mockAuthenticator{})

	_, err := service.UpdateUser(context.Background(), UpdateUserInput{
		ID:        "u1",
		FirstName: "Renamed",
		LastName:  "Li",
		Email:     "al@example.com",
		Role:      domain.RoleVolunteer,
	}, "u1", domain.RoleVolunteer)

	require.NoError(t, err)
	assert.Empty(t, repo.revokedTokenUsers)
}

func TestLogout_RevokesToken(t *testing.T) {
	repo := newMockRepository()
	auth := &mockAuthenticator{}
	service := NewService(repo, auth)

	require.NoError(t, service.Logout(context.Background(), "some-refresh-token"))
	assert.Equal(t, []string{"some-refresh-token"}, auth.revoked)
}

func TestRegister_CreateUserFails(t *testing.T) {
	repo := newMockRepository()
	repo.createUserErr = errors.New("database error")
	service := NewService(repo, &mockAuthenticator{})

	user, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Al",
		LastName:  "Li",
		Email:     "al@example.com",
		Password:  "password123",
	})

	assert.Nil(t, user)
	assert.Error(t, err)
}
