package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/communitybridge/outreach/internal/domain"
	"github.com/communitybridge/outreach/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	users  map[string]*domain.User
	tokens map[string]*domain.RefreshToken
}

func newMockStore() *mockStore {
	return &mockStore{
		users:  make(map[string]*domain.User),
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (m *mockStore) SaveRefreshToken(_ context.Context, token *domain.RefreshToken) error {
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockStore) GetRefreshToken(_ context.Context, hash string) (*domain.RefreshToken, error) {
	if t, ok := m.tokens[hash]; ok {
		return t, nil
	}
	return nil, identity.ErrInvalidToken
}

func (m *mockStore) DeleteRefreshToken(_ context.Context, hash string) error {
	delete(m.tokens, hash)
	return nil
}

func newTestAuthenticator(store *mockStore) *Authenticator {
	return NewAuthenticator(Config{
		SecretKey:            "test-secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
	}, store)
}

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "al@example.com",
		Role:  domain.RoleVolunteer,
	}
}

func TestGenerateAndValidate(t *testing.T) {
	store := newMockStore()
	store.users["user-1"] = testUser()
	auth := newTestAuthenticator(store)

	tokens, err := auth.GenerateTokens(context.Background(), testUser())
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	assert.Len(t, store.tokens, 1)

	userID, role, err := auth.ValidateAccessToken(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, domain.RoleVolunteer, role)
}

func TestValidate_WrongSecret(t *testing.T) {
	store := newMockStore()
	auth := newTestAuthenticator(store)

	tokens, err := auth.GenerateTokens(context.Background(), testUser())
	require.NoError(t, err)

	other := NewAuthenticator(Config{
		SecretKey:            "different-secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
	}, store)

	_, _, err = other.ValidateAccessToken(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	store := newMockStore()
	auth := NewAuthenticator(Config{
		SecretKey:            "test-secret",
		AccessTokenDuration:  -time.Minute,
		RefreshTokenDuration: time.Hour,
	}, store)

	tokens, err := auth.GenerateTokens(context.Background(), testUser())
	require.NoError(t, err)

	_, _, err = auth.ValidateAccessToken(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	auth := newTestAuthenticator(newMockStore())

	_, _, err := auth.ValidateAccessToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestRefreshTokens_Rotates(t *testing.T) {
	store := newMockStore()
	store.users["user-1"] = testUser()
	auth := newTestAuthenticator(store)

	tokens, err := auth.GenerateTokens(context.Background(), testUser())
	require.NoError(t, err)

	rotated, err := auth.RefreshTokens(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token is spent
	_, err = auth.RefreshTokens(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestRefreshTokens_Expired(t *testing.T) {
	store := newMockStore()
	store.users["user-1"] = testUser()
	auth := NewAuthenticator(Config{
		SecretKey:            "test-secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: -time.Hour,
	}, store)

	tokens, err := auth.GenerateTokens(context.Background(), testUser())
	require.NoError(t, err)

	_, err = auth.RefreshTokens(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
	assert.Empty(t, store.tokens, "expired token should be deleted")
}

func TestRevokeRefreshToken(t *testing.T) {
	store := newMockStore()
	store.users["user-1"] = testUser()
	auth := newTestAuthenticator(store)

	tokens, err := auth.GenerateTokens(context.Background(), testUser())
	require.NoError(t, err)

	require.NoError(t, auth.RevokeRefreshToken(context.Background(), tokens.RefreshToken))

	_, err = auth.RefreshTokens(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
