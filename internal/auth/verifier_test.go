package auth

import (
	"context"
	"testing"
	"time"

	"crm-copilot/backend/internal/models"
	apperrors "crm-copilot/backend/pkg/errors"
	"crm-copilot/backend/pkg/jwt"
	"crm-copilot/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) GetByExternalUID(_ context.Context, uid string) (*models.User, error) {
	if u, ok := r.users[uid]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCache struct {
	items map[string]string
	gets  int
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.gets++
	if v, ok := c.items[key]; ok {
		return v, nil
	}
	return "", nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.items == nil {
		c.items = make(map[string]string)
	}
	c.items[key] = value.(string)
	return nil
}

func newTestVerifier(t *testing.T, repo UserRepository, cache IdentityCache) (*Verifier, *jwt.Service) {
	t.Helper()
	tokens := jwt.NewService("verifier-test-secret", time.Hour)
	log := logger.New(logger.Config{Level: "error"})
	return NewVerifier(tokens, repo, cache, time.Minute, log), tokens
}

func TestVerifyResolvesIdentity(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{
		"ext-1": {ID: 42, Email: "jane@example.com", DisplayName: "Jane"},
	}}
	v, tokens := newTestVerifier(t, repo, nil)

	token, err := tokens.GenerateToken("ext-1", "jane@example.com", "Jane")
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id.UserID)
	assert.Equal(t, "jane@example.com", id.Email)
	assert.Equal(t, "Jane", id.Name)
	assert.Equal(t, "chat-42", id.RoomKey())
}

func TestVerifyMissingToken(t *testing.T) {
	v, _ := newTestVerifier(t, &fakeUserRepo{}, nil)

	_, err := v.Verify(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
}

func TestVerifyInvalidToken(t *testing.T) {
	v, _ := newTestVerifier(t, &fakeUserRepo{}, nil)

	_, err := v.Verify(context.Background(), "bogus")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
}

func TestVerifyUnknownSubject(t *testing.T) {
	v, tokens := newTestVerifier(t, &fakeUserRepo{}, nil)

	token, err := tokens.GenerateToken("nobody", "x@example.com", "")
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
}

func TestVerifyUsesCacheOnSecondLookup(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{
		"ext-1": {ID: 7, Email: "jane@example.com"},
	}}
	cache := &fakeCache{}
	v, tokens := newTestVerifier(t, repo, cache)

	token, err := tokens.GenerateToken("ext-1", "jane@example.com", "")
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	require.NoError(t, err)
	require.NotEmpty(t, cache.items)

	// Drop the repo entry; the cached record must still resolve.
	delete(repo.users, "ext-1")
	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id.UserID)
}
