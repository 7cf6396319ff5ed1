package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"crm-copilot/backend/internal/models"
	apperrors "crm-copilot/backend/pkg/errors"
	"crm-copilot/backend/pkg/jwt"
	"crm-copilot/backend/pkg/logger"

	"gorm.io/gorm"
)

// Identity is the authenticated principal attached to a connection for
// its whole lifetime.
type Identity struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// RoomKey returns the broadcast room for this user's connections
func (i Identity) RoomKey() string {
	return "chat-" + strconv.FormatUint(uint64(i.UserID), 10)
}

// UserRepository resolves identity provider subjects to internal users
type UserRepository interface {
	GetByExternalUID(ctx context.Context, uid string) (*models.User, error)
}

// GormUserRepository is the Postgres-backed user repository
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByExternalUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("external_uid = ?", uid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IdentityCache is the subset of the redis client the verifier needs
// to cache resolved users between connections.
type IdentityCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Verifier validates a bearer credential and resolves it to an internal
// user identity. Verification happens once, at connection time; every
// failure refuses the connection before any event handler is registered.
type Verifier struct {
	tokens   *jwt.Service
	users    UserRepository
	cache    IdentityCache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewVerifier creates an identity verifier. cache may be nil, in which
// case every lookup goes to the database.
func NewVerifier(tokens *jwt.Service, users UserRepository, cache IdentityCache, cacheTTL time.Duration, log *logger.Logger) *Verifier {
	return &Verifier{
		tokens:   tokens,
		users:    users,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Verify validates the bearer token and resolves the internal user.
// Returns an UNAUTHENTICATED AppError on a missing token, a token that
// fails signature or expiry checks, or a verified subject with no
// matching user record.
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperrors.NewUnauthenticatedError("Bearer token missing")
	}

	claims, err := v.tokens.ValidateToken(token)
	if err != nil {
		v.logger.Warn("Token verification failed", "error", err.Error())
		return nil, apperrors.NewUnauthenticatedError("Unauthorized").WithCause(err)
	}

	user, err := v.lookupUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUnauthenticatedError("User not found")
		}
		return nil, apperrors.NewUnauthenticatedError("Unauthorized").WithCause(err)
	}

	identity := &Identity{
		UserID:  user.ID,
		Email:   firstNonEmpty(claims.Email, user.Email),
		Name:    firstNonEmpty(claims.Name, user.DisplayName),
		Picture: firstNonEmpty(claims.Picture, user.ProfilePicture),
	}
	return identity, nil
}

// lookupUser reads the subject's user record, consulting the cache first
func (v *Verifier) lookupUser(ctx context.Context, uid string) (*models.User, error) {
	cacheKey := fmt.Sprintf("user:uid:%s", uid)
	if v.cache != nil {
		if cached, err := v.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var user models.User
			if err := json.Unmarshal([]byte(cached), &user); err == nil {
				return &user, nil
			}
		}
	}

	user, err := v.users.GetByExternalUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if v.cache != nil {
		if data, err := json.Marshal(user); err == nil {
			_ = v.cache.Set(ctx, cacheKey, string(data), v.cacheTTL)
		}
	}
	return user, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
