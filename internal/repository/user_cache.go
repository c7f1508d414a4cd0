package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/domain"
)

const profileKeyPrefix = "parking:user:profile:"

// cachedProfile is the cache representation; it never carries the password hash.
type cachedProfile struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     *string     `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserProfileCache is a read-through Redis cache for identity lookups.
// Users returned from it have an empty PasswordHash.
type UserProfileCache struct {
	users  UserRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserProfileCache wraps users with a Redis cache. A nil client or zero ttl disables caching.
func NewUserProfileCache(users UserRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *UserProfileCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserProfileCache{users: users, client: client, ttl: ttl, logger: logger}
}

// GetByID returns the cached profile or loads and caches it.
func (c *UserProfileCache) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !c.enabled() {
		return c.users.GetByID(ctx, id)
	}

	raw, err := c.client.Get(ctx, profileKeyPrefix+id).Bytes()
	switch {
	case err == nil:
		var p cachedProfile
		if err := json.Unmarshal(raw, &p); err == nil {
			return p.toUser(), nil
		}
		c.logger.Warn("discarding corrupt cached profile", zap.String("user_id", id))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
	}

	user, err := c.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, user)
	return user, nil
}

func (c *UserProfileCache) store(ctx context.Context, user *domain.User) {
	payload, err := json.Marshal(profileFromUser(user))
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+user.ID, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("user cache write failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (c *UserProfileCache) enabled() bool {
	return c.client != nil && c.ttl > 0
}

func profileFromUser(u *domain.User) cachedProfile {
	return cachedProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (p cachedProfile) toUser() *domain.User {
	return &domain.User{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
