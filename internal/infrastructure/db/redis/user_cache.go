package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

const defaultUserTTL = 5 * time.Minute

// UserCache is a read-through cache in front of a ports.UserRepository.
// Key format: user:<username>
//
// Cached entries never contain the password hash, so the cache must not back
// credential checks; it serves identity resolution only. Misses for unknown
// users are not cached. Redis failures fall through to the wrapped repository.
type UserCache struct {
	client *redis.Client
	next   ports.UserRepository
	ttl    time.Duration
	log    zerolog.Logger
}

// NewUserCache wraps next. A non-positive ttl selects defaultUserTTL.
func NewUserCache(client *redis.Client, next ports.UserRepository, ttl time.Duration, log zerolog.Logger) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &UserCache{client: client, next: next, ttl: ttl, log: log}
}

type cachedUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *UserCache) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, c.key(username)).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if jsonErr := json.Unmarshal(raw, &cu); jsonErr == nil {
			return &domain.User{ID: cu.ID, Username: cu.Username, Role: cu.Role, CreatedAt: cu.CreatedAt}, nil
		}
		c.log.Warn().Str("username", username).Msg("discarding corrupt user cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Msg("user cache read failed, falling back to store")
	}

	user, err := c.next.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	c.store(ctx, user)
	return user, nil
}

// Create passes through to the wrapped repository.
func (c *UserCache) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return c.next.Create(ctx, user)
}

func (c *UserCache) store(ctx context.Context, user *domain.User) {
	payload, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(user.Username), payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("user cache write failed")
	}
}

func (c *UserCache) key(username string) string {
	return fmt.Sprintf("user:%s", username)
}
