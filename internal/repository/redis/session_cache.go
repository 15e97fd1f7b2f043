package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
)

const keyPrefix = "session:"

type cachedSession struct {
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
}

// SessionCache implements repository.SessionCache using Redis. Keys are the
// SHA-256 of the session token so raw tokens never reach Redis.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCache creates a Redis-backed session cache. Entries live for
// ttl or until the session expires, whichever comes first.
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached session and user for token. A miss, or an entry
// whose session has expired, returns nil values and no error.
func (c *SessionCache) Get(ctx context.Context, token string) (*domain.Session, *domain.User, error) {
	key := cacheKey(token)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("redis get session: %w", err)
	}

	var entry cachedSession
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, nil, fmt.Errorf("unmarshal cached session: %w", err)
	}
	if entry.Session == nil || entry.User == nil || !entry.Session.ValidAt(c.now()) {
		_ = c.client.Del(ctx, key).Err()
		return nil, nil, nil
	}

	return entry.Session, entry.User, nil
}

// Set caches session and user. Sessions that are already expired are not
// stored.
func (c *SessionCache) Set(ctx context.Context, session *domain.Session, user *domain.User) error {
	ttl := c.ttl
	if remaining := session.ExpiresAt.Sub(c.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cachedSession{Session: session, User: user})
	if err != nil {
		return fmt.Errorf("marshal cached session: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Delete evicts token from the cache.
func (c *SessionCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, cacheKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
