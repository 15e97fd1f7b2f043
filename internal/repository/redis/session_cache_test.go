package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func setupTestRedis(t *testing.T) (*SessionCache, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := NewSessionCache(client, 5*time.Minute)
	cache.now = func() time.Time { return now }
	return cache, mr, &now
}

func sampleSession(now time.Time, ttl time.Duration) (*domain.Session, *domain.User) {
	sess := &domain.Session{
		ID:        "sess-1",
		Token:     "token-abc",
		UserID:    "user-1",
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &domain.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Role:  domain.RoleCreator,
	}
	return sess, user
}

func TestSessionCache_SetThenGet(t *testing.T) {
	cache, mr, now := setupTestRedis(t)
	sess, user := sampleSession(*now, time.Hour)

	require.NoError(t, cache.Set(context.Background(), sess, user))

	key := cacheKey("token-abc")
	assert.True(t, mr.Exists(key))
	assert.NotContains(t, key, "token-abc")
	assert.Equal(t, 5*time.Minute, mr.TTL(key))

	gotSess, gotUser, err := cache.Get(context.Background(), "token-abc")
	require.NoError(t, err)
	require.NotNil(t, gotSess)
	assert.Equal(t, "sess-1", gotSess.ID)
	assert.Equal(t, domain.RoleCreator, gotUser.Role)
}

func TestSessionCache_TTLCappedAtExpiry(t *testing.T) {
	cache, mr, now := setupTestRedis(t)
	sess, user := sampleSession(*now, 90*time.Second)

	require.NoError(t, cache.Set(context.Background(), sess, user))
	assert.Equal(t, 90*time.Second, mr.TTL(cacheKey(sess.Token)))
}

func TestSessionCache_SetSkipsExpired(t *testing.T) {
	cache, mr, now := setupTestRedis(t)
	sess, user := sampleSession(*now, -time.Second)

	require.NoError(t, cache.Set(context.Background(), sess, user))
	assert.False(t, mr.Exists(cacheKey(sess.Token)))
}

func TestSessionCache_Get_Miss(t *testing.T) {
	cache, _, _ := setupTestRedis(t)

	sess, user, err := cache.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Nil(t, user)
}

func TestSessionCache_Get_ExpiredEntryEvicted(t *testing.T) {
	cache, mr, now := setupTestRedis(t)
	sess, user := sampleSession(*now, time.Hour)
	require.NoError(t, cache.Set(context.Background(), sess, user))

	*now = now.Add(2 * time.Hour)

	got, _, err := cache.Get(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(cacheKey(sess.Token)))
}

func TestSessionCache_Get_CorruptEntry(t *testing.T) {
	cache, mr, _ := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("tok"), "not-json"))

	_, _, err := cache.Get(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal cached session")
}

func TestSessionCache_Get_RedisDown(t *testing.T) {
	cache, mr, _ := setupTestRedis(t)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get session")
}

func TestSessionCache_Delete(t *testing.T) {
	cache, mr, now := setupTestRedis(t)
	sess, user := sampleSession(*now, time.Hour)
	require.NoError(t, cache.Set(context.Background(), sess, user))

	require.NoError(t, cache.Delete(context.Background(), sess.Token))
	assert.False(t, mr.Exists(cacheKey(sess.Token)))
}
