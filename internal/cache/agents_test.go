package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

func setupTestCache(t *testing.T) (*AgentCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAgentCache(client, time.Minute), mr
}

func TestAgentCache_MissThenHit(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	_, version, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, version)

	agents := []domain.User{
		{ID: 3, Name: "Ana", Email: "ana@example.com", PasswordHash: "hash", Role: domain.RoleSoporte, Status: domain.UserStatusActive},
		{ID: 4, Name: "Luis", Email: "luis@example.com", PasswordHash: "hash", Role: domain.RoleSoporte, Status: domain.UserStatusActive},
	}
	require.NoError(t, c.Set(ctx, version, agents))

	got, _, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, int64(4), got[1].ID)
	assert.Empty(t, got[0].PasswordHash)
}

func TestAgentCache_StoredPayloadOmitsHash(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, c.Set(context.Background(), 0, []domain.User{{ID: 1, Name: "Ana", PasswordHash: "$2a$secret"}}))

	raw, err := mr.Get(agentsKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, "$2a$secret")
}

func TestAgentCache_TTLAndInvalidate(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, 0, []domain.User{{ID: 1}}))
	assert.Equal(t, time.Minute, mr.TTL(agentsKey))

	require.NoError(t, c.Invalidate(ctx))
	_, version, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), version)

	require.NoError(t, c.Set(ctx, version, []domain.User{{ID: 1}}))
	_, _, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, _, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAgentCache_SetAfterInvalidateIsDropped(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	_, version, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// A user mutation lands between the database read and the cache write.
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, version, []domain.User{{ID: 1, Name: "Stale"}}))

	assert.False(t, mr.Exists(agentsKey))
	_, _, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAgentCache_EntryFromOldVersionIsMiss(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, 0, []domain.User{{ID: 1}}))

	// The version moved on without the entry being deleted.
	_, err := mr.Incr(agentsVersionKey, 1)
	require.NoError(t, err)

	_, version, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), version)
}

func TestAgentCache_EmptyList(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, 0, nil))

	got, _, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}
