package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedGame struct {
	Slug  string `json:"slug"`
	Plays int    `json:"plays"`
}

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	cache, err := NewCache(server.Addr(), WithoutClientCache)
	require.NoError(t, err)

	db := NewWithClients(nil, cache)
	t.Cleanup(func() { _ = db.Close() })

	return cache, server
}

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, SESSION_CACHE_INDEX)
	assert.Equal(t, 2, USER_CACHE_INDEX)
	assert.Equal(t, 3, EVENTS_CACHE_INDEX)
	assert.Equal(t, 4, OFFLINE_CACHE_INDEX)
}

func TestDB_WithoutConnections(t *testing.T) {
	db := NewWithClients(nil, Cache{})

	assert.False(t, db.HasSQL())
	assert.False(t, db.HasCache())
	assert.NoError(t, db.Close())
}

func TestCacheBuilder_NilClient(t *testing.T) {
	var client CacheClient

	err := NewCacheBuilder(client, "key").WithValue("v").Set()
	assert.ErrorIs(t, err, ErrCacheUnavailable)

	found, err := NewCacheBuilder(client, "key").Get(&cachedGame{})
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrCacheUnavailable)
}

func TestCacheBuilder_SetGetDelete(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	err := NewCacheBuilder(cache.User, "subway-surfers").
		WithContext(ctx).
		WithHash("game").
		WithStruct(cachedGame{Slug: "subway-surfers", Plays: 3}).
		WithTTL(time.Minute).
		Set()
	require.NoError(t, err)

	server.Select(USER_CACHE_INDEX)
	assert.True(t, server.Exists("game:subway-surfers"))
	assert.Equal(t, time.Minute, server.TTL("game:subway-surfers"))

	var got cachedGame
	found, err := NewCacheBuilder(cache.User, "subway-surfers").WithHash("game").Get(&got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, got.Plays)

	require.NoError(t, NewCacheBuilder(cache.User, "subway-surfers").WithHash("game").Delete())

	found, err = NewCacheBuilder(cache.User, "subway-surfers").WithHash("game").Get(&got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheBuilder_Hash(t *testing.T) {
	cache, _ := newTestCache(t)

	for _, field := range []string{"GET /", "GET /games"} {
		err := NewCacheBuilder(cache.Offline, "static").
			WithField(field).
			WithStruct(cachedGame{Slug: field}).
			HSet()
		require.NoError(t, err)
	}

	keys, err := NewCacheBuilder(cache.Offline, "static").HKeys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"GET /", "GET /games"}, keys)

	var got cachedGame
	found, err := NewCacheBuilder(cache.Offline, "static").WithField("GET /games").HGet(&got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "GET /games", got.Slug)

	found, err = NewCacheBuilder(cache.Offline, "static").WithField("GET /missing").HGet(&got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, NewCacheBuilder(cache.Offline, "static").WithField("GET /").HDel())
	keys, err = NewCacheBuilder(cache.Offline, "static").HKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /games"}, keys)
}

func TestCacheBuilder_Sets(t *testing.T) {
	cache, _ := newTestCache(t)

	for _, member := range []string{"a", "b", "a"} {
		require.NoError(t, NewCacheBuilder(cache.User, "likes").WithMember(member).AddSetMember())
	}

	members, err := NewCacheBuilder(cache.User, "likes").GetSetMembers()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	require.NoError(t, NewCacheBuilder(cache.User, "likes").WithMember("a").RemoveSetMember())
	members, err = NewCacheBuilder(cache.User, "likes").GetSetMembers()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)

	err = NewCacheBuilder(cache.User, "likes").AddSetMember()
	assert.Error(t, err)
}

func TestFlushAllCaches(t *testing.T) {
	cache, server := newTestCache(t)
	db := NewWithClients(nil, cache)

	require.NoError(t, NewCacheBuilder(cache.General, "flag").WithValue("1").Set())
	require.NoError(t, db.FlushAllCaches())

	server.Select(GENERAL_CACHE_INDEX)
	assert.False(t, server.Exists("flag"))
}
