package clientstate

import (
	"context"
	"fmt"
	"testing"
	"time"
	"zappygames/internal/catalog"
	"zappygames/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	server := miniredis.RunT(t)
	cache, err := database.NewCache(server.Addr(), database.WithoutClientCache)
	require.NoError(t, err)
	t.Cleanup(func() {
		db := database.NewWithClients(nil, cache)
		_ = db.Close()
	})

	return map[string]Backend{
		"memory": NewMemoryBackend(32 * 1024 * 1024),
		"valkey": NewValkeyBackend(cache.General),
	}
}

func TestStore_Flags(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := New(backend)
			assert.Equal(t, name, store.Backend())

			state, err := store.Get(ctx, "client-1")
			require.NoError(t, err)
			assert.False(t, state.Flags[FlagInstallPromptDismissed])
			assert.False(t, state.Flags[FlagNotificationPromptDismissed])
			assert.Nil(t, state.Snapshot)

			state, err = store.SetFlag(ctx, "client-1", FlagInstallPromptDismissed, true)
			require.NoError(t, err)
			assert.True(t, state.Flags[FlagInstallPromptDismissed])
			assert.False(t, state.Flags[FlagNotificationPromptDismissed])

			other, err := store.Get(ctx, "client-2")
			require.NoError(t, err)
			assert.False(t, other.Flags[FlagInstallPromptDismissed])

			_, err = store.SetFlag(ctx, "client-1", "theme", true)
			assert.ErrorIs(t, err, ErrUnknownFlag)

			_, err = store.Get(ctx, "")
			assert.ErrorIs(t, err, ErrInvalidClientID)
		})
	}
}

func TestStore_Snapshot(t *testing.T) {
	games, err := catalog.Load()
	require.NoError(t, err)
	now := time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC)

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := New(backend)

			saved, err := store.SaveSnapshot(ctx, "client-1", games.All(), now)
			require.NoError(t, err)
			assert.Len(t, saved.Games, games.Len())

			snapshot, err := store.GetSnapshot(ctx, "client-1")
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			assert.True(t, snapshot.Timestamp.Equal(now))
			require.Len(t, snapshot.Games, games.Len())
			assert.Equal(t, games.All()[0].Slug, snapshot.Games[0].Slug)
			assert.True(t, games.All()[0].Rating.Equal(snapshot.Games[0].Rating))

			state, err := store.Get(ctx, "client-1")
			require.NoError(t, err)
			assert.NotNil(t, state.Snapshot)
		})
	}
}

func TestStore_SharedSnapshot(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryBackend(32 * 1024 * 1024))
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	missing, err := store.GetSharedSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	games := []catalog.Game{{Name: "Traffic Rider", Slug: "traffic-rider", Category: "racing games"}}
	_, err = store.SaveSharedSnapshot(ctx, games, now)
	require.NoError(t, err)

	snapshot, err := store.GetSharedSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "traffic-rider", snapshot.Games[0].Slug)

	own, err := store.GetSnapshot(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, own)
}

func TestStore_LargeSnapshotInMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	games := make([]catalog.Game, 0, 3000)
	for i := range 3000 {
		slug := fmt.Sprintf("game-%04d", i)
		games = append(games, catalog.Game{
			Name:     slug,
			Slug:     slug,
			Category: "arcade games",
			Sources:  []string{"https://example.com/" + slug},
		})
	}

	tests := []struct {
		name string
		size int
	}{
		{name: "default size", size: 32 * 1024 * 1024},
		{name: "small cache", size: 4 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(NewMemoryBackend(tt.size))

			_, err := store.SaveSharedSnapshot(ctx, games, now)
			require.NoError(t, err)

			snapshot, err := store.GetSharedSnapshot(ctx)
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			require.Len(t, snapshot.Games, len(games))
			assert.Equal(t, "game-2999", snapshot.Games[2999].Slug)
		})
	}
}
