package gamesController

import (
	"context"
	"testing"
	"time"
	"zappygames/internal/catalog"
	"zappygames/internal/database"
	"zappygames/internal/gateway"
	"zappygames/internal/repositories"
	"zappygames/internal/session"
	"zappygames/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	games, err := catalog.New([]catalog.Game{
		{Name: "Subway Surfers", Category: "arcade games", Sources: []string{"https://example.com/a"}},
		{Name: "Traffic Rider", Category: "racing games", Sources: []string{"https://example.com/b"}},
		{Name: "Moto X3M", Category: "racing games", Sources: []string{"https://example.com/c"}},
	}, []catalog.Category{{Name: "Racing", FilterKey: "racing"}})
	require.NoError(t, err)
	return games
}

func newConfigured(t *testing.T) *GamesController {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)
	raw, err := db.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, database.MigrateModels(db))

	gw := gateway.NewConfigured(db, gateway.NewMemorySessionStore(gateway.MemorySessionStoreSize),
		gateway.AuthOptions{Secret: []byte("games-test"), TokenTTL: time.Hour})

	controller := New(testCatalog(t), repositories.New(database.DB{}, gw), gw).(*GamesController)
	return controller
}

func viewer() session.Snapshot {
	return session.Snapshot{
		Authenticated: true,
		Identity:      &gateway.Identity{ID: uuid.New(), Email: "player@zappygames.test"},
	}
}

func TestBrowse(t *testing.T) {
	controller := New(testCatalog(t), repositories.New(database.DB{}, gateway.NewUnconfigured()),
		gateway.NewUnconfigured())

	tests := []struct {
		name     string
		request  BrowseRequest
		expected []string
		category string
	}{
		{
			name:     "defaults to all",
			request:  BrowseRequest{},
			expected: []string{"Subway Surfers", "Traffic Rider", "Moto X3M"},
			category: catalog.AllCategories,
		},
		{
			name:     "category",
			request:  BrowseRequest{Category: "racing"},
			expected: []string{"Traffic Rider", "Moto X3M"},
			category: "racing",
		},
		{
			name:     "search",
			request:  BrowseRequest{Search: "sub"},
			expected: []string{"Subway Surfers"},
			category: catalog.AllCategories,
		},
		{
			name:     "category then search",
			request:  BrowseRequest{Category: "racing", Search: "moto"},
			expected: []string{"Moto X3M"},
			category: "racing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := controller.Browse(tt.request)

			names := make([]string, 0, len(page.Games))
			for _, game := range page.Games {
				names = append(names, game.Name)
			}
			assert.Equal(t, tt.expected, names)
			assert.Equal(t, tt.category, page.Category)
			assert.Equal(t, 1, page.Page.Page)
		})
	}
}

func TestDetail_NotFound(t *testing.T) {
	controller := newConfigured(t)

	_, err := controller.Detail(context.Background(), session.Snapshot{}, "missing-game")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Contains(t, err.Error(), types.GameNotFoundMessage)
}

func TestDetail_SignedInTracksRecentPlay(t *testing.T) {
	ctx := context.Background()
	controller := newConfigured(t)
	player := viewer()

	detail, err := controller.Detail(ctx, player, "traffic-rider")
	require.NoError(t, err)
	assert.False(t, detail.Liked)
	require.Len(t, detail.Suggestions, 1)
	assert.Equal(t, "moto-x3m", detail.Suggestions[0].Slug)

	recent, err := controller.Recent(ctx, player, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "traffic-rider", recent[0].Game.Slug)
}

func TestDetail_AnonymousDoesNotTrack(t *testing.T) {
	controller := newConfigured(t)

	detail, err := controller.Detail(context.Background(), session.Snapshot{}, "subway-surfers")
	require.NoError(t, err)
	assert.Empty(t, detail.Suggestions)
	assert.NotNil(t, detail.Suggestions)
}

func TestToggleLike_RoundTrip(t *testing.T) {
	ctx := context.Background()
	controller := newConfigured(t)
	player := viewer()

	toggled, err := controller.ToggleLike(ctx, player, "moto-x3m")
	require.NoError(t, err)
	assert.True(t, toggled.Liked)

	liked, err := controller.Liked(ctx, player)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, "Moto X3M", liked[0].Game.Name)

	detail, err := controller.Detail(ctx, player, "moto-x3m")
	require.NoError(t, err)
	assert.True(t, detail.Liked)

	toggled, err = controller.ToggleLike(ctx, player, "moto-x3m")
	require.NoError(t, err)
	assert.False(t, toggled.Liked)

	liked, err = controller.Liked(ctx, player)
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestRecent_LatestPlayFirst(t *testing.T) {
	ctx := context.Background()
	controller := newConfigured(t)
	player := viewer()

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	controller.now = func() time.Time { return clock }

	for _, slug := range []string{"subway-surfers", "traffic-rider", "subway-surfers"} {
		clock = clock.Add(time.Minute)
		_, err := controller.Play(ctx, player, slug)
		require.NoError(t, err)
	}

	recent, err := controller.Recent(ctx, player, 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "subway-surfers", recent[0].Game.Slug)
	assert.Equal(t, "traffic-rider", recent[1].Game.Slug)
}

func TestWrites_Rejected(t *testing.T) {
	ctx := context.Background()
	configured := newConfigured(t)
	unconfigured := New(testCatalog(t), repositories.New(database.DB{}, gateway.NewUnconfigured()),
		gateway.NewUnconfigured())

	tests := []struct {
		name     string
		call     func() error
		expected error
	}{
		{
			name: "like signed out",
			call: func() error {
				_, err := configured.ToggleLike(ctx, session.Snapshot{}, "moto-x3m")
				return err
			},
			expected: types.ErrUnauthorized,
		},
		{
			name: "like unknown game",
			call: func() error {
				_, err := configured.ToggleLike(ctx, viewer(), "missing")
				return err
			},
			expected: types.ErrNotFound,
		},
		{
			name: "like in preview mode",
			call: func() error {
				_, err := unconfigured.ToggleLike(ctx, viewer(), "moto-x3m")
				return err
			},
			expected: types.ErrPreviewMode,
		},
		{
			name: "play in preview mode",
			call: func() error {
				_, err := unconfigured.Play(ctx, viewer(), "moto-x3m")
				return err
			},
			expected: types.ErrPreviewMode,
		},
		{
			name: "liked signed out",
			call: func() error {
				_, err := configured.Liked(ctx, session.Snapshot{})
				return err
			},
			expected: types.ErrUnauthorized,
		},
		{
			name: "recent signed out",
			call: func() error {
				_, err := configured.Recent(ctx, session.Snapshot{}, 0)
				return err
			},
			expected: types.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.expected)
		})
	}
}
