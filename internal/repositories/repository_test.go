package repositories

import (
	"context"
	"testing"
	"time"
	"zappygames/internal/constants"
	"zappygames/internal/database"
	"zappygames/internal/gateway"
	"zappygames/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type testEnv struct {
	db      database.DB
	gateway gateway.Gateway
	repo    Repository
	redis   *miniredis.Miniredis
}

func newTestEnv(t *testing.T, withCache bool) testEnv {
	t.Helper()

	sqlDB, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)
	raw, err := sqlDB.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, database.MigrateModels(sqlDB))

	env := testEnv{}
	var cache database.Cache
	if withCache {
		env.redis = miniredis.RunT(t)
		cache, err = database.NewCache(env.redis.Addr(), database.WithoutClientCache)
		require.NoError(t, err)
	}

	env.db = database.NewWithClients(sqlDB, cache)
	if withCache {
		t.Cleanup(func() { _ = env.db.Close() })
	}

	env.gateway = gateway.NewConfigured(sqlDB, gateway.NewMemorySessionStore(1024*1024),
		gateway.AuthOptions{Secret: []byte("repo-test"), TokenTTL: time.Hour})
	env.repo = New(env.db, env.gateway)
	return env
}

func TestLikeRepository_ToggleRoundTrip(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		name := "memory"
		if withCache {
			name = "valkey"
		}

		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t, withCache)
			userID := uuid.New()

			require.NoError(t, env.repo.Like.Like(ctx, userID, "2048"))
			before, err := env.repo.Like.ListByUser(ctx, userID)
			require.NoError(t, err)
			require.Len(t, before, 1)

			require.NoError(t, env.repo.Like.Like(ctx, userID, "moto-x3m"))
			liked, err := env.repo.Like.IsLiked(ctx, userID, "moto-x3m")
			require.NoError(t, err)
			assert.True(t, liked)

			require.NoError(t, env.repo.Like.Unlike(ctx, userID, "moto-x3m"))
			liked, err = env.repo.Like.IsLiked(ctx, userID, "moto-x3m")
			require.NoError(t, err)
			assert.False(t, liked)

			after, err := env.repo.Like.ListByUser(ctx, userID)
			require.NoError(t, err)
			require.Len(t, after, 1)
			assert.Equal(t, before[0].GameSlug, after[0].GameSlug)
		})
	}
}

func TestLikeRepository_DoubleLikeIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	userID := uuid.New()

	require.NoError(t, env.repo.Like.Like(ctx, userID, "2048"))
	require.NoError(t, env.repo.Like.Like(ctx, userID, "2048"))

	likes, err := env.repo.Like.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)
}

func TestLikeRepository_CachesList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)
	userID := uuid.New()

	require.NoError(t, env.repo.Like.Like(ctx, userID, "2048"))
	_, err := env.repo.Like.ListByUser(ctx, userID)
	require.NoError(t, err)

	userCache := env.redis.DB(database.USER_CACHE_INDEX)
	key := constants.LikesCachePrefix + ":" + userID.String()
	assert.True(t, userCache.Exists(key))

	require.NoError(t, env.repo.Like.Unlike(ctx, userID, "2048"))
	assert.False(t, userCache.Exists(key))
}

func TestRecentPlayRepository_TrackKeepsLatest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, env.repo.RecentPlay.Track(ctx, userID, "traffic-rider", base))
	require.NoError(t, env.repo.RecentPlay.Track(ctx, userID, "2048", base.Add(time.Minute)))
	require.NoError(t, env.repo.RecentPlay.Track(ctx, userID, "traffic-rider", base.Add(time.Hour)))

	plays, err := env.repo.RecentPlay.List(ctx, userID, RecentPlaysLimit)
	require.NoError(t, err)
	require.Len(t, plays, 2)
	assert.Equal(t, "traffic-rider", plays[0].GameSlug)
	assert.True(t, plays[0].PlayedAt.Equal(base.Add(time.Hour)))
	assert.Equal(t, "2048", plays[1].GameSlug)
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	userID := uuid.New()

	parent := &models.Comment{
		GameSlug: "subway-surfers",
		UserID:   userID,
		Username: "player",
		Content:  "great game",
	}
	require.NoError(t, env.repo.Comment.Create(ctx, parent))
	require.NotEqual(t, uuid.Nil, parent.ID)

	found, err := env.repo.Comment.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "great game", found.Content)

	missing, err := env.repo.Comment.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	comments, err := env.repo.Comment.ListByGame(ctx, "subway-surfers")
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	comments, err = env.repo.Comment.ListByGame(ctx, "traffic-rider")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestUserRepository_CacheAside(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, true)

	profile := models.NewProfile(uuid.New(), "player@zappygames.test", "player")
	require.NoError(t, env.gateway.Users().Insert(ctx, &profile))

	userCache := env.redis.DB(database.USER_CACHE_INDEX)
	key := constants.UserCachePrefix + ":" + profile.ID.String()

	user, err := env.repo.User.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.False(t, user.NotificationsEnabled)
	assert.True(t, userCache.Exists(key))

	require.NoError(t, env.repo.User.UpdateNotifications(ctx, profile.ID, true))
	assert.False(t, userCache.Exists(key))

	user, err = env.repo.User.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.True(t, user.NotificationsEnabled)

	missing, err := env.repo.User.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPushSubscriptionRepository_SaveReplacesEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	endpoint := "https://push.example.test/sub/1"

	require.NoError(t, env.repo.PushSubscription.Save(ctx, &models.PushSubscription{
		Endpoint: endpoint,
		Keys:     datatypes.JSONMap{"p256dh": "first"},
	}))
	require.NoError(t, env.repo.PushSubscription.Save(ctx, &models.PushSubscription{
		Endpoint: endpoint,
		Keys:     datatypes.JSONMap{"p256dh": "second"},
	}))

	subscriptions, err := env.repo.PushSubscription.List(ctx)
	require.NoError(t, err)
	require.Len(t, subscriptions, 1)
	assert.Equal(t, "second", subscriptions[0].Keys["p256dh"])
}

func TestRepositories_Unconfigured(t *testing.T) {
	ctx := context.Background()
	repo := New(database.NewWithClients(nil, database.Cache{}), gateway.NewUnconfigured())
	userID := uuid.New()

	require.NoError(t, repo.Like.Like(ctx, userID, "2048"))
	likes, err := repo.Like.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	user, err := repo.User.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, user)
}
