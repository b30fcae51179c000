package userController

import (
	"context"
	"testing"
	"time"
	"zappygames/internal/database"
	"zappygames/internal/gateway"
	"zappygames/internal/repositories"
	"zappygames/internal/session"
	"zappygames/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserController_NotificationSettings(t *testing.T) {
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)
	raw, err := db.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, database.MigrateModels(db))

	gw := gateway.NewConfigured(db, gateway.NewMemorySessionStore(gateway.MemorySessionStoreSize),
		gateway.AuthOptions{Secret: []byte("user-test"), TokenTTL: time.Hour})
	controller := New(repositories.New(database.DB{}, gw))

	state := session.NewService(gw).Open(ctx, "")
	defer state.Close()

	_, err = controller.Me(ctx, state)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	require.NoError(t, state.SignUp(ctx, "player@zappygames.test", "secret123", "player"))

	profile, err := controller.Me(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "player@zappygames.test", profile.Email)
	assert.False(t, profile.NotificationsEnabled)

	enabled := true
	profile, err = controller.UpdateNotifications(ctx, state, &UpdateNotificationsRequest{Enabled: &enabled})
	require.NoError(t, err)
	assert.True(t, profile.NotificationsEnabled)

	_, err = controller.UpdateNotifications(ctx, state, &UpdateNotificationsRequest{})
	assert.ErrorIs(t, err, types.ErrValidation)
}
