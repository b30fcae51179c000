package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"zappygames/config"
	"zappygames/internal/catalog"
	"zappygames/internal/clientstate"
	"zappygames/internal/database"
	"zappygames/internal/events"
	"zappygames/internal/offline"
	"zappygames/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, cfg config.Config) services.Service {
	t.Helper()

	bus := events.New(nil)
	t.Cleanup(func() { _ = bus.Close() })

	service, err := services.New(database.DB{}, cfg, bus, nil)
	require.NoError(t, err)
	t.Cleanup(service.Close)
	return service
}

func testConfig(origin string) config.Config {
	return config.Config{
		ServerPort:           8280,
		OfflineOriginURL:     origin,
		OfflineCacheVersion:  "v1",
		OfflineServiceWorker: true,
		OfflinePush:          true,
		OfflineMemoryCacheMB: 4,
		SchedulerEnabled:     true,
		SchedulerTimezone:    "UTC",
	}
}

func TestSnapshotJob(t *testing.T) {
	ctx := context.Background()
	games, err := catalog.Load()
	require.NoError(t, err)
	store := clientstate.New(clientstate.NewMemoryBackend(32 * 1024 * 1024))

	job := NewSnapshotJob(games, store, services.EveryThirtyMinutes)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	assert.Equal(t, services.EveryThirtyMinutes, job.Schedule())
	require.NoError(t, job.Execute(ctx))

	snapshot, err := store.GetSharedSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.True(t, snapshot.Timestamp.Equal(now))
	assert.Len(t, snapshot.Games, games.Len())
}

func TestDailyReminderJob(t *testing.T) {
	notifications := offline.NewNotificationCenter()
	job := NewDailyReminderJob(notifications, offline.NewMetrics(nil), services.DailyReminder)

	require.NoError(t, job.Execute(context.Background()))
	require.NoError(t, job.Execute(context.Background()))

	visible := notifications.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, offline.REMINDER_TAG, visible[0].Tag)
}

func TestPeriodicSyncJob(t *testing.T) {
	ctx := context.Background()
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer origin.Close()

	service := newService(t, testConfig(origin.URL))
	job := NewPeriodicSyncJob(service.Offline.Coordinator, services.Daily)

	require.NoError(t, job.Execute(ctx), "no active worker is skipped")

	require.NoError(t, service.Offline.RegisterCurrent(ctx))
	require.NoError(t, job.Execute(ctx))

	response, err := service.Offline.Coordinator.Fetch(ctx, offline.Get(offline.GamesEndpoint))
	require.NoError(t, err)
	assert.Equal(t, offline.SourceCache, response.Source)
}

func TestRegisterAllJobs(t *testing.T) {
	games, err := catalog.Load()
	require.NoError(t, err)
	store := clientstate.New(clientstate.NewMemoryBackend(1024 * 1024))

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		expected int
	}{
		{name: "all jobs", mutate: func(*config.Config) {}, expected: 3},
		{name: "no worker", mutate: func(c *config.Config) { c.OfflineServiceWorker = false }, expected: 2},
		{name: "disabled", mutate: func(c *config.Config) { c.SchedulerEnabled = false }, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("http://localhost:8280")
			tt.mutate(&cfg)
			service := newService(t, cfg)

			require.NoError(t, RegisterAllJobs(service.Scheduler, cfg, service, games, store))
			assert.Equal(t, tt.expected, service.Scheduler.GetJobCount())
		})
	}
}
