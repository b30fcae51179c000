package offline

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	"zappygames/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOrigin, _ = url.Parse("https://zappygames.test")
	fixedNow      = time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	errOffline    = errors.New("network unreachable")
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]Response
	offline   bool
	calls     []string

	// held URLs wait for their channel to close before answering.
	held map[string]chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	responses := make(map[string]Response)
	for _, asset := range ShellAssets {
		responses[asset] = Response{Status: http.StatusOK, Body: []byte("shell " + asset)}
	}
	responses[GamesEndpoint] = Response{Status: http.StatusOK, Body: []byte(`{"games":[]}`)}
	return &fakeFetcher{responses: responses}
}

func (f *fakeFetcher) Fetch(ctx context.Context, request Request) (Response, error) {
	f.mu.Lock()
	gate := f.held[request.URL]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, request.URL)
	if f.offline {
		return Response{}, errOffline
	}

	response, ok := f.responses[request.URL]
	if !ok {
		return Response{Status: http.StatusNotFound, Source: SourceNetwork}, nil
	}
	response.Source = SourceNetwork
	return response, nil
}

func (f *fakeFetcher) hold(url string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.held == nil {
		f.held = make(map[string]chan struct{})
	}
	gate := make(chan struct{})
	f.held[url] = gate
	return gate
}

func (f *fakeFetcher) setOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingSink struct {
	mu     sync.Mutex
	shown  []Notification
	closed []string
	opened []string
}

func (s *recordingSink) ShowNotification(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, n)
}

func (s *recordingSink) CloseNotification(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = append(s.closed, tag)
}

func (s *recordingSink) OpenWindow(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, path)
}

type harness struct {
	coordinator *Coordinator
	fetcher     *fakeFetcher
	storage     Storage
	center      *NotificationCenter
	sink        *recordingSink
	metrics     *Metrics
}

func newHarness(t *testing.T, storage Storage, skipWaiting bool) harness {
	t.Helper()

	h := harness{
		fetcher: newFakeFetcher(),
		storage: storage,
		center:  NewNotificationCenter(),
		sink:    &recordingSink{},
		metrics: NewMetrics(nil),
	}
	h.center.AddSink(h.sink)
	h.coordinator = NewCoordinator(h.storage, h.fetcher, h.center, h.metrics, Options{
		Origin:      testOrigin,
		SkipWaiting: skipWaiting,
		Now:         func() time.Time { return fixedNow },
	})
	t.Cleanup(h.coordinator.Stop)
	return h
}

func newMemoryHarness(t *testing.T) harness {
	return newHarness(t, NewMemoryStorage(4*1024*1024), false)
}

func TestGenerationNames(t *testing.T) {
	assert.Equal(t, "ZappyGames-static-v1", StaticGeneration("v1"))
	assert.Equal(t, "ZappyGames-dynamic-v1", DynamicGeneration("v1"))
}

func TestCoordinator_FirstRegisterActivates(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	status, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, status.Active)
	assert.Equal(t, "v1", status.Active.Version)
	assert.Equal(t, StateActive, status.Active.State)
	assert.Nil(t, status.Waiting)

	for _, asset := range ShellAssets {
		_, ok, err := h.storage.Match(ctx, StaticGeneration("v1"), asset)
		require.NoError(t, err)
		assert.True(t, ok, asset)
	}

	again, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", again.Active.Version)
	assert.Equal(t, len(ShellAssets), h.fetcher.callCount())
}

func TestCoordinator_InstallSurvivesAssetFailures(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)
	delete(h.fetcher.responses, "/icons/icon-512x512.png")

	status, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, status.Active)

	_, ok, err := h.storage.Match(ctx, StaticGeneration("v1"), "/icons/icon-512x512.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = h.storage.Match(ctx, StaticGeneration("v1"), OfflinePage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.AssetFailures))
}

func TestCoordinator_NewVersionWaitsForClients(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)

	controller, err := h.coordinator.Connect(ctx, "tab-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", controller)
	_, err = h.coordinator.Connect(ctx, "tab-2")
	require.NoError(t, err)

	status, err := h.coordinator.Register(ctx, "v2")
	require.NoError(t, err)
	require.NotNil(t, status.Waiting)
	assert.Equal(t, "v2", status.Waiting.Version)
	assert.Equal(t, StateInstalled, status.Waiting.State)
	assert.Equal(t, "v1", status.Active.Version)

	require.NoError(t, h.coordinator.Disconnect(ctx, "tab-1"))
	status, err = h.coordinator.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", status.Active.Version)

	require.NoError(t, h.coordinator.Disconnect(ctx, "tab-2"))
	status, err = h.coordinator.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", status.Active.Version)
	assert.Nil(t, status.Waiting)
}

func TestCoordinator_ActivationKeepsInstallingGenerations(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	_, err = h.coordinator.Connect(ctx, "tab-1")
	require.NoError(t, err)

	status, err := h.coordinator.Register(ctx, "v2")
	require.NoError(t, err)
	require.NotNil(t, status.Waiting)

	gate := h.fetcher.hold("/manifest.json")
	installed := make(chan error, 1)
	go func() {
		_, err := h.coordinator.Register(ctx, "v3")
		installed <- err
	}()

	require.Eventually(t, func() bool {
		_, ok, err := h.storage.Match(ctx, StaticGeneration("v3"), "/")
		return err == nil && ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, h.coordinator.Disconnect(ctx, "tab-1"))
	status, err = h.coordinator.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", status.Active.Version)
	require.NotNil(t, status.Installing)
	assert.Equal(t, "v3", status.Installing.Version)

	_, ok, err := h.storage.Match(ctx, StaticGeneration("v3"), "/")
	require.NoError(t, err)
	assert.True(t, ok)

	close(gate)
	require.NoError(t, <-installed)

	status, err = h.coordinator.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v3", status.Active.Version)
	for _, asset := range ShellAssets {
		_, ok, err := h.storage.Match(ctx, StaticGeneration("v3"), asset)
		require.NoError(t, err)
		assert.True(t, ok, asset)
	}

	names, err := h.coordinator.Generations(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{StaticGeneration("v3"), DynamicGeneration("v3")}, names)
}

func TestCoordinator_SkipWaitingClaimsClients(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, NewMemoryStorage(4*1024*1024), true)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	_, err = h.coordinator.Connect(ctx, "tab-1")
	require.NoError(t, err)

	status, err := h.coordinator.Register(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, "v2", status.Active.Version)
	assert.Equal(t, 1, status.Active.Clients)
}

func TestCoordinator_ActivationLeavesTwoGenerations(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	require.NoError(t, h.storage.Open(ctx, "ZappyGames-v0"))
	require.NoError(t, h.storage.Open(ctx, "unrelated-cache"))

	for _, version := range []string{"v1", "v2", "v3"} {
		_, err := h.coordinator.Register(ctx, version)
		require.NoError(t, err)
	}

	names, err := h.coordinator.Generations(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{StaticGeneration("v3"), DynamicGeneration("v3")}, names)
}

func TestCoordinator_FetchIsCacheFirst(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	before := h.fetcher.callCount()

	response, err := h.coordinator.Fetch(ctx, Get("/games"))
	require.NoError(t, err)
	assert.Equal(t, SourceCache, response.Source)
	assert.Equal(t, "shell /games", string(response.Body))
	assert.Equal(t, before, h.fetcher.callCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CacheHits))
}

func TestCoordinator_FetchStoresDynamicCopy(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)

	first, err := h.coordinator.Fetch(ctx, Get(GamesEndpoint))
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, first.Source)

	calls := h.fetcher.callCount()
	second, err := h.coordinator.Fetch(ctx, Get(GamesEndpoint))
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, calls, h.fetcher.callCount())

	missing, err := h.coordinator.Fetch(ctx, Get("/missing"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missing.Status)
	_, ok, err := h.storage.Match(ctx, DynamicGeneration("v1"), "/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCoordinator_FetchCachesLargeBodies(t *testing.T) {
	tests := []struct {
		name    string
		storage int
		body    int
	}{
		{name: "just over one freecache entry", storage: 4 * 1024 * 1024, body: 5 * 1024},
		{name: "page sized", storage: 32 * 1024 * 1024, body: 30 * 1024},
		{name: "megabyte", storage: 32 * 1024 * 1024, body: 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, NewMemoryStorage(tt.storage), false)
			h.fetcher.responses["/games/page"] = Response{
				Status: http.StatusOK,
				Body:   []byte(strings.Repeat("g", tt.body)),
			}

			_, err := h.coordinator.Register(ctx, "v1")
			require.NoError(t, err)
			before := h.fetcher.callCount()

			sources := make([]Source, 0, 3)
			for range 3 {
				response, err := h.coordinator.Fetch(ctx, Get("/games/page"))
				require.NoError(t, err)
				assert.Len(t, response.Body, tt.body)
				sources = append(sources, response.Source)
			}

			assert.Equal(t, []Source{SourceNetwork, SourceCache, SourceCache}, sources)
			assert.Equal(t, before+1, h.fetcher.callCount())
		})
	}
}

func TestCoordinator_FetchPassThrough(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)

	tests := []struct {
		name    string
		request Request
	}{
		{name: "non-GET", request: Request{Method: http.MethodPost, URL: "/games"}},
		{name: "cross origin", request: Get("https://cdn.example.test/games")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := h.fetcher.callCount()
			response, err := h.coordinator.Fetch(ctx, tt.request)
			require.NoError(t, err)
			assert.Equal(t, SourceNetwork, response.Source)
			assert.Equal(t, calls+1, h.fetcher.callCount())
		})
	}
}

func TestCoordinator_FetchFallbacks(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	h.fetcher.setOffline(true)

	tests := []struct {
		name        string
		destination Destination
		body        string
		expectErr   bool
	}{
		{name: "document", destination: DestinationDocument, body: "shell " + OfflinePage},
		{name: "image", destination: DestinationImage, body: "shell " + PlaceholderIcon},
		{name: "other", destination: DestinationOther, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := Get("/game/traffic-rider")
			request.Destination = tt.destination

			response, err := h.coordinator.Fetch(ctx, request)
			if tt.expectErr {
				assert.ErrorIs(t, err, errOffline)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, SourceFallback, response.Source)
			assert.Equal(t, tt.body, string(response.Body))
		})
	}
}

func TestCoordinator_FetchWithoutWorkerGoesToNetwork(t *testing.T) {
	h := newMemoryHarness(t)

	response, err := h.coordinator.Fetch(context.Background(), Get("/games"))
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, response.Source)
}

func TestCoordinator_PushReplacesByTag(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	_, err := h.coordinator.Push(ctx, "5 new games!")
	assert.ErrorIs(t, err, ErrNoActiveWorker)

	_, err = h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)

	first, err := h.coordinator.Push(ctx, "5 new games!")
	require.NoError(t, err)
	assert.Equal(t, "5 new games!", first.Body)
	assert.Equal(t, NOTIFICATION_TAG, first.Tag)
	assert.Equal(t, NOTIFICATION_TITLE, first.Title)

	_, err = h.coordinator.Push(ctx, "Traffic Rider is back")
	require.NoError(t, err)

	visible := h.center.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Traffic Rider is back", visible[0].Body)

	empty, err := h.coordinator.Push(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_PUSH_BODY, empty.Body)
	assert.Len(t, h.sink.shown, 3)
}

func TestCoordinator_NotificationClick(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		action string
		opened string
	}{
		{name: "explore", action: ActionExplore, opened: HomePath},
		{name: "default", action: "", opened: HomePath},
		{name: "close", action: ActionClose, opened: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newMemoryHarness(t)
			_, err := h.coordinator.Register(ctx, "v1")
			require.NoError(t, err)
			_, err = h.coordinator.Push(ctx, "hello")
			require.NoError(t, err)

			result, err := h.coordinator.NotificationClick(ctx, NOTIFICATION_TAG, tt.action)
			require.NoError(t, err)
			assert.True(t, result.Closed)
			assert.Equal(t, tt.opened, result.Opened)
			assert.Empty(t, h.center.Visible())
			assert.Equal(t, []string{NOTIFICATION_TAG}, h.sink.closed)
		})
	}
}

func TestCoordinator_Sync(t *testing.T) {
	ctx := context.Background()
	h := newMemoryHarness(t)

	assert.ErrorIs(t, h.coordinator.Sync(ctx, SyncTagBackground), ErrNoActiveWorker)

	_, err := h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)

	for _, tag := range []string{SyncTagBackground, SyncTagDailyGames} {
		require.NoError(t, h.coordinator.Sync(ctx, tag))
	}

	cached, ok, err := h.storage.Match(ctx, DynamicGeneration("v1"), GamesEndpoint)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"games":[]}`, string(cached.Body))

	assert.ErrorIs(t, h.coordinator.Sync(ctx, "unknown"), ErrUnknownSyncTag)

	h.fetcher.setOffline(true)
	assert.Error(t, h.coordinator.Sync(ctx, SyncTagDailyGames))
}

func TestCoordinator_StopRejectsCalls(t *testing.T) {
	h := newMemoryHarness(t)
	h.coordinator.Stop()

	_, err := h.coordinator.Status(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestValkeyStorage(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	cache, err := database.NewCache(server.Addr(), database.WithoutClientCache)
	require.NoError(t, err)
	t.Cleanup(func() {
		db := database.NewWithClients(nil, cache)
		_ = db.Close()
	})

	h := newHarness(t, NewValkeyStorage(cache.Offline), false)
	assert.Equal(t, "valkey", h.storage.Name())

	_, err = h.coordinator.Register(ctx, "v1")
	require.NoError(t, err)
	_, err = h.coordinator.Register(ctx, "v2")
	require.NoError(t, err)

	names, err := h.coordinator.Generations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DynamicGeneration("v2"), StaticGeneration("v2")}, names)

	response, err := h.coordinator.Fetch(ctx, Get(OfflinePage))
	require.NoError(t, err)
	assert.Equal(t, SourceCache, response.Source)
	assert.True(t, response.StoredAt.Equal(fixedNow))

	assert.False(t, server.DB(database.OFFLINE_CACHE_INDEX).
		Exists(GENERATION_CACHE_PREFIX+":"+StaticGeneration("v1")))
}

func TestMemoryStorage_DeleteDropsEntries(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage(1024 * 1024)

	require.NoError(t, storage.Put(ctx, "gen", "/a", Response{Status: http.StatusOK}))
	_, ok, err := storage.Match(ctx, "gen", "/a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, storage.Delete(ctx, "gen"))
	_, ok, err = storage.Match(ctx, "gen", "/a")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := storage.Names(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPlanFor(t *testing.T) {
	tests := []struct {
		name          string
		capabilities  Capabilities
		mode          Mode
		snapshots     bool
		dailyReminder bool
	}{
		{
			name:         "full support",
			capabilities: Capabilities{ServiceWorker: true, Push: true, Origin: "https://zappygames.app"},
			mode:         ModeWorker,
		},
		{
			name:          "no push",
			capabilities:  Capabilities{ServiceWorker: true, Origin: "https://zappygames.app"},
			mode:          ModeWorker,
			dailyReminder: true,
		},
		{
			name:          "no worker",
			capabilities:  Capabilities{Push: true, Origin: "https://zappygames.app"},
			mode:          ModeForeground,
			snapshots:     true,
			dailyReminder: true,
		},
		{
			name:          "insecure origin",
			capabilities:  Capabilities{ServiceWorker: true, Push: true, Origin: "http://zappygames.app"},
			mode:          ModeForeground,
			snapshots:     true,
			dailyReminder: true,
		},
		{
			name:         "localhost is secure",
			capabilities: Capabilities{ServiceWorker: true, Push: true, Origin: "http://localhost:3000"},
			mode:         ModeWorker,
		},
		{
			name: "preview host",
			capabilities: Capabilities{
				ServiceWorker: true,
				Push:          true,
				Origin:        "https://zappy.vercel.app",
			},
			mode:          ModeWorker,
			dailyReminder: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanFor(tt.capabilities)
			assert.Equal(t, tt.mode, plan.Mode)
			assert.Equal(t, tt.snapshots, plan.Snapshots)
			assert.Equal(t, tt.dailyReminder, plan.DailyReminder)
			if tt.snapshots {
				assert.Equal(t, SNAPSHOT_KEY, plan.SnapshotKey)
			}
			if tt.dailyReminder {
				assert.Equal(t, "19:00", plan.ReminderAt)
			}
		})
	}
}

func TestIsSecureOrigin(t *testing.T) {
	tests := map[string]bool{
		"https://zappygames.app": true,
		"http://localhost:8280":  true,
		"http://127.0.0.1:8280":  true,
		"http://[::1]:8280":      true,
		"http://zappygames.app":  false,
		"":                       false,
		"not a url":              false,
	}

	for origin, expected := range tests {
		assert.Equal(t, expected, IsSecureOrigin(origin), origin)
	}
}

func TestDestinationFrom(t *testing.T) {
	tests := []struct {
		dest     string
		accept   string
		expected Destination
	}{
		{dest: "document", expected: DestinationDocument},
		{dest: "image", expected: DestinationImage},
		{dest: "script", accept: "text/html", expected: DestinationOther},
		{accept: "text/html,application/xhtml+xml", expected: DestinationDocument},
		{accept: "image/avif,image/webp", expected: DestinationImage},
		{accept: "application/json", expected: DestinationOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DestinationFrom(tt.dest, tt.accept), tt.dest+"|"+tt.accept)
	}
}

func TestReminderNotification(t *testing.T) {
	reminder := ReminderNotification(fixedNow)
	assert.Equal(t, REMINDER_TAG, reminder.Tag)
	assert.Equal(t, REMINDER_TITLE, reminder.Title)
	assert.True(t, reminder.ArrivedAt.Equal(fixedNow))
}
