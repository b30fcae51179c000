package offline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"golang.org/x/sync/errgroup"
)

const INSTALL_CONCURRENCY = 4

type State int

const (
	StateUninstalled State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActive
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateRedundant:
		return "redundant"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Worker is one version of the offline worker. Its state field is owned by
// the Coordinator; the event handlers are safe for concurrent use.
type Worker struct {
	version       string
	static        string
	dynamic       string
	origin        *url.URL
	storage       Storage
	fetcher       Fetcher
	notifications *NotificationCenter
	metrics       *Metrics
	log           logger.Logger
	now           func() time.Time

	mu    sync.RWMutex
	state State
}

func newWorker(version string, deps dependencies) *Worker {
	return &Worker{
		version:       version,
		static:        StaticGeneration(version),
		dynamic:       DynamicGeneration(version),
		origin:        deps.origin,
		storage:       deps.storage,
		fetcher:       deps.fetcher,
		notifications: deps.notifications,
		metrics:       deps.metrics,
		log:           logger.New("offline").With("version", version),
		now:           deps.now,
	}
}

func (w *Worker) Version() string { return w.version }

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) setState(state State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = state
}

func (w *Worker) Generations() []string {
	return []string{w.static, w.dynamic}
}

// Install precaches the shell into the static generation. Assets that fail
// are logged and skipped; the returned slice names them.
func (w *Worker) Install(ctx context.Context) ([]string, error) {
	log := w.log.TraceFromContext(ctx).Function("Install")

	if err := w.storage.Open(ctx, w.static); err != nil {
		return nil, log.Err("failed to open static generation", err, "generation", w.static)
	}

	var (
		mu     sync.Mutex
		failed []string
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(INSTALL_CONCURRENCY)

	for _, asset := range ShellAssets {
		group.Go(func() error {
			if err := w.precache(groupCtx, asset); err != nil {
				log.Warn("Shell asset not cached", "asset", asset, "error", err)
				w.metrics.AssetFailures.Inc()
				mu.Lock()
				failed = append(failed, asset)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = group.Wait()

	log.Info("Worker installed",
		"cached", len(ShellAssets)-len(failed),
		"failed", len(failed),
	)
	return failed, nil
}

func (w *Worker) precache(ctx context.Context, asset string) error {
	response, err := w.fetcher.Fetch(ctx, Get(asset))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssetCache, err)
	}
	if !response.OK() {
		return fmt.Errorf("%w: status %d", ErrAssetCache, response.Status)
	}

	response.StoredAt = w.now()
	return w.storage.Put(ctx, w.static, asset, response)
}

// Activate deletes every generation that is not this worker's static or
// dynamic one, or listed in keep, and returns the deleted names.
func (w *Worker) Activate(ctx context.Context, keep ...string) ([]string, error) {
	log := w.log.TraceFromContext(ctx).Function("Activate")

	names, err := w.storage.Names(ctx)
	if err != nil {
		return nil, log.Err("failed to list cache generations", err)
	}

	deleted := make([]string, 0, len(names))
	for _, name := range names {
		if name == w.static || name == w.dynamic || slices.Contains(keep, name) {
			continue
		}
		if err := w.storage.Delete(ctx, name); err != nil {
			return deleted, log.Err("failed to delete cache generation", err, "generation", name)
		}
		log.Info("Deleted old cache generation", "generation", name)
		deleted = append(deleted, name)
	}

	if err := w.storage.Open(ctx, w.dynamic); err != nil {
		return deleted, log.Err("failed to open dynamic generation", err, "generation", w.dynamic)
	}

	return deleted, nil
}

// HandleFetch answers an intercepted request. Only same-origin GETs are
// served through the caches; everything else goes straight to the network.
func (w *Worker) HandleFetch(ctx context.Context, request Request) (Response, error) {
	log := w.log.TraceFromContext(ctx).Function("HandleFetch")

	target, err := w.origin.Parse(request.URL)
	if err != nil {
		return Response{}, fmt.Errorf("invalid request url %q: %w", request.URL, err)
	}

	if request.Method != http.MethodGet || !sameOrigin(w.origin, target) {
		return w.fetcher.Fetch(ctx, request)
	}

	key := requestKey(target)
	if cached, ok := w.match(ctx, key); ok {
		w.metrics.CacheHits.Inc()
		return cached, nil
	}
	w.metrics.CacheMisses.Inc()

	request.URL = key
	response, fetchErr := w.fetcher.Fetch(ctx, request)
	if fetchErr == nil {
		if response.OK() {
			stored := response
			stored.StoredAt = w.now()
			if err := w.storage.Put(ctx, w.dynamic, key, stored); err != nil {
				log.Warn("failed to store dynamic response", "key", key, "error", err)
			}
		}
		return response, nil
	}

	var fallback string
	switch request.Destination {
	case DestinationDocument:
		fallback = OfflinePage
	case DestinationImage:
		fallback = PlaceholderIcon
	default:
		return Response{}, fetchErr
	}

	cached, ok := w.match(ctx, fallback)
	if !ok {
		return Response{}, fetchErr
	}

	log.Debug("Network failed, serving fallback", "key", key, "fallback", fallback)
	w.metrics.NetworkFallbacks.WithLabelValues(string(request.Destination)).Inc()
	cached.Source = SourceFallback
	return cached, nil
}

func (w *Worker) match(ctx context.Context, key string) (Response, bool) {
	for _, generation := range w.Generations() {
		response, ok, err := w.storage.Match(ctx, generation, key)
		if err != nil {
			w.log.Function("match").Warn("cache lookup failed",
				"generation", generation, "key", key, "error", err)
			continue
		}
		if ok {
			response.Source = SourceCache
			return response, true
		}
	}
	return Response{}, false
}

// HandlePush displays the notification for a push payload.
func (w *Worker) HandlePush(payload string) Notification {
	notification := PushNotification(payload, w.now())
	w.notifications.Show(notification)
	w.metrics.NotificationsShown.WithLabelValues(notification.Tag).Inc()
	return notification
}

type ClickResult struct {
	Tag    string `json:"tag"`
	Action string `json:"action"`
	Closed bool   `json:"closed"`
	Opened string `json:"opened,omitempty"`
}

// HandleNotificationClick closes the notification. The close action only
// dismisses; explore and the default action open the home view.
func (w *Worker) HandleNotificationClick(tag, action string) ClickResult {
	_, closed := w.notifications.Close(tag)
	result := ClickResult{Tag: tag, Action: action, Closed: closed}

	if action == ActionClose {
		return result
	}

	w.notifications.Open(HomePath)
	result.Opened = HomePath
	return result
}

// HandleSync refreshes the game listing in the dynamic generation.
func (w *Worker) HandleSync(ctx context.Context, tag string) error {
	log := w.log.TraceFromContext(ctx).Function("HandleSync")

	if tag != SyncTagBackground && tag != SyncTagDailyGames {
		return fmt.Errorf("%w: %s", ErrUnknownSyncTag, tag)
	}

	response, err := w.fetcher.Fetch(ctx, Get(GamesEndpoint))
	if err != nil {
		return log.Err("failed to refresh game data", err, "tag", tag)
	}
	if !response.OK() {
		return log.Error("game data refresh returned an error status",
			"tag", tag, "status", response.Status)
	}

	response.StoredAt = w.now()
	if err := w.storage.Put(ctx, w.dynamic, GamesEndpoint, response); err != nil {
		return log.Err("failed to store game data", err, "tag", tag)
	}

	log.Info("Game data updated in background", "tag", tag)
	return nil
}

func sameOrigin(origin, target *url.URL) bool {
	return origin.Scheme == target.Scheme && origin.Host == target.Host
}
