package services

import (
	"context"
	"fmt"
	"net/url"
	"zappygames/config"
	"zappygames/internal/database"
	"zappygames/internal/offline"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/prometheus/client_golang/prometheus"
)

type OfflineService struct {
	Coordinator   *offline.Coordinator
	Notifications *offline.NotificationCenter
	Metrics       *offline.Metrics
	origin        *url.URL
	config        config.Config
	log           logger.Logger
}

// NewOfflineService wires the coordinator to valkey when the cache is
// configured and to an in-process store otherwise. reg may be nil.
func NewOfflineService(
	db database.DB,
	cfg config.Config,
	reg prometheus.Registerer,
) (*OfflineService, error) {
	log := logger.New("offlineService")

	origin, err := OriginURL(cfg)
	if err != nil {
		return nil, log.Function("NewOfflineService").Err("invalid offline origin", err)
	}

	var storage offline.Storage
	if db.HasCache() {
		storage = offline.NewValkeyStorage(db.Cache.Offline)
	} else {
		storage = offline.NewMemoryStorage(cfg.OfflineMemoryCacheMB * 1024 * 1024)
	}

	notifications := offline.NewNotificationCenter()
	metrics := offline.NewMetrics(reg)
	coordinator := offline.NewCoordinator(
		storage,
		offline.NewHTTPFetcher(origin, nil),
		notifications,
		metrics,
		offline.Options{Origin: origin, SkipWaiting: cfg.OfflineSkipWaiting},
	)

	log.Function("NewOfflineService").Info("Offline coordinator ready",
		"origin", origin.String(),
		"storage", storage.Name(),
		"version", cfg.OfflineCacheVersion,
	)

	return &OfflineService{
		Coordinator:   coordinator,
		Notifications: notifications,
		Metrics:       metrics,
		origin:        origin,
		config:        cfg,
		log:           log,
	}, nil
}

// OriginURL is the origin the worker fronts: OFFLINE_ORIGIN_URL, or this
// server on localhost.
func OriginURL(cfg config.Config) (*url.URL, error) {
	raw := cfg.OfflineOriginURL
	if raw == "" {
		raw = fmt.Sprintf("http://localhost:%d", cfg.ServerPort)
	}

	origin, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("origin %q must be absolute", raw)
	}
	return origin, nil
}

func (s *OfflineService) Origin() *url.URL {
	return s.origin
}

// Enabled reports whether this deployment runs the worker at all.
func (s *OfflineService) Enabled() bool {
	return s.config.OfflineServiceWorker
}

// RegisterCurrent installs the configured cache version. It runs in the
// background after the server starts listening, since install fetches the
// shell from the origin.
func (s *OfflineService) RegisterCurrent(ctx context.Context) error {
	log := s.log.Function("RegisterCurrent")

	if !s.Enabled() {
		log.Info("Offline worker disabled, clients use the foreground fallback")
		return nil
	}

	status, err := s.Coordinator.Register(ctx, s.config.OfflineCacheVersion)
	if err != nil {
		return log.Err("failed to register offline worker", err)
	}

	if status.Active != nil {
		log.Info("Offline worker active", "version", status.Active.Version)
	}
	return nil
}

// Plan picks the client strategy, with the deployment switches applied on
// top of what the client reported.
func (s *OfflineService) Plan(capabilities offline.Capabilities) offline.Plan {
	if !s.config.OfflineServiceWorker {
		capabilities.ServiceWorker = false
	}
	if !s.config.OfflinePush {
		capabilities.Push = false
	}
	if capabilities.Origin == "" {
		capabilities.Origin = s.origin.String()
	}
	return offline.PlanFor(capabilities)
}

func (s *OfflineService) Close() {
	s.Coordinator.Stop()
}
