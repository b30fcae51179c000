package app

import (
	"context"
	"zappygames/config"
	"zappygames/internal/catalog"
	"zappygames/internal/clientstate"
	"zappygames/internal/controllers"
	"zappygames/internal/database"
	"zappygames/internal/events"
	"zappygames/internal/gateway"
	"zappygames/internal/handlers/middleware"
	"zappygames/internal/jobs"
	"zappygames/internal/repositories"
	"zappygames/internal/services"
	"zappygames/internal/session"
	"zappygames/internal/websockets"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	Database    database.DB
	Gateway     gateway.Gateway
	Sessions    *session.Service
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Catalog     *catalog.Catalog
	ClientState *clientstate.Store
	Metrics     *prometheus.Registry

	Services     services.Service
	Repositories repositories.Repository
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	return NewWithDatabase(config, db)
}

// NewWithDatabase wires the app around already opened stores. A DB without
// SQL runs the gateway in preview mode; without a cache every store falls
// back to process memory.
func NewWithDatabase(config config.Config, db database.DB) (*App, error) {
	log := logger.New("app").Function("NewWithDatabase")

	games, err := catalog.Load()
	if err != nil {
		return &App{}, log.Err("failed to load catalog", err)
	}

	var (
		registry   *prometheus.Registry
		registerer prometheus.Registerer
	)
	if config.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		registerer = registry
	}

	eventBus := events.New(db.Cache.Events)
	gw := gateway.New(db, config)
	sessions := session.NewService(gw)
	repos := repositories.New(db, gw)

	service, err := services.New(db, config, eventBus, registerer)
	if err != nil {
		_ = eventBus.Close()
		return &App{}, log.Err("failed to create services", err)
	}

	var backend clientstate.Backend
	if db.HasCache() {
		backend = clientstate.NewValkeyBackend(db.Cache.General)
	} else {
		backend = clientstate.NewMemoryBackend(config.OfflineMemoryCacheMB * 1024 * 1024)
	}
	store := clientstate.New(backend)

	websocket := websockets.New(sessions, service.Offline)

	if err := jobs.RegisterAllJobs(service.Scheduler, config, service, games, store); err != nil {
		websocket.Close()
		service.Close()
		_ = eventBus.Close()
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:     db,
		Gateway:      gw,
		Sessions:     sessions,
		Middleware:   middleware.New(sessions, gw, config),
		Websocket:    websocket,
		EventBus:     eventBus,
		Config:       config,
		Catalog:      games,
		ClientState:  store,
		Metrics:      registry,
		Services:     service,
		Repositories: repos,
		Controllers:  controllers.New(service, repos, gw, sessions, games, store, config),
	}

	if err := app.validate(); err != nil {
		_ = app.Close()
		return &App{}, log.Err("failed to validate app", err)
	}

	log.Info("App ready",
		"configured", gw.IsConfigured(),
		"games", games.Len(),
		"clientState", store.Backend(),
		"distributedEvents", eventBus.Distributed(),
	)
	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Gateway,
		a.Sessions,
		a.Websocket,
		a.EventBus,
		a.Catalog,
		a.ClientState,
		a.Services.Scheduler,
		a.Services.Offline,
		a.Services.Push,
		a.Controllers.Games,
		a.Controllers.Comments,
		a.Controllers.Auth,
		a.Controllers.User,
		a.Controllers.Push,
		a.Controllers.Worker,
		a.Controllers.ClientState,
		a.Repositories.User,
		a.Repositories.Like,
		a.Repositories.RecentPlay,
		a.Repositories.Comment,
		a.Repositories.PushSubscription,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

// StartBackground registers the configured worker version and starts the
// scheduler. Neither blocks startup on failure.
func (a *App) StartBackground(ctx context.Context) {
	log := logger.New("app").TraceFromContext(ctx).Function("StartBackground")

	if a.Services.Offline.Enabled() {
		go func() {
			if err := a.Services.Offline.RegisterCurrent(ctx); err != nil {
				log.Er("failed to register offline worker", err)
			}
		}()
	}

	if a.Config.SchedulerEnabled {
		if err := a.Services.Scheduler.Start(ctx); err != nil {
			log.Er("failed to start scheduler", err)
		}
	}
}

func (a *App) Close() (err error) {
	if a.Websocket != nil {
		a.Websocket.Close()
	}

	if a.Services.Scheduler != nil && a.Services.Scheduler.IsRunning() {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	a.Services.Close()

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
