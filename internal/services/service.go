package services

import (
	"time"
	"zappygames/config"
	"zappygames/internal/database"
	"zappygames/internal/events"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/prometheus/client_golang/prometheus"
)

type Service struct {
	Scheduler *SchedulerService
	Offline   *OfflineService
	Push      *PushService
}

func New(
	db database.DB,
	cfg config.Config,
	eventBus *events.EventBus,
	reg prometheus.Registerer,
) (Service, error) {
	log := logger.New("services").Function("New")

	location, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		return Service{}, log.Err("invalid scheduler timezone", err, "timezone", cfg.SchedulerTimezone)
	}

	offlineService, err := NewOfflineService(db, cfg, reg)
	if err != nil {
		return Service{}, err
	}

	pushService, err := NewPushService(eventBus, offlineService)
	if err != nil {
		offlineService.Close()
		return Service{}, err
	}

	return Service{
		Scheduler: NewSchedulerService(location),
		Offline:   offlineService,
		Push:      pushService,
	}, nil
}

func (s Service) Close() {
	if s.Offline != nil {
		s.Offline.Close()
	}
}
