package jobs

import (
	"context"
	"errors"
	"zappygames/internal/offline"
	"zappygames/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// PeriodicSyncJob fires the daily games sync on the active worker.
type PeriodicSyncJob struct {
	coordinator *offline.Coordinator
	log         logger.Logger
	schedule    services.Schedule
}

func NewPeriodicSyncJob(
	coordinator *offline.Coordinator,
	schedule services.Schedule,
) *PeriodicSyncJob {
	return &PeriodicSyncJob{
		coordinator: coordinator,
		log:         logger.New("periodicSyncJob"),
		schedule:    schedule,
	}
}

func (j *PeriodicSyncJob) Name() string {
	return "PeriodicGamesSync"
}

func (j *PeriodicSyncJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	err := j.coordinator.Sync(ctx, offline.SyncTagDailyGames)
	if errors.Is(err, offline.ErrNoActiveWorker) {
		log.Info("No active worker, skipping periodic sync")
		return nil
	}
	if err != nil {
		return log.Err("periodic sync failed", err)
	}

	return nil
}

func (j *PeriodicSyncJob) Schedule() services.Schedule {
	return j.schedule
}
