package jobs

import (
	"zappygames/config"
	"zappygames/internal/catalog"
	"zappygames/internal/clientstate"
	"zappygames/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// RegisterAllJobs registers the offline sync and foreground fallback jobs.
func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	service services.Service,
	games *catalog.Catalog,
	store *clientstate.Store,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	jobs := []services.Job{
		NewSnapshotJob(games, store, services.EveryThirtyMinutes),
		NewDailyReminderJob(
			service.Offline.Notifications,
			service.Offline.Metrics,
			services.DailyReminder,
		),
	}
	if config.OfflineServiceWorker {
		jobs = append(jobs, NewPeriodicSyncJob(service.Offline.Coordinator, services.Daily))
	}

	for _, job := range jobs {
		if err := schedulerService.AddJob(job); err != nil {
			return log.Err("failed to register job", err, "job", job.Name())
		}
	}

	log.Info("Registered jobs", "count", len(jobs))
	return nil
}
