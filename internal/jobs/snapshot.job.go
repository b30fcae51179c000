package jobs

import (
	"context"
	"time"
	"zappygames/internal/catalog"
	"zappygames/internal/clientstate"
	"zappygames/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// SnapshotJob refreshes the catalog snapshot that foreground fallback
// clients read.
type SnapshotJob struct {
	catalog  *catalog.Catalog
	store    *clientstate.Store
	log      logger.Logger
	schedule services.Schedule
	now      func() time.Time
}

func NewSnapshotJob(
	games *catalog.Catalog,
	store *clientstate.Store,
	schedule services.Schedule,
) *SnapshotJob {
	return &SnapshotJob{
		catalog:  games,
		store:    store,
		log:      logger.New("snapshotJob"),
		schedule: schedule,
		now:      time.Now,
	}
}

func (j *SnapshotJob) Name() string {
	return "CatalogSnapshot"
}

func (j *SnapshotJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	snapshot, err := j.store.SaveSharedSnapshot(ctx, j.catalog.All(), j.now())
	if err != nil {
		return log.Err("failed to refresh catalog snapshot", err)
	}

	log.Debug("Catalog snapshot refreshed", "games", len(snapshot.Games))
	return nil
}

func (j *SnapshotJob) Schedule() services.Schedule {
	return j.schedule
}
