package jobs

import (
	"context"
	"time"
	"zappygames/internal/offline"
	"zappygames/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// DailyReminderJob shows the locally scheduled reminder. Tabs that run
// the worker with push ignore it.
type DailyReminderJob struct {
	notifications *offline.NotificationCenter
	metrics       *offline.Metrics
	log           logger.Logger
	schedule      services.Schedule
	now           func() time.Time
}

func NewDailyReminderJob(
	notifications *offline.NotificationCenter,
	metrics *offline.Metrics,
	schedule services.Schedule,
) *DailyReminderJob {
	return &DailyReminderJob{
		notifications: notifications,
		metrics:       metrics,
		log:           logger.New("dailyReminderJob"),
		schedule:      schedule,
		now:           time.Now,
	}
}

func (j *DailyReminderJob) Name() string {
	return "DailyReminder"
}

func (j *DailyReminderJob) Execute(ctx context.Context) error {
	reminder := offline.ReminderNotification(j.now())
	j.notifications.Show(reminder)
	j.metrics.NotificationsShown.WithLabelValues(reminder.Tag).Inc()

	j.log.Function("Execute").Info("Daily reminder shown")
	return nil
}

func (j *DailyReminderJob) Schedule() services.Schedule {
	return j.schedule
}
