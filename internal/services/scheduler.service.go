package services

import (
	"context"
	"sync"
	"time"
	"zappygames/internal/offline"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-co-op/gocron"
)

type Schedule int

const (
	EveryThirtyMinutes Schedule = iota
	DailyReminder               // offline.ReminderTimeOfDay every day
	Daily                       // 03:00 every day
)

func (s Schedule) String() string {
	switch s {
	case EveryThirtyMinutes:
		return "every 30 minutes"
	case DailyReminder:
		return "daily at " + offline.ReminderTimeOfDay
	case Daily:
		return "daily at 03:00"
	}
	return "unknown"
}

// Job represents a scheduled task that can be executed by the scheduler
type Job interface {
	Name() string
	Execute(ctx context.Context) error
	Schedule() Schedule
}

type SchedulerService struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	log       logger.Logger
	started   bool
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewSchedulerService(location *time.Location) *SchedulerService {
	if location == nil {
		location = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SchedulerService{
		scheduler: gocron.NewScheduler(location),
		jobs:      make([]Job, 0),
		log:       logger.New("scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *SchedulerService) executeJob(job Job, log logger.Logger) {
	log.Info("Executing scheduled job", "job", job.Name())
	if err := job.Execute(s.ctx); err != nil {
		_ = log.Err("Job execution failed", err, "job", job.Name())
	} else {
		log.Info("Job execution completed successfully", "job", job.Name())
	}
}

// AddJob registers a job with the scheduler
func (s *SchedulerService) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("AddJob")

	run := func() { s.executeJob(job, log) }

	var err error
	switch job.Schedule() {
	case EveryThirtyMinutes:
		_, err = s.scheduler.Every(30).Minutes().Do(run)
	case DailyReminder:
		_, err = s.scheduler.Every(1).Day().At(offline.ReminderTimeOfDay).Do(run)
	case Daily:
		_, err = s.scheduler.Every(1).Day().At("03:00").Do(run)
	default:
		return log.Error("unknown job schedule", "job", job.Name(), "schedule", int(job.Schedule()))
	}

	if err != nil {
		return log.Err("failed to register job with scheduler", err, "job", job.Name())
	}

	s.jobs = append(s.jobs, job)
	log.Info("Job registered successfully", "job", job.Name(), "schedule", job.Schedule().String())

	return nil
}

func (s *SchedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("Start")

	if s.started {
		log.Info("Scheduler already started")
		return nil
	}

	if len(s.jobs) == 0 {
		log.Info("No jobs registered, scheduler will not start")
		return nil
	}

	log.Info("Starting scheduler", "jobCount", len(s.jobs))
	s.scheduler.StartAsync()
	s.started = true

	for _, job := range s.scheduler.Jobs() {
		log.Info("Job scheduled", "nextRun", job.NextRun())
	}

	return nil
}

// Stop cancels running jobs and abandons pending timers.
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Function("Stop").Info("Stopping scheduler")
	s.cancel()
	s.scheduler.Stop()
	s.started = false

	return nil
}

func (s *SchedulerService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *SchedulerService) GetJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// GetNextRunTime returns the earliest pending run, or nil when stopped.
func (s *SchedulerService) GetNextRunTime() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || len(s.scheduler.Jobs()) == 0 {
		return nil
	}

	var next time.Time
	for _, job := range s.scheduler.Jobs() {
		if run := job.NextRun(); next.IsZero() || run.Before(next) {
			next = run
		}
	}
	return &next
}
