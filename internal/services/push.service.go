package services

import (
	"context"
	"errors"
	"zappygames/internal/events"
	"zappygames/internal/offline"

	logger "github.com/Bparsons0904/goLogger"
)

// PushService turns push payloads into worker push events on every
// instance.
type PushService struct {
	eventBus *events.EventBus
	offline  *OfflineService
	log      logger.Logger
}

func NewPushService(eventBus *events.EventBus, offlineService *OfflineService) (*PushService, error) {
	s := &PushService{
		eventBus: eventBus,
		offline:  offlineService,
		log:      logger.New("pushService"),
	}

	if err := eventBus.Subscribe(events.PUSH_CHANNEL, s.receive); err != nil {
		return nil, s.log.Function("NewPushService").Err("failed to subscribe to push channel", err)
	}

	return s, nil
}

func (s *PushService) Send(ctx context.Context, payload string) error {
	return s.eventBus.PublishPush(ctx, payload)
}

func (s *PushService) receive(event events.Event) error {
	log := s.log.Function("receive")

	notification, err := s.offline.Coordinator.Push(context.Background(), events.PushPayload(event))
	if errors.Is(err, offline.ErrNoActiveWorker) {
		log.Info("Push dropped, no active worker on this instance", "eventID", event.ID)
		return nil
	}
	if err != nil {
		return log.Err("failed to deliver push", err, "eventID", event.ID)
	}

	log.Info("Push delivered", "eventID", event.ID, "tag", notification.Tag)
	return nil
}
