package pushController

import (
	"context"
	"strings"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"
	"zappygames/internal/repositories"
	"zappygames/internal/services"
	"zappygames/internal/session"
	"zappygames/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const MaxPushPayloadLength = 4096

type SubscribeRequest struct {
	Endpoint string         `json:"endpoint" validate:"required,url"`
	Keys     map[string]any `json:"keys"`
}

type SendRequest struct {
	Body string `json:"body"`
}

type PushControllerInterface interface {
	Subscribe(ctx context.Context, viewer session.Snapshot, request *SubscribeRequest) (*PushSubscription, error)
	Send(ctx context.Context, request *SendRequest) error
}

type PushController struct {
	subscriptionRepo repositories.PushSubscriptionRepository
	pushService      *services.PushService
	gateway          gateway.Gateway
	validate         *validator.Validate
	log              logger.Logger
}

func New(
	repos repositories.Repository,
	service services.Service,
	gw gateway.Gateway,
) PushControllerInterface {
	return &PushController{
		subscriptionRepo: repos.PushSubscription,
		pushService:      service.Push,
		gateway:          gw,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		log:              logger.New("pushController"),
	}
}

// Subscribe stores a browser push subscription, owned by the viewer when
// signed in.
func (c *PushController) Subscribe(
	ctx context.Context,
	viewer session.Snapshot,
	request *SubscribeRequest,
) (*PushSubscription, error) {
	log := c.log.TraceFromContext(ctx).Function("Subscribe")

	if err := c.validate.Struct(request); err != nil {
		return nil, log.ErrorWithType(types.ErrValidation, "a valid endpoint is required", "error", err)
	}
	if !c.gateway.IsConfigured() {
		return nil, log.ErrorWithType(types.ErrPreviewMode, types.PushPreviewMessage)
	}

	subscription := &PushSubscription{
		Endpoint: request.Endpoint,
		Keys:     datatypes.JSONMap(request.Keys),
	}
	if viewer.Authenticated {
		userID := viewer.UserID()
		subscription.UserID = &userID
	}

	if err := c.subscriptionRepo.Save(ctx, subscription); err != nil {
		return nil, err
	}

	log.Info("Push subscription saved", "endpoint", subscription.Endpoint)
	return subscription, nil
}

// Send fans a push payload out to the worker on every instance.
func (c *PushController) Send(ctx context.Context, request *SendRequest) error {
	log := c.log.TraceFromContext(ctx).Function("Send")

	body := strings.TrimSpace(request.Body)
	if len(body) > MaxPushPayloadLength {
		return log.ErrorWithType(types.ErrValidation, "push body is too long",
			"length", len(body), "max", MaxPushPayloadLength)
	}

	if err := c.pushService.Send(ctx, body); err != nil {
		return log.Err("failed to publish push", err)
	}
	return nil
}
