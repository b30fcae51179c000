package repositories

import (
	"context"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

type PushSubscriptionRepository interface {
	Save(ctx context.Context, subscription *PushSubscription) error
	List(ctx context.Context) ([]PushSubscription, error)
}

type pushSubscriptionRepository struct {
	gateway gateway.Gateway
	log     logger.Logger
}

func NewPushSubscriptionRepository(gw gateway.Gateway) PushSubscriptionRepository {
	return &pushSubscriptionRepository{
		gateway: gw,
		log:     logger.New("pushSubscriptionRepository"),
	}
}

// Save registers the endpoint, replacing the keys and owner of an endpoint
// that was seen before.
func (r *pushSubscriptionRepository) Save(ctx context.Context, subscription *PushSubscription) error {
	log := r.log.Function("Save")

	if err := r.gateway.PushSubscriptions().Upsert(ctx, subscription, "endpoint"); err != nil {
		return log.Err("failed to save push subscription", err, "endpoint", subscription.Endpoint)
	}

	return nil
}

func (r *pushSubscriptionRepository) List(ctx context.Context) ([]PushSubscription, error) {
	log := r.log.Function("List")

	subscriptions, err := r.gateway.PushSubscriptions().Select(ctx,
		gateway.Query{}.OrderBy("created_at", false))
	if err != nil {
		return nil, log.Err("failed to list push subscriptions", err)
	}

	return subscriptions, nil
}
