package clientStateController

import (
	"context"
	"errors"
	"time"
	"zappygames/internal/catalog"
	"zappygames/internal/clientstate"
	"zappygames/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type SetFlagRequest struct {
	Value *bool `json:"value"`
}

type ClientStateControllerInterface interface {
	Get(ctx context.Context, clientID string) (clientstate.State, error)
	SetFlag(ctx context.Context, clientID, flag string, request *SetFlagRequest) (clientstate.State, error)
	SaveSnapshot(ctx context.Context, clientID string) (clientstate.Snapshot, error)
	SharedSnapshot(ctx context.Context) (*clientstate.Snapshot, error)
}

type ClientStateController struct {
	store   *clientstate.Store
	catalog *catalog.Catalog
	now     func() time.Time
	log     logger.Logger
}

func New(store *clientstate.Store, games *catalog.Catalog) ClientStateControllerInterface {
	return &ClientStateController{
		store:   store,
		catalog: games,
		now:     time.Now,
		log:     logger.New("clientStateController"),
	}
}

func (c *ClientStateController) Get(ctx context.Context, clientID string) (clientstate.State, error) {
	state, err := c.store.Get(ctx, clientID)
	return state, c.classify(ctx, "Get", err)
}

// SetFlag records a dismissed prompt. A missing value means true.
func (c *ClientStateController) SetFlag(
	ctx context.Context,
	clientID, flag string,
	request *SetFlagRequest,
) (clientstate.State, error) {
	value := true
	if request.Value != nil {
		value = *request.Value
	}

	state, err := c.store.SetFlag(ctx, clientID, flag, value)
	return state, c.classify(ctx, "SetFlag", err)
}

// SaveSnapshot copies the current catalog into the client's snapshot.
func (c *ClientStateController) SaveSnapshot(ctx context.Context, clientID string) (clientstate.Snapshot, error) {
	snapshot, err := c.store.SaveSnapshot(ctx, clientID, c.catalog.All(), c.now())
	return snapshot, c.classify(ctx, "SaveSnapshot", err)
}

// SharedSnapshot returns the periodically refreshed snapshot, or a fresh
// one when the job has not run yet.
func (c *ClientStateController) SharedSnapshot(ctx context.Context) (*clientstate.Snapshot, error) {
	snapshot, err := c.store.GetSharedSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		return snapshot, nil
	}

	saved, err := c.store.SaveSharedSnapshot(ctx, c.catalog.All(), c.now())
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *ClientStateController) classify(ctx context.Context, function string, err error) error {
	if err == nil {
		return nil
	}

	log := c.log.TraceFromContext(ctx).Function(function)
	switch {
	case errors.Is(err, clientstate.ErrInvalidClientID):
		return log.ErrorWithType(types.ErrValidation, "invalid client id")
	case errors.Is(err, clientstate.ErrUnknownFlag):
		return log.ErrorWithType(types.ErrNotFound, "unknown flag")
	}
	return err
}
