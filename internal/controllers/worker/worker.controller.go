package workerController

import (
	"context"
	"errors"
	"strings"
	"zappygames/internal/offline"
	"zappygames/internal/services"
	"zappygames/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-playground/validator/v10"
)

type RegisterRequest struct {
	Version string `json:"version" validate:"omitempty,max=64,printascii"`
}

type InstallRequest struct {
	Version string `json:"version" validate:"required,max=64,printascii"`
}

type SyncRequest struct {
	Tag string `json:"tag"`
}

type ClickRequest struct {
	Action string `json:"action"`
}

type WorkerControllerInterface interface {
	Status(ctx context.Context) (offline.Status, error)
	Register(ctx context.Context, request *RegisterRequest) (offline.Status, error)
	Install(ctx context.Context, request *InstallRequest) (offline.Status, error)
	Sync(ctx context.Context, request *SyncRequest) error
	NotificationClick(ctx context.Context, tag string, request *ClickRequest) (offline.ClickResult, error)
	Plan(ctx context.Context, capabilities *offline.Capabilities) (offline.Plan, error)
	Fetch(ctx context.Context, request offline.Request) (offline.Response, error)
	Notifications() []offline.Notification
}

type WorkerController struct {
	offline        *services.OfflineService
	defaultVersion string
	validate       *validator.Validate
	log            logger.Logger
}

func New(service services.Service, defaultVersion string) WorkerControllerInterface {
	return &WorkerController{
		offline:        service.Offline,
		defaultVersion: defaultVersion,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		log:            logger.New("workerController"),
	}
}

func (c *WorkerController) Status(ctx context.Context) (offline.Status, error) {
	return c.offline.Coordinator.Status(ctx)
}

// Register installs the configured worker version. Clients may name it but
// never another one; rollouts go through Install.
func (c *WorkerController) Register(ctx context.Context, request *RegisterRequest) (offline.Status, error) {
	log := c.log.TraceFromContext(ctx).Function("Register")

	if err := c.validate.Struct(request); err != nil {
		return offline.Status{}, log.ErrorWithType(types.ErrValidation, "invalid worker version", "error", err)
	}

	version := strings.TrimSpace(request.Version)
	if version != "" && version != c.defaultVersion {
		return offline.Status{}, log.ErrorWithType(types.ErrForbidden,
			"only the configured worker version can be registered", "version", version)
	}

	return c.offline.Coordinator.Register(ctx, c.defaultVersion)
}

// Install registers an explicit worker version. The router only exposes it
// to operators.
func (c *WorkerController) Install(ctx context.Context, request *InstallRequest) (offline.Status, error) {
	log := c.log.TraceFromContext(ctx).Function("Install")

	request.Version = strings.TrimSpace(request.Version)
	if err := c.validate.Struct(request); err != nil {
		return offline.Status{}, log.ErrorWithType(types.ErrValidation, "invalid worker version", "error", err)
	}

	log.Info("Installing worker version", "version", request.Version)
	return c.offline.Coordinator.Register(ctx, request.Version)
}

func (c *WorkerController) Sync(ctx context.Context, request *SyncRequest) error {
	log := c.log.TraceFromContext(ctx).Function("Sync")

	tag := request.Tag
	if tag == "" {
		tag = offline.SyncTagBackground
	}

	err := c.offline.Coordinator.Sync(ctx, tag)
	switch {
	case errors.Is(err, offline.ErrUnknownSyncTag):
		return log.ErrorWithType(types.ErrValidation, "unknown sync tag", "tag", tag)
	case errors.Is(err, offline.ErrNoActiveWorker):
		return log.ErrorWithType(types.ErrConflict, "no active worker", "tag", tag)
	}
	return err
}

func (c *WorkerController) NotificationClick(
	ctx context.Context,
	tag string,
	request *ClickRequest,
) (offline.ClickResult, error) {
	log := c.log.TraceFromContext(ctx).Function("NotificationClick")

	result, err := c.offline.Coordinator.NotificationClick(ctx, tag, request.Action)
	if errors.Is(err, offline.ErrNoActiveWorker) {
		return result, log.ErrorWithType(types.ErrConflict, "no active worker", "tag", tag)
	}
	return result, err
}

func (c *WorkerController) Plan(ctx context.Context, capabilities *offline.Capabilities) (offline.Plan, error) {
	log := c.log.TraceFromContext(ctx).Function("Plan")

	if err := c.validate.Struct(capabilities); err != nil {
		return offline.Plan{}, log.ErrorWithType(types.ErrValidation, "origin must be a url", "error", err)
	}
	return c.offline.Plan(*capabilities), nil
}

// Fetch is the intercept in front of the origin.
func (c *WorkerController) Fetch(ctx context.Context, request offline.Request) (offline.Response, error) {
	return c.offline.Coordinator.Fetch(ctx, request)
}

func (c *WorkerController) Notifications() []offline.Notification {
	return c.offline.Notifications.Visible()
}
