package userController

import (
	"context"
	. "zappygames/internal/models"
	"zappygames/internal/repositories"
	"zappygames/internal/session"
	"zappygames/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type UpdateNotificationsRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type UserControllerInterface interface {
	Me(ctx context.Context, state *session.State) (*UserProfile, error)
	UpdateNotifications(
		ctx context.Context,
		state *session.State,
		request *UpdateNotificationsRequest,
	) (*UserProfile, error)
}

type UserController struct {
	userRepo repositories.UserRepository
	log      logger.Logger
}

func New(repos repositories.Repository) UserControllerInterface {
	return &UserController{
		userRepo: repos.User,
		log:      logger.New("userController"),
	}
}

// Me returns the signed in user's profile.
func (c *UserController) Me(ctx context.Context, state *session.State) (*UserProfile, error) {
	log := c.log.TraceFromContext(ctx).Function("Me")

	current := state.Current()
	if !current.Authenticated {
		return nil, log.ErrorWithType(types.ErrUnauthorized, types.AuthRequiredMessage)
	}

	user, err := c.userRepo.GetByID(ctx, current.UserID())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, log.ErrorWithType(types.ErrNotFound, "profile not found", "userID", current.UserID())
	}

	profile := user.ToProfile()
	return &profile, nil
}

func (c *UserController) UpdateNotifications(
	ctx context.Context,
	state *session.State,
	request *UpdateNotificationsRequest,
) (*UserProfile, error) {
	log := c.log.TraceFromContext(ctx).Function("UpdateNotifications")

	if request.Enabled == nil {
		return nil, log.ErrorWithType(types.ErrValidation, "enabled is required")
	}
	if !state.Current().Authenticated {
		return nil, log.ErrorWithType(types.ErrUnauthorized, types.AuthRequiredMessage)
	}

	if err := state.UpdateNotificationSettings(ctx, *request.Enabled); err != nil {
		return nil, log.Err("failed to update notification settings", err)
	}
	c.userRepo.ClearCache(ctx, state.Current().UserID())

	return c.Me(ctx, state)
}
