package repositories

import (
	"context"
	"zappygames/internal/constants"
	"zappygames/internal/database"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateNotifications(ctx context.Context, id uuid.UUID, enabled bool) error
	ClearCache(ctx context.Context, id uuid.UUID)
}

type userRepository struct {
	db      database.DB
	gateway gateway.Gateway
	log     logger.Logger
}

func NewUserRepository(db database.DB, gw gateway.Gateway) UserRepository {
	return &userRepository{
		db:      db,
		gateway: gw,
		log:     logger.New("userRepository"),
	}
}

// GetByID returns nil, nil when the profile row does not exist.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if r.db.HasCache() {
		found, err := database.NewCacheBuilder(r.db.Cache.User, id).
			WithContext(ctx).
			WithHash(constants.UserCachePrefix).
			Get(&user)
		if err != nil {
			log.Warn("failed to read user cache", "userID", id, "error", err)
		}
		if found {
			return &user, nil
		}
	}

	users, err := r.gateway.Users().Select(ctx, gateway.Where(gateway.Eq("id", id)).WithLimit(1))
	if err != nil {
		return nil, log.Err("failed to get user by id", err, "userID", id)
	}
	if len(users) == 0 {
		return nil, nil
	}

	user = users[0]
	if r.db.HasCache() {
		if err := database.NewCacheBuilder(r.db.Cache.User, id).
			WithContext(ctx).
			WithHash(constants.UserCachePrefix).
			WithStruct(user).
			WithTTL(constants.UserCacheExpiry).
			Set(); err != nil {
			log.Warn("failed to add user to cache", "userID", id, "error", err)
		}
	}

	return &user, nil
}

func (r *userRepository) UpdateNotifications(ctx context.Context, id uuid.UUID, enabled bool) error {
	log := r.log.Function("UpdateNotifications")

	if err := r.gateway.Users().Update(ctx,
		[]gateway.Filter{gateway.Eq("id", id)},
		map[string]any{"notifications_enabled": enabled},
	); err != nil {
		return log.Err("failed to update notification settings", err, "userID", id)
	}

	r.ClearCache(ctx, id)
	return nil
}

func (r *userRepository) ClearCache(ctx context.Context, id uuid.UUID) {
	if !r.db.HasCache() {
		return
	}

	if err := database.NewCacheBuilder(r.db.Cache.User, id).
		WithContext(ctx).
		WithHash(constants.UserCachePrefix).
		Delete(); err != nil {
		r.log.Function("ClearCache").Warn("failed to clear user cache", "userID", id, "error", err)
	}
}
