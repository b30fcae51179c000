package repositories

import (
	"context"
	"errors"
	"slices"
	"zappygames/internal/constants"
	"zappygames/internal/database"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type LikeRepository interface {
	IsLiked(ctx context.Context, userID uuid.UUID, slug string) (bool, error)
	Like(ctx context.Context, userID uuid.UUID, slug string) error
	Unlike(ctx context.Context, userID uuid.UUID, slug string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Like, error)
}

type likeRepository struct {
	db      database.DB
	gateway gateway.Gateway
	log     logger.Logger
}

func NewLikeRepository(db database.DB, gw gateway.Gateway) LikeRepository {
	return &likeRepository{
		db:      db,
		gateway: gw,
		log:     logger.New("likeRepository"),
	}
}

func (r *likeRepository) IsLiked(ctx context.Context, userID uuid.UUID, slug string) (bool, error) {
	likes, err := r.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	return slices.ContainsFunc(likes, func(like Like) bool {
		return like.GameSlug == slug
	}), nil
}

// Like is idempotent: liking an already liked game succeeds without a new
// row.
func (r *likeRepository) Like(ctx context.Context, userID uuid.UUID, slug string) error {
	log := r.log.Function("Like")

	err := r.gateway.Likes().Insert(ctx, &Like{UserID: userID, GameSlug: slug})
	if err != nil && !errors.Is(err, gateway.ErrRemoteRejected) {
		return log.Err("failed to like game", err, "userID", userID, "slug", slug)
	}
	if err != nil {
		log.Debug("game already liked", "userID", userID, "slug", slug)
	}

	r.clearCache(ctx, userID)
	return nil
}

func (r *likeRepository) Unlike(ctx context.Context, userID uuid.UUID, slug string) error {
	log := r.log.Function("Unlike")

	if err := r.gateway.Likes().Delete(ctx, []gateway.Filter{
		gateway.Eq("user_id", userID),
		gateway.Eq("game_slug", slug),
	}); err != nil {
		return log.Err("failed to unlike game", err, "userID", userID, "slug", slug)
	}

	r.clearCache(ctx, userID)
	return nil
}

// ListByUser returns the user's likes, newest first.
func (r *likeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Like, error) {
	log := r.log.Function("ListByUser")

	if r.db.HasCache() {
		var cached []Like
		found, err := database.NewCacheBuilder(r.db.Cache.User, userID).
			WithContext(ctx).
			WithHash(constants.LikesCachePrefix).
			Get(&cached)
		if err != nil {
			log.Warn("failed to read likes cache", "userID", userID, "error", err)
		}
		if found {
			return cached, nil
		}
	}

	likes, err := r.gateway.Likes().Select(ctx,
		gateway.Where(gateway.Eq("user_id", userID)).OrderBy("created_at", true))
	if err != nil {
		return nil, log.Err("failed to list likes", err, "userID", userID)
	}

	if r.db.HasCache() && r.gateway.IsConfigured() {
		if err := database.NewCacheBuilder(r.db.Cache.User, userID).
			WithContext(ctx).
			WithHash(constants.LikesCachePrefix).
			WithStruct(likes).
			WithTTL(constants.LikesCacheExpiry).
			Set(); err != nil {
			log.Warn("failed to cache likes", "userID", userID, "error", err)
		}
	}

	return likes, nil
}

func (r *likeRepository) clearCache(ctx context.Context, userID uuid.UUID) {
	if !r.db.HasCache() {
		return
	}

	if err := database.NewCacheBuilder(r.db.Cache.User, userID).
		WithContext(ctx).
		WithHash(constants.LikesCachePrefix).
		Delete(); err != nil {
		r.log.Function("clearCache").Warn("failed to clear likes cache", "userID", userID, "error", err)
	}
}
