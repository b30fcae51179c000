package repositories

import (
	"context"
	"time"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

const RecentPlaysLimit = 10

type RecentPlayRepository interface {
	Track(ctx context.Context, userID uuid.UUID, slug string, playedAt time.Time) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]RecentPlay, error)
}

type recentPlayRepository struct {
	gateway gateway.Gateway
	log     logger.Logger
}

func NewRecentPlayRepository(gw gateway.Gateway) RecentPlayRepository {
	return &recentPlayRepository{
		gateway: gw,
		log:     logger.New("recentPlayRepository"),
	}
}

// Track keeps a single row per user and game; replaying moves it to the
// front.
func (r *recentPlayRepository) Track(
	ctx context.Context,
	userID uuid.UUID,
	slug string,
	playedAt time.Time,
) error {
	log := r.log.Function("Track")

	play := &RecentPlay{UserID: userID, GameSlug: slug, PlayedAt: playedAt.UTC()}
	if err := r.gateway.RecentPlays().Upsert(ctx, play, "user_id", "game_slug"); err != nil {
		return log.Err("failed to track recent play", err, "userID", userID, "slug", slug)
	}

	return nil
}

func (r *recentPlayRepository) List(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]RecentPlay, error) {
	log := r.log.Function("List")

	plays, err := r.gateway.RecentPlays().Select(ctx,
		gateway.Where(gateway.Eq("user_id", userID)).
			OrderBy("played_at", true).
			WithLimit(limit))
	if err != nil {
		return nil, log.Err("failed to list recent plays", err, "userID", userID)
	}

	return plays, nil
}
