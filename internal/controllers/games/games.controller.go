package gamesController

import (
	"context"
	"time"
	"zappygames/internal/catalog"
	"zappygames/internal/gateway"
	"zappygames/internal/repositories"
	"zappygames/internal/session"
	"zappygames/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type BrowseRequest struct {
	Category string `query:"category"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
}

type GamesControllerInterface interface {
	Browse(request BrowseRequest) types.GridPage
	Categories() []catalog.Category
	Detail(ctx context.Context, viewer session.Snapshot, slug string) (*types.GameDetail, error)
	Play(ctx context.Context, viewer session.Snapshot, slug string) (*types.RecentGame, error)
	ToggleLike(ctx context.Context, viewer session.Snapshot, slug string) (*types.LikeToggle, error)
	Liked(ctx context.Context, viewer session.Snapshot) ([]types.LikedGame, error)
	Recent(ctx context.Context, viewer session.Snapshot, limit int) ([]types.RecentGame, error)
}

type GamesController struct {
	catalog        *catalog.Catalog
	likeRepo       repositories.LikeRepository
	recentPlayRepo repositories.RecentPlayRepository
	gateway        gateway.Gateway
	now            func() time.Time
	log            logger.Logger
}

func New(
	games *catalog.Catalog,
	repos repositories.Repository,
	gw gateway.Gateway,
) GamesControllerInterface {
	return &GamesController{
		catalog:        games,
		likeRepo:       repos.Like,
		recentPlayRepo: repos.RecentPlay,
		gateway:        gw,
		now:            time.Now,
		log:            logger.New("gamesController"),
	}
}

// Browse runs the grid query: category first, then search, then one page.
func (c *GamesController) Browse(request BrowseRequest) types.GridPage {
	category := request.Category
	if category == "" {
		category = catalog.AllCategories
	}

	games := c.catalog.Browse(category, request.Search)
	return types.GridPage{
		Page:     catalog.Paginate(games, request.Page, catalog.GamesPerPage),
		Category: category,
		Search:   request.Search,
	}
}

func (c *GamesController) Categories() []catalog.Category {
	return c.catalog.Categories()
}

// Detail returns the game with its suggestions. A signed in viewer also gets
// the liked flag and the visit is recorded as a recent play; failures of
// either are logged and do not fail the view.
func (c *GamesController) Detail(
	ctx context.Context,
	viewer session.Snapshot,
	slug string,
) (*types.GameDetail, error) {
	log := c.log.TraceFromContext(ctx).Function("Detail")

	game, ok := c.catalog.FindBySlug(slug)
	if !ok {
		return nil, log.ErrorWithType(types.ErrNotFound, types.GameNotFoundMessage, "slug", slug)
	}

	detail := &types.GameDetail{
		Game:        game,
		Suggestions: c.catalog.Suggested(game, catalog.SuggestedLimit),
	}
	if detail.Suggestions == nil {
		detail.Suggestions = []catalog.Game{}
	}

	if !viewer.Authenticated || !c.gateway.IsConfigured() {
		return detail, nil
	}

	liked, err := c.likeRepo.IsLiked(ctx, viewer.UserID(), game.Slug)
	if err != nil {
		log.Warn("failed to load liked flag", "slug", slug, "error", err)
	}
	detail.Liked = liked

	if err := c.recentPlayRepo.Track(ctx, viewer.UserID(), game.Slug, c.now()); err != nil {
		log.Warn("failed to track recent play", "slug", slug, "error", err)
	}

	return detail, nil
}

func (c *GamesController) Play(
	ctx context.Context,
	viewer session.Snapshot,
	slug string,
) (*types.RecentGame, error) {
	log := c.log.TraceFromContext(ctx).Function("Play")

	game, err := c.writableGame(log, viewer, slug, types.PlaysPreviewMessage)
	if err != nil {
		return nil, err
	}

	playedAt := c.now().UTC()
	if err := c.recentPlayRepo.Track(ctx, viewer.UserID(), game.Slug, playedAt); err != nil {
		return nil, err
	}

	return &types.RecentGame{Game: game, PlayedAt: playedAt}, nil
}

// ToggleLike likes the game, or unlikes it when already liked.
func (c *GamesController) ToggleLike(
	ctx context.Context,
	viewer session.Snapshot,
	slug string,
) (*types.LikeToggle, error) {
	log := c.log.TraceFromContext(ctx).Function("ToggleLike")

	game, err := c.writableGame(log, viewer, slug, types.LikesPreviewMessage)
	if err != nil {
		return nil, err
	}

	liked, err := c.likeRepo.IsLiked(ctx, viewer.UserID(), game.Slug)
	if err != nil {
		return nil, err
	}

	if liked {
		err = c.likeRepo.Unlike(ctx, viewer.UserID(), game.Slug)
	} else {
		err = c.likeRepo.Like(ctx, viewer.UserID(), game.Slug)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Like toggled", "userID", viewer.UserID(), "slug", game.Slug, "liked", !liked)
	return &types.LikeToggle{Slug: game.Slug, Liked: !liked}, nil
}

// Liked lists the viewer's liked games, newest first. Likes for games no
// longer in the catalog are skipped.
func (c *GamesController) Liked(ctx context.Context, viewer session.Snapshot) ([]types.LikedGame, error) {
	log := c.log.TraceFromContext(ctx).Function("Liked")

	if !viewer.Authenticated {
		return nil, log.ErrorWithType(types.ErrUnauthorized, types.AuthRequiredMessage)
	}

	likes, err := c.likeRepo.ListByUser(ctx, viewer.UserID())
	if err != nil {
		return nil, err
	}

	games := make([]types.LikedGame, 0, len(likes))
	for _, like := range likes {
		if game, ok := c.catalog.FindBySlug(like.GameSlug); ok {
			games = append(games, types.LikedGame{Game: game, LikedAt: like.CreatedAt})
		}
	}
	return games, nil
}

func (c *GamesController) Recent(
	ctx context.Context,
	viewer session.Snapshot,
	limit int,
) ([]types.RecentGame, error) {
	log := c.log.TraceFromContext(ctx).Function("Recent")

	if !viewer.Authenticated {
		return nil, log.ErrorWithType(types.ErrUnauthorized, types.AuthRequiredMessage)
	}
	if limit <= 0 || limit > repositories.RecentPlaysLimit {
		limit = repositories.RecentPlaysLimit
	}

	plays, err := c.recentPlayRepo.List(ctx, viewer.UserID(), limit)
	if err != nil {
		return nil, err
	}

	games := make([]types.RecentGame, 0, len(plays))
	for _, play := range plays {
		if game, ok := c.catalog.FindBySlug(play.GameSlug); ok {
			games = append(games, types.RecentGame{Game: game, PlayedAt: play.PlayedAt})
		}
	}
	return games, nil
}

func (c *GamesController) writableGame(
	log logger.Logger,
	viewer session.Snapshot,
	slug string,
	previewMessage string,
) (catalog.Game, error) {
	if !viewer.Authenticated {
		return catalog.Game{}, log.ErrorWithType(types.ErrUnauthorized, types.AuthRequiredMessage)
	}
	if !c.gateway.IsConfigured() {
		return catalog.Game{}, log.ErrorWithType(types.ErrPreviewMode, previewMessage)
	}

	game, ok := c.catalog.FindBySlug(slug)
	if !ok {
		return catalog.Game{}, log.ErrorWithType(types.ErrNotFound, types.GameNotFoundMessage, "slug", slug)
	}
	return game, nil
}
