package repositories

import (
	"context"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type CommentRepository interface {
	ListByGame(ctx context.Context, slug string) ([]Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	Create(ctx context.Context, comment *Comment) error
}

type commentRepository struct {
	gateway gateway.Gateway
	log     logger.Logger
}

func NewCommentRepository(gw gateway.Gateway) CommentRepository {
	return &commentRepository{
		gateway: gw,
		log:     logger.New("commentRepository"),
	}
}

// ListByGame returns every comment and reply for the game, newest first.
func (r *commentRepository) ListByGame(ctx context.Context, slug string) ([]Comment, error) {
	log := r.log.Function("ListByGame")

	comments, err := r.gateway.Comments().Select(ctx,
		gateway.Where(gateway.Eq("game_slug", slug)).OrderBy("created_at", true))
	if err != nil {
		return nil, log.Err("failed to list comments", err, "slug", slug)
	}

	return comments, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	log := r.log.Function("GetByID")

	comments, err := r.gateway.Comments().Select(ctx,
		gateway.Where(gateway.Eq("id", id)).WithLimit(1))
	if err != nil {
		return nil, log.Err("failed to get comment", err, "commentID", id)
	}
	if len(comments) == 0 {
		return nil, nil
	}

	return &comments[0], nil
}

func (r *commentRepository) Create(ctx context.Context, comment *Comment) error {
	log := r.log.Function("Create")

	if err := r.gateway.Comments().Insert(ctx, comment); err != nil {
		return log.Err("failed to create comment", err, "slug", comment.GameSlug)
	}

	return nil
}
