package commentsController

import (
	"context"
	"strings"
	"unicode/utf8"
	"zappygames/internal/catalog"
	"zappygames/internal/gateway"
	. "zappygames/internal/models"
	"zappygames/internal/repositories"
	"zappygames/internal/session"
	"zappygames/internal/types"
	"zappygames/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}

type CommentsControllerInterface interface {
	Thread(ctx context.Context, slug string) ([]types.CommentThread, error)
	Create(
		ctx context.Context,
		viewer session.Snapshot,
		slug string,
		request *CreateCommentRequest,
	) (*Comment, error)
}

type CommentsController struct {
	catalog     *catalog.Catalog
	commentRepo repositories.CommentRepository
	gateway     gateway.Gateway
	log         logger.Logger
}

func New(
	games *catalog.Catalog,
	repos repositories.Repository,
	gw gateway.Gateway,
) CommentsControllerInterface {
	return &CommentsController{
		catalog:     games,
		commentRepo: repos.Comment,
		gateway:     gw,
		log:         logger.New("commentsController"),
	}
}

// Thread groups a game's comments into top level comments, newest first,
// each carrying its replies newest first.
func (c *CommentsController) Thread(ctx context.Context, slug string) ([]types.CommentThread, error) {
	log := c.log.TraceFromContext(ctx).Function("Thread")

	if _, ok := c.catalog.FindBySlug(slug); !ok {
		return nil, log.ErrorWithType(types.ErrNotFound, types.GameNotFoundMessage, "slug", slug)
	}

	comments, err := c.commentRepo.ListByGame(ctx, slug)
	if err != nil {
		return nil, err
	}

	return buildThreads(comments), nil
}

func buildThreads(comments []Comment) []types.CommentThread {
	replies := make(map[uuid.UUID][]Comment)
	for _, comment := range comments {
		if comment.IsReply() {
			replies[*comment.ParentID] = append(replies[*comment.ParentID], comment)
		}
	}

	threads := make([]types.CommentThread, 0, len(comments))
	for _, comment := range comments {
		if comment.IsReply() {
			continue
		}
		thread := types.CommentThread{Comment: comment, Replies: replies[comment.ID]}
		if thread.Replies == nil {
			thread.Replies = []Comment{}
		}
		threads = append(threads, thread)
	}
	return threads
}

// Create posts a comment or a reply. Replies attach to top level comments
// of the same game only, so threads stay one level deep.
func (c *CommentsController) Create(
	ctx context.Context,
	viewer session.Snapshot,
	slug string,
	request *CreateCommentRequest,
) (*Comment, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	isReply := request.ParentID != nil && *request.ParentID != uuid.Nil

	if !viewer.Authenticated {
		return nil, log.ErrorWithType(types.ErrUnauthorized, types.AuthRequiredMessage)
	}
	if !c.gateway.IsConfigured() {
		message := types.CommentPreviewMessage
		if isReply {
			message = types.ReplyPreviewMessage
		}
		return nil, log.ErrorWithType(types.ErrPreviewMode, message)
	}
	if _, ok := c.catalog.FindBySlug(slug); !ok {
		return nil, log.ErrorWithType(types.ErrNotFound, types.GameNotFoundMessage, "slug", slug)
	}

	content := utils.CleanText(request.Content)
	if content == "" {
		return nil, log.ErrorWithType(types.ErrValidation, "content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, log.ErrorWithType(
			types.ErrValidation,
			"content exceeds maximum length",
			"length", utf8.RuneCountInString(content),
			"max", MaxCommentLength,
		)
	}

	comment := &Comment{
		GameSlug: slug,
		UserID:   viewer.UserID(),
		Username: displayName(viewer),
		Content:  content,
	}

	if isReply {
		parent, err := c.commentRepo.GetByID(ctx, *request.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.GameSlug != slug {
			return nil, log.ErrorWithType(types.ErrNotFound, "parent comment not found",
				"parentID", *request.ParentID)
		}
		if parent.IsReply() {
			return nil, log.ErrorWithType(types.ErrValidation, "replies cannot be nested",
				"parentID", parent.ID)
		}
		comment.ParentID = &parent.ID
	}

	if err := c.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	log.Info("Comment created", "commentID", comment.ID, "slug", slug, "reply", isReply)
	return comment, nil
}

// displayName is the email's local part, as shown next to every comment.
func displayName(viewer session.Snapshot) string {
	if viewer.Identity == nil {
		return "Anonymous"
	}
	name, _, _ := strings.Cut(viewer.Identity.Email, "@")
	if name == "" {
		return "Anonymous"
	}
	return name
}
