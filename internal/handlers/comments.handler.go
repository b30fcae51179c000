package handlers

import (
	"zappygames/internal/app"
	commentsController "zappygames/internal/controllers/comments"
	"zappygames/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type CommentsHandler struct {
	Handler
	commentsController commentsController.CommentsControllerInterface
}

func NewCommentsHandler(app app.App, router fiber.Router) *CommentsHandler {
	log := logger.New("handlers").File("comments_handler")
	return &CommentsHandler{
		commentsController: app.Controllers.Comments,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CommentsHandler) Register() {
	comments := h.router.Group("/games/:slug/comments")
	comments.Get("/", h.thread)
	comments.Post("/", h.create)
}

func (h *CommentsHandler) thread(c *fiber.Ctx) error {
	slug, ok := slugParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid game slug")
	}

	threads, err := h.commentsController.Thread(c.UserContext(), slug)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"comments": threads})
}

func (h *CommentsHandler) create(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("create")

	slug, ok := slugParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid game slug")
	}

	var request commentsController.CreateCommentRequest
	if err := c.BodyParser(&request); err != nil {
		log.Info("invalid comment body", "error", err)
		return invalidBody(c)
	}

	comment, err := h.commentsController.Create(c.UserContext(), middleware.GetViewer(c), slug, &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}
