package handlers

import (
	"net/url"
	"zappygames/internal/app"
	gamesController "zappygames/internal/controllers/games"
	"zappygames/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type GamesHandler struct {
	Handler
	gamesController gamesController.GamesControllerInterface
}

func NewGamesHandler(app app.App, router fiber.Router) *GamesHandler {
	log := logger.New("handlers").File("games_handler")
	return &GamesHandler{
		gamesController: app.Controllers.Games,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *GamesHandler) Register() {
	games := h.router.Group("/games")
	games.Get("/", h.browse)
	games.Get("/categories", h.categories)
	games.Get("/:slug", h.detail)
	games.Post("/:slug/like", h.toggleLike)
	games.Post("/:slug/play", h.play)

	h.router.Get("/likes", h.liked)
	h.router.Get("/recent", h.recent)
}

func (h *GamesHandler) browse(c *fiber.Ctx) error {
	var request gamesController.BrowseRequest
	if err := c.QueryParser(&request); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid query parameters")
	}

	return c.JSON(h.gamesController.Browse(request))
}

func (h *GamesHandler) categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.gamesController.Categories()})
}

func (h *GamesHandler) detail(c *fiber.Ctx) error {
	slug, ok := slugParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid game slug")
	}

	detail, err := h.gamesController.Detail(c.UserContext(), middleware.GetViewer(c), slug)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(detail)
}

func (h *GamesHandler) toggleLike(c *fiber.Ctx) error {
	slug, ok := slugParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid game slug")
	}

	toggled, err := h.gamesController.ToggleLike(c.UserContext(), middleware.GetViewer(c), slug)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toggled)
}

func (h *GamesHandler) play(c *fiber.Ctx) error {
	slug, ok := slugParam(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid game slug")
	}

	played, err := h.gamesController.Play(c.UserContext(), middleware.GetViewer(c), slug)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(played)
}

func (h *GamesHandler) liked(c *fiber.Ctx) error {
	games, err := h.gamesController.Liked(c.UserContext(), middleware.GetViewer(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"games": games})
}

func (h *GamesHandler) recent(c *fiber.Ctx) error {
	games, err := h.gamesController.Recent(c.UserContext(), middleware.GetViewer(c), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"games": games})
}

// slugParam is the unescaped :slug segment.
func slugParam(c *fiber.Ctx) (string, bool) {
	slug, err := url.PathUnescape(c.Params("slug"))
	return slug, err == nil
}
