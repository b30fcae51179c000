package handlers

import (
	"zappygames/internal/app"
	userController "zappygames/internal/controllers/users"
	"zappygames/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	userController userController.UserControllerInterface
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		userController: app.Controllers.User,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users", h.middleware.RequireAuth())
	users.Get("/me", h.getCurrentUser)
	users.Patch("/me/notifications", h.updateNotifications)
}

func (h *UserHandler) getCurrentUser(c *fiber.Ctx) error {
	profile, err := h.userController.Me(c.UserContext(), middleware.GetSession(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": profile})
}

func (h *UserHandler) updateNotifications(c *fiber.Ctx) error {
	var request userController.UpdateNotificationsRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	profile, err := h.userController.UpdateNotifications(c.UserContext(), middleware.GetSession(c), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": profile})
}
