package handlers

import (
	"time"
	"zappygames/internal/app"
	authController "zappygames/internal/controllers/auth"
	"zappygames/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const (
	AUTH_ATTEMPTS_PER_WINDOW = 10
	AUTH_ATTEMPT_WINDOW      = time.Minute
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	attempts := limiter.New(limiter.Config{
		Max:        AUTH_ATTEMPTS_PER_WINDOW,
		Expiration: AUTH_ATTEMPT_WINDOW,
		LimitReached: func(c *fiber.Ctx) error {
			return errorJSON(c, fiber.StatusTooManyRequests, "Too many attempts, try again later")
		},
	})

	auth.Get("/config", h.getAuthConfig)
	auth.Get("/session", h.session)
	auth.Post("/signup", attempts, h.signUp)
	auth.Post("/signin", attempts, h.signIn)
	auth.Post("/signout", h.signOut)
}

func (h *AuthHandler) getAuthConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"configured": h.authController.IsConfigured()})
}

func (h *AuthHandler) session(c *fiber.Ctx) error {
	return c.JSON(h.authController.Session(c.UserContext(), middleware.BearerToken(c)))
}

func (h *AuthHandler) signUp(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("signUp")

	var request authController.SignUpRequest
	if err := c.BodyParser(&request); err != nil {
		log.Info("invalid sign up body", "error", err)
		return invalidBody(c)
	}

	response, err := h.authController.SignUp(c.UserContext(), &request)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("user signed up", "userID", response.User.ID)
	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *AuthHandler) signIn(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("signIn")

	var request authController.SignInRequest
	if err := c.BodyParser(&request); err != nil {
		log.Info("invalid sign in body", "error", err)
		return invalidBody(c)
	}

	response, err := h.authController.SignIn(c.UserContext(), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(response)
}

func (h *AuthHandler) signOut(c *fiber.Ctx) error {
	if err := h.authController.SignOut(c.UserContext(), middleware.BearerToken(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Signed out"})
}
