package handlers

import (
	"net/url"
	"zappygames/internal/app"
	workerController "zappygames/internal/controllers/worker"
	"zappygames/internal/offline"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type WorkerHandler struct {
	Handler
	workerController workerController.WorkerControllerInterface
}

func NewWorkerHandler(app app.App, router fiber.Router) *WorkerHandler {
	log := logger.New("handlers").File("worker_handler")
	return &WorkerHandler{
		workerController: app.Controllers.Worker,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *WorkerHandler) Register() {
	worker := h.router.Group("/worker")
	worker.Get("/", h.status)
	worker.Post("/register", h.register)
	worker.Post("/versions", h.middleware.RequireOperator(), h.install)
	worker.Post("/sync", h.sync)
	worker.Get("/notifications", h.notifications)
	worker.Post("/notifications/:tag/click", h.notificationClick)

	h.router.Post("/offline/plan", h.plan)
}

func (h *WorkerHandler) status(c *fiber.Ctx) error {
	status, err := h.workerController.Status(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(status)
}

func (h *WorkerHandler) register(c *fiber.Ctx) error {
	var request workerController.RegisterRequest
	if err := optionalBody(c, &request); err != nil {
		return invalidBody(c)
	}

	status, err := h.workerController.Register(c.UserContext(), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(status)
}

func (h *WorkerHandler) install(c *fiber.Ctx) error {
	var request workerController.InstallRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	status, err := h.workerController.Install(c.UserContext(), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(status)
}

func (h *WorkerHandler) sync(c *fiber.Ctx) error {
	var request workerController.SyncRequest
	if err := optionalBody(c, &request); err != nil {
		return invalidBody(c)
	}

	if err := h.workerController.Sync(c.UserContext(), &request); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"synced": true})
}

func (h *WorkerHandler) notifications(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"notifications": h.workerController.Notifications()})
}

func (h *WorkerHandler) notificationClick(c *fiber.Ctx) error {
	tag, err := url.PathUnescape(c.Params("tag"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid notification tag")
	}

	var request workerController.ClickRequest
	if err := optionalBody(c, &request); err != nil {
		return invalidBody(c)
	}

	result, err := h.workerController.NotificationClick(c.UserContext(), tag, &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

// plan picks the offline strategy for the calling client. Without an
// explicit origin the request's own base URL is used.
func (h *WorkerHandler) plan(c *fiber.Ctx) error {
	var capabilities offline.Capabilities
	if err := optionalBody(c, &capabilities); err != nil {
		return invalidBody(c)
	}
	if capabilities.Origin == "" {
		capabilities.Origin = c.BaseURL()
	}

	plan, err := h.workerController.Plan(c.UserContext(), &capabilities)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(plan)
}
