package handlers

import (
	"zappygames/internal/app"
	pushController "zappygames/internal/controllers/push"
	"zappygames/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type PushHandler struct {
	Handler
	pushController pushController.PushControllerInterface
}

func NewPushHandler(app app.App, router fiber.Router) *PushHandler {
	log := logger.New("handlers").File("push_handler")
	return &PushHandler{
		pushController: app.Controllers.Push,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PushHandler) Register() {
	push := h.router.Group("/push")
	push.Post("/subscriptions", h.subscribe)
	push.Post("/", h.middleware.RequireOperator(), h.send)
}

func (h *PushHandler) subscribe(c *fiber.Ctx) error {
	var request pushController.SubscribeRequest
	if err := c.BodyParser(&request); err != nil {
		return invalidBody(c)
	}

	subscription, err := h.pushController.Subscribe(c.UserContext(), middleware.GetViewer(c), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": subscription})
}

// send broadcasts a push payload to every open client. A plain text body is used as is; a JSON body
// carries it under "body".
func (h *PushHandler) send(c *fiber.Ctx) error {
	request := pushController.SendRequest{Body: string(c.Body())}
	if c.Is("json") {
		request = pushController.SendRequest{}
		if err := optionalBody(c, &request); err != nil {
			return invalidBody(c)
		}
	}

	if err := h.pushController.Send(c.UserContext(), &request); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
}
