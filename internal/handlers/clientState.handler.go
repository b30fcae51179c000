package handlers

import (
	"zappygames/internal/app"
	clientStateController "zappygames/internal/controllers/clientState"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ClientStateHandler struct {
	Handler
	clientStateController clientStateController.ClientStateControllerInterface
}

func NewClientStateHandler(app app.App, router fiber.Router) *ClientStateHandler {
	log := logger.New("handlers").File("clientState_handler")
	return &ClientStateHandler{
		clientStateController: app.Controllers.ClientState,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ClientStateHandler) Register() {
	state := h.router.Group("/client-state/:clientId")
	state.Get("/", h.get)
	state.Put("/flags/:flag", h.setFlag)
	state.Put("/snapshot", h.saveSnapshot)

	h.router.Get("/offline/snapshot", h.sharedSnapshot)
}

func (h *ClientStateHandler) get(c *fiber.Ctx) error {
	state, err := h.clientStateController.Get(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(state)
}

func (h *ClientStateHandler) setFlag(c *fiber.Ctx) error {
	var request clientStateController.SetFlagRequest
	if err := optionalBody(c, &request); err != nil {
		return invalidBody(c)
	}

	state, err := h.clientStateController.SetFlag(
		c.UserContext(),
		c.Params("clientId"),
		c.Params("flag"),
		&request,
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(state)
}

func (h *ClientStateHandler) saveSnapshot(c *fiber.Ctx) error {
	snapshot, err := h.clientStateController.SaveSnapshot(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(snapshot)
}

func (h *ClientStateHandler) sharedSnapshot(c *fiber.Ctx) error {
	snapshot, err := h.clientStateController.SharedSnapshot(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(snapshot)
}
