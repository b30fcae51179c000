package handlers

import (
	"errors"
	"net/http"
	"zappygames/internal/app"
	workerController "zappygames/internal/controllers/worker"
	"zappygames/internal/offline"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

const CacheSourceHeader = "X-Cache"

// forwardedHeaders are the request headers passed on to the origin.
var forwardedHeaders = []string{fiber.HeaderAccept, fiber.HeaderAcceptLanguage, fiber.HeaderUserAgent}

// skippedHeaders are owned by this response, not the stored one.
var skippedHeaders = map[string]bool{
	fiber.HeaderContentLength:    true,
	fiber.HeaderTransferEncoding: true,
	fiber.HeaderConnection:       true,
	fiber.HeaderContentEncoding:  true,
}

type CacheHandler struct {
	Handler
	workerController workerController.WorkerControllerInterface
}

func NewCacheHandler(app app.App, router fiber.Router) *CacheHandler {
	log := logger.New("handlers").File("cache_handler")
	return &CacheHandler{
		workerController: app.Controllers.Worker,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CacheHandler) Register() {
	h.router.All("/cache/*", h.fetch)
}

// fetch runs the request through the offline worker: /cache/<path> is
// answered as <path> on the origin would be, from cache when possible.
func (h *CacheHandler) fetch(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("fetch")

	path := offline.OriginPath(c.Params("*"), string(c.Request().URI().QueryString()))

	header := make(http.Header)
	for _, name := range forwardedHeaders {
		if value := c.Get(name); value != "" {
			header.Set(name, value)
		}
	}

	request := offline.Request{
		Method:      c.Method(),
		URL:         path,
		Destination: offline.DestinationFrom(c.Get("Sec-Fetch-Dest"), c.Get(fiber.HeaderAccept)),
		Header:      header,
	}

	response, err := h.workerController.Fetch(c.UserContext(), request)
	if errors.Is(err, offline.ErrCrossOrigin) {
		log.Warn("refused cross origin fetch", "path", path)
		return errorJSON(c, fiber.StatusBadRequest, "Only site paths can be fetched")
	}
	if err != nil {
		log.Warn("fetch failed", "path", path, "error", err)
		return errorJSON(c, fiber.StatusBadGateway, "Network unavailable")
	}

	for name, values := range response.Header {
		if skippedHeaders[http.CanonicalHeaderKey(name)] {
			continue
		}
		for _, value := range values {
			c.Response().Header.Add(name, value)
		}
	}
	c.Set(CacheSourceHeader, string(response.Source))

	return c.Status(response.Status).Send(response.Body)
}
