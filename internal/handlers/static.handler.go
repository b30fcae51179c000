package handlers

import (
	"net/http"
	"zappygames/internal/app"
	"zappygames/web"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

const STATIC_MAX_AGE = 3600

// appRoutes are client side routes that all render the app document.
var appRoutes = []string{"/games", "/game/:slug", "/liked", "/recent"}

type StaticHandler struct {
	Handler
	root     http.FileSystem
	manifest web.Manifest
}

func NewStaticHandler(app app.App, router fiber.Router) *StaticHandler {
	log := logger.New("handlers").File("static_handler")
	return &StaticHandler{
		root:     http.FS(web.Static()),
		manifest: web.DefaultManifest(),
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *StaticHandler) Register() {
	h.router.Get("/manifest.json", h.getManifest)
	for _, route := range appRoutes {
		h.router.Get(route, h.index)
	}

	h.router.Use("/", filesystem.New(filesystem.Config{
		Root:   h.root,
		Index:  web.IndexFile,
		MaxAge: STATIC_MAX_AGE,
	}))
}

func (h *StaticHandler) getManifest(c *fiber.Ctx) error {
	return c.JSON(h.manifest, "application/manifest+json")
}

func (h *StaticHandler) index(c *fiber.Ctx) error {
	return filesystem.SendFile(c, h.root, web.IndexFile)
}
