package handlers

import (
	"zappygames/internal/app"
	"zappygames/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID(), app.Middleware.PreviewMode())

	WebSocketHandler(router, app)
	MetricsHandler(router, app)

	api := router.Group("/api", app.Middleware.OptionalAuth())
	HealthHandler(api, app)
	NewAuthHandler(*app, api).Register()
	NewGamesHandler(*app, api).Register()
	NewCommentsHandler(*app, api).Register()
	NewUserHandler(*app, api).Register()
	NewPushHandler(*app, api).Register()
	NewWorkerHandler(*app, api).Register()
	NewClientStateHandler(*app, api).Register()

	NewCacheHandler(*app, router).Register()
	NewStaticHandler(*app, router).Register()

	return nil
}
