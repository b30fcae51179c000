package handlers

import (
	"zappygames/internal/app"
	"zappygames/internal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func HealthHandler(router fiber.Router, app *app.App) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": app.Config.GeneralVersion,
			"service": "zappygames_api",
		})
	})

	router.Get("/status", func(c *fiber.Ctx) error {
		status := types.Status{
			Configured: app.Gateway.IsConfigured(),
			Version:    app.Config.GeneralVersion,
			Games:      app.Catalog.Len(),
			Clients:    app.Websocket.ClientCount(),
		}
		if !status.Configured {
			status.Banner = types.PreviewModeBanner
		}
		return c.JSON(status)
	})
}

// MetricsHandler exposes the prometheus registry when metrics are enabled.
func MetricsHandler(router fiber.Router, app *app.App) {
	if app.Metrics == nil {
		return
	}

	router.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{})))
}
