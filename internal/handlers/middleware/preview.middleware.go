package middleware

import "github.com/gofiber/fiber/v2"

const PreviewModeHeader = "X-Preview-Mode"

// PreviewMode flags every response while the remote store is not
// configured.
func (m *Middleware) PreviewMode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.gateway.IsConfigured() {
			c.Set(PreviewModeHeader, "true")
		}
		return c.Next()
	}
}
