package middleware

import (
	"crypto/subtle"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

const OperatorSecretHeader = "X-Operator-Secret"

// RequireOperator guards the routes that change state for every client:
// push broadcasts and worker rollouts. They stay closed while
// OFFLINE_ADMIN_SECRET is unset.
func (m *Middleware) RequireOperator() fiber.Handler {
	secret := []byte(m.Config.OfflineAdminSecret)

	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireOperator")

		if len(secret) == 0 {
			log.Info("operator route called without a configured secret", "path", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Operator actions are disabled",
			})
		}

		given := []byte(c.Get(OperatorSecretHeader))
		if subtle.ConstantTimeCompare(given, secret) != 1 {
			log.Warn("operator secret rejected", "path", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Operator secret required",
			})
		}

		return c.Next()
	}
}
