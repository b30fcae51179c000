package middleware

import (
	"strings"
	"zappygames/internal/session"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

const SessionKeyFiber = "Session"

// OptionalAuth restores the session behind a Bearer token when one is sent.
// Requests without a token, or with a stale one, continue signed out.
func (m *Middleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		state := m.sessions.Open(c.UserContext(), BearerToken(c))
		defer state.Close()

		c.Locals(SessionKeyFiber, state)
		return c.Next()
	}
}

// RequireAuth rejects the request unless the Bearer token maps to a live
// session.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireAuth")

		token := BearerToken(c)
		if token == "" {
			log.Info("missing bearer token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		state := m.sessions.Open(c.UserContext(), token)
		defer state.Close()

		current := state.Current()
		if !current.Authenticated {
			log.Info("session not found for token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(SessionKeyFiber, state)
		log.Debug("user authenticated", "userID", current.UserID())
		return c.Next()
	}
}

// BearerToken returns the token from an "Authorization: Bearer" header, or
// an empty string.
func BearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func GetSession(c *fiber.Ctx) *session.State {
	state, ok := c.Locals(SessionKeyFiber).(*session.State)
	if !ok {
		return nil
	}
	return state
}

// GetViewer is the signed out snapshot when no session middleware ran.
func GetViewer(c *fiber.Ctx) session.Snapshot {
	state := GetSession(c)
	if state == nil {
		return session.Snapshot{}
	}
	return state.Current()
}
