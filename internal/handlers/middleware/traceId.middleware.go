package middleware

import (
	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	TraceIDHeader = "X-Trace-ID"

	TraceIDLocalKey = "traceID"
)

// TraceID reuses the caller's trace id or starts a new one, and carries it
// in the user context for logger.TraceFromContext.
func (m *Middleware) TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDHeader, traceID)
		c.Locals(TraceIDLocalKey, traceID)

		ctx := logger.ContextWithTraceID(c.UserContext(), traceID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func GetTraceID(c *fiber.Ctx) string {
	if traceID, ok := c.Locals(TraceIDLocalKey).(string); ok {
		return traceID
	}
	return ""
}
