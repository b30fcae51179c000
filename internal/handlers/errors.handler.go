package handlers

import (
	"errors"
	"strings"
	"zappygames/internal/gateway"
	"zappygames/internal/types"

	"github.com/gofiber/fiber/v2"
)

// respondError maps controller and gateway errors onto status codes. The
// message is the error text without its kind prefix.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, message(err, types.ErrNotFound))
	case errors.Is(err, types.ErrValidation):
		return errorJSON(c, fiber.StatusBadRequest, message(err, types.ErrValidation))
	case errors.Is(err, types.ErrUnauthorized):
		return errorJSON(c, fiber.StatusUnauthorized, message(err, types.ErrUnauthorized))
	case errors.Is(err, types.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, message(err, types.ErrForbidden))
	case errors.Is(err, gateway.ErrAuth):
		return errorJSON(c, fiber.StatusUnauthorized, message(err, gateway.ErrAuth))
	case errors.Is(err, types.ErrPreviewMode):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":  message(err, types.ErrPreviewMode),
			"banner": types.PreviewModeBanner,
		})
	case errors.Is(err, gateway.ErrRemoteUnavailable):
		return errorJSON(c, fiber.StatusServiceUnavailable, types.DatabaseErrorMessage)
	case errors.Is(err, types.ErrConflict):
		return errorJSON(c, fiber.StatusConflict, message(err, types.ErrConflict))
	case errors.Is(err, gateway.ErrRemoteRejected):
		return errorJSON(c, fiber.StatusConflict, message(err, gateway.ErrRemoteRejected))
	}

	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func message(err, kind error) string {
	text := err.Error()
	if i := strings.Index(text, kind.Error()+": "); i >= 0 {
		return text[i+len(kind.Error())+2:]
	}
	return text
}

func invalidBody(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
}

// optionalBody decodes the body when one was sent and leaves out untouched
// otherwise.
func optionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}
