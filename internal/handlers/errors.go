package handlers

import (
	"errors"

	"produtoapi/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns errors returned by handlers into JSON responses.
// Anything that is not a *fiber.Error is an unexpected failure and becomes a 500.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		} else {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		return c.Status(status).JSON(fiber.Map{
			"message": message,
		})
	}
}
