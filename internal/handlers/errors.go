package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
)

// errorResponse writes the JSON error body shared by every endpoint.
func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  status,
		"error":   utils.StatusMessage(status),
		"message": message,
	})
}

// ErrorHandler renders errors returned from handlers and middleware, including
// Fiber's own routing errors (404, 405), as JSON.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		return errorResponse(c, status, message)
	}
}
