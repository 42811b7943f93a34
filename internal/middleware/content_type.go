package middleware

import (
	"fmt"
	"mime"

	"github.com/gofiber/fiber/v2"
)

// RequireJSON rejects requests whose Content-Type is absent or not
// application/json with 415 Unsupported Media Type.
func RequireJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentType := c.Get(fiber.HeaderContentType)
		mediaType, _, err := mime.ParseMediaType(contentType)
		if contentType == "" || err != nil || mediaType != fiber.MIMEApplicationJSON {
			message := "Content-Type must be application/json"
			if contentType != "" {
				message = fmt.Sprintf("Content-Type must be application/json, got %q", contentType)
			}
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"status":  fiber.StatusUnsupportedMediaType,
				"error":   "Unsupported Media Type",
				"message": message,
			})
		}
		return c.Next()
	}
}
