package handlers

import "github.com/gofiber/fiber/v2"

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Product Catalog Administration</title></head>
<body>
<h1>Product Catalog Administration</h1>
<p>Manage products through the <a href="/products">/products</a> REST API.</p>
</body>
</html>
`

// HealthHandler serves the service identity page and the health check.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// RegisterRoutes registers the index and health routes.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
	router.Get("/health", h.HandleHealth)
}

// HandleIndex returns the index page.
func (h *HealthHandler) HandleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(indexPage)
}

// HandleHealth reports that the service is up.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "OK"})
}
