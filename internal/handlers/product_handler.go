package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterRoutes registers the product routes. writeGuards run before the
// create, update and delete handlers.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, writeGuards ...fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", chain(writeGuards, middleware.RequireJSON(), h.HandleCreateProduct)...)
	productRoutes.Put("/:id", chain(writeGuards, middleware.RequireJSON(), h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", chain(writeGuards, h.HandleDeleteProduct)...)
}

func chain(guards []fiber.Handler, handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+len(handlers))
	out = append(out, guards...)
	return append(out, handlers...)
}

// HandleGetProducts lists products, optionally filtered by name, category and availability.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter, err := parseProductFilter(c.Queries())
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	products, err := h.service.GetAllProducts(c.UserContext(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("error listing products")
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return productNotFound(c)
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.serviceError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product and points Location at it.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var payload models.ProductPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Debug().Err(err).Msg("error parsing create request body")
		return errorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}

	product, err := h.service.CreateProduct(c.UserContext(), payload)
	if err != nil {
		return h.serviceError(c, err, "Could not create product")
	}

	c.Location(fmt.Sprintf("%s/products/%d", c.BaseURL(), product.ID))
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct overwrites the fields present in the body of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return productNotFound(c)
	}

	var payload models.ProductPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Debug().Err(err).Uint("product_id", id).Msg("error parsing update request body")
		return errorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, payload)
	if err != nil {
		return h.serviceError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return productNotFound(c)
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.serviceError(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// serviceError maps service and repository errors onto status codes.
func (h *ProductHandler) serviceError(c *fiber.Ctx, err error, message string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return productNotFound(c)
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  fiber.StatusBadRequest,
			"error":   "Bad Request",
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg(message)
		return errorResponse(c, fiber.StatusInternalServerError, message)
	}
}

func productNotFound(c *fiber.Ctx) error {
	return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("Product with id '%s' was not found.", c.Params("id")))
}

// productID parses the :id route parameter. Anything that is not a positive
// integer cannot name a product.
func productID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseProductFilter builds a filter from the name, category and available query parameters.
func parseProductFilter(query map[string]string) (models.ProductFilter, error) {
	var filter models.ProductFilter

	if name, ok := query["name"]; ok {
		filter.Name = &name
	}

	if raw, ok := query["category"]; ok {
		category, err := models.ParseCategory(raw)
		if err != nil {
			return filter, err
		}
		filter.Category = &category
	}

	if raw, ok := query["available"]; ok {
		available, err := parseAvailable(raw)
		if err != nil {
			return filter, err
		}
		filter.Available = &available
	}

	return filter, nil
}

func parseAvailable(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid available value %q (must be true or false)", raw)
	}
}
