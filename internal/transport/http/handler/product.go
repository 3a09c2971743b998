package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/hunter4ass/OWLD/internal/catalog"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog catalog.Service
	logger  *zap.Logger
}

func NewProductHandler(catalogService catalog.Service, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalogService,
		logger:  logger,
	}
}

// ListProducts returns the full catalog, narrowed to one category when the
// query parameter is present. The catalog never fails, it degrades to the
// bundled dataset instead.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	if category := c.Query("category"); category != "" {
		return c.JSON(h.catalog.GetProductsByCategory(ctx, category))
	}

	return c.JSON(h.catalog.GetAllProducts(ctx))
}

func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	return c.JSON(h.catalog.GetCategories(ctx))
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid product id",
		})
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "product not found",
			})
		}

		logging.Warn(
			ctx,
			h.logger,
			"product lookup failed",
			zap.Int64("product_id", id),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(product)
}
