package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/hunter4ass/OWLD/internal/catalog"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/repository"
	"github.com/hunter4ass/OWLD/internal/service"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/hunter4ass/OWLD/pkg/validate"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service service.OrderService
	logger  *zap.Logger
}

type CheckoutInput struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: orderService,
		logger:  logger,
	}
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	input := new(CheckoutInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	order, err := h.service.Checkout(ctx, userID, domain.CustomerInfo{
		Name:          input.Name,
		Phone:         input.Phone,
		Address:       input.Address,
		PaymentMethod: domain.PaymentMethod(input.PaymentMethod),
	})
	if err != nil {
		if validate.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, service.ErrCartEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "корзина пуста",
			})
		}

		logging.Error(
			ctx,
			h.logger,
			"checkout failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	orders, err := h.service.ListOrders(ctx, userID)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"order listing failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	order, err := h.service.GetOrder(ctx, userID, c.Params("id"))
	if err != nil {
		return h.orderError(c, ctx, err, userID)
	}

	return c.JSON(order)
}

func (h *OrderHandler) OrderStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	view, err := h.service.OrderStatus(ctx, userID, c.Params("id"))
	if err != nil {
		return h.orderError(c, ctx, err, userID)
	}

	return c.JSON(view)
}

func (h *OrderHandler) EditOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	input := new(service.EditOrderInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	order, err := h.service.EditOrder(ctx, userID, c.Params("id"), *input)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotEditable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "заказ уже нельзя изменить",
			})
		}
		if errors.Is(err, service.ErrOrderEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "заказ не может быть пустым",
			})
		}
		if errors.Is(err, catalog.ErrProductNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "товар не найден",
			})
		}
		if validate.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		return h.orderError(c, ctx, err, userID)
	}

	return c.JSON(order)
}

func (h *OrderHandler) Reorder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	cart, prefill, err := h.service.Reorder(ctx, userID, c.Params("id"))
	if err != nil {
		return h.orderError(c, ctx, err, userID)
	}

	return c.JSON(fiber.Map{
		"cart":         cart,
		"customerInfo": prefill,
	})
}

func (h *OrderHandler) Track(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	order, err := h.service.Track(ctx, userID, c.Params("id"))
	if err != nil {
		return h.orderError(c, ctx, err, userID)
	}

	return c.JSON(order)
}

func (h *OrderHandler) orderError(c *fiber.Ctx, ctx context.Context, err error, userID string) error {
	if errors.Is(err, repository.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "заказ не найден",
		})
	}

	logging.Warn(
		ctx,
		h.logger,
		"order operation failed",
		zap.String("user_id", userID),
		zap.Error(err),
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
