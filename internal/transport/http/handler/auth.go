package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hunter4ass/OWLD/internal/domain"
	"github.com/hunter4ass/OWLD/internal/service"
	"github.com/hunter4ass/OWLD/pkg/logging"
	"github.com/hunter4ass/OWLD/pkg/utils"
	"github.com/hunter4ass/OWLD/pkg/validate"
	"go.uber.org/zap"
)

const handlerTimeout = 5 * time.Second

// SessionEnder tears down everything tied to a user session on logout.
type SessionEnder interface {
	EndSession(ctx context.Context, userID string) error
}

type AuthHandler struct {
	service  service.AuthService
	sessions SessionEnder
	validate *validator.Validate
	logger   *zap.Logger
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func NewAuthHandler(authService service.AuthService, sessions SessionEnder, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  authService,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	input := new(RegisterInput)

	if err := c.BodyParser(input); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"failed to parse body in register",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	user, tokens, err := h.service.Register(ctx, input.Name, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "аккаунт с таким email уже существует",
				"code":  "EMAIL_TAKEN",
			})
		}
		if validate.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		logging.Error(
			ctx,
			h.logger,
			"register failed",
			zap.String("email", input.Email),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	logging.Info(
		ctx,
		h.logger,
		"register user succeeded",
		zap.String("user_id", user.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	input := new(LoginInput)

	if err := c.BodyParser(input); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"body parsing failed",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	user, tokens, err := h.service.Login(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "неверный email или пароль",
			})
		}

		logging.Warn(
			ctx,
			h.logger,
			"login failed",
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	var input struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "refresh token is required",
		})
	}

	tokens, err := h.service.Refresh(ctx, input.RefreshToken)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"refresh failed",
			zap.Error(err),
		)

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid refresh token",
		})
	}

	return c.JSON(tokens)
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	user, err := h.service.GetMe(ctx, userID)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"get me failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	return c.JSON(user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	input := new(UpdateProfileInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	user, err := h.service.UpdateProfile(ctx, userID, &domain.UpdateProfileInput{
		Name:  input.Name,
		Email: input.Email,
	})
	if err != nil {
		if validate.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		logging.Warn(
			ctx,
			h.logger,
			"profile update failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(user)
}

// Logout stops the user's order progressions and clears their cart. The
// session simply expires with the token, there is no server-side revocation.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "userId parsing error"})
	}

	if err := h.sessions.EndSession(ctx, userID); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"session teardown failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"success": true})
}
