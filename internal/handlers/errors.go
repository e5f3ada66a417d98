package handlers

import (
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/cardpayhq/cardpay-backend/internal/apperr"
	"github.com/cardpayhq/cardpay-backend/internal/config"
	"github.com/cardpayhq/cardpay-backend/internal/dto"
	"github.com/cardpayhq/cardpay-backend/internal/provider"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandler renders every handler error through the error envelope. It
// translates the known shapes (apperr taxonomy, provider rejections, database
// uniqueness violations) and treats the rest as unexpected server errors: a
// generic message in production, full detail elsewhere.
func ErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return c.Status(appErr.StatusCode).JSON(dto.ErrorResponse{
				Status: false,
				Error: dto.ErrorBody{
					Type:    appErr.Type(),
					Message: appErr.Message,
				},
			})
		}

		var apiErr *provider.APIError
		if errors.As(err, &apiErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Status: false,
				Error: dto.ErrorBody{
					Type:    "client error",
					Message: apiErr.FirstDetail(),
				},
			})
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Status: false,
				Error: dto.ErrorBody{
					Type:    "client error",
					Message: "duplicate value violates a uniqueness constraint",
				},
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Status: false,
				Error: dto.ErrorBody{
					Type:    "client error",
					Message: fiberErr.Message,
				},
			})
		}

		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)

		body := dto.ErrorBody{
			Type:    "server error",
			Message: "Something went wrong. Our engineers are on it",
		}
		if !cfg.IsProd() {
			body.Message = err.Error()
			body.Stack = string(debug.Stack())
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Status: false,
			Error:  body,
		})
	}
}
