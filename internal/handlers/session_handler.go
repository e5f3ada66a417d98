package handlers

import (
	"errors"

	"github.com/cardpayhq/cardpay-backend/internal/apperr"
	"github.com/cardpayhq/cardpay-backend/internal/dto"
	"github.com/cardpayhq/cardpay-backend/internal/middleware"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) GetCurrent(c *fiber.Ctx) error {
	session, err := h.sessionService.GetSession(middleware.CurrentSessionID(c))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return apperr.NotFound("Session not found")
		}
		return err
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Session retrieved!",
		Data:    session,
	})
}

func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if _, err := h.sessionService.DeactivateSession(middleware.CurrentSessionID(c)); err != nil {
		if !errors.Is(err, services.ErrSessionNotFound) {
			return err
		}
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Logged out successfully!",
	})
}
