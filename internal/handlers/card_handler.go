package handlers

import (
	"errors"

	"github.com/cardpayhq/cardpay-backend/internal/apperr"
	"github.com/cardpayhq/cardpay-backend/internal/dto"
	"github.com/cardpayhq/cardpay-backend/internal/middleware"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CardHandler struct {
	cardService *services.CardService
}

func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

func (h *CardHandler) Add(c *fiber.Ctx) error {
	var req dto.AddCardRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.CardToken == "" || req.VerificationToken == "" || req.CardholderName == "" {
		return apperr.Validation("cardToken, verificationToken and cardholderName are required")
	}

	user := middleware.CurrentUser(c)

	card, err := h.cardService.CreateCard(c.Context(), req.CardToken, req.CardholderName, req.VerificationToken, user)
	if err != nil {
		if errors.Is(err, services.ErrNoCardFromProvider) {
			return apperr.Conflict(err.Error())
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		Status:  true,
		Message: "Card added!",
		Data:    card,
	})
}

// Get returns the card with its payments. Ownership is checked against the
// requester's preloaded card set; a miss is not-found, never forbidden, so
// card ids cannot be probed.
func (h *CardHandler) Get(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("cardId")
	if err != nil || cardID <= 0 {
		return apperr.NotFound("Card not found")
	}

	user := middleware.CurrentUser(c)
	if !user.HasCard(uint(cardID)) {
		return apperr.NotFound("Card not found")
	}

	card, err := h.cardService.GetCardWithPayments(uint(cardID))
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			return apperr.NotFound("Card not found!")
		}
		return err
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Card retrieved!",
		Data:    card,
	})
}

func (h *CardHandler) Disable(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("cardId")
	if err != nil || cardID <= 0 {
		return apperr.NotFound("Card not found")
	}

	user := middleware.CurrentUser(c)
	if !user.HasCard(uint(cardID)) {
		return apperr.NotFound("Card not found")
	}

	card, err := h.cardService.DisableCard(c.Context(), uint(cardID))
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			return apperr.NotFound("Card not found")
		}
		return err
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Card disabled!",
		Data:    card,
	})
}
