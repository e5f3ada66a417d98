package handlers

import (
	"errors"
	"slices"

	"github.com/cardpayhq/cardpay-backend/internal/apperr"
	"github.com/cardpayhq/cardpay-backend/internal/dto"
	"github.com/cardpayhq/cardpay-backend/internal/middleware"
	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/cardpayhq/cardpay-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Init(c *fiber.Ctx) error {
	var req dto.InitPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	user := middleware.CurrentUser(c)

	card := user.FindCard(req.CardID)
	if card == nil {
		return apperr.NotFound("Card not found")
	}
	if !card.Enabled {
		return apperr.Validation("Card not enabled")
	}
	if !req.Amount.IsPositive() {
		return apperr.Validation("Amount must be greater than zero")
	}
	if !slices.Contains(models.SupportedCurrencies, req.Currency) {
		return apperr.Validation("Currency must be one of USD, EUR")
	}

	payment, err := h.paymentService.InitPayment(services.InitPaymentParams{
		CardID:   card.ID,
		UserID:   user.ID,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		if errors.Is(err, services.ErrReferenceExhausted) {
			return apperr.Conflict(err.Error())
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		Status:  true,
		Message: "Payment initiated!",
		Data:    payment,
	})
}

// Debit captures an initiated payment addressed by its reference. An unknown
// reference is 404 before any ownership check; a known reference owned by
// someone else is 403, since the caller evidently holds the code already.
func (h *PaymentHandler) Debit(c *fiber.Ctx) error {
	reference := c.Params("reference")

	payment, err := h.paymentService.FindByReference(reference)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return apperr.NotFound("Payment not found")
		}
		return err
	}

	user := middleware.CurrentUser(c)
	if payment.UserID != user.ID {
		return apperr.Forbidden("Forbidden")
	}
	if payment.Status != models.PaymentInitiated {
		return apperr.Validation(`Only payments with status="initiated" can be processed`)
	}

	debited, err := h.paymentService.DebitCard(c.Context(), payment)
	if err != nil {
		if errors.Is(err, services.ErrNoPaymentFromProvider) {
			return apperr.Conflict(err.Error())
		}
		return err
	}

	// Hide the preloaded associations from the response.
	debited.Card = nil
	debited.User = nil

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Card debitted!",
		Data:    debited,
	})
}

func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	paymentID, err := c.ParamsInt("paymentId")
	if err != nil || paymentID <= 0 {
		return apperr.NotFound("Payment not found")
	}

	payment, err := h.paymentService.GetPaymentWithCard(uint(paymentID))
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return apperr.NotFound("Payment not found")
		}
		return err
	}

	user := middleware.CurrentUser(c)
	if payment.UserID != user.ID {
		return apperr.Forbidden("Forbidden")
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Payment retrieved!",
		Data:    payment,
	})
}

func (h *PaymentHandler) Cancel(c *fiber.Ctx) error {
	paymentID, err := c.ParamsInt("paymentId")
	if err != nil || paymentID <= 0 {
		return apperr.NotFound("Payment not found")
	}

	payment, err := h.paymentService.GetPayment(uint(paymentID))
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return apperr.NotFound("Payment not found")
		}
		return err
	}

	user := middleware.CurrentUser(c)
	if payment.UserID != user.ID {
		return apperr.Forbidden("Forbidden")
	}
	if payment.Status != models.PaymentInitiated {
		return apperr.Validation(`Only payments with status="initiated" can be cancelled`)
	}

	cancelled, err := h.paymentService.CancelPayment(payment)
	if err != nil {
		return err
	}

	return c.JSON(dto.Response{
		Status:  true,
		Message: "Payment updated!",
		Data:    cancelled,
	})
}
