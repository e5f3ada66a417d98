package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/cardpayhq/cardpay-backend/internal/provider"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrNoPaymentFromProvider = errors.New("could not get payment information from provider")
	ErrReferenceExhausted    = errors.New("could not generate a unique payment reference")
)

const (
	referenceAlphabet = "QWERTYUIOPASDFGHJKLZXCVBNM0123456789"
	referenceLength   = 10
	referenceAttempts = 3
)

type PaymentService struct {
	db      *gorm.DB
	gateway provider.Gateway
}

func NewPaymentService(db *gorm.DB, gateway provider.Gateway) *PaymentService {
	return &PaymentService{db: db, gateway: gateway}
}

type InitPaymentParams struct {
	CardID   uint
	UserID   uint
	Amount   decimal.Decimal
	Currency string
}

// InitPayment persists a new payment in the initiated state with a freshly
// generated reference. Uniqueness is guaranteed by the database constraint; on
// the (negligible but possible) collision the insert is retried with a new
// code before giving up.
func (s *PaymentService) InitPayment(params InitPaymentParams) (*models.Payment, error) {
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		payment := models.Payment{
			UserID:    params.UserID,
			CardID:    params.CardID,
			Reference: newReference(referenceLength),
			Amount:    params.Amount,
			Currency:  params.Currency,
			Status:    models.PaymentInitiated,
		}

		err := s.db.Create(&payment).Error
		if err == nil {
			return &payment, nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return nil, ErrReferenceExhausted
}

// DebitCard captures the payment's amount through the provider. The caller
// guarantees status == initiated and that Card and User are loaded.
//
// Any provider failure marks the payment failed before the error is surfaced.
// The converse crash window, where the provider accepted the charge but the
// local update never ran, leaves the payment initiated with funds captured;
// the reference and provider payment id logged here are the correlation data
// for resolving that out of band.
func (s *PaymentService) DebitCard(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.Card == nil || payment.User == nil {
		return nil, fmt.Errorf("payment %d missing card or user association", payment.ID)
	}

	providerPayment, err := s.gateway.CreatePayment(ctx, provider.CreatePaymentParams{
		IdempotencyKey: uuid.NewString(),
		SourceID:       payment.Card.ProviderCardID,
		CustomerID:     payment.User.ProviderCustomerID,
		Amount: provider.Money{
			Amount:   MinorUnits(payment.Amount),
			Currency: payment.Currency,
		},
		ReferenceID: payment.Reference,
	})
	if err != nil {
		s.markFailed(payment, err)
		return nil, err
	}
	if providerPayment == nil || providerPayment.ID == "" {
		s.markFailed(payment, nil)
		return nil, ErrNoPaymentFromProvider
	}

	updates := map[string]any{
		"status":              models.PaymentSuccessful,
		"provider_payment_id": providerPayment.ID,
		"metadata":            datatypes.JSON(providerPayment.Raw),
	}
	if err := s.db.Model(payment).Updates(updates).Error; err != nil {
		slog.Error("payment captured by provider but local update failed",
			"reference", payment.Reference,
			"provider_id", providerPayment.ID,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("failed to record captured payment: %w", err)
	}
	return payment, nil
}

func (s *PaymentService) markFailed(payment *models.Payment, cause error) {
	updates := map[string]any{"status": models.PaymentFailed}

	var apiErr *provider.APIError
	if errors.As(cause, &apiErr) && len(apiErr.Raw) > 0 {
		updates["metadata"] = datatypes.JSON(apiErr.Raw)
	}

	if err := s.db.Model(payment).Updates(updates).Error; err != nil {
		slog.Error("failed to mark payment failed",
			"reference", payment.Reference,
			"error", err.Error(),
		)
	}
}

// CancelPayment is local-only: the payment was never captured, so no provider
// call is made. The caller guarantees status == initiated.
func (s *PaymentService) CancelPayment(payment *models.Payment) (*models.Payment, error) {
	if err := s.db.Model(payment).Update("status", models.PaymentCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel payment: %w", err)
	}
	return payment, nil
}

// FindByReference loads the payment addressed by its client-facing reference,
// with the card and user needed for the debit step.
func (s *PaymentService) FindByReference(reference string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Preload("Card").Preload("User").
		Where("reference = ?", reference).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

func (s *PaymentService) GetPaymentWithCard(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Preload("Card").First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

func (s *PaymentService) GetPayment(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

// MinorUnits converts a major-unit decimal amount to the provider's integer
// minor-unit representation.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func newReference(length int) string {
	max := big.NewInt(int64(len(referenceAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
		}
		code[i] = referenceAlphabet[n.Int64()]
	}
	return string(code)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
