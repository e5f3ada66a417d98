package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardpayhq/cardpay-backend/internal/models"
	"github.com/cardpayhq/cardpay-backend/internal/provider"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrNoCardFromProvider = errors.New("could not get card information from provider")
)

type CardService struct {
	db      *gorm.DB
	gateway provider.Gateway
}

func NewCardService(db *gorm.DB, gateway provider.Gateway) *CardService {
	return &CardService{db: db, gateway: gateway}
}

// CreateCard registers a reusable card with the provider from a one-time
// source token and persists the provider-reported fields. The idempotency key
// is fresh per call; a client retry reaching this method again is a new
// provider registration.
func (s *CardService) CreateCard(ctx context.Context, cardToken, cardholderName, verificationToken string, user *models.User) (*models.Card, error) {
	providerCard, err := s.gateway.CreateCard(ctx, provider.CreateCardParams{
		IdempotencyKey:    uuid.NewString(),
		SourceID:          cardToken,
		VerificationToken: verificationToken,
		CustomerID:        user.ProviderCustomerID,
		CardholderName:    cardholderName,
	})
	if err != nil {
		return nil, err
	}
	if providerCard == nil || providerCard.ID == "" {
		return nil, ErrNoCardFromProvider
	}

	enabled := true
	if providerCard.Enabled != nil {
		enabled = *providerCard.Enabled
	}

	card := models.Card{
		UserID:            user.ID,
		ProviderCardID:    providerCard.ID,
		VerificationToken: verificationToken,
		Enabled:           enabled,
		Last4:             providerCard.Last4,
		CardholderName:    providerCard.CardholderName,
		CardBrand:         providerCard.CardBrand,
		CardType:          providerCard.CardType,
		ExpMonth:          providerCard.ExpMonth,
		ExpYear:           providerCard.ExpYear,
		Metadata:          datatypes.JSON(providerCard.Raw),
	}

	if err := s.db.Create(&card).Error; err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return &card, nil
}

// DisableCard disables the card at the provider and mirrors the resulting
// enabled flag locally, falling back to false when the provider response
// lacks one. Disabling an already-disabled card is safe.
func (s *CardService) DisableCard(ctx context.Context, id uint) (*models.Card, error) {
	var card models.Card
	if err := s.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to load card: %w", err)
	}

	providerCard, err := s.gateway.DisableCard(ctx, card.ProviderCardID)
	if err != nil {
		return nil, err
	}

	enabled := false
	var metadata datatypes.JSON
	if providerCard != nil {
		if providerCard.Enabled != nil {
			enabled = *providerCard.Enabled
		}
		metadata = datatypes.JSON(providerCard.Raw)
	}

	updates := map[string]any{"enabled": enabled}
	if metadata != nil {
		updates["metadata"] = metadata
	}
	if err := s.db.Model(&card).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	return &card, nil
}

// GetCardWithPayments returns the card aggregate with its payments preloaded.
func (s *CardService) GetCardWithPayments(id uint) (*models.Card, error) {
	var card models.Card
	if err := s.db.Preload("Payments").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to load card: %w", err)
	}
	return &card, nil
}
