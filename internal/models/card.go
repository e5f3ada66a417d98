package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Card is a reusable payment instrument registered with the provider. The
// provider card id and the one-time verification token are unique system-wide.
// Enabled flips to false on disable and never flips back.
type Card struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"-"`
	ProviderCardID    string         `gorm:"size:255;not null;uniqueIndex" json:"-"`
	VerificationToken string         `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Enabled           bool           `gorm:"not null;default:true" json:"enabled"`
	Last4             string         `gorm:"size:4;not null" json:"last4"`
	CardholderName    string         `gorm:"size:255;not null" json:"cardholderName"`
	CardBrand         string         `gorm:"size:50;not null" json:"cardBrand"`
	CardType          string         `gorm:"size:50;not null" json:"cardType"`
	ExpMonth          int            `gorm:"not null" json:"expMonth"`
	ExpYear           int            `gorm:"not null" json:"expYear"`
	Metadata          datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Payments []Payment `gorm:"foreignKey:CardID" json:"payments,omitempty"`
}

func (Card) TableName() string {
	return "cards"
}
