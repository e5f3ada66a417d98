package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

// initiated is the sole entry state; the other three are terminal.
const (
	PaymentInitiated  PaymentStatus = "initiated"
	PaymentSuccessful PaymentStatus = "successful"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

func (s PaymentStatus) Terminal() bool {
	return s != PaymentInitiated
}

// SupportedCurrencies is the constrained set accepted for new payments.
var SupportedCurrencies = []string{"USD", "EUR"}

// Payment records a single debit against one card. Reference is the locally
// generated, client-facing identifier and the only handle exposed for the
// capture step. Amount is stored in major units; minor-unit conversion happens
// at the provider boundary.
type Payment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"-"`
	CardID            uint            `gorm:"not null;index" json:"cardId"`
	Reference         string          `gorm:"size:10;not null;uniqueIndex" json:"reference"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency          string          `gorm:"size:3;not null" json:"currency"`
	Status            PaymentStatus   `gorm:"size:20;not null;default:'initiated'" json:"status"`
	ProviderPaymentID *string         `gorm:"size:255" json:"-"`
	Metadata          datatypes.JSON  `gorm:"type:jsonb" json:"-"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`

	Card *Card `gorm:"foreignKey:CardID" json:"card,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
