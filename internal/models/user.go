package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User owns cards, sessions and payments. The password hash, the provider
// customer id and the raw provider metadata never leave the API.
type User struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	FirstName          string         `gorm:"size:100;not null" json:"firstName"`
	LastName           string         `gorm:"size:100;not null" json:"lastName"`
	EmailAddress       string         `gorm:"size:255;not null;uniqueIndex" json:"emailAddress"`
	Password           string         `gorm:"not null" json:"-"`
	ProviderCustomerID string         `gorm:"size:255;not null" json:"-"`
	Metadata           datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Cards    []Card    `gorm:"foreignKey:UserID" json:"cards,omitempty"`
	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
	Payments []Payment `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasCard reports whether the given card id belongs to this user's preloaded
// card set. A miss is reported to clients as not-found, never as forbidden.
func (u *User) HasCard(cardID uint) bool {
	return u.FindCard(cardID) != nil
}

func (u *User) FindCard(cardID uint) *Card {
	for i := range u.Cards {
		if u.Cards[i].ID == cardID {
			return &u.Cards[i]
		}
	}
	return nil
}
