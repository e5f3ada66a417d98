package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is a server-tracked login, revocable independent of token expiry.
// The only mutation in its lifetime is flipping IsActive to false.
type Session struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"-"`
	IP        *string        `gorm:"size:64" json:"ip"`
	Device    *string        `gorm:"size:255" json:"device"`
	IsActive  bool           `gorm:"not null;default:true" json:"isActive"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}
