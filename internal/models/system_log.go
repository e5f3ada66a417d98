package models

import (
	"time"

	"gorm.io/datatypes"
)

// SystemLog persists ERROR+ structured logs. Reference and ProviderID carry
// the correlation data needed to manually reconcile a payment stuck in
// "initiated" after a crash between provider capture and the local write.
type SystemLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
	Level      string         `gorm:"size:10;not null;index" json:"level"`
	Message    string         `gorm:"type:text" json:"message"`
	TraceID    string         `gorm:"size:36;index" json:"trace_id"`
	UserID     *string        `gorm:"size:36" json:"user_id"`
	Action     string         `gorm:"size:100" json:"action"`
	Reference  string         `gorm:"size:20;index" json:"reference"`
	ProviderID string         `gorm:"size:255" json:"provider_id"`
	Error      string         `gorm:"type:text" json:"error"`
	Extra      datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"extra"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}
