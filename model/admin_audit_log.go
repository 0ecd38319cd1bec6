package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog records every moderation action performed through the
// admin surface (user updates, course takedowns, report access).
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	AdminID     uint           `gorm:"not null;index" json:"admin_id"`
	Action      string         `gorm:"type:varchar(50);not null" json:"action"`
	Resource    string         `gorm:"type:varchar(50);not null" json:"resource"`
	ResourceID  uint           `json:"resource_id"`
	OldValue    datatypes.JSON `json:"old_value,omitempty"`
	NewValue    datatypes.JSON `json:"new_value,omitempty"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	Description string         `json:"description"`

	Admin User `gorm:"foreignKey:AdminID" json:"-"`
}
