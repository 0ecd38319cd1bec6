package model

import (
	"time"

	"gorm.io/datatypes"
)

// CronJobLog tracks every scheduled maintenance job run
type CronJobLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	JobName     string         `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status      string         `gorm:"type:varchar(20);not null" json:"status"` // running, completed, failed
	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Message     string         `json:"message,omitempty"`
	ErrorMsg    string         `json:"error_msg,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
}
