package model

import (
	"time"

	"gorm.io/gorm"
)

// Course difficulty levels
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// ValidLevel reports whether level is a known course level.
func ValidLevel(level string) bool {
	return level == LevelBeginner || level == LevelIntermediate || level == LevelAdvanced
}

// Course represents a language-learning course offered by a facilitator.
// DeletedAt carries both the soft-delete flag and the delete timestamp;
// soft-deleted courses are excluded from all default queries and can be
// restored by clearing it.
type Course struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	Language        string         `gorm:"not null;index" json:"language"` // e.g., "Twi", "Ewe"
	Level           string         `gorm:"type:varchar(20);default:'Beginner'" json:"level"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
	FacilitatorID   uint           `gorm:"not null;index" json:"facilitator_id"`
	CoverURL        string         `json:"cover_url,omitempty"`

	// Relationships
	Facilitator User             `gorm:"foreignKey:FacilitatorID" json:"facilitator,omitempty"`
	Materials   []CourseMaterial `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"materials,omitempty"`
	Enrollments []Enrollment     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// CourseMaterial is a PDF attachment (lesson notes, workbook) uploaded by
// the course facilitator and served from object storage.
type CourseMaterial struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Title     string         `gorm:"not null" json:"title"`
	FileURL   string         `gorm:"not null" json:"file_url"`
	PageCount int            `json:"page_count"`
	FileSize  int64          `json:"file_size"`

	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}
