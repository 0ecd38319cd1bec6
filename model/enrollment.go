package model

import (
	"time"
)

// EnrollmentStatus describes the learner's enrollment lifecycle
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentApproved  EnrollmentStatus = "approved"
	EnrollmentRejected  EnrollmentStatus = "rejected"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// ValidEnrollmentStatus reports whether s is a known status value.
func ValidEnrollmentStatus(s EnrollmentStatus) bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected, EnrollmentCompleted:
		return true
	}
	return false
}

// CanTransition reports whether the status state machine allows moving
// from one status to another. completed and rejected are terminal.
func (s EnrollmentStatus) CanTransition(to EnrollmentStatus) bool {
	switch s {
	case EnrollmentPending:
		return to == EnrollmentApproved || to == EnrollmentRejected
	case EnrollmentApproved:
		return to == EnrollmentCompleted || to == EnrollmentRejected
	}
	return false
}

// Enrollment links one learner to one course. The (learner, course) pair
// is unique; the composite index makes the database reject a duplicate
// enroll even under concurrent requests.
type Enrollment struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	LearnerID       uint             `gorm:"not null;uniqueIndex:idx_enrollments_learner_course" json:"learner_id"`
	CourseID        uint             `gorm:"not null;uniqueIndex:idx_enrollments_learner_course" json:"course_id"`
	Status          EnrollmentStatus `gorm:"type:varchar(20);default:'approved'" json:"status"`
	ProgressPercent int              `gorm:"default:0" json:"progress_percent"`
	EnrolledAt      time.Time        `gorm:"autoCreateTime" json:"enrolled_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	IsActive        bool             `gorm:"default:true" json:"is_active"`

	// Relationships
	Learner User   `gorm:"foreignKey:LearnerID" json:"learner,omitempty"`
	Course  Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
