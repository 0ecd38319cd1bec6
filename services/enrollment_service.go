package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noatrans/noatrans-api/model"
	"gorm.io/gorm"
)

// EnrollmentService owns the learner-course relationship lifecycle
type EnrollmentService struct {
	db *gorm.DB
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// Enroll creates an enrollment for the learner in a non-deleted course.
// The (learner, course) uniqueness is enforced by the database index, so
// two concurrent enrolls cannot both succeed; the duplicate-key error
// from the store maps to Conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, principal model.Principal, courseID uint) (*model.Enrollment, error) {
	if principal.Role != model.RoleLearner {
		return nil, fmt.Errorf("%w: only learners can enroll in courses", ErrForbidden)
	}

	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course not found", ErrNotFound)
		}
		return nil, err
	}

	enrollment := model.Enrollment{
		LearnerID:       principal.UserID,
		CourseID:        courseID,
		Status:          model.EnrollmentApproved,
		ProgressPercent: 0,
		EnrolledAt:      time.Now(),
		IsActive:        true,
	}

	if err := s.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: already enrolled in this course", ErrConflict)
		}
		return nil, err
	}

	s.db.WithContext(ctx).Preload("Course").First(&enrollment, enrollment.ID)

	return &enrollment, nil
}

// ListMine returns the learner's enrollments with their course summaries.
// Courses are resolved even when soft-deleted so past enrollments keep
// their context.
func (s *EnrollmentService) ListMine(ctx context.Context, principal model.Principal) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Where("learner_id = ?", principal.UserID).
		Preload("Course", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

// UpdateProgress sets the learner's progress on their own enrollment.
// Values are clamped to [0,100]; reaching 100 completes the enrollment
// and stamps CompletedAt once.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, principal model.Principal, enrollmentID uint, percent int) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := s.db.WithContext(ctx).First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: enrollment not found", ErrNotFound)
		}
		return nil, err
	}

	if enrollment.LearnerID != principal.UserID {
		return nil, fmt.Errorf("%w: not your enrollment", ErrForbidden)
	}

	if enrollment.Status == model.EnrollmentRejected {
		return nil, fmt.Errorf("%w: enrollment was rejected", ErrInvalidState)
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	enrollment.ProgressPercent = percent
	if percent >= 100 {
		enrollment.Status = model.EnrollmentCompleted
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	}

	if err := s.db.WithContext(ctx).Save(&enrollment).Error; err != nil {
		return nil, err
	}

	return &enrollment, nil
}

// UpdateStatus is the facilitator/admin moderation override. Only the
// course-owning facilitator or an admin may change status, and only
// along the allowed transitions: pending→approved, pending→rejected,
// approved→rejected, approved→completed.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, principal model.Principal, enrollmentID uint, status model.EnrollmentStatus) (*model.Enrollment, error) {
	if !model.ValidEnrollmentStatus(status) {
		return nil, fmt.Errorf("%w: unknown enrollment status %q", ErrValidation, status)
	}

	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&enrollment, enrollmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: enrollment not found", ErrNotFound)
		}
		return nil, err
	}

	if !principal.IsAdmin() {
		if principal.Role != model.RoleFacilitator || enrollment.Course.FacilitatorID != principal.UserID {
			return nil, fmt.Errorf("%w: you do not moderate this course", ErrForbidden)
		}
	}

	if !enrollment.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: cannot move enrollment from %s to %s", ErrInvalidState, enrollment.Status, status)
	}

	enrollment.Status = status
	switch status {
	case model.EnrollmentCompleted:
		enrollment.ProgressPercent = 100
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	case model.EnrollmentRejected:
		enrollment.IsActive = false
	}

	if err := s.db.WithContext(ctx).Save(&enrollment).Error; err != nil {
		return nil, err
	}

	return &enrollment, nil
}

// ListAllEnrolled returns every active enrollment with the learner
// identity resolved. Admin only.
func (s *EnrollmentService) ListAllEnrolled(ctx context.Context, principal model.Principal) ([]model.Enrollment, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Learner").
		Preload("Course", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
