package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/noatrans/noatrans-api/model"
	"gorm.io/gorm"
)

// MaterialUploader stores course material files and returns their public
// URL. Satisfied by storage.SpacesClient.
type MaterialUploader interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// CourseService owns the course lifecycle and its ownership rules
type CourseService struct {
	db       *gorm.DB
	uploader MaterialUploader
}

// NewCourseService creates a new course service. The uploader may be nil
// when object storage is not configured; material uploads then fail with
// an explicit error instead of a panic.
func NewCourseService(db *gorm.DB, uploader MaterialUploader) *CourseService {
	return &CourseService{db: db, uploader: uploader}
}

// CreateCourseInput carries the fields accepted on course creation
type CreateCourseInput struct {
	Title           string `json:"title" validate:"required,min=3,max=255"`
	Description     string `json:"description" validate:"required,max=5000"`
	Language        string `json:"language" validate:"required,min=2,max=100"`
	Level           string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1"`
}

// UpdateCourseInput carries the optional fields accepted on course update
type UpdateCourseInput struct {
	Title           *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	Language        *string `json:"language" validate:"omitempty,min=2,max=100"`
	Level           *string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1"`
}

// CourseFilter narrows course listings
type CourseFilter struct {
	Search         string
	Language       string
	Level          string
	IncludeDeleted bool
	Page           int
	Limit          int
}

// Create persists a new course owned by the principal. Only facilitators
// and admins may create courses.
func (s *CourseService) Create(ctx context.Context, principal model.Principal, input CreateCourseInput) (*model.Course, error) {
	if principal.Role != model.RoleFacilitator && principal.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only facilitators can create courses", ErrForbidden)
	}

	if input.Title == "" || input.Description == "" || input.Language == "" {
		return nil, fmt.Errorf("%w: title, description, and language are required", ErrValidation)
	}

	if input.Level == "" {
		input.Level = model.LevelBeginner
	}
	if !model.ValidLevel(input.Level) {
		return nil, fmt.Errorf("%w: unknown course level %q", ErrValidation, input.Level)
	}

	course := model.Course{
		Title:           input.Title,
		Description:     input.Description,
		Language:        input.Language,
		Level:           input.Level,
		DurationMinutes: input.DurationMinutes,
		FacilitatorID:   principal.UserID,
	}

	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, err
	}

	s.db.WithContext(ctx).Preload("Facilitator").First(&course, course.ID)

	return &course, nil
}

// List returns courses matching the filter, newest first. Soft-deleted
// courses are excluded unless the filter explicitly includes them
// (admin moderation listings).
func (s *CourseService) List(ctx context.Context, filter CourseFilter) ([]model.Course, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Course{})
	if filter.IncludeDeleted {
		query = query.Unscoped()
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var courses []model.Course
	err := query.Preload("Facilitator").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&courses).Error
	if err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// GetByID returns the course when it exists and is not soft-deleted
func (s *CourseService) GetByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).
		Preload("Facilitator").
		Preload("Materials").
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course not found", ErrNotFound)
		}
		return nil, err
	}
	return &course, nil
}

// Update applies the provided fields. Only the owning facilitator or an
// admin may update a course; a soft-deleted course reads as missing.
func (s *CourseService) Update(ctx context.Context, principal model.Principal, id uint, input UpdateCourseInput) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course not found", ErrNotFound)
		}
		return nil, err
	}

	if err := s.authorizeOwner(principal, &course); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		course.Title = *input.Title
	}
	if input.Description != nil {
		if *input.Description == "" {
			return nil, fmt.Errorf("%w: description cannot be empty", ErrValidation)
		}
		course.Description = *input.Description
	}
	if input.Language != nil {
		if *input.Language == "" {
			return nil, fmt.Errorf("%w: language cannot be empty", ErrValidation)
		}
		course.Language = *input.Language
	}
	if input.Level != nil {
		if !model.ValidLevel(*input.Level) {
			return nil, fmt.Errorf("%w: unknown course level %q", ErrValidation, *input.Level)
		}
		course.Level = *input.Level
	}
	if input.DurationMinutes != nil {
		course.DurationMinutes = *input.DurationMinutes
	}

	if err := s.db.WithContext(ctx).Save(&course).Error; err != nil {
		return nil, err
	}

	s.db.WithContext(ctx).Preload("Facilitator").First(&course, course.ID)

	return &course, nil
}

// SoftDelete marks the course deleted. Deleting an already-deleted course
// is rejected, symmetric with Restore.
func (s *CourseService) SoftDelete(ctx context.Context, principal model.Principal, id uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).Unscoped().First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course not found", ErrNotFound)
		}
		return nil, err
	}

	if err := s.authorizeOwner(principal, &course); err != nil {
		return nil, err
	}

	if course.DeletedAt.Valid {
		return nil, fmt.Errorf("%w: course is already deleted", ErrInvalidState)
	}

	if err := s.db.WithContext(ctx).Delete(&course).Error; err != nil {
		return nil, err
	}

	s.db.WithContext(ctx).Unscoped().First(&course, id)

	return &course, nil
}

// Restore clears the delete flag on a soft-deleted course
func (s *CourseService) Restore(ctx context.Context, principal model.Principal, id uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).Unscoped().First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course not found", ErrNotFound)
		}
		return nil, err
	}

	if err := s.authorizeOwner(principal, &course); err != nil {
		return nil, err
	}

	if !course.DeletedAt.Valid {
		return nil, fmt.Errorf("%w: course is not deleted", ErrInvalidState)
	}

	err := s.db.WithContext(ctx).Unscoped().
		Model(&course).
		Update("deleted_at", nil).Error
	if err != nil {
		return nil, err
	}

	s.db.WithContext(ctx).Preload("Facilitator").First(&course, id)

	return &course, nil
}

// AttachMaterial validates and stores a course material PDF, then records
// it against the course.
func (s *CourseService) AttachMaterial(ctx context.Context, principal model.Principal, courseID uint, title string, content []byte, pageCount int) (*model.CourseMaterial, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course not found", ErrNotFound)
		}
		return nil, err
	}

	if err := s.authorizeOwner(principal, &course); err != nil {
		return nil, err
	}

	if title == "" {
		return nil, fmt.Errorf("%w: material title is required", ErrValidation)
	}

	if s.uploader == nil {
		return nil, errors.New("object storage is not configured")
	}

	key := fmt.Sprintf("materials/%d/%s.pdf", courseID, title)
	fileURL, err := s.uploader.UploadBytes(ctx, key, content, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to store material: %w", err)
	}

	material := model.CourseMaterial{
		CourseID:  courseID,
		Title:     title,
		FileURL:   fileURL,
		PageCount: pageCount,
		FileSize:  int64(len(content)),
	}

	if err := s.db.WithContext(ctx).Create(&material).Error; err != nil {
		return nil, err
	}

	return &material, nil
}

// ListMaterials returns the materials of a non-deleted course
func (s *CourseService) ListMaterials(ctx context.Context, courseID uint) ([]model.CourseMaterial, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: course not found", ErrNotFound)
		}
		return nil, err
	}

	var materials []model.CourseMaterial
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&materials).Error
	if err != nil {
		return nil, err
	}

	return materials, nil
}

// authorizeOwner allows the owning facilitator or any admin
func (s *CourseService) authorizeOwner(principal model.Principal, course *model.Course) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.Role == model.RoleFacilitator && course.FacilitatorID == principal.UserID {
		return nil
	}
	return fmt.Errorf("%w: you do not own this course", ErrForbidden)
}
