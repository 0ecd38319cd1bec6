package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/noatrans/noatrans-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseMaterial{},
		&model.Enrollment{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()

	user := model.User{
		FullName:     "Test " + role,
		UserName:     fmt.Sprintf("test-%s", strings.ToLower(role)),
		Email:        fmt.Sprintf("%s@example.com", strings.ToLower(role)),
		PasswordHash: "not-a-real-hash",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func principalFor(user *model.User) model.Principal {
	return model.Principal{UserID: user.ID, Role: user.Role}
}

func TestCourseCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)
	ctx := context.Background()

	facilitator := createTestUser(t, db, model.RoleFacilitator)

	course, err := svc.Create(ctx, principalFor(facilitator), CreateCourseInput{
		Title:           "Twi Basics",
		Description:     "Greetings and everyday phrases",
		Language:        "Twi",
		DurationMinutes: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, "Twi Basics", course.Title)
	assert.Equal(t, model.LevelBeginner, course.Level, "level defaults to Beginner")
	assert.Equal(t, facilitator.ID, course.FacilitatorID)
}

func TestCourseCreateRejectsLearner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)

	learner := createTestUser(t, db, model.RoleLearner)

	_, err := svc.Create(context.Background(), principalFor(learner), CreateCourseInput{
		Title:       "Twi Basics",
		Description: "Greetings",
		Language:    "Twi",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCourseCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)
	facilitator := createTestUser(t, db, model.RoleFacilitator)

	_, err := svc.Create(context.Background(), principalFor(facilitator), CreateCourseInput{
		Title: "Missing the rest",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), principalFor(facilitator), CreateCourseInput{
		Title:       "Twi Basics",
		Description: "Greetings",
		Language:    "Twi",
		Level:       "Expert",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCourseUpdateOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)
	ctx := context.Background()

	owner := createTestUser(t, db, model.RoleFacilitator)
	course, err := svc.Create(ctx, principalFor(owner), CreateCourseInput{
		Title:       "Ewe Basic Phrases",
		Description: "Introductions",
		Language:    "Ewe",
	})
	require.NoError(t, err)

	other := model.User{
		FullName: "Other Facilitator", UserName: "other-fac",
		Email: "other@example.com", PasswordHash: "x",
		Role: model.RoleFacilitator, IsActive: true,
	}
	require.NoError(t, db.Create(&other).Error)

	newTitle := "Ewe Phrases"
	_, err = svc.Update(ctx, principalFor(&other), course.ID, UpdateCourseInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden, "non-owning facilitator cannot update")

	updated, err := svc.Update(ctx, principalFor(owner), course.ID, UpdateCourseInput{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Ewe Phrases", updated.Title)
	assert.Equal(t, "Introductions", updated.Description, "unspecified fields are untouched")

	admin := model.User{
		FullName: "Admin", UserName: "admin-user",
		Email: "admin@example.com", PasswordHash: "x",
		Role: model.RoleAdmin, IsActive: true,
	}
	require.NoError(t, db.Create(&admin).Error)

	level := model.LevelIntermediate
	updated, err = svc.Update(ctx, principalFor(&admin), course.ID, UpdateCourseInput{Level: &level})
	require.NoError(t, err)
	assert.Equal(t, model.LevelIntermediate, updated.Level, "admin may update any course")
}

func TestCourseSoftDeleteAndRestore(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)
	ctx := context.Background()

	owner := createTestUser(t, db, model.RoleFacilitator)
	course, err := svc.Create(ctx, principalFor(owner), CreateCourseInput{
		Title:       "Intermediate Twi Conversation",
		Description: "Dialogue practice",
		Language:    "Twi",
		Level:       model.LevelIntermediate,
	})
	require.NoError(t, err)

	deleted, err := svc.SoftDelete(ctx, principalFor(owner), course.ID)
	require.NoError(t, err)
	assert.True(t, deleted.DeletedAt.Valid)

	// Hidden from reads and listings
	_, err = svc.GetByID(ctx, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	courses, total, err := svc.List(ctx, CourseFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, courses)

	// But visible to the moderation listing
	courses, total, err = svc.List(ctx, CourseFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, courses, 1)

	// Deleting again is an invalid state, not a silent no-op
	_, err = svc.SoftDelete(ctx, principalFor(owner), course.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	restored, err := svc.Restore(ctx, principalFor(owner), course.ID)
	require.NoError(t, err)
	assert.False(t, restored.DeletedAt.Valid)

	fetched, err := svc.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, fetched.ID)

	// Restoring a live course is the symmetric invalid state
	_, err = svc.Restore(ctx, principalFor(owner), course.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCourseDeleteRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)
	ctx := context.Background()

	owner := createTestUser(t, db, model.RoleFacilitator)
	course, err := svc.Create(ctx, principalFor(owner), CreateCourseInput{
		Title:       "Ga for Beginners",
		Description: "Sounds and spelling",
		Language:    "Ga",
	})
	require.NoError(t, err)

	learner := createTestUser(t, db, model.RoleLearner)
	_, err = svc.SoftDelete(ctx, principalFor(learner), course.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCourseListFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)
	ctx := context.Background()

	owner := createTestUser(t, db, model.RoleFacilitator)
	p := principalFor(owner)

	seed := []CreateCourseInput{
		{Title: "Twi Basics", Description: "Greetings", Language: "Twi"},
		{Title: "Twi Conversation", Description: "Dialogue", Language: "Twi", Level: model.LevelIntermediate},
		{Title: "Ewe Basic Phrases", Description: "Introductions", Language: "Ewe"},
	}
	for _, in := range seed {
		_, err := svc.Create(ctx, p, in)
		require.NoError(t, err)
	}

	_, total, err := svc.List(ctx, CourseFilter{Language: "Twi"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = svc.List(ctx, CourseFilter{Level: model.LevelIntermediate})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	courses, total, err := svc.List(ctx, CourseFilter{Search: "Phrases"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, courses, 1)
	assert.Equal(t, "Ewe Basic Phrases", courses[0].Title)

	// Pagination
	courses, total, err = svc.List(ctx, CourseFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, courses, 1)
}

type fakeUploader struct {
	lastKey string
}

func (f *fakeUploader) UploadBytes(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.lastKey = key
	return "https://cdn.example.com/" + key, nil
}

func TestAttachMaterial(t *testing.T) {
	db := setupTestDB(t)
	uploader := &fakeUploader{}
	svc := NewCourseService(db, uploader)
	ctx := context.Background()

	owner := createTestUser(t, db, model.RoleFacilitator)
	course, err := svc.Create(ctx, principalFor(owner), CreateCourseInput{
		Title:       "Twi Basics",
		Description: "Greetings",
		Language:    "Twi",
	})
	require.NoError(t, err)

	content := []byte("%PDF-1.4 fake")
	material, err := svc.AttachMaterial(ctx, principalFor(owner), course.ID, "Lesson 1", content, 12)
	require.NoError(t, err)
	assert.Equal(t, course.ID, material.CourseID)
	assert.Equal(t, int64(len(content)), material.FileSize)
	assert.Equal(t, 12, material.PageCount)
	assert.Contains(t, material.FileURL, "cdn.example.com")
	assert.NotEmpty(t, uploader.lastKey)

	materials, err := svc.ListMaterials(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, materials, 1)
}

func TestAttachMaterialWithoutStorage(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db, nil)
	ctx := context.Background()

	owner := createTestUser(t, db, model.RoleFacilitator)
	course, err := svc.Create(ctx, principalFor(owner), CreateCourseInput{
		Title:       "Twi Basics",
		Description: "Greetings",
		Language:    "Twi",
	})
	require.NoError(t, err)

	_, err = svc.AttachMaterial(ctx, principalFor(owner), course.ID, "Lesson 1", []byte("x"), 1)
	assert.Error(t, err)
}
