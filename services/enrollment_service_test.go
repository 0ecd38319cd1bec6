package services

import (
	"context"
	"testing"

	"github.com/noatrans/noatrans-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCourseWithOwner(t *testing.T, db *gorm.DB) (*model.User, *model.Course) {
	t.Helper()

	facilitator := model.User{
		FullName: "Kofi Manu", UserName: "kofi-manu",
		Email: "kofi@example.com", PasswordHash: "x",
		Role: model.RoleFacilitator, IsActive: true,
	}
	require.NoError(t, db.Create(&facilitator).Error)

	course := model.Course{
		Title:         "Twi Basics",
		Description:   "Greetings and everyday phrases",
		Language:      "Twi",
		Level:         model.LevelBeginner,
		FacilitatorID: facilitator.ID,
	}
	require.NoError(t, db.Create(&course).Error)

	return &facilitator, &course
}

func seedLearner(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	learner := model.User{
		FullName: "Learner " + username, UserName: username,
		Email: username + "@example.com", PasswordHash: "x",
		Role: model.RoleLearner, IsActive: true,
	}
	require.NoError(t, db.Create(&learner).Error)
	return &learner
}

func TestEnroll(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	_, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	enrollment, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentApproved, enrollment.Status)
	assert.Zero(t, enrollment.ProgressPercent)
	assert.True(t, enrollment.IsActive)
	assert.Equal(t, course.ID, enrollment.Course.ID, "course summary is resolved")
}

func TestEnrollDuplicateConflicts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	_, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	_, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, principalFor(learner), course.ID)
	assert.ErrorIs(t, err, ErrConflict, "the unique index rejects the second enroll")
}

func TestEnrollRejectsNonLearners(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)

	facilitator, course := seedCourseWithOwner(t, db)

	_, err := svc.Enroll(context.Background(), principalFor(facilitator), course.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEnrollMissingCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)

	learner := seedLearner(t, db, "ama")

	_, err := svc.Enroll(context.Background(), principalFor(learner), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollSoftDeletedCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	_, course := seedCourseWithOwner(t, db)
	require.NoError(t, db.Delete(course).Error)

	learner := seedLearner(t, db, "ama")
	_, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	assert.ErrorIs(t, err, ErrNotFound, "deleted courses read as missing")
}

func TestUpdateProgress(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	_, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	enrollment, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateProgress(ctx, principalFor(learner), enrollment.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.ProgressPercent)
	assert.Equal(t, model.EnrollmentApproved, updated.Status)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateProgressClampsAndCompletes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	_, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	enrollment, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateProgress(ctx, principalFor(learner), enrollment.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.ProgressPercent, "values above 100 clamp")
	assert.Equal(t, model.EnrollmentCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	completedAt := *updated.CompletedAt

	// A second completion keeps the original timestamp
	updated, err = svc.UpdateProgress(ctx, principalFor(learner), enrollment.ID, 100)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, completedAt, *updated.CompletedAt)

	updated, err = svc.UpdateProgress(ctx, principalFor(learner), enrollment.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ProgressPercent, "values below 0 clamp")
}

func TestUpdateProgressOwnershipAndState(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	facilitator, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")
	other := seedLearner(t, db, "yaw")

	enrollment, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, principalFor(other), enrollment.ID, 50)
	assert.ErrorIs(t, err, ErrForbidden, "another learner cannot report progress")

	_, err = svc.UpdateProgress(ctx, principalFor(facilitator), enrollment.ID, 50)
	assert.ErrorIs(t, err, ErrForbidden, "facilitators use the status override instead")

	_, err = svc.UpdateStatus(ctx, principalFor(facilitator), enrollment.ID, model.EnrollmentRejected)
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, principalFor(learner), enrollment.ID, 60)
	assert.ErrorIs(t, err, ErrInvalidState, "no progress on a rejected enrollment")
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	facilitator, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	enrollment, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, principalFor(facilitator), enrollment.ID, model.EnrollmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, updated.Status)
	assert.Equal(t, 100, updated.ProgressPercent, "completion implies full progress")
	assert.NotNil(t, updated.CompletedAt)

	// completed is terminal
	_, err = svc.UpdateStatus(ctx, principalFor(facilitator), enrollment.ID, model.EnrollmentRejected)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.UpdateStatus(ctx, principalFor(facilitator), enrollment.ID, "archived")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatusRejectDeactivates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	facilitator, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	enrollment, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, principalFor(facilitator), enrollment.ID, model.EnrollmentRejected)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRejected, updated.Status)
	assert.False(t, updated.IsActive)
}

func TestUpdateStatusModeratorOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	_, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	enrollment, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	other := model.User{
		FullName: "Other Facilitator", UserName: "other-fac",
		Email: "other@example.com", PasswordHash: "x",
		Role: model.RoleFacilitator, IsActive: true,
	}
	require.NoError(t, db.Create(&other).Error)

	_, err = svc.UpdateStatus(ctx, principalFor(&other), enrollment.ID, model.EnrollmentCompleted)
	assert.ErrorIs(t, err, ErrForbidden, "only the course's own facilitator moderates it")

	admin := model.User{
		FullName: "Admin", UserName: "admin-user",
		Email: "admin@example.com", PasswordHash: "x",
		Role: model.RoleAdmin, IsActive: true,
	}
	require.NoError(t, db.Create(&admin).Error)

	_, err = svc.UpdateStatus(ctx, principalFor(&admin), enrollment.ID, model.EnrollmentCompleted)
	assert.NoError(t, err, "admins moderate any course")
}

func TestListMineIncludesDeletedCourses(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	_, course := seedCourseWithOwner(t, db)
	learner := seedLearner(t, db, "ama")

	_, err := svc.Enroll(ctx, principalFor(learner), course.ID)
	require.NoError(t, err)

	require.NoError(t, db.Delete(course).Error)

	enrollments, err := svc.ListMine(ctx, principalFor(learner))
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, course.Title, enrollments[0].Course.Title, "a deleted course still resolves on past enrollments")
}

func TestListAllEnrolled(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	facilitator, course := seedCourseWithOwner(t, db)
	ama := seedLearner(t, db, "ama")
	yaw := seedLearner(t, db, "yaw")

	_, err := svc.Enroll(ctx, principalFor(ama), course.ID)
	require.NoError(t, err)
	rejected, err := svc.Enroll(ctx, principalFor(yaw), course.ID)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, principalFor(facilitator), rejected.ID, model.EnrollmentRejected)
	require.NoError(t, err)

	admin := model.User{
		FullName: "Admin", UserName: "admin-user",
		Email: "admin@example.com", PasswordHash: "x",
		Role: model.RoleAdmin, IsActive: true,
	}
	require.NoError(t, db.Create(&admin).Error)

	enrollments, err := svc.ListAllEnrolled(ctx, principalFor(&admin))
	require.NoError(t, err)
	require.Len(t, enrollments, 1, "rejected enrollments drop out of the active listing")
	assert.Equal(t, ama.ID, enrollments[0].LearnerID)
	assert.Equal(t, ama.FullName, enrollments[0].Learner.FullName)

	_, err = svc.ListAllEnrolled(ctx, principalFor(ama))
	assert.ErrorIs(t, err, ErrForbidden)
}
