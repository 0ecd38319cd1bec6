package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/noatrans/noatrans-api/model"
	"github.com/noatrans/noatrans-api/utils/auth"
)

// CleanupExpiredTokens removes blacklist entries whose tokens have
// expired anyway
func (m *CronManager) CleanupExpiredTokens() {
	jobName := "cleanup_expired_tokens"

	blacklist := auth.NewBlacklistService(m.db)
	if err := blacklist.CleanupExpiredTokens(context.Background()); err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, "expired blacklist entries removed")
}

// AggregateEnrollmentStats computes daily enrollment counters. The
// numbers land in the cron log so the admin dashboard and reports can
// read them without rescanning the enrollments table.
func (m *CronManager) AggregateEnrollmentStats() {
	jobName := "aggregate_enrollment_stats"
	since := time.Now().Add(-24 * time.Hour)

	var newEnrollments int64
	if err := m.db.Model(&model.Enrollment{}).
		Where("enrolled_at > ?", since).
		Count(&newEnrollments).Error; err != nil {
		m.logJobError(jobName, err)
		return
	}

	var completed int64
	if err := m.db.Model(&model.Enrollment{}).
		Where("status = ? AND completed_at > ?", model.EnrollmentCompleted, since).
		Count(&completed).Error; err != nil {
		m.logJobError(jobName, err)
		return
	}

	var active int64
	if err := m.db.Model(&model.Enrollment{}).
		Where("is_active = ?", true).
		Count(&active).Error; err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf(
		"new=%d completed=%d active=%d", newEnrollments, completed, active))
}

// PurgeOldCronLogs deletes cron run logs older than 30 days
func (m *CronManager) PurgeOldCronLogs() {
	jobName := "purge_old_cron_logs"
	cutoff := time.Now().AddDate(0, 0, -30)

	result := m.db.Where("created_at < ? AND status <> ?", cutoff, "running").
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, result.Error)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("%d old logs removed", result.RowsAffected))
}
