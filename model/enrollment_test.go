package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    EnrollmentStatus
		to      EnrollmentStatus
		allowed bool
	}{
		{EnrollmentPending, EnrollmentApproved, true},
		{EnrollmentPending, EnrollmentRejected, true},
		{EnrollmentPending, EnrollmentCompleted, false},
		{EnrollmentApproved, EnrollmentCompleted, true},
		{EnrollmentApproved, EnrollmentRejected, true},
		{EnrollmentApproved, EnrollmentPending, false},
		{EnrollmentCompleted, EnrollmentRejected, false},
		{EnrollmentCompleted, EnrollmentApproved, false},
		{EnrollmentRejected, EnrollmentApproved, false},
		{EnrollmentRejected, EnrollmentCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidEnrollmentStatus(t *testing.T) {
	assert.True(t, ValidEnrollmentStatus(EnrollmentPending))
	assert.True(t, ValidEnrollmentStatus(EnrollmentCompleted))
	assert.False(t, ValidEnrollmentStatus("archived"))
	assert.False(t, ValidEnrollmentStatus(""))
}
