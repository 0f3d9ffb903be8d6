package enrollment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEnrollment_Validation(t *testing.T) {
	enr, err := NewEnrollment(NewEnrollmentParams{
		ID:        "enr-1",
		LearnerID: "learner-1",
		CourseID:  "course-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusActive, enr.Status)
	assert.Nil(t, enr.ExpiresAt)
	assert.Nil(t, enr.CompletedAt)
	assert.False(t, enr.EnrolledAt.IsZero())

	_, err = NewEnrollment(NewEnrollmentParams{LearnerID: "learner-1", CourseID: "course-1"})
	assert.Error(t, err)

	_, err = NewEnrollment(NewEnrollmentParams{ID: "enr-1", CourseID: "course-1"})
	assert.Error(t, err)

	_, err = NewEnrollment(NewEnrollmentParams{ID: "enr-1", LearnerID: "learner-1"})
	assert.Error(t, err)
}

func TestNewEnrollment_WithExpiry(t *testing.T) {
	expiry := time.Now().UTC().Add(90 * 24 * time.Hour)

	enr, err := NewEnrollment(NewEnrollmentParams{
		ID:        "enr-1",
		LearnerID: "learner-1",
		CourseID:  "course-1",
		ExpiresAt: &expiry,
	})

	assert.NoError(t, err)
	assert.NotNil(t, enr.ExpiresAt)
	assert.Equal(t, expiry, *enr.ExpiresAt)
}

func TestStatus_BlocksEnrollment(t *testing.T) {
	assert.True(t, StatusActive.BlocksEnrollment())
	assert.True(t, StatusCompleted.BlocksEnrollment())
	assert.False(t, StatusCancelled.BlocksEnrollment())
	assert.False(t, StatusExpired.BlocksEnrollment())
}

func TestStatus_AllowsReenrollment(t *testing.T) {
	assert.False(t, StatusActive.AllowsReenrollment())
	assert.False(t, StatusCompleted.AllowsReenrollment())
	assert.True(t, StatusCancelled.AllowsReenrollment())
	assert.True(t, StatusExpired.AllowsReenrollment())
}

func TestEnrollment_Reactivate(t *testing.T) {
	completedAt := time.Now().UTC().Add(-time.Hour)

	for _, status := range []Status{StatusCancelled, StatusExpired} {
		enr := &Enrollment{
			ID:          "enr-1",
			LearnerID:   "learner-1",
			CourseID:    "course-1",
			Status:      status,
			EnrolledAt:  time.Now().UTC().Add(-48 * time.Hour),
			CompletedAt: &completedAt,
		}

		expiry := time.Now().UTC().Add(30 * 24 * time.Hour)
		err := enr.Reactivate(&expiry)

		assert.NoError(t, err)
		assert.Equal(t, StatusActive, enr.Status)
		assert.Nil(t, enr.CompletedAt)
		assert.Equal(t, expiry, *enr.ExpiresAt)
	}
}

func TestEnrollment_Reactivate_Blocked(t *testing.T) {
	for _, status := range []Status{StatusActive, StatusCompleted} {
		enr := &Enrollment{ID: "enr-1", Status: status}

		err := enr.Reactivate(nil)

		assert.ErrorIs(t, err, ErrNotReenrollable)
		assert.Equal(t, status, enr.Status)
	}
}

func TestEnrollment_Complete(t *testing.T) {
	enr := &Enrollment{ID: "enr-1", Status: StatusActive}
	at := time.Now().UTC()

	transitioned, err := enr.Complete(at)

	assert.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, StatusCompleted, enr.Status)
	assert.Equal(t, at, *enr.CompletedAt)

	// A second completion is a no-op, not an error.
	transitioned, err = enr.Complete(time.Now().UTC())
	assert.NoError(t, err)
	assert.False(t, transitioned)
	assert.Equal(t, at, *enr.CompletedAt)
}

func TestEnrollment_Complete_FromClosedStates(t *testing.T) {
	for _, status := range []Status{StatusCancelled, StatusExpired} {
		enr := &Enrollment{ID: "enr-1", Status: status}

		_, err := enr.Complete(time.Now().UTC())

		assert.ErrorIs(t, err, ErrNotActive)
	}
}

func TestEnrollment_Cancel(t *testing.T) {
	enr := &Enrollment{ID: "enr-1", Status: StatusActive}

	assert.NoError(t, enr.Cancel())
	assert.Equal(t, StatusCancelled, enr.Status)

	assert.ErrorIs(t, enr.Cancel(), ErrNotActive)
}

func TestEnrollment_Expire(t *testing.T) {
	enr := &Enrollment{ID: "enr-1", Status: StatusActive}

	assert.NoError(t, enr.Expire())
	assert.Equal(t, StatusExpired, enr.Status)

	for _, status := range []Status{StatusCompleted, StatusCancelled, StatusExpired} {
		enr := &Enrollment{ID: "enr-1", Status: status}
		assert.True(t, errors.Is(enr.Expire(), ErrNotActive))
	}
}

func TestEnrollment_IsExpiredBy(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Enrollment{Status: StatusActive, ExpiresAt: &past}).IsExpiredBy(now))
	assert.False(t, (&Enrollment{Status: StatusActive, ExpiresAt: &future}).IsExpiredBy(now))

	// No expiry date means the enrollment never lapses.
	assert.False(t, (&Enrollment{Status: StatusActive}).IsExpiredBy(now))

	// Only active enrollments expire.
	assert.False(t, (&Enrollment{Status: StatusCompleted, ExpiresAt: &past}).IsExpiredBy(now))
}

func TestEnrollment_Clone(t *testing.T) {
	expiry := time.Now().UTC().Add(time.Hour)
	enr := &Enrollment{
		ID:        "enr-1",
		LearnerID: "learner-1",
		CourseID:  "course-1",
		Status:    StatusActive,
		ExpiresAt: &expiry,
	}

	clone := enr.Clone()
	assert.Equal(t, enr, clone)

	// Pointer fields must be deep-copied.
	*clone.ExpiresAt = clone.ExpiresAt.Add(time.Hour)
	assert.Equal(t, expiry, *enr.ExpiresAt)

	var nilEnr *Enrollment
	assert.Nil(t, nilEnr.Clone())
}

func TestStatus_IsValid(t *testing.T) {
	for _, status := range []Status{StatusActive, StatusCompleted, StatusCancelled, StatusExpired} {
		assert.True(t, status.IsValid())
	}
	assert.False(t, Status("paused").IsValid())
	assert.False(t, Status("").IsValid())
}
