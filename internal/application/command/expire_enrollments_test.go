package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

func expirableEnrollment(id string, expiredAgo time.Duration) *enrollment.Enrollment {
	expiry := time.Now().UTC().Add(-expiredAgo)
	return &enrollment.Enrollment{
		ID:        id,
		LearnerID: "learner-" + id,
		CourseID:  "course-1",
		Status:    enrollment.StatusActive,
		ExpiresAt: &expiry,
	}
}

func TestExpireEnrollments_Sweep(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	cache := &fakeEnrollmentCache{}
	publisher := &fakeEventPublisher{}
	handler := NewExpireEnrollmentsHandler(repo, cache, publisher)

	repo.add(expirableEnrollment("enr-1", time.Hour))
	repo.add(expirableEnrollment("enr-2", time.Minute))

	// Not expirable: no expiry date, future expiry, not active.
	repo.add(&enrollment.Enrollment{
		ID: "enr-3", LearnerID: "learner-3", CourseID: "course-1",
		Status: enrollment.StatusActive,
	})
	future := time.Now().UTC().Add(time.Hour)
	repo.add(&enrollment.Enrollment{
		ID: "enr-4", LearnerID: "learner-4", CourseID: "course-1",
		Status: enrollment.StatusActive, ExpiresAt: &future,
	})
	pastExpiry := time.Now().UTC().Add(-time.Hour)
	repo.add(&enrollment.Enrollment{
		ID: "enr-5", LearnerID: "learner-5", CourseID: "course-1",
		Status: enrollment.StatusCancelled, ExpiresAt: &pastExpiry,
	})

	result, err := handler.Handle(context.Background(), ExpireEnrollmentsCommand{})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 0, result.Failed)

	for _, id := range []string{"enr-1", "enr-2"} {
		enr, err := repo.GetByID(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, enrollment.StatusExpired, enr.Status)
	}
	enr, _ := repo.GetByID(context.Background(), "enr-4")
	assert.Equal(t, enrollment.StatusActive, enr.Status)

	assert.Len(t, cache.invalidatedIDs, 2)
	assert.Equal(t, []shared.EventType{
		shared.EventEnrollmentExpired,
		shared.EventEnrollmentExpired,
	}, publisher.typesPublished())
}

func TestExpireEnrollments_EmptySweep(t *testing.T) {
	handler := NewExpireEnrollmentsHandler(newFakeEnrollmentRepo(), &fakeEnrollmentCache{}, &fakeEventPublisher{})

	result, err := handler.Handle(context.Background(), ExpireEnrollmentsCommand{})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Expired)
	assert.Equal(t, 0, result.Failed)
}

func TestExpireEnrollments_RespectsLimit(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	handler := NewExpireEnrollmentsHandler(repo, &fakeEnrollmentCache{}, &fakeEventPublisher{})

	for i := 0; i < 5; i++ {
		repo.add(expirableEnrollment(string(rune('a'+i)), time.Hour))
	}

	result, err := handler.Handle(context.Background(), ExpireEnrollmentsCommand{Limit: 3})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Expired)
}

func TestExpireEnrollments_RowFailureDoesNotAbortBatch(t *testing.T) {
	repo := newFakeEnrollmentRepo()
	publisher := &fakeEventPublisher{}
	handler := NewExpireEnrollmentsHandler(repo, &fakeEnrollmentCache{}, publisher)

	repo.add(expirableEnrollment("enr-1", time.Hour))
	repo.add(expirableEnrollment("enr-2", time.Hour))

	// One listed row was cancelled concurrently; its state no longer
	// allows the expiry transition.
	repo.listHook = func(out []*enrollment.Enrollment) {
		for _, e := range out {
			if e.ID == "enr-1" {
				e.Status = enrollment.StatusCancelled
			}
		}
	}

	result, err := handler.Handle(context.Background(), ExpireEnrollmentsCommand{})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, publisher.events, 1)
}
