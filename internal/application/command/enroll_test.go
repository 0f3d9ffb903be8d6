package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

func newEnrollFixture(duration time.Duration) (*EnrollHandler, *fakeCatalogRepo, *fakeEnrollmentRepo, *fakeEnrollmentCache, *fakeEventPublisher) {
	catalogRepo := newFakeCatalogRepo()
	enrollmentRepo := newFakeEnrollmentRepo()
	cache := &fakeEnrollmentCache{}
	publisher := &fakeEventPublisher{}

	handler := NewEnrollHandler(catalogRepo, enrollmentRepo, cache, publisher, EnrollHandlerConfig{
		EnrollmentDuration: duration,
	})
	return handler, catalogRepo, enrollmentRepo, cache, publisher
}

func publishedCourse(id string, prereqs ...string) *catalog.Course {
	return &catalog.Course{
		ID:              id,
		Title:           "Course " + id,
		Status:          catalog.CourseStatusPublished,
		PrerequisiteIDs: prereqs,
	}
}

func TestEnroll_Validation(t *testing.T) {
	handler, _, _, _, _ := newEnrollFixture(0)

	_, err := handler.Handle(context.Background(), EnrollCommand{CourseID: "course-1"})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1"})
	assert.Error(t, err)
}

func TestEnroll_CourseNotFound(t *testing.T) {
	handler, _, _, _, _ := newEnrollFixture(0)

	_, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "missing"})

	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
	assert.True(t, shared.IsNotFound(err))
}

func TestEnroll_CourseNotPublished(t *testing.T) {
	handler, catalogRepo, _, _, publisher := newEnrollFixture(0)
	catalogRepo.courses["course-1"] = &catalog.Course{ID: "course-1", Status: catalog.CourseStatusDraft}

	_, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})

	assert.ErrorIs(t, err, shared.ErrCourseNotPublished)
	assert.Empty(t, publisher.events)

	// Archived courses reject new admissions too.
	catalogRepo.courses["course-1"].Status = catalog.CourseStatusArchived
	_, err = handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})
	assert.ErrorIs(t, err, shared.ErrCourseNotPublished)
}

func TestEnroll_PrerequisitesUnmet(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _ := newEnrollFixture(0)
	catalogRepo.courses["advanced"] = publishedCourse("advanced", "basics", "intermediate")

	// Only one of the two prerequisites is completed.
	completed, _ := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID: "enr-0", LearnerID: "learner-1", CourseID: "basics",
	})
	_, err := completed.Complete(time.Now().UTC())
	assert.NoError(t, err)
	enrollmentRepo.add(completed)

	_, err = handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "advanced"})

	assert.ErrorIs(t, err, shared.ErrPrerequisitesUnmet)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "intermediate")
	assert.NotContains(t, err.Error(), "basics,")
}

func TestEnroll_ActivePrerequisiteDoesNotCount(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _ := newEnrollFixture(0)
	catalogRepo.courses["advanced"] = publishedCourse("advanced", "basics")

	// An active (not completed) enrollment in the prerequisite is not enough.
	active, _ := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID: "enr-0", LearnerID: "learner-1", CourseID: "basics",
	})
	enrollmentRepo.add(active)

	_, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "advanced"})

	assert.ErrorIs(t, err, shared.ErrPrerequisitesUnmet)
}

func TestEnroll_New(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, cache, publisher := newEnrollFixture(0)
	catalogRepo.courses["course-1"] = publishedCourse("course-1")

	result, err := handler.Handle(context.Background(), EnrollCommand{
		LearnerID:     "learner-1",
		CourseID:      "course-1",
		CorrelationID: "corr-1",
	})

	assert.NoError(t, err)
	assert.False(t, result.Reenrolled)
	assert.Equal(t, enrollment.StatusActive, result.Enrollment.Status)
	assert.NotEmpty(t, result.Enrollment.ID)

	// Zero duration means the admission never lapses.
	assert.Nil(t, result.Enrollment.ExpiresAt)

	stored, err := enrollmentRepo.GetByID(context.Background(), result.Enrollment.ID)
	assert.NoError(t, err)
	assert.Equal(t, "learner-1", stored.LearnerID)

	assert.Equal(t, []string{result.Enrollment.ID}, cache.invalidatedIDs)
	assert.Equal(t, []shared.EventType{shared.EventLearnerEnrolled}, publisher.typesPublished())
}

func TestEnroll_WithAccessDuration(t *testing.T) {
	handler, catalogRepo, _, _, _ := newEnrollFixture(90 * 24 * time.Hour)
	catalogRepo.courses["course-1"] = publishedCourse("course-1")

	before := time.Now().UTC()
	result, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})

	assert.NoError(t, err)
	assert.NotNil(t, result.Enrollment.ExpiresAt)
	assert.False(t, result.Enrollment.ExpiresAt.Before(before.Add(90*24*time.Hour)))
}

func TestEnroll_AlreadyEnrolled(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, publisher := newEnrollFixture(0)
	catalogRepo.courses["course-1"] = publishedCourse("course-1")

	for _, status := range []enrollment.Status{enrollment.StatusActive, enrollment.StatusCompleted} {
		enrollmentRepo.byID = map[string]*enrollment.Enrollment{
			"enr-1": {ID: "enr-1", LearnerID: "learner-1", CourseID: "course-1", Status: status},
		}

		_, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})

		assert.ErrorIs(t, err, shared.ErrAlreadyEnrolled)
		assert.True(t, shared.IsConflict(err))
	}
	assert.Empty(t, publisher.events)
}

func TestEnroll_AlreadyEnrolledWinsOverPrerequisites(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, publisher := newEnrollFixture(0)

	// The course gained a prerequisite the learner never completed, after
	// the learner was already admitted.
	catalogRepo.courses["course-1"] = publishedCourse("course-1", "basics")
	enrollmentRepo.add(&enrollment.Enrollment{
		ID: "enr-1", LearnerID: "learner-1", CourseID: "course-1",
		Status: enrollment.StatusActive,
	})

	_, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})

	assert.ErrorIs(t, err, shared.ErrAlreadyEnrolled)
	assert.True(t, shared.IsConflict(err))
	assert.NotErrorIs(t, err, shared.ErrPrerequisitesUnmet)
	assert.Empty(t, publisher.events)
}

func TestEnroll_ReenrollChecksPrerequisites(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _ := newEnrollFixture(0)

	// Re-admission into a cancelled row still has to meet the current
	// prerequisite set.
	catalogRepo.courses["course-1"] = publishedCourse("course-1", "basics")
	enrollmentRepo.add(&enrollment.Enrollment{
		ID: "enr-1", LearnerID: "learner-1", CourseID: "course-1",
		Status: enrollment.StatusCancelled,
	})

	_, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})

	assert.ErrorIs(t, err, shared.ErrPrerequisitesUnmet)
	stored, _ := enrollmentRepo.GetByID(context.Background(), "enr-1")
	assert.Equal(t, enrollment.StatusCancelled, stored.Status)
}

func TestEnroll_ReenrollReusesRow(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, cache, publisher := newEnrollFixture(0)
	catalogRepo.courses["course-1"] = publishedCourse("course-1")

	completedAt := time.Now().UTC().Add(-time.Hour)
	enrollmentRepo.add(&enrollment.Enrollment{
		ID:          "enr-1",
		LearnerID:   "learner-1",
		CourseID:    "course-1",
		Status:      enrollment.StatusCancelled,
		CompletedAt: &completedAt,
	})

	result, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})

	assert.NoError(t, err)
	assert.True(t, result.Reenrolled)

	// The natural key reuses the row; no second enrollment is created.
	assert.Equal(t, "enr-1", result.Enrollment.ID)
	assert.Len(t, enrollmentRepo.byID, 1)
	assert.Equal(t, enrollment.StatusActive, result.Enrollment.Status)
	assert.Nil(t, result.Enrollment.CompletedAt)

	assert.Equal(t, []string{"enr-1"}, cache.invalidatedIDs)
	assert.Equal(t, []shared.EventType{shared.EventLearnerReenrolled}, publisher.typesPublished())
}

func TestEnroll_ReenrollAfterExpiry(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _ := newEnrollFixture(0)
	catalogRepo.courses["course-1"] = publishedCourse("course-1")

	enrollmentRepo.add(&enrollment.Enrollment{
		ID: "enr-1", LearnerID: "learner-1", CourseID: "course-1",
		Status: enrollment.StatusExpired,
	})

	result, err := handler.Handle(context.Background(), EnrollCommand{LearnerID: "learner-1", CourseID: "course-1"})

	assert.NoError(t, err)
	assert.True(t, result.Reenrolled)
	assert.Equal(t, enrollment.StatusActive, result.Enrollment.Status)
}
