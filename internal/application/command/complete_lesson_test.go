package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

func newCompleteFixture() (*CompleteLessonHandler, *fakeCatalogRepo, *fakeEnrollmentRepo, *fakeProgressRepo, *fakeProgressCache, *fakeEnrollmentCache, *fakeEventPublisher) {
	catalogRepo := newFakeCatalogRepo()
	enrollmentRepo := newFakeEnrollmentRepo()
	progressRepo := newFakeProgressRepo()
	progressRepo.catalog = catalogRepo
	progressCache := &fakeProgressCache{}
	enrollmentCache := &fakeEnrollmentCache{}
	publisher := &fakeEventPublisher{}

	handler := NewCompleteLessonHandler(
		catalogRepo, enrollmentRepo, progressRepo,
		progressCache, enrollmentCache, publisher,
	)
	return handler, catalogRepo, enrollmentRepo, progressRepo, progressCache, enrollmentCache, publisher
}

func TestCompleteLesson_Preconditions(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _, _, _ := newCompleteFixture()
	ctx := context.Background()

	_, err := handler.Handle(ctx, CompleteLessonCommand{LessonID: "lesson-1"})
	assert.Error(t, err)

	_, err = handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1", TimeSpentSeconds: -1})
	assert.ErrorIs(t, err, shared.ErrNegativeTimeSpent)

	_, err = handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "missing"})
	assert.ErrorIs(t, err, shared.ErrLessonNotFound)

	unpublished := textLesson("lesson-1", "course-1")
	unpublished.IsPublished = false
	catalogRepo.lessons["lesson-1"] = unpublished

	_, err = handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})
	assert.ErrorIs(t, err, shared.ErrLessonNotPublished)

	catalogRepo.lessons["lesson-1"] = textLesson("lesson-1", "course-1")

	_, err = handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotActive)

	enr := activeEnrollment("enr-1", "learner-1", "course-1")
	enr.Status = enrollment.StatusExpired
	enrollmentRepo.add(enr)

	_, err = handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotActive)
}

func TestCompleteLesson_FirstOfTwo(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, progressRepo, progressCache, enrollmentCache, publisher := newCompleteFixture()
	catalogRepo.lessons["lesson-1"] = textLesson("lesson-1", "course-1")
	catalogRepo.lessons["lesson-2"] = textLesson("lesson-2", "course-1")
	enrollmentRepo.add(activeEnrollment("enr-1", "learner-1", "course-1"))

	result, err := handler.Handle(context.Background(), CompleteLessonCommand{
		LearnerID:        "learner-1",
		LessonID:         "lesson-1",
		TimeSpentSeconds: 240,
	})

	assert.NoError(t, err)
	assert.True(t, result.Progress.Completed)
	assert.Equal(t, 100, result.Progress.ProgressPercentage)
	assert.Equal(t, 240, result.Progress.TimeSpentSeconds)

	// One of two lessons done: the enrollment stays active.
	assert.False(t, result.CourseCompleted)
	enr, _ := enrollmentRepo.GetByID(context.Background(), "enr-1")
	assert.Equal(t, enrollment.StatusActive, enr.Status)
	assert.Empty(t, enrollmentCache.invalidatedIDs)

	assert.Equal(t, []string{"lesson-1"}, progressCache.invalidatedLessons)
	assert.Equal(t, []string{"course-1"}, progressCache.invalidatedCourses)

	assert.Equal(t, []shared.EventType{shared.EventLessonCompleted}, publisher.typesPublished())

	stored, err := progressRepo.GetByLearnerAndLesson(context.Background(), "learner-1", "lesson-1")
	assert.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.NotNil(t, stored.CompletedAt)
}

func TestCompleteLesson_CascadeCompletesCourse(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _, enrollmentCache, publisher := newCompleteFixture()
	catalogRepo.lessons["lesson-1"] = textLesson("lesson-1", "course-1")
	catalogRepo.lessons["lesson-2"] = textLesson("lesson-2", "course-1")
	enrollmentRepo.add(activeEnrollment("enr-1", "learner-1", "course-1"))

	ctx := context.Background()
	first, err := handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})
	assert.NoError(t, err)
	assert.False(t, first.CourseCompleted)

	second, err := handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-2"})
	assert.NoError(t, err)
	assert.True(t, second.CourseCompleted)

	enr, _ := enrollmentRepo.GetByID(ctx, "enr-1")
	assert.Equal(t, enrollment.StatusCompleted, enr.Status)
	assert.NotNil(t, enr.CompletedAt)

	// The enrollment cache entry is dropped exactly once, on the transition.
	assert.Equal(t, []string{"enr-1"}, enrollmentCache.invalidatedIDs)

	assert.Equal(t, []shared.EventType{
		shared.EventLessonCompleted,
		shared.EventCourseCompleted,
		shared.EventLessonCompleted,
	}, publisher.typesPublished())
}

func TestCompleteLesson_UnpublishedCompletionDoesNotCountTowardCascade(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _, enrollmentCache, publisher := newCompleteFixture()
	catalogRepo.lessons["lesson-1"] = textLesson("lesson-1", "course-1")
	catalogRepo.lessons["lesson-2"] = textLesson("lesson-2", "course-1")
	catalogRepo.lessons["lesson-3"] = textLesson("lesson-3", "course-1")
	enrollmentRepo.add(activeEnrollment("enr-1", "learner-1", "course-1"))

	ctx := context.Background()
	_, err := handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})
	assert.NoError(t, err)

	// lesson-1 is unpublished after its completion. Its progress row must not
	// count toward the remaining published set {lesson-2, lesson-3}.
	catalogRepo.lessons["lesson-1"].IsPublished = false

	result, err := handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-2"})

	assert.NoError(t, err)
	assert.False(t, result.CourseCompleted)

	// lesson-3 is published and has no completed row, so the course is open.
	enr, _ := enrollmentRepo.GetByID(ctx, "enr-1")
	assert.Equal(t, enrollment.StatusActive, enr.Status)
	assert.Empty(t, enrollmentCache.invalidatedIDs)
	assert.NotContains(t, publisher.typesPublished(), shared.EventCourseCompleted)
}

func TestCompleteLesson_Duplicate(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _, _, publisher := newCompleteFixture()
	catalogRepo.lessons["lesson-1"] = textLesson("lesson-1", "course-1")
	catalogRepo.lessons["lesson-2"] = textLesson("lesson-2", "course-1")
	enrollmentRepo.add(activeEnrollment("enr-1", "learner-1", "course-1"))

	ctx := context.Background()
	_, err := handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})
	assert.NoError(t, err)

	_, err = handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})

	assert.ErrorIs(t, err, shared.ErrLessonAlreadyCompleted)
	assert.True(t, shared.IsConflict(err))
	assert.Len(t, publisher.events, 1)
}

func TestCompleteLesson_EmptyCourseNeverCompletes(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, _, _, enrollmentCache, publisher := newCompleteFixture()
	catalogRepo.lessons["lesson-1"] = textLesson("lesson-1", "course-1")
	enrollmentRepo.add(activeEnrollment("enr-1", "learner-1", "course-1"))

	// The course reports zero published lessons at cascade time (the lesson
	// set changed between the lesson lookup and the count).
	catalogRepo.countOverride = map[string]int{"course-1": 0}

	result, err := handler.Handle(context.Background(), CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})

	assert.NoError(t, err)
	assert.True(t, result.Progress.Completed)
	assert.False(t, result.CourseCompleted)

	enr, _ := enrollmentRepo.GetByID(context.Background(), "enr-1")
	assert.Equal(t, enrollment.StatusActive, enr.Status)
	assert.Empty(t, enrollmentCache.invalidatedIDs)
	assert.NotContains(t, publisher.typesPublished(), shared.EventCourseCompleted)
}

func TestCompleteLesson_GuardedTransitionRunsOnce(t *testing.T) {
	handler, catalogRepo, enrollmentRepo, progressRepo, _, enrollmentCache, publisher := newCompleteFixture()
	catalogRepo.lessons["lesson-1"] = textLesson("lesson-1", "course-1")
	catalogRepo.lessons["lesson-2"] = textLesson("lesson-2", "course-1")
	enrollmentRepo.add(activeEnrollment("enr-1", "learner-1", "course-1"))

	ctx := context.Background()
	_, err := handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-1"})
	assert.NoError(t, err)

	// Another writer closes the enrollment between the count and the guard.
	stored := enrollmentRepo.byID["enr-1"]
	_, err = stored.Complete(stored.EnrolledAt)
	assert.NoError(t, err)

	result, err := handler.Handle(ctx, CompleteLessonCommand{LearnerID: "learner-1", LessonID: "lesson-2"})

	// The enrollment lookup sees a non-active row now.
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotActive)
	assert.Nil(t, result)

	// Exactly one guarded transition happened in total.
	count, _ := progressRepo.CountCompletedByCourse(ctx, "learner-1", "course-1")
	assert.Equal(t, 1, count)
	assert.Empty(t, enrollmentCache.invalidatedIDs)
	assert.NotContains(t, publisher.typesPublished(), shared.EventCourseCompleted)
}
