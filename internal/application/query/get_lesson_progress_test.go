package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

func newLessonProgressFixture() (*GetLessonProgressHandler, *fakeCatalogRepo, *fakeProgressRepo, *fakeProgressCache) {
	catalogRepo := newFakeCatalogRepo()
	progressRepo := newFakeProgressRepo()
	cache := newFakeProgressCache()

	handler := NewGetLessonProgressHandler(catalogRepo, progressRepo, cache)
	return handler, catalogRepo, progressRepo, cache
}

func publishedLesson(id, courseID string) *catalog.Lesson {
	return &catalog.Lesson{ID: id, CourseID: courseID, Type: catalog.LessonTypeText, IsPublished: true}
}

func TestGetLessonProgress_Validation(t *testing.T) {
	handler, _, _, _ := newLessonProgressFixture()
	ctx := context.Background()

	_, err := handler.Handle(ctx, GetLessonProgressQuery{LessonID: "lesson-1"})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(ctx, GetLessonProgressQuery{LearnerID: "learner-1"})
	assert.True(t, shared.IsValidation(err))
}

func TestGetLessonProgress_MissPopulatesCache(t *testing.T) {
	handler, catalogRepo, progressRepo, cache := newLessonProgressFixture()
	catalogRepo.lessons["lesson-1"] = publishedLesson("lesson-1", "course-1")

	p, err := progress.NewProgress("prog-1", "learner-1", "lesson-1", "course-1")
	assert.NoError(t, err)
	p.ProgressPercentage = 40
	progressRepo.add(p)

	result, err := handler.Handle(context.Background(), GetLessonProgressQuery{
		LearnerID: "learner-1", LessonID: "lesson-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, 40, result.Progress.ProgressPercentage)

	// The read wrote the row back with the standard TTL.
	cached, err := cache.GetLesson(context.Background(), "learner-1", "lesson-1")
	assert.NoError(t, err)
	assert.Equal(t, "prog-1", cached.ID)
	assert.Equal(t, CacheTTL, cache.lastTTL)
}

func TestGetLessonProgress_HitSkipsRepositories(t *testing.T) {
	handler, catalogRepo, progressRepo, cache := newLessonProgressFixture()

	p, err := progress.NewProgress("prog-1", "learner-1", "lesson-1", "course-1")
	assert.NoError(t, err)
	assert.NoError(t, cache.SetLesson(context.Background(), p, CacheTTL))

	result, err := handler.Handle(context.Background(), GetLessonProgressQuery{
		LearnerID: "learner-1", LessonID: "lesson-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "prog-1", result.Progress.ID)
	assert.Equal(t, 0, catalogRepo.getLessonCalls)
	assert.Equal(t, 0, progressRepo.getCalls)
}

func TestGetLessonProgress_UntouchedLessonSynthesizesEmptyRecord(t *testing.T) {
	handler, catalogRepo, _, cache := newLessonProgressFixture()
	catalogRepo.lessons["lesson-1"] = publishedLesson("lesson-1", "course-1")

	result, err := handler.Handle(context.Background(), GetLessonProgressQuery{
		LearnerID: "learner-1", LessonID: "lesson-1",
	})

	assert.NoError(t, err)
	assert.Empty(t, result.Progress.ID)
	assert.Equal(t, "learner-1", result.Progress.LearnerID)
	assert.Equal(t, "course-1", result.Progress.CourseID)
	assert.Equal(t, 0, result.Progress.ProgressPercentage)
	assert.False(t, result.Progress.Completed)

	// Synthesized records are never cached: the first real update must not
	// be shadowed by an empty entry.
	_, err = cache.GetLesson(context.Background(), "learner-1", "lesson-1")
	assert.Error(t, err)
}

func TestGetLessonProgress_UnknownLesson(t *testing.T) {
	handler, _, _, _ := newLessonProgressFixture()

	_, err := handler.Handle(context.Background(), GetLessonProgressQuery{
		LearnerID: "learner-1", LessonID: "missing",
	})

	assert.ErrorIs(t, err, shared.ErrLessonNotFound)
}
