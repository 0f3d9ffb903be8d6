// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// CacheTTL bounds how stale a cached read model can get. Writes invalidate
// the affected keys, so the TTL only matters for invalidations that were
// lost (process crash between the write and the delete).
const CacheTTL = 15 * time.Minute

// ══════════════════════════════════════════════════════════════════════════════
// GET LESSON PROGRESS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetLessonProgressQuery contains the parameters for a per-lesson lookup.
type GetLessonProgressQuery struct {
	// LearnerID is the internal ID of the learner.
	LearnerID string

	// LessonID is the lesson to look up.
	LessonID string
}

// Validate validates the query parameters.
func (q GetLessonProgressQuery) Validate() error {
	if q.LearnerID == "" {
		return errors.New("learner_id is required")
	}
	if q.LessonID == "" {
		return errors.New("lesson_id is required")
	}
	return nil
}

// GetLessonProgressResult contains the progress row for one lesson.
type GetLessonProgressResult struct {
	Progress *progress.Progress `json:"progress"`
}

// GetLessonProgressHandler handles per-lesson progress lookups with a
// cache-aside read path.
type GetLessonProgressHandler struct {
	catalogRepo   catalog.Repository
	progressRepo  progress.Repository
	progressCache progress.Cache
}

// NewGetLessonProgressHandler creates a new GetLessonProgressHandler.
func NewGetLessonProgressHandler(
	catalogRepo catalog.Repository,
	progressRepo progress.Repository,
	progressCache progress.Cache,
) *GetLessonProgressHandler {
	return &GetLessonProgressHandler{
		catalogRepo:   catalogRepo,
		progressRepo:  progressRepo,
		progressCache: progressCache,
	}
}

// Handle executes the query. When the learner never touched the lesson the
// result is a synthesized zero-value record rather than a not-found error;
// synthesized records are not written to the cache so that the first real
// update is never shadowed by an empty entry.
func (h *GetLessonProgressHandler) Handle(ctx context.Context, query GetLessonProgressQuery) (*GetLessonProgressResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLessonProgress", shared.ErrValidation, err.Error(), err)
	}

	if cached, err := h.progressCache.GetLesson(ctx, query.LearnerID, query.LessonID); err == nil {
		return &GetLessonProgressResult{Progress: cached}, nil
	}

	lesson, err := h.catalogRepo.GetLesson(ctx, query.LessonID)
	if err != nil {
		return nil, err
	}

	p, err := h.progressRepo.GetByLearnerAndLesson(ctx, query.LearnerID, query.LessonID)
	switch {
	case err == nil:
		_ = h.progressCache.SetLesson(ctx, p, CacheTTL)
		return &GetLessonProgressResult{Progress: p}, nil
	case shared.IsNotFound(err):
		return &GetLessonProgressResult{Progress: emptyProgress(query.LearnerID, query.LessonID, lesson.CourseID)}, nil
	default:
		return nil, fmt.Errorf("get_lesson_progress: failed to load progress: %w", err)
	}
}

// emptyProgress builds the zero-value record returned for untouched lessons.
// It has no ID: no row exists yet.
func emptyProgress(learnerID, lessonID, courseID string) *progress.Progress {
	now := time.Now().UTC()
	return &progress.Progress{
		LearnerID: learnerID,
		LessonID:  lessonID,
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
