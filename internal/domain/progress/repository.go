package progress

import (
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository defines the storage operations for lesson progress.
type Repository interface {
	// GetByLearnerAndLesson returns the progress row for the natural key.
	// Returns shared.ErrProgressNotFound if no row exists yet.
	GetByLearnerAndLesson(ctx context.Context, learnerID, lessonID string) (*Progress, error)

	// Upsert writes the row for (p.LearnerID, p.LessonID), creating it when
	// absent. The timeSpentDelta is added to the stored total inside the
	// statement itself, so concurrent writers never lose accumulated time;
	// p.TimeSpentSeconds is ignored on the update path. The stored row is
	// returned.
	Upsert(ctx context.Context, p *Progress, timeSpentDelta int) (*Progress, error)

	// ListByLearnerAndCourse returns all progress rows of a learner for
	// lessons of the given course.
	ListByLearnerAndCourse(ctx context.Context, learnerID, courseID string) ([]*Progress, error)

	// CountCompletedByCourse counts the learner's completed lessons among
	// the currently published lessons of a course. Rows for lessons that
	// were unpublished later are excluded. Used by the completion cascade.
	CountCompletedByCourse(ctx context.Context, learnerID, courseID string) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Two key families: per-lesson progress and per-course summary, both keyed by
// learner. Reads populate (cache-aside), writes only delete.
// ══════════════════════════════════════════════════════════════════════════════

// Cache defines the progress cache operations.
type Cache interface {
	// GetLesson returns a cached progress row, or a cache-miss error.
	GetLesson(ctx context.Context, learnerID, lessonID string) (*Progress, error)

	// SetLesson caches a progress row.
	SetLesson(ctx context.Context, p *Progress, ttl time.Duration) error

	// GetCourseSummary returns a cached course summary, or a cache-miss error.
	GetCourseSummary(ctx context.Context, learnerID, courseID string) (*CourseSummary, error)

	// SetCourseSummary caches a course summary.
	SetCourseSummary(ctx context.Context, s *CourseSummary, ttl time.Duration) error

	// InvalidateLesson removes the per-lesson key.
	InvalidateLesson(ctx context.Context, learnerID, lessonID string) error

	// InvalidateCourseSummary removes the per-course summary key.
	InvalidateCourseSummary(ctx context.Context, learnerID, courseID string) error
}

// ErrCacheDisabled is returned by NoopCache reads, making every lookup a miss.
var ErrCacheDisabled = errors.New("progress cache disabled")

// NoopCache is a Cache that stores nothing. Used when Redis is disabled;
// every read misses and falls through to the repository.
type NoopCache struct{}

func (NoopCache) GetLesson(ctx context.Context, learnerID, lessonID string) (*Progress, error) {
	return nil, ErrCacheDisabled
}

func (NoopCache) SetLesson(ctx context.Context, p *Progress, ttl time.Duration) error {
	return nil
}

func (NoopCache) GetCourseSummary(ctx context.Context, learnerID, courseID string) (*CourseSummary, error) {
	return nil, ErrCacheDisabled
}

func (NoopCache) SetCourseSummary(ctx context.Context, s *CourseSummary, ttl time.Duration) error {
	return nil
}

func (NoopCache) InvalidateLesson(ctx context.Context, learnerID, lessonID string) error {
	return nil
}

func (NoopCache) InvalidateCourseSummary(ctx context.Context, learnerID, courseID string) error {
	return nil
}
