package redis

import (
	"context"
	"time"

	"github.com/learnhub/learning-hub/internal/domain/progress"
)

// ProgressCache implements progress.Cache using the generic Redis Cache.
// Each key family carries exactly one JSON schema: per-lesson keys hold
// progress.Progress, per-course keys hold progress.CourseSummary. The two
// are never mixed under one key.
type ProgressCache struct {
	cache *Cache
}

// NewProgressCache creates a new ProgressCache.
func NewProgressCache(cache *Cache) *ProgressCache {
	return &ProgressCache{
		cache: cache,
	}
}

// GetLesson gets a per-lesson progress row from cache.
func (c *ProgressCache) GetLesson(ctx context.Context, learnerID, lessonID string) (*progress.Progress, error) {
	var p progress.Progress
	if err := c.cache.Get(ctx, LessonProgressKey(learnerID, lessonID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetLesson caches a per-lesson progress row.
func (c *ProgressCache) SetLesson(ctx context.Context, p *progress.Progress, ttl time.Duration) error {
	if p == nil {
		return nil
	}
	return c.cache.Set(ctx, LessonProgressKey(p.LearnerID, p.LessonID), p, ttl)
}

// GetCourseSummary gets a per-course summary from cache.
func (c *ProgressCache) GetCourseSummary(ctx context.Context, learnerID, courseID string) (*progress.CourseSummary, error) {
	var s progress.CourseSummary
	if err := c.cache.Get(ctx, CourseProgressKey(learnerID, courseID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetCourseSummary caches a per-course summary.
func (c *ProgressCache) SetCourseSummary(ctx context.Context, s *progress.CourseSummary, ttl time.Duration) error {
	if s == nil {
		return nil
	}
	return c.cache.Set(ctx, CourseProgressKey(s.LearnerID, s.CourseID), s, ttl)
}

// InvalidateLesson removes the per-lesson key.
func (c *ProgressCache) InvalidateLesson(ctx context.Context, learnerID, lessonID string) error {
	return c.cache.Delete(ctx, LessonProgressKey(learnerID, lessonID))
}

// InvalidateCourseSummary removes the per-course summary key.
func (c *ProgressCache) InvalidateCourseSummary(ctx context.Context, learnerID, courseID string) error {
	return c.cache.Delete(ctx, CourseProgressKey(learnerID, courseID))
}
