package query

import (
	"context"
	"time"

	"github.com/learnhub/learning-hub/internal/domain/catalog"
	"github.com/learnhub/learning-hub/internal/domain/enrollment"
	"github.com/learnhub/learning-hub/internal/domain/progress"
	"github.com/learnhub/learning-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// The caches here actually store values, so the tests can distinguish the
// cache-hit path from the repository fallback and observe what reads write
// back.
// ══════════════════════════════════════════════════════════════════════════════

type fakeCatalogRepo struct {
	lessons map[string]*catalog.Lesson

	getLessonCalls int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		lessons: make(map[string]*catalog.Lesson),
	}
}

func (r *fakeCatalogRepo) GetCourse(ctx context.Context, courseID string) (*catalog.Course, error) {
	return nil, shared.ErrCourseNotFound
}

func (r *fakeCatalogRepo) GetLesson(ctx context.Context, lessonID string) (*catalog.Lesson, error) {
	r.getLessonCalls++
	l, ok := r.lessons[lessonID]
	if !ok {
		return nil, shared.ErrLessonNotFound
	}
	return l, nil
}

func (r *fakeCatalogRepo) ListPublishedLessons(ctx context.Context, courseID string) ([]*catalog.Lesson, error) {
	var out []*catalog.Lesson
	for _, l := range r.lessons {
		if l.CourseID == courseID && l.IsPublished {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) CountPublishedLessons(ctx context.Context, courseID string) (int, error) {
	lessons, _ := r.ListPublishedLessons(ctx, courseID)
	return len(lessons), nil
}

type fakeProgressRepo struct {
	rows map[string]*progress.Progress // keyed learnerID + ":" + lessonID

	getCalls int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*progress.Progress)}
}

func (r *fakeProgressRepo) add(p *progress.Progress) {
	r.rows[p.LearnerID+":"+p.LessonID] = p
}

func (r *fakeProgressRepo) GetByLearnerAndLesson(ctx context.Context, learnerID, lessonID string) (*progress.Progress, error) {
	r.getCalls++
	p, ok := r.rows[learnerID+":"+lessonID]
	if !ok {
		return nil, shared.ErrProgressNotFound
	}
	return p, nil
}

func (r *fakeProgressRepo) Upsert(ctx context.Context, p *progress.Progress, timeSpentDelta int) (*progress.Progress, error) {
	r.add(p)
	return p, nil
}

func (r *fakeProgressRepo) ListByLearnerAndCourse(ctx context.Context, learnerID, courseID string) ([]*progress.Progress, error) {
	var out []*progress.Progress
	for _, p := range r.rows {
		if p.LearnerID == learnerID && p.CourseID == courseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) CountCompletedByCourse(ctx context.Context, learnerID, courseID string) (int, error) {
	count := 0
	for _, p := range r.rows {
		if p.LearnerID == learnerID && p.CourseID == courseID && p.Completed {
			count++
		}
	}
	return count, nil
}

type fakeProgressCache struct {
	lessons   map[string]*progress.Progress
	summaries map[string]*progress.CourseSummary

	lastTTL time.Duration
}

func newFakeProgressCache() *fakeProgressCache {
	return &fakeProgressCache{
		lessons:   make(map[string]*progress.Progress),
		summaries: make(map[string]*progress.CourseSummary),
	}
}

func (c *fakeProgressCache) GetLesson(ctx context.Context, learnerID, lessonID string) (*progress.Progress, error) {
	p, ok := c.lessons[learnerID+":"+lessonID]
	if !ok {
		return nil, progress.ErrCacheDisabled
	}
	return p, nil
}

func (c *fakeProgressCache) SetLesson(ctx context.Context, p *progress.Progress, ttl time.Duration) error {
	c.lessons[p.LearnerID+":"+p.LessonID] = p
	c.lastTTL = ttl
	return nil
}

func (c *fakeProgressCache) GetCourseSummary(ctx context.Context, learnerID, courseID string) (*progress.CourseSummary, error) {
	s, ok := c.summaries[learnerID+":"+courseID]
	if !ok {
		return nil, progress.ErrCacheDisabled
	}
	return s, nil
}

func (c *fakeProgressCache) SetCourseSummary(ctx context.Context, s *progress.CourseSummary, ttl time.Duration) error {
	c.summaries[s.LearnerID+":"+s.CourseID] = s
	c.lastTTL = ttl
	return nil
}

func (c *fakeProgressCache) InvalidateLesson(ctx context.Context, learnerID, lessonID string) error {
	delete(c.lessons, learnerID+":"+lessonID)
	return nil
}

func (c *fakeProgressCache) InvalidateCourseSummary(ctx context.Context, learnerID, courseID string) error {
	delete(c.summaries, learnerID+":"+courseID)
	return nil
}

type fakeEnrollmentRepo struct {
	byID map[string]*enrollment.Enrollment

	getCalls int
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{byID: make(map[string]*enrollment.Enrollment)}
}

func (r *fakeEnrollmentRepo) add(e *enrollment.Enrollment) {
	r.byID[e.ID] = e
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, e *enrollment.Enrollment) error {
	r.byID[e.ID] = e
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	r.getCalls++
	e, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrEnrollmentNotFound
	}
	return e, nil
}

func (r *fakeEnrollmentRepo) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*enrollment.Enrollment, error) {
	r.getCalls++
	for _, e := range r.byID {
		if e.LearnerID == learnerID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, shared.ErrEnrollmentNotFound
}

func (r *fakeEnrollmentRepo) Update(ctx context.Context, e *enrollment.Enrollment) error {
	r.byID[e.ID] = e
	return nil
}

func (r *fakeEnrollmentRepo) ListByLearner(ctx context.Context, learnerID string) ([]*enrollment.Enrollment, error) {
	return nil, nil
}

func (r *fakeEnrollmentRepo) HasCompleted(ctx context.Context, learnerID, courseID string) (bool, error) {
	return false, nil
}

func (r *fakeEnrollmentRepo) CompleteIfActive(ctx context.Context, id string, at time.Time) (bool, error) {
	return false, nil
}

func (r *fakeEnrollmentRepo) ListExpirable(ctx context.Context, before time.Time, limit int) ([]*enrollment.Enrollment, error) {
	return nil, nil
}

type fakeEnrollmentCache struct {
	byID    map[string]*enrollment.Enrollment
	lastTTL time.Duration
}

func newFakeEnrollmentCache() *fakeEnrollmentCache {
	return &fakeEnrollmentCache{byID: make(map[string]*enrollment.Enrollment)}
}

func (c *fakeEnrollmentCache) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	e, ok := c.byID[id]
	if !ok {
		return nil, enrollment.ErrCacheDisabled
	}
	return e, nil
}

func (c *fakeEnrollmentCache) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*enrollment.Enrollment, error) {
	for _, e := range c.byID {
		if e.LearnerID == learnerID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, enrollment.ErrCacheDisabled
}

func (c *fakeEnrollmentCache) Set(ctx context.Context, e *enrollment.Enrollment, ttl time.Duration) error {
	c.byID[e.ID] = e
	c.lastTTL = ttl
	return nil
}

func (c *fakeEnrollmentCache) Invalidate(ctx context.Context, id, learnerID, courseID string) error {
	delete(c.byID, id)
	return nil
}
