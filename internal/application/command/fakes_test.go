package command

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
// Map-backed implementations of the domain ports, shared by the handler
// tests in this package. They reproduce the repository error contracts
// (not-found sentinels, conflict on duplicate create, guarded completion).
// ══════════════════════════════════════════════════════════════════════════════

type fakeCatalogRepo struct {
	courses map[string]*catalog.Course
	lessons map[string]*catalog.Lesson

	// countOverride forces CountPublishedLessons for a course, modelling a
	// lesson set that changed between reads.
	countOverride map[string]int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		courses: make(map[string]*catalog.Course),
		lessons: make(map[string]*catalog.Lesson),
	}
}

func (r *fakeCatalogRepo) GetCourse(ctx context.Context, courseID string) (*catalog.Course, error) {
	c, ok := r.courses[courseID]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (r *fakeCatalogRepo) GetLesson(ctx context.Context, lessonID string) (*catalog.Lesson, error) {
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
	if n, ok := r.countOverride[courseID]; ok {
		return n, nil
	}
	lessons, _ := r.ListPublishedLessons(ctx, courseID)
	return len(lessons), nil
}

type fakeEnrollmentRepo struct {
	byID map[string]*enrollment.Enrollment

	// listHook runs on the result of ListExpirable, modelling rows that
	// change state between listing and sweeping.
	listHook func([]*enrollment.Enrollment)

	completeIfActiveCalls int
	updateCalls           int
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{byID: make(map[string]*enrollment.Enrollment)}
}

func (r *fakeEnrollmentRepo) add(e *enrollment.Enrollment) {
	r.byID[e.ID] = e.Clone()
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, e *enrollment.Enrollment) error {
	for _, existing := range r.byID {
		if existing.LearnerID == e.LearnerID && existing.CourseID == e.CourseID {
			return shared.ErrAlreadyEnrolled
		}
	}
	r.byID[e.ID] = e.Clone()
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrEnrollmentNotFound
	}
	return e.Clone(), nil
}

func (r *fakeEnrollmentRepo) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*enrollment.Enrollment, error) {
	for _, e := range r.byID {
		if e.LearnerID == learnerID && e.CourseID == courseID {
			return e.Clone(), nil
		}
	}
	return nil, shared.ErrEnrollmentNotFound
}

func (r *fakeEnrollmentRepo) Update(ctx context.Context, e *enrollment.Enrollment) error {
	if _, ok := r.byID[e.ID]; !ok {
		return shared.ErrEnrollmentNotFound
	}
	r.updateCalls++
	r.byID[e.ID] = e.Clone()
	return nil
}

func (r *fakeEnrollmentRepo) ListByLearner(ctx context.Context, learnerID string) ([]*enrollment.Enrollment, error) {
	var out []*enrollment.Enrollment
	for _, e := range r.byID {
		if e.LearnerID == learnerID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) HasCompleted(ctx context.Context, learnerID, courseID string) (bool, error) {
	for _, e := range r.byID {
		if e.LearnerID == learnerID && e.CourseID == courseID && e.IsCompleted() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) CompleteIfActive(ctx context.Context, id string, at time.Time) (bool, error) {
	r.completeIfActiveCalls++
	e, ok := r.byID[id]
	if !ok || !e.IsActive() {
		return false, nil
	}
	transitioned, err := e.Complete(at)
	return transitioned, err
}

func (r *fakeEnrollmentRepo) ListExpirable(ctx context.Context, before time.Time, limit int) ([]*enrollment.Enrollment, error) {
	var out []*enrollment.Enrollment
	for _, e := range r.byID {
		if e.IsExpiredBy(before) {
			out = append(out, e.Clone())
		}
		if len(out) == limit {
			break
		}
	}
	if r.listHook != nil {
		r.listHook(out)
	}
	return out, nil
}

type fakeEnrollmentCache struct {
	invalidatedIDs []string
}

func (c *fakeEnrollmentCache) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	return nil, enrollment.ErrCacheDisabled
}

func (c *fakeEnrollmentCache) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID string) (*enrollment.Enrollment, error) {
	return nil, enrollment.ErrCacheDisabled
}

func (c *fakeEnrollmentCache) Set(ctx context.Context, e *enrollment.Enrollment, ttl time.Duration) error {
	return nil
}

func (c *fakeEnrollmentCache) Invalidate(ctx context.Context, id, learnerID, courseID string) error {
	c.invalidatedIDs = append(c.invalidatedIDs, id)
	return nil
}

type fakeProgressRepo struct {
	rows map[string]*progress.Progress // keyed learnerID + ":" + lessonID

	// catalog supplies the published lesson set for CountCompletedByCourse,
	// mirroring the SQL intersection with the lessons table.
	catalog *fakeCatalogRepo
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]*progress.Progress)}
}

func progressKey(learnerID, lessonID string) string {
	return learnerID + ":" + lessonID
}

func (r *fakeProgressRepo) add(p *progress.Progress) {
	r.rows[progressKey(p.LearnerID, p.LessonID)] = p.Clone()
}

func (r *fakeProgressRepo) GetByLearnerAndLesson(ctx context.Context, learnerID, lessonID string) (*progress.Progress, error) {
	p, ok := r.rows[progressKey(learnerID, lessonID)]
	if !ok {
		return nil, shared.ErrProgressNotFound
	}
	return p.Clone(), nil
}

// Upsert mirrors the SQL statement: the delta is added to the stored total,
// completion is sticky and the first completion timestamp wins.
func (r *fakeProgressRepo) Upsert(ctx context.Context, p *progress.Progress, timeSpentDelta int) (*progress.Progress, error) {
	key := progressKey(p.LearnerID, p.LessonID)

	existing, ok := r.rows[key]
	if !ok {
		stored := p.Clone()
		stored.TimeSpentSeconds = timeSpentDelta
		r.rows[key] = stored
		return stored.Clone(), nil
	}

	stored := p.Clone()
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	stored.Completed = existing.Completed || p.Completed
	stored.TimeSpentSeconds = existing.TimeSpentSeconds + timeSpentDelta
	if existing.CompletedAt != nil {
		stored.CompletedAt = existing.CompletedAt
	}
	r.rows[key] = stored
	return stored.Clone(), nil
}

func (r *fakeProgressRepo) ListByLearnerAndCourse(ctx context.Context, learnerID, courseID string) ([]*progress.Progress, error) {
	var out []*progress.Progress
	for _, p := range r.rows {
		if p.LearnerID == learnerID && p.CourseID == courseID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) CountCompletedByCourse(ctx context.Context, learnerID, courseID string) (int, error) {
	count := 0
	for _, p := range r.rows {
		if p.LearnerID != learnerID || p.CourseID != courseID || !p.Completed {
			continue
		}
		if r.catalog != nil {
			l, ok := r.catalog.lessons[p.LessonID]
			if !ok || !l.IsPublished {
				continue
			}
		}
		count++
	}
	return count, nil
}

type fakeProgressCache struct {
	invalidatedLessons []string
	invalidatedCourses []string
}

func (c *fakeProgressCache) GetLesson(ctx context.Context, learnerID, lessonID string) (*progress.Progress, error) {
	return nil, progress.ErrCacheDisabled
}

func (c *fakeProgressCache) SetLesson(ctx context.Context, p *progress.Progress, ttl time.Duration) error {
	return nil
}

func (c *fakeProgressCache) GetCourseSummary(ctx context.Context, learnerID, courseID string) (*progress.CourseSummary, error) {
	return nil, progress.ErrCacheDisabled
}

func (c *fakeProgressCache) SetCourseSummary(ctx context.Context, s *progress.CourseSummary, ttl time.Duration) error {
	return nil
}

func (c *fakeProgressCache) InvalidateLesson(ctx context.Context, learnerID, lessonID string) error {
	c.invalidatedLessons = append(c.invalidatedLessons, lessonID)
	return nil
}

func (c *fakeProgressCache) InvalidateCourseSummary(ctx context.Context, learnerID, courseID string) error {
	c.invalidatedCourses = append(c.invalidatedCourses, courseID)
	return nil
}

type fakeEventPublisher struct {
	events []shared.Event
}

func (p *fakeEventPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakeEventPublisher) typesPublished() []shared.EventType {
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
